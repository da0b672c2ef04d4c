package link

import (
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the AirDarwin telemetry rate.
const DefaultBaudRate = 9600

// DefaultReadTimeout bounds each poll read.
const DefaultReadTimeout = 10 * time.Millisecond

// SerialOpener opens serial devices at 8N1.
type SerialOpener struct {
	BaudRate    int
	ReadTimeout time.Duration
}

// Open implements Opener.
func (o SerialOpener) Open(device string) (Port, error) {
	baud := o.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	timeout := o.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	p, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	if err := p.SetReadTimeout(timeout); err != nil {
		p.Close()
		return nil, err
	}
	_ = p.ResetInputBuffer()
	return p, nil
}

// Ports lists the serial devices present on the host.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
