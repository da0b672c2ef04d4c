package link

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/looplab/fsm"

	"airdarwin-gcs/internal/logging"
)

// Transport connection states.
const (
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateConnected    = "connected"
)

const (
	evOpen   = "open"
	evOpened = "opened"
	evFail   = "fail"
	evClose  = "close"

	// NoConnection is the placeholder selection meaning "no port".
	NoConnection = "No Connection"

	readBufferSize = 1024
	maxPending     = 4096
)

// Port is an open byte stream to the autopilot. Reads must return promptly
// with zero bytes when nothing is pending.
type Port interface {
	io.ReadWriteCloser
}

// Opener opens a named device.
type Opener interface {
	Open(device string) (Port, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(device string) (Port, error)

// Open implements Opener.
func (f OpenerFunc) Open(device string) (Port, error) { return f(device) }

// Transport owns at most one open port. All methods are safe for concurrent
// use; Close excludes a concurrent Poll so no read sees a closed handle.
type Transport struct {
	mu      sync.Mutex
	opener  Opener
	port    Port
	device  string
	machine *fsm.FSM
	buf     []byte
	pending []byte
}

// NewTransport returns a disconnected transport using opener.
func NewTransport(opener Opener) *Transport {
	t := &Transport{opener: opener, buf: make([]byte, readBufferSize)}
	t.machine = fsm.NewFSM(
		StateDisconnected,
		fsm.Events{
			{Name: evOpen, Src: []string{StateDisconnected}, Dst: StateConnecting},
			{Name: evOpened, Src: []string{StateConnecting}, Dst: StateConnected},
			{Name: evFail, Src: []string{StateConnecting}, Dst: StateDisconnected},
			{Name: evClose, Src: []string{StateConnecting, StateConnected}, Dst: StateDisconnected},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				logging.FromContext(ctx).Debug("link state", "event", e.Event, "from", e.Src, "to", e.Dst)
			},
		},
	)
	return t
}

// Open connects to device. It fails with ErrAlreadyOpen while a port is held.
func (t *Transport) Open(ctx context.Context, device string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port != nil {
		return ErrAlreadyOpen
	}
	device = strings.TrimSpace(device)
	if device == "" || device == NoConnection {
		return &OpenError{Device: device, Err: ErrNoDevice}
	}
	if err := t.machine.Event(ctx, evOpen); err != nil {
		return &OpenError{Device: device, Err: err}
	}
	p, err := t.opener.Open(device)
	if err != nil {
		_ = t.machine.Event(ctx, evFail)
		return &OpenError{Device: device, Err: err}
	}
	t.port = p
	t.device = device
	t.pending = t.pending[:0]
	_ = t.machine.Event(ctx, evOpened)
	return nil
}

// Close releases the port. Closing a closed transport is a no-op.
func (t *Transport) Close(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeLocked(ctx)
}

func (t *Transport) closeLocked(ctx context.Context) error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	t.device = ""
	t.pending = t.pending[:0]
	if t.machine.Can(evClose) {
		_ = t.machine.Event(ctx, evClose)
	}
	return err
}

// Send writes cmd followed by a newline. A failed write closes the link.
func (t *Transport) Send(ctx context.Context, cmd string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return ErrNotConnected
	}
	if _, err := io.WriteString(t.port, cmd+"\n"); err != nil {
		_ = t.closeLocked(ctx)
		return &WriteError{Command: cmd, Err: err}
	}
	return nil
}

// Poll performs one bounded read and returns every complete line buffered
// so far. It returns nothing when the link is closed or no bytes arrived.
// A read failure closes the link and is returned as *ReadError together
// with any lines completed before it.
func (t *Transport) Poll(ctx context.Context) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil, nil
	}
	n, err := t.port.Read(t.buf)
	if n > 0 {
		t.pending = append(t.pending, t.buf[:n]...)
	}
	lines := t.takeLines()
	if err != nil {
		_ = t.closeLocked(ctx)
		return lines, &ReadError{Err: err}
	}
	return lines, nil
}

func (t *Transport) takeLines() []string {
	var lines []string
	start := 0
	for {
		i := bytes.IndexByte(t.pending[start:], '\n')
		if i < 0 {
			break
		}
		raw := t.pending[start : start+i]
		start += i + 1
		if line := strings.TrimSpace(strings.ToValidUTF8(string(raw), "\uFFFD")); line != "" {
			lines = append(lines, line)
		}
	}
	t.pending = append(t.pending[:0], t.pending[start:]...)
	if len(t.pending) > maxPending {
		t.pending = t.pending[:0]
	}
	return lines
}

// Connected reports whether a port is open.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}

// Device returns the open device name or "".
func (t *Transport) Device() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.device
}

// State returns the connection state machine's current state.
func (t *Transport) State() string {
	return t.machine.Current()
}
