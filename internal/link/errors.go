package link

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyOpen is returned by Open while a port is held.
	ErrAlreadyOpen = errors.New("link already open")
	// ErrNotConnected is returned by Send without an open port.
	ErrNotConnected = errors.New("link not connected")
	// ErrNoDevice marks an empty or placeholder device selection.
	ErrNoDevice = errors.New("no device selected")
)

// OpenError reports a device that could not be opened.
type OpenError struct {
	Device string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Device, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// WriteError reports a failed command write. The link is closed when it is
// returned.
type WriteError struct {
	Command string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %q: %v", e.Command, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError reports a failed read. The link is closed when it is returned.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read: %v", e.Err) }

func (e *ReadError) Unwrap() error { return e.Err }
