package link

import (
	"bytes"
	"errors"
	"sync"
)

// fakePort serves queued read chunks and records writes.
type fakePort struct {
	mu       sync.Mutex
	chunks   [][]byte
	readErr  error
	writeErr error
	written  bytes.Buffer
	closed   bool
}

func (p *fakePort) queue(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chunks = append(p.chunks, []byte(s))
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.New("read on closed port")
	}
	if len(p.chunks) == 0 {
		return 0, p.readErr
	}
	n := copy(b, p.chunks[0])
	if n < len(p.chunks[0]) {
		p.chunks[0] = p.chunks[0][n:]
	} else {
		p.chunks = p.chunks[1:]
	}
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(b)
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func openerFor(p *fakePort) Opener {
	return OpenerFunc(func(string) (Port, error) { return p, nil })
}
