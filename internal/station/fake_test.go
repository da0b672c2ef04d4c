package station

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/logging"
)

// recordingWriter collects every event kind.
type recordingWriter struct {
	mu     sync.Mutex
	frames []FrameEvent
	alerts []AlertEvent
	links  []LinkEvent
}

func (w *recordingWriter) WriteFrame(e FrameEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frames = append(w.frames, e)
	return nil
}

func (w *recordingWriter) WriteAlerts(e AlertEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.alerts = append(w.alerts, e)
	return nil
}

func (w *recordingWriter) WriteLink(e LinkEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.links = append(w.links, e)
	return nil
}

func (w *recordingWriter) lastLink(t *testing.T) LinkEvent {
	t.Helper()
	if len(w.links) == 0 {
		t.Fatalf("no link events recorded")
	}
	return w.links[len(w.links)-1]
}

func (w *recordingWriter) lastAlert(t *testing.T) AlertEvent {
	t.Helper()
	if len(w.alerts) == 0 {
		t.Fatalf("no alert events recorded")
	}
	return w.alerts[len(w.alerts)-1]
}

// fakePort serves queued reads and records writes.
type fakePort struct {
	reads   [][]byte
	readErr error
	written bytes.Buffer
	closed  bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.reads) == 0 {
		return 0, p.readErr
	}
	n := copy(b, p.reads[0])
	p.reads = p.reads[1:]
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func fakeTransport(p *fakePort, openErr error) *link.Transport {
	return link.NewTransport(link.OpenerFunc(func(string) (link.Port, error) {
		if openErr != nil {
			return nil, openErr
		}
		return p, nil
	}))
}

func testContext() context.Context {
	return logging.NewContext(context.Background(), logging.Discard())
}
