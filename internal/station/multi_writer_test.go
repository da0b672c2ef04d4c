package station

import (
	"errors"
	"testing"
	"time"
)

// frameOnly implements just the base interface.
type frameOnly struct{ n int }

func (f *frameOnly) WriteFrame(FrameEvent) error {
	f.n++
	return nil
}

type failingWriter struct{ err error }

func (f failingWriter) WriteFrame(FrameEvent) error  { return f.err }
func (f failingWriter) WriteAlerts(AlertEvent) error { return f.err }

type closer struct {
	frameOnly
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return nil
}

func TestMultiWriterFanOut(t *testing.T) {
	rec := &recordingWriter{}
	base := &frameOnly{}
	mw := NewMultiWriter(rec, nil, base)
	if mw.Len() != 2 {
		t.Fatalf("nil writer not skipped: %d", mw.Len())
	}
	now := time.Unix(0, 0)
	if err := mw.WriteFrame(FrameEvent{Timestamp: now}); err != nil {
		t.Fatalf("frame: %v", err)
	}
	if err := mw.WriteAlerts(AlertEvent{Timestamp: now}); err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if err := mw.WriteLink(LinkEvent{Timestamp: now}); err != nil {
		t.Fatalf("link: %v", err)
	}
	if base.n != 1 || len(rec.frames) != 1 || len(rec.alerts) != 1 || len(rec.links) != 1 {
		t.Fatalf("unexpected fan-out: base %d rec %+v", base.n, rec)
	}
}

func TestMultiWriterJoinsErrors(t *testing.T) {
	errA := errors.New("sink a down")
	errB := errors.New("sink b down")
	rec := &recordingWriter{}
	mw := NewMultiWriter(failingWriter{errA}, rec, failingWriter{errB})
	err := mw.WriteFrame(FrameEvent{})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("err = %v, want both sink errors", err)
	}
	if len(rec.frames) != 1 {
		t.Fatalf("healthy sink skipped after failure")
	}
	if err := mw.WriteLink(LinkEvent{}); err != nil {
		t.Fatalf("link err = %v; failing writers do not accept links", err)
	}
}

func TestMultiWriterClose(t *testing.T) {
	c := &closer{}
	mw := NewMultiWriter(&frameOnly{}, c)
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !c.closed {
		t.Fatalf("closer not closed")
	}
}
