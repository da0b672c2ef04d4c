package link

import (
	"sync/atomic"
	"time"
)

// DefaultDataTimeout is how long telemetry may be silent before NoData.
const DefaultDataTimeout = 5 * time.Second

// Monitor tracks telemetry freshness. It is safe for concurrent use.
type Monitor struct {
	timeout time.Duration
	window  atomic.Pointer[window] // nil until the first Reset or frame
}

// window is replaced whole so readers never see ref and seen disagree.
type window struct {
	ref  time.Time // last frame, or start of the window after Reset
	seen bool
}

// NewMonitor returns a monitor that reports NoData after timeout of silence.
func NewMonitor(timeout time.Duration) *Monitor {
	if timeout <= 0 {
		timeout = DefaultDataTimeout
	}
	return &Monitor{timeout: timeout}
}

// Timeout returns the configured silence limit.
func (m *Monitor) Timeout() time.Duration { return m.timeout }

// Reset starts a fresh observation window at now, as after a new connection.
func (m *Monitor) Reset(now time.Time) {
	m.window.Store(&window{ref: now})
}

// MarkFrame records a successfully decoded frame at t.
func (m *Monitor) MarkFrame(t time.Time) {
	m.window.Store(&window{ref: t, seen: true})
}

// LastFrame returns the time of the last frame, or the zero time.
func (m *Monitor) LastFrame() time.Time {
	w := m.window.Load()
	if w == nil || !w.seen {
		return time.Time{}
	}
	return w.ref
}

// Check derives freshness at now: NoData once the window has been silent
// for longer than the timeout, Receiving after a frame, and Connected while
// a fresh window has not seen a frame yet.
func (m *Monitor) Check(now time.Time) Status {
	w := m.window.Load()
	if w == nil || now.Sub(w.ref) > m.timeout {
		return StatusNoData
	}
	if w.seen {
		return StatusReceiving
	}
	return StatusConnected
}
