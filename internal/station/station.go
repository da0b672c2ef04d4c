// Package station runs the ground-control pipeline: it polls the link,
// decodes telemetry, keeps the flight state and fans events out to sinks.
package station

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"airdarwin-gcs/internal/command"
	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/logging"
	"airdarwin-gcs/internal/metrics"
	"airdarwin-gcs/internal/safety"
	"airdarwin-gcs/internal/telemetry"

	"github.com/google/uuid"
)

const (
	DefaultPollInterval     = 100 * time.Millisecond
	DefaultLivenessInterval = time.Second
)

// Options configures a Station. Zero values select defaults.
type Options struct {
	PollInterval     time.Duration
	LivenessInterval time.Duration
	DataTimeout      time.Duration
	Env              telemetry.Environment
	System           safety.SystemSource
	Metrics          *metrics.Metrics
}

// LinkInfo is a point-in-time view of the link.
type LinkInfo struct {
	Status    link.Status `json:"status"`
	Device    string      `json:"device,omitempty"`
	Session   string      `json:"session,omitempty"`
	LastFrame time.Time   `json:"last_frame,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// Station owns the flight state and the latest safety report. All public
// methods are safe for concurrent use.
type Station struct {
	transport  *link.Transport
	dispatcher *command.Dispatcher
	monitor    *link.Monitor
	analyzer   *safety.Analyzer
	writer     FrameWriter
	metrics    *metrics.Metrics

	pollInterval     time.Duration
	livenessInterval time.Duration
	now              func() time.Time

	mu      sync.Mutex
	state   *telemetry.FlightState
	report  safety.Report
	status  link.Status
	message string
	session string
}

// New builds a station. transport may be nil for offline replay, in which
// case commands report the link as down.
func New(transport *link.Transport, writer FrameWriter, opts Options) *Station {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.LivenessInterval <= 0 {
		opts.LivenessInterval = DefaultLivenessInterval
	}
	if opts.Env == (telemetry.Environment{}) {
		opts.Env = telemetry.DefaultEnvironment()
	}
	if writer == nil {
		writer = NewMultiWriter()
	}
	var sender command.Sender
	if transport != nil {
		sender = transport
	}
	st := &Station{
		transport:        transport,
		dispatcher:       command.NewDispatcher(sender),
		monitor:          link.NewMonitor(opts.DataTimeout),
		analyzer:         safety.NewAnalyzer(opts.System),
		writer:           writer,
		metrics:          opts.Metrics,
		pollInterval:     opts.PollInterval,
		livenessInterval: opts.LivenessInterval,
		now:              time.Now,
		state:            telemetry.NewFlightState(opts.Env),
		status:           link.StatusDisconnected,
		message:          "No Connection",
	}
	if transport == nil {
		// Offline sessions have no connect step.
		st.session = uuid.NewString()
	}
	st.report = st.analyzer.Evaluate(st.state.Snapshot(), st.status)
	return st
}

// HandleLine feeds one raw line received at at through the pipeline. It
// reports whether the line was a telemetry frame.
func (s *Station) HandleLine(ctx context.Context, line string, at time.Time) bool {
	log := logging.FromContext(ctx)
	frame, ok := telemetry.Decode(line)
	s.metrics.LineReceived(ok)
	if !ok {
		log.Debug("line ignored", "line", line)
		return false
	}
	s.monitor.MarkFrame(at)

	s.mu.Lock()
	prevMode := s.state.Mode
	s.state.Apply(frame, at)
	snap := s.state.Snapshot()
	linkEv, changed := s.setStatusLocked(link.StatusReceiving, "Receiving AirDarwin telemetry", at)
	s.report = s.analyzer.Evaluate(snap, s.status)
	report := s.report
	session := s.session
	s.mu.Unlock()

	if changed {
		s.emitLink(ctx, linkEv)
	}
	modeChanged := snap.Mode != prevMode
	if err := s.writer.WriteFrame(FrameEvent{
		Session:     session,
		Timestamp:   at,
		Line:        line,
		Frame:       frame,
		State:       snap,
		ModeChanged: modeChanged,
	}); err != nil {
		log.Error("frame write failed", "err", err)
	}
	s.emitAlerts(ctx, AlertEvent{Session: session, Timestamp: at, Report: report})
	s.metrics.ObserveFrame(snap)
	s.metrics.ObserveReport(report)
	if modeChanged {
		log.Info("flight mode changed", "from", prevMode, "to", snap.Mode)
	}
	return true
}

// CheckLiveness re-derives telemetry freshness at now. When telemetry goes
// stale the report is replaced by the no-data alert.
func (s *Station) CheckLiveness(ctx context.Context, now time.Time) link.Status {
	s.mu.Lock()
	if s.transport != nil && !s.transport.Connected() {
		// Keep the message of the event that closed the link.
		var ev LinkEvent
		changed := false
		if s.status != link.StatusDisconnected {
			ev, changed = s.setStatusLocked(link.StatusDisconnected, "No Connection", now)
		}
		s.mu.Unlock()
		if changed {
			s.emitLink(ctx, ev)
		}
		return link.StatusDisconnected
	}
	status := s.monitor.Check(now)
	msg := s.message
	if status == link.StatusNoData {
		msg = "No telemetry data received"
	}
	ev, changed := s.setStatusLocked(status, msg, now)
	var alert *AlertEvent
	if changed && status == link.StatusNoData {
		s.report = s.analyzer.Evaluate(s.state.Snapshot(), status)
		alert = &AlertEvent{Session: s.session, Timestamp: now, Report: s.report}
	}
	s.mu.Unlock()

	if changed {
		logging.FromContext(ctx).Warn("link status changed", "status", status)
		s.emitLink(ctx, ev)
	}
	if alert != nil {
		s.emitAlerts(ctx, *alert)
		s.metrics.ObserveReport(alert.Report)
	}
	return status
}

// Connect opens device, closing any link that is already open.
func (s *Station) Connect(ctx context.Context, device string) error {
	if s.transport == nil {
		return ErrOffline
	}
	log := logging.FromContext(ctx)
	if s.transport.Connected() {
		if err := s.transport.Close(ctx); err != nil {
			log.Warn("closing previous link failed", "err", err)
		}
	}
	now := s.now()
	if err := s.transport.Open(ctx, device); err != nil {
		s.updateStatus(ctx, link.StatusDisconnected, fmt.Sprintf("Failed to connect to %s", device), now)
		return err
	}
	s.monitor.Reset(now)
	s.mu.Lock()
	s.session = uuid.NewString()
	s.mu.Unlock()
	log.Info("link connected", "device", device)
	s.updateStatus(ctx, link.StatusConnected, fmt.Sprintf("Connected to %s - Listening for AirDarwin telemetry", device), now)
	return nil
}

// Disconnect closes the link. Closing an idle link is not an error and
// still emits a link event.
func (s *Station) Disconnect(ctx context.Context) error {
	if s.transport == nil {
		return ErrOffline
	}
	err := s.transport.Close(ctx)
	now := s.now()
	s.mu.Lock()
	ev, changed := s.setStatusLocked(link.StatusDisconnected, "Disconnected from AirDarwin", now)
	if !changed {
		ev = LinkEvent{Session: s.session, Timestamp: now, Status: s.status, Device: s.transport.Device(), Message: s.message}
	}
	s.mu.Unlock()
	s.emitLink(ctx, ev)
	return err
}

// SendCommand validates and forwards an uplink command.
func (s *Station) SendCommand(ctx context.Context, name string) error {
	err := s.dispatcher.Dispatch(ctx, name)
	s.metrics.CommandSent(name, err)
	log := logging.FromContext(ctx)
	if err != nil {
		log.Warn("command failed", "command", name, "err", err)
		var werr *link.WriteError
		if errors.As(err, &werr) {
			s.updateStatus(ctx, link.StatusDisconnected, fmt.Sprintf("Write error: %v", werr.Err), s.now())
		}
		return err
	}
	log.Info("command sent", "command", name)
	return nil
}

// State returns a copy of the flight state.
func (s *Station) State() telemetry.FlightState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

// Report returns the latest safety report.
func (s *Station) Report() safety.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Link returns the current link view.
func (s *Station) Link() LinkInfo {
	s.mu.Lock()
	info := LinkInfo{Status: s.status, Session: s.session, Message: s.message}
	s.mu.Unlock()
	if s.transport != nil {
		info.Device = s.transport.Device()
	}
	info.LastFrame = s.monitor.LastFrame()
	return info
}

// Connected reports whether the transport is open.
func (s *Station) Connected() bool {
	return s.transport != nil && s.transport.Connected()
}

// ErrOffline is returned for link operations on a station without transport.
var ErrOffline = errors.New("station has no link transport")

func (s *Station) updateStatus(ctx context.Context, status link.Status, msg string, at time.Time) {
	s.mu.Lock()
	ev, changed := s.setStatusLocked(status, msg, at)
	s.mu.Unlock()
	if changed {
		s.emitLink(ctx, ev)
	}
}

// setStatusLocked records status and msg. It reports a change when either
// differs from the previous value. s.mu must be held.
func (s *Station) setStatusLocked(status link.Status, msg string, at time.Time) (LinkEvent, bool) {
	if status == s.status && msg == s.message {
		return LinkEvent{}, false
	}
	s.status = status
	s.message = msg
	ev := LinkEvent{Session: s.session, Timestamp: at, Status: status, Message: msg}
	if s.transport != nil {
		ev.Device = s.transport.Device()
	}
	return ev, true
}

func (s *Station) emitLink(ctx context.Context, ev LinkEvent) {
	s.metrics.ObserveLink(ev.Status)
	lw, ok := s.writer.(LinkWriter)
	if !ok {
		return
	}
	if err := lw.WriteLink(ev); err != nil {
		logging.FromContext(ctx).Error("link write failed", "err", err)
	}
}

func (s *Station) emitAlerts(ctx context.Context, ev AlertEvent) {
	aw, ok := s.writer.(AlertWriter)
	if !ok {
		return
	}
	if err := aw.WriteAlerts(ev); err != nil {
		logging.FromContext(ctx).Error("alert write failed", "err", err)
	}
}
