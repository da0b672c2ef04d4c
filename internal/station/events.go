package station

import (
	"time"

	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/safety"
	"airdarwin-gcs/internal/telemetry"
)

// FrameEvent is emitted after a frame has been applied to the flight state.
type FrameEvent struct {
	Session     string                `json:"session,omitempty"`
	Timestamp   time.Time             `json:"ts"`
	Line        string                `json:"line"`
	Frame       telemetry.Frame       `json:"frame"`
	State       telemetry.FlightState `json:"state"`
	ModeChanged bool                  `json:"mode_changed,omitempty"`
}

// AlertEvent carries a freshly generated safety report.
type AlertEvent struct {
	Session   string        `json:"session,omitempty"`
	Timestamp time.Time     `json:"ts"`
	Report    safety.Report `json:"report"`
}

// LinkEvent reports a link status change with an operator-facing message.
type LinkEvent struct {
	Session   string      `json:"session,omitempty"`
	Timestamp time.Time   `json:"ts"`
	Status    link.Status `json:"status"`
	Device    string      `json:"device,omitempty"`
	Message   string      `json:"message"`
}

// FrameWriter is the base sink interface. Every sink receives frames.
type FrameWriter interface {
	WriteFrame(FrameEvent) error
}

// Optional: sinks may also receive safety reports.
type AlertWriter interface {
	WriteAlerts(AlertEvent) error
}

// Optional: sinks may also receive link status changes.
type LinkWriter interface {
	WriteLink(LinkEvent) error
}
