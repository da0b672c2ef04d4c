package station

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/safety"
	"airdarwin-gcs/internal/telemetry"
)

func sampleFrame(t *testing.T) FrameEvent {
	t.Helper()
	f, ok := telemetry.Decode(cruiseLine)
	if !ok {
		t.Fatalf("decode sample line")
	}
	s := telemetry.NewFlightState(telemetry.DefaultEnvironment())
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Apply(f, ts)
	return FrameEvent{Session: "s1", Timestamp: ts, Line: cruiseLine, Frame: f, State: s.Snapshot(), ModeChanged: true}
}

func TestJSONStdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONStdoutWriter{out: &buf}
	if err := w.WriteFrame(sampleFrame(t)); err != nil {
		t.Fatalf("frame: %v", err)
	}
	if err := w.WriteLink(LinkEvent{Status: link.StatusNoData, Message: "No telemetry data received"}); err != nil {
		t.Fatalf("link: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	var rec struct {
		Kind string `json:"kind"`
		Data struct {
			Line  string `json:"line"`
			State struct {
				Mode    string   `json:"mode"`
				Battery *float64 `json:"battery"`
			} `json:"state"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Kind != "frame" || rec.Data.Line != cruiseLine || rec.Data.State.Mode != "CRUISE" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Data.State.Battery == nil || *rec.Data.State.Battery != 80 {
		t.Fatalf("battery not encoded")
	}
	if !strings.Contains(lines[1], `"status":"NO DATA"`) {
		t.Fatalf("link status not rendered as text: %s", lines[1])
	}
}

func TestColorStdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &ColorStdoutWriter{out: &buf}
	if err := w.WriteFrame(sampleFrame(t)); err != nil {
		t.Fatalf("frame: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"mode=CRUISE", "alt=120.0", "batt=80%", "Flight time:", "Energy:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	r := safety.Report{Critical: []string{"GPS CRITICAL: 2 sats - Manual control only"}}
	_ = w.WriteAlerts(AlertEvent{Report: r})
	_ = w.WriteAlerts(AlertEvent{Report: r})
	if n := strings.Count(buf.String(), "GPS CRITICAL"); n != 1 {
		t.Fatalf("unchanged report printed %d times", n)
	}
}
