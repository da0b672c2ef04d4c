package station

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/safety"
	"airdarwin-gcs/internal/telemetry"
)

func TestReplayRecordedFrames(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "frames.jsonl")
	fw, err := NewFileWriter(path, "", "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	rec := New(nil, fw, Options{DataTimeout: 5 * time.Second})
	t0 := time.Unix(0, 0).UTC()
	rec.HandleLine(ctx, "SUM:ARMED|AS:0|Sys:GILM|Bat:96", t0)
	rec.HandleLine(ctx, "SUM:TAKEOFF|AS:40|Alt:10|Sys:GILM", t0.Add(time.Second))
	rec.HandleLine(ctx, "SUM:CRUISE|AS:60|Alt:120|Sys:GILM", t0.Add(20*time.Second))
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out := &recordingWriter{}
	st := New(nil, out, Options{DataTimeout: 5 * time.Second})
	n, err := ReplayLogFile(ctx, path, st, 0)
	if err != nil {
		t.Fatalf("ReplayLogFile: %v", err)
	}
	if n != 3 || len(out.frames) != 3 {
		t.Fatalf("replayed %d frames, recorded %d events", n, len(out.frames))
	}
	if !out.frames[2].Timestamp.Equal(t0.Add(20 * time.Second)) {
		t.Fatalf("recorded timestamp not kept: %v", out.frames[2].Timestamp)
	}
	if s := st.State(); s.Mode != telemetry.ModeCruise || s.Altitude != 120 {
		t.Fatalf("unexpected state after replay: %s %v", s.Mode, s.Altitude)
	}

	// The 19 s gap exceeds the data timeout.
	sawNoData := false
	for _, e := range out.links {
		if e.Status == link.StatusNoData {
			sawNoData = true
		}
	}
	if !sawNoData {
		t.Fatalf("gap in recording did not raise NoData: %+v", out.links)
	}
	if c := st.Report().Critical; len(c) > 0 && c[0] == safety.NoTelemetryAlert {
		t.Fatalf("final report still stale")
	}
}

func TestReplayRawLines(t *testing.T) {
	ctx := testContext()
	raw := strings.Join([]string{
		"AirDarwin boot",
		"SUM:ARMED|AS:0|Sys:GILM",
		"",
		"SUM:TAKEOFF|AS:35|Alt:5|Sys:GILM",
	}, "\n")
	out := &recordingWriter{}
	st := New(nil, out, Options{})
	n, err := ReplayLog(ctx, strings.NewReader(raw), st, 0)
	if err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if n != 2 {
		t.Fatalf("frames = %d, want 2", n)
	}
}

func TestReplayRejectsBadJSON(t *testing.T) {
	ctx := testContext()
	st := New(nil, nil, Options{})
	_, err := ReplayLog(ctx, strings.NewReader("{\"ts\":"), st, 0)
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("err = %v, want line reference", err)
	}
}

func TestReplayLogFileMissing(t *testing.T) {
	st := New(nil, nil, Options{})
	if _, err := ReplayLogFile(testContext(), filepath.Join(t.TempDir(), "nope.jsonl"), st, 0); !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not exist", err)
	}
}
