package station

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONStdoutWriter emits every event as one JSON object per line.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

type jsonRecord struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

func (w *JSONStdoutWriter) emit(kind string, v any) error {
	b, err := json.Marshal(jsonRecord{Kind: kind, Data: v})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(b))
	return err
}

// WriteFrame prints a frame event.
func (w *JSONStdoutWriter) WriteFrame(e FrameEvent) error { return w.emit("frame", e) }

// WriteAlerts prints a safety report.
func (w *JSONStdoutWriter) WriteAlerts(e AlertEvent) error { return w.emit("alerts", e) }

// WriteLink prints a link status change.
func (w *JSONStdoutWriter) WriteLink(e LinkEvent) error { return w.emit("link", e) }
