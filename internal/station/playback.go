package station

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

type replayRecord struct {
	Timestamp time.Time `json:"ts"`
	Line      string    `json:"line"`
}

// ReplayLog feeds a recording through st. Records are JSONL frame events as
// written by FileWriter, or raw SUM lines stamped at read time. A speed >0
// paces playback by the recorded gaps divided by speed; speed <= 0 inserts
// no delay. It returns the number of frames decoded.
func ReplayLog(ctx context.Context, r io.Reader, st *Station, speed float64) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	var prev time.Time
	frames := 0
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rec := replayRecord{Line: line}
		if strings.HasPrefix(line, "{") {
			rec = replayRecord{}
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				return frames, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
		if rec.Timestamp.IsZero() {
			rec.Timestamp = time.Now()
		}
		if !prev.IsZero() && speed > 0 {
			diff := rec.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				select {
				case <-time.After(diff):
				case <-ctx.Done():
					return frames, ctx.Err()
				}
			}
		}
		if !prev.IsZero() {
			st.CheckLiveness(ctx, rec.Timestamp)
		}
		if st.HandleLine(ctx, rec.Line, rec.Timestamp) {
			frames++
		}
		prev = rec.Timestamp
		if err := ctx.Err(); err != nil {
			return frames, err
		}
	}
	return frames, sc.Err()
}

// ReplayLogFile opens path and replays it.
func ReplayLogFile(ctx context.Context, path string, st *Station, speed float64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ReplayLog(ctx, f, st, speed)
}
