package safety

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestReportJSONEncodesEmptyTiers(t *testing.T) {
	b, err := json.Marshal(Report{Critical: []string{NoTelemetryAlert}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(b)
	for _, want := range []string{`"warning":[]`, `"recommendation":[]`, `"info":[]`} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in %s", want, got)
		}
	}
	if strings.Contains(got, "null") {
		t.Errorf("unexpected null tier in %s", got)
	}

	var back Report
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back.Critical) != 1 || back.Critical[0] != NoTelemetryAlert {
		t.Fatalf("critical = %v", back.Critical)
	}
}
