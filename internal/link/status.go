// Package link owns the serial connection to the autopilot and tracks
// telemetry liveness.
package link

import "fmt"

// Status combines transport connection and telemetry freshness.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnected
	StatusReceiving
	StatusNoData
)

var statusNames = map[Status]string{
	StatusDisconnected: "DISCONNECTED",
	StatusConnected:    "CONNECTED",
	StatusReceiving:    "RECEIVING",
	StatusNoData:       "NO DATA",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText renders the status name for JSON payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for st, n := range statusNames {
		if n == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown link status %q", b)
}
