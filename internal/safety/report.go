package safety

import (
	"encoding/json"
	"time"
)

// Report is the full result of one evaluation. Consumers replace their
// previous report with it.
type Report struct {
	Critical       []string  `json:"critical"`
	Warning        []string  `json:"warning"`
	Recommendation []string  `json:"recommendation"`
	Info           []string  `json:"info"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Len returns the total number of lines across all tiers.
func (r Report) Len() int {
	return len(r.Critical) + len(r.Warning) + len(r.Recommendation) + len(r.Info)
}

// Severity is the highest tier with content: "critical", "warning" or "ok".
func (r Report) Severity() string {
	switch {
	case len(r.Critical) > 0:
		return "critical"
	case len(r.Warning) > 0:
		return "warning"
	default:
		return "ok"
	}
}

// MarshalJSON always encodes the four tiers as arrays.
func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	p := plain(r)
	for _, tier := range []*[]string{&p.Critical, &p.Warning, &p.Recommendation, &p.Info} {
		if *tier == nil {
			*tier = []string{}
		}
	}
	return json.Marshal(p)
}
