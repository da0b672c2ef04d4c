package safety

import (
	"math"
	"sync"
	"time"

	"airdarwin-gcs/internal/telemetry"
)

// SystemMetrics are the descriptive link and onboard computer figures shown
// in the info tier.
type SystemMetrics struct {
	RSSI        int     `json:"rssi_dbm"`
	Temperature float64 `json:"temperature_c"`
	CPULoad     int     `json:"cpu_pct"`
	MemoryUsage int     `json:"memory_pct"`
}

// SystemSource samples system metrics. Real instrumentation can replace the
// simulated source without touching the alerting tiers.
type SystemSource interface {
	Sample(state telemetry.FlightState, now time.Time) SystemMetrics
}

const (
	baseRSSI    = -45
	minRSSI     = -90
	maxRSSI     = -30
	defaultTemp = 25.0
)

// SimulatedSystem derives plausible figures from elapsed time and attitude.
type SimulatedSystem struct {
	mu    sync.Mutex
	start time.Time
	last  SystemMetrics
}

// NewSimulatedSystem starts the simulated clock at start.
func NewSimulatedSystem(start time.Time) *SimulatedSystem {
	return &SimulatedSystem{
		start: start,
		last:  SystemMetrics{RSSI: baseRSSI, Temperature: defaultTemp, CPULoad: 15, MemoryUsage: 45},
	}
}

// Sample implements SystemSource. Figures only move while armed and hold
// their last value otherwise.
func (s *SimulatedSystem) Sample(state telemetry.FlightState, now time.Time) SystemMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !state.Armed {
		return s.last
	}
	t := now.Sub(s.start).Seconds() * 0.1
	s.last.CPULoad = 25 + int(10*math.Sin(t))
	s.last.MemoryUsage = 50 + int(15*math.Sin(t*0.7))
	rssi := int(baseRSSI + state.Altitude*0.1 - math.Abs(state.Roll)*0.3)
	s.last.RSSI = max(minRSSI, min(maxRSSI, rssi))
	return s.last
}
