package safety

import (
	"fmt"
	"math"
	"time"

	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/telemetry"
)

// NoTelemetryAlert is the only line reported while telemetry is stale.
const NoTelemetryAlert = "NO TELEMETRY DATA - Check connection"

type subsystem int

const (
	subBattery subsystem = iota
	subGPS
	subAttitude
	subAirspeed
)

// Analyzer turns a flight state snapshot into a Report. The critical,
// warning and recommendation tiers depend only on the snapshot; the info
// tier also consults the system source and the clock.
type Analyzer struct {
	system SystemSource
	now    func() time.Time
}

// NewAnalyzer returns an analyzer. A nil system source omits system status
// lines.
func NewAnalyzer(system SystemSource) *Analyzer {
	return &Analyzer{system: system, now: time.Now}
}

// Evaluate analyses s given the current link status.
func (a *Analyzer) Evaluate(s telemetry.FlightState, status link.Status) Report {
	r := Report{GeneratedAt: a.now()}
	if status == link.StatusNoData {
		r.Critical = []string{NoTelemetryAlert}
		return r
	}

	fired := make(map[subsystem]bool)
	r.Critical = criticalAlerts(s, fired)
	r.Warning = warnings(s, fired)
	r.Recommendation = recommendations(s, len(r.Critical) > 0)
	r.Info = performanceTips(s)
	if a.system != nil {
		r.Info = append(r.Info, systemStatus(a.system.Sample(s, r.GeneratedAt))...)
	}
	return r
}

func criticalAlerts(s telemetry.FlightState, fired map[subsystem]bool) []string {
	var out []string
	if s.Battery != nil && *s.Battery < BatteryCritical {
		out = append(out, fmt.Sprintf("CRITICAL BATTERY: %.0f%% (%dmin left) - LAND NOW", *s.Battery, int(*s.Battery*0.3)))
		fired[subBattery] = true
	}
	if s.Satellites != nil && *s.Satellites < CriticalSats {
		out = append(out, fmt.Sprintf("GPS CRITICAL: %d sats - Manual control only", *s.Satellites))
		fired[subGPS] = true
	}
	if math.Abs(s.Roll) > MaxBankDeg {
		out = append(out, fmt.Sprintf("ATTITUDE CRITICAL: Roll %.0f deg exceeds limit", s.Roll))
		fired[subAttitude] = true
	}
	if s.Armed && s.Airspeed <= StallSpeed {
		out = append(out, fmt.Sprintf("STALL CRITICAL: %.0f km/h below Vs - Recovery needed", s.Airspeed))
		fired[subAirspeed] = true
	}
	return out
}

func warnings(s telemetry.FlightState, fired map[subsystem]bool) []string {
	var out []string
	if s.Battery != nil && *s.Battery < BatteryLow && !fired[subBattery] {
		out = append(out, fmt.Sprintf("LOW BATTERY: %.0f%% (%dmin) - Plan landing", *s.Battery, int(*s.Battery*0.4)))
	}
	if s.Satellites != nil && *s.Satellites < MinSatellites && !fired[subGPS] {
		out = append(out, fmt.Sprintf("GPS LIMITED: %d sats - Navigation degraded", *s.Satellites))
	}
	if s.HDOP != nil && *s.HDOP > MaxHDOP {
		out = append(out, fmt.Sprintf("GPS ACCURACY LOW: HDOP %.1f", *s.HDOP))
	}
	switch {
	case s.Armed && s.Airspeed < StallWarningSpeed:
		if !fired[subAirspeed] {
			out = append(out, "SPEED LOW: Approaching stall - Increase throttle")
		}
	case s.Airspeed > NeverExceedSpeed*HighSpeedFraction:
		out = append(out, "SPEED HIGH: Approaching VNE - Reduce throttle")
	}
	switch {
	case s.Altitude > AltitudeCeiling:
		out = append(out, "HIGH ALTITUDE: Check local regulations")
	case s.Armed && s.Altitude < GroundProximity:
		out = append(out, "VERY LOW: Ground collision risk")
	}
	if math.Abs(s.Crosswind) > MaxCrosswind {
		out = append(out, fmt.Sprintf("STRONG CROSSWIND: %.0f km/h", s.Crosswind))
	}
	return out
}

// recommendations returns at most one suggestion; the first matching rule wins.
func recommendations(s telemetry.FlightState, critical bool) []string {
	switch {
	case s.Mode == telemetry.ModeArmed && !critical:
		return []string{"Systems ready - Safe for takeoff"}
	case s.Mode == telemetry.ModeTakeoff && s.Altitude > climbAltitude:
		return []string{"Good climb - Consider waypoint navigation"}
	case s.Battery != nil && *s.Battery < rtlBattery && s.Altitude > rtlAltitude:
		return []string{"Battery <40% - Consider RTL mode"}
	case s.Env.WindSpeedKMH > autoLandWind:
		return []string{"High wind - Use auto-land for safer landing"}
	}
	return nil
}

func performanceTips(s telemetry.FlightState) []string {
	if !s.Armed {
		return nil
	}
	var out []string
	if s.Battery != nil && s.FlightTime > 0 {
		hours := math.Max(0.01, s.FlightTime.Hours())
		efficiency := (s.DistanceTraveled / hours) / math.Max(1, 100-*s.Battery) * 100
		switch {
		case efficiency > efficientMargin:
			out = append(out, "EXCELLENT flight efficiency")
		case efficiency < inefficient:
			out = append(out, "TIP: Smoother controls improve efficiency")
		}
	}
	if s.AverageSpeed > 0 {
		ratio := s.AverageSpeed / optimalCruise * 100
		switch {
		case ratio > 90:
			out = append(out, "Optimal cruise speed maintained")
		case ratio < 50:
			out = append(out, "TIP: 50-70 km/h is most efficient")
		}
	}
	return out
}

func systemStatus(m SystemMetrics) []string {
	signal := "WEAK"
	switch {
	case m.RSSI > -40:
		signal = "EXCELLENT"
	case m.RSSI > -60:
		signal = "GOOD"
	}
	temp := "EXTREME"
	if m.Temperature > 10 && m.Temperature < 40 {
		temp = "NORMAL"
	}
	cpu := "NORMAL"
	if m.CPULoad >= 80 {
		cpu = "HIGH"
	}
	mem := "NORMAL"
	if m.MemoryUsage >= 85 {
		mem = "HIGH"
	}
	return []string{
		fmt.Sprintf("Signal: %s (%d dBm)", signal, m.RSSI),
		fmt.Sprintf("Temp: %s (%.0fC)", temp, m.Temperature),
		fmt.Sprintf("CPU: %s (%d%%)", cpu, m.CPULoad),
		fmt.Sprintf("Memory: %s (%d%%)", mem, m.MemoryUsage),
	}
}
