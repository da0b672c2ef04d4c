package telemetry

import (
	"math"
	"math/rand"
	"time"
)

// Generator simulates an AirDarwin flight for bench testing without the
// aircraft. It reacts to the same command vocabulary as the autopilot.
type Generator struct {
	rng *rand.Rand

	mode     string
	armed    bool
	airspeed float64
	altitude float64
	heading  float64
	roll     float64
	pitch    float64
	throttle int
	waypoint int
	battery  float64
	elapsed  time.Duration
}

const (
	cruiseAltitude  = 120.0
	cruiseAirspeed  = 60.0
	climbRate       = 3.0 // m/s
	descentRate     = 2.0 // m/s
	waypointPeriod  = 20 * time.Second
	waypointCount   = 6
	batteryPerMin   = 1.5
	idleThrottle    = 1000
	cruiseThrottle  = 1550
	takeoffThrottle = 1800
)

// NewGenerator creates a generator parked on the ground and disarmed.
func NewGenerator(seed int64) *Generator {
	g := &Generator{rng: rand.New(rand.NewSource(seed))}
	g.Reset()
	return g
}

// Reset returns the aircraft to the ground with a full battery.
func (g *Generator) Reset() {
	g.mode = ModeDisarmed
	g.armed = false
	g.airspeed, g.altitude, g.roll, g.pitch = 0, 0, 0, 0
	g.heading = 90
	g.throttle = idleThrottle
	g.waypoint = 0
	g.battery = 100
	g.elapsed = 0
}

// Command applies an uplink command. It reports false for tokens the
// autopilot does not understand.
func (g *Generator) Command(name string) bool {
	switch name {
	case "motor_on":
		if !g.armed {
			g.armed = true
			g.mode = ModeArmed
		}
	case "motor_off":
		if g.altitude < 1 {
			g.armed = false
			g.mode = ModeDisarmed
			g.airspeed = 0
			g.throttle = idleThrottle
		}
	case "takeoff_start":
		if g.armed && g.mode == ModeArmed {
			g.mode = ModeTakeoff
		}
	case "landing_start":
		if g.mode == ModeCruise || g.mode == ModeTakeoff || g.mode == ModeRTL {
			g.mode = ModeLanding
		}
	case "go_around":
		if g.mode == ModeLanding {
			g.mode = ModeTakeoff
		}
	case "reset":
		g.Reset()
	default:
		return false
	}
	return true
}

// Mode returns the current flight mode.
func (g *Generator) Mode() string { return g.mode }

// Step advances the simulation by dt and returns the resulting frame.
func (g *Generator) Step(dt time.Duration) Frame {
	sec := dt.Seconds()
	g.elapsed += dt
	if g.armed {
		g.battery = math.Max(0, g.battery-batteryPerMin*sec/60)
	}

	switch g.mode {
	case ModeTakeoff:
		g.throttle = takeoffThrottle
		g.airspeed = approach(g.airspeed, cruiseAirspeed, 8*sec)
		if g.airspeed > 35 {
			g.altitude += climbRate * sec
			g.pitch = 8
		}
		if g.altitude >= cruiseAltitude {
			g.altitude = cruiseAltitude
			g.mode = ModeCruise
		}
	case ModeCruise:
		g.throttle = cruiseThrottle
		g.pitch = 0
		g.airspeed = approach(g.airspeed, cruiseAirspeed, 4*sec) + g.noise(1.5)
		g.altitude = approach(g.altitude, cruiseAltitude, 2*sec) + g.noise(0.5)
		g.waypoint = int(g.elapsed/waypointPeriod) % waypointCount
		target := float64(g.waypoint) * 60
		g.roll = clamp((target-g.heading)*0.5, -25, 25)
		g.heading = math.Mod(approach(g.heading, target, 6*sec)+360, 360)
		if g.battery < 20 {
			g.mode = ModeRTL
		}
	case ModeRTL:
		g.throttle = cruiseThrottle
		g.airspeed = approach(g.airspeed, cruiseAirspeed, 4*sec)
		g.roll = clamp((270-g.heading)*0.5, -25, 25)
		g.heading = approach(g.heading, 270, 6*sec)
		if math.Abs(g.heading-270) < 1 {
			g.mode = ModeLanding
		}
	case ModeLanding:
		g.throttle = idleThrottle + 300
		g.roll = 0
		g.pitch = -4
		g.airspeed = approach(g.airspeed, 35, 3*sec)
		g.altitude = math.Max(0, g.altitude-descentRate*sec)
		if g.altitude == 0 {
			g.airspeed = approach(g.airspeed, 0, 10*sec)
			if g.airspeed == 0 {
				g.mode = ModeArmed
				g.pitch = 0
			}
		}
	default:
		g.throttle = idleThrottle
		g.roll, g.pitch = 0, 0
	}

	return g.frame()
}

func (g *Generator) frame() Frame {
	safety := SafetySafe
	switch {
	case g.battery < 15 || math.Abs(g.roll) > 30:
		safety = SafetyCritical
	case g.battery < 25:
		safety = SafetyWarning
	case g.mode == ModeLanding || g.mode == ModeRTL:
		safety = SafetyCaution
	}
	sats := 9 + g.rng.Intn(3)
	return Frame{
		Mode:        g.mode,
		Airspeed:    Float(round1(math.Max(0, g.airspeed))),
		Altitude:    Float(round1(math.Max(0, g.altitude))),
		Heading:     Float(round1(g.heading)),
		Roll:        Float(round1(g.roll)),
		Pitch:       Float(round1(g.pitch)),
		Throttle:    Int(g.throttle),
		Waypoint:    Int(g.waypoint),
		SafetyState: safety,
		GPSOK:       Bool(true),
		IMUOK:       Bool(true),
		LinkOK:      Bool(true),
		Armed:       Bool(g.armed),
		Battery:     Float(round1(g.battery)),
		HDOP:        Float(round1(0.8 + g.rng.Float64()*0.4)),
		Satellites:  Int(sats),
	}
}

func (g *Generator) noise(amp float64) float64 {
	return (g.rng.Float64()*2 - 1) * amp
}

// approach moves cur toward target by at most step.
func approach(cur, target, step float64) float64 {
	if math.Abs(target-cur) <= step {
		return target
	}
	if target > cur {
		return cur + step
	}
	return cur - step
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
