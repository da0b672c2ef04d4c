package telemetry

import (
	"math"
	"testing"
	"time"
)

func mustDecode(t *testing.T, line string) Frame {
	t.Helper()
	f, ok := Decode(line)
	if !ok {
		t.Fatalf("Decode(%q) failed", line)
	}
	return f
}

func TestNewFlightStateDefaults(t *testing.T) {
	s := NewFlightState(DefaultEnvironment())
	if s.Mode != ModeNoData || s.SafetyState != SafetyUnknown || s.Throttle != 1000 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.Battery != nil || s.HDOP != nil || s.Satellites != nil {
		t.Fatalf("battery, hdop and satellites must start unknown")
	}
	if s.Env.WindDirectionDeg != 270 || s.Env.MassKG != 5 {
		t.Fatalf("unexpected environment: %+v", s.Env)
	}
}

func TestApplyCarriesForward(t *testing.T) {
	s := NewFlightState(DefaultEnvironment())
	t0 := time.Unix(1000, 0)
	s.Apply(mustDecode(t, "SUM:CRUISE|AS:55|Alt:100|Hdg:90|Att:3,1|Thr:1500|WP:2|Saf:SAFE|Sys:GILM"), t0)
	s.Apply(mustDecode(t, "SUM:AS:57"), t0.Add(time.Second))

	if s.Mode != "CRUISE" || s.Altitude != 100 || s.Heading != 90 || s.Waypoint != 2 {
		t.Fatalf("fields not carried forward: %+v", s)
	}
	if s.Airspeed != 57 {
		t.Fatalf("airspeed = %v, want 57", s.Airspeed)
	}
	if !s.Armed || !s.GPSOK || s.SafetyState != "SAFE" {
		t.Fatalf("flags not carried forward: %+v", s)
	}
	if s.Frames != 2 {
		t.Fatalf("frames = %d, want 2", s.Frames)
	}
}

func TestApplySatellitesFromGPSFlag(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"SUM:CRUISE|Sys:GIL", 8},
		{"SUM:CRUISE|Sys:IL", 3},
		{"SUM:CRUISE|Sys:IL|Sat:12", 12},
	}
	for _, tt := range tests {
		s := NewFlightState(DefaultEnvironment())
		s.Apply(mustDecode(t, tt.line), time.Now())
		if s.Satellites == nil || *s.Satellites != tt.want {
			t.Fatalf("%s: satellites = %v, want %d", tt.line, s.Satellites, tt.want)
		}
	}

	s := NewFlightState(DefaultEnvironment())
	s.Apply(mustDecode(t, "SUM:CRUISE|AS:40"), time.Now())
	if s.Satellites != nil {
		t.Fatalf("satellites must stay unknown without GPS information")
	}
}

func TestApplySpeedExtremesOnlyWhileArmed(t *testing.T) {
	s := NewFlightState(DefaultEnvironment())
	now := time.Unix(0, 0)
	step := func(line string) {
		now = now.Add(time.Second)
		s.Apply(mustDecode(t, line), now)
	}

	step("SUM:DISARMED|AS:80|Sys:G")
	if s.MaxSpeed != 0 || s.MinSpeed != 0 {
		t.Fatalf("extremes changed while disarmed: max %v min %v", s.MaxSpeed, s.MinSpeed)
	}
	step("SUM:ARMED|AS:3|Sys:GM")
	if s.MinSpeed != 0 {
		t.Fatalf("airspeed under noise floor recorded as min: %v", s.MinSpeed)
	}
	step("SUM:CRUISE|AS:45|Sys:GM")
	step("SUM:CRUISE|AS:62|Sys:GM")
	step("SUM:CRUISE|AS:38|Sys:GM")
	if s.MaxSpeed != 62 || s.MinSpeed != 38 {
		t.Fatalf("max %v min %v, want 62 38", s.MaxSpeed, s.MinSpeed)
	}
}

func TestApplyDerivedPhysicsHoldWhileDisarmed(t *testing.T) {
	env := Environment{MassKG: 5, WindDirectionDeg: 270, WindSpeedKMH: 20}
	s := NewFlightState(env)
	t0 := time.Unix(0, 0)
	s.Apply(mustDecode(t, "SUM:CRUISE|AS:36|Alt:100|Hdg:0|Sys:GM"), t0)

	// heading 0 against wind from 270: angle 270 degrees.
	if math.Abs(s.Crosswind-(-20)) > 1e-9 {
		t.Fatalf("crosswind = %v, want -20", s.Crosswind)
	}
	if math.Abs(s.Headwind) > 1e-9 {
		t.Fatalf("headwind = %v, want 0", s.Headwind)
	}
	if math.Abs(s.GroundSpeed-36) > 1e-9 {
		t.Fatalf("ground speed = %v, want 36", s.GroundSpeed)
	}
	wantEnergy := 0.5*5*10*10 + 5*9.81*100
	if math.Abs(s.Energy-wantEnergy) > 1e-9 {
		t.Fatalf("energy = %v, want %v", s.Energy, wantEnergy)
	}

	held := s.Snapshot()
	s.Apply(mustDecode(t, "SUM:DISARMED|AS:0|Alt:0|Hdg:270|Sys:G"), t0.Add(time.Second))
	if s.Crosswind != held.Crosswind || s.Energy != held.Energy || s.GroundSpeed != held.GroundSpeed {
		t.Fatalf("derived physics reset while disarmed")
	}
}

func TestApplyHeadwindReducesGroundSpeed(t *testing.T) {
	s := NewFlightState(Environment{MassKG: 5, WindDirectionDeg: 270, WindSpeedKMH: 50})
	s.Apply(mustDecode(t, "SUM:CRUISE|AS:30|Hdg:270|Sys:M"), time.Now())
	if s.GroundSpeed != 0 {
		t.Fatalf("ground speed = %v, want clamp to 0", s.GroundSpeed)
	}
}

func TestApplyAccumulatesFlightTime(t *testing.T) {
	s := NewFlightState(DefaultEnvironment())
	t0 := time.Unix(0, 0)
	s.Apply(mustDecode(t, "SUM:CRUISE|AS:60|Alt:50|Sys:GM"), t0)
	s.Apply(mustDecode(t, "SUM:CRUISE|AS:60|Alt:80|Sys:GM"), t0.Add(30*time.Minute/1800))
	s.Apply(mustDecode(t, "SUM:CRUISE|AS:60|Alt:70|Sys:GM"), t0.Add(2*time.Second))
	// Outage longer than the gap limit is not credited.
	s.Apply(mustDecode(t, "SUM:CRUISE|AS:60|Alt:70|Sys:GM"), t0.Add(time.Minute))

	if s.FlightTime != 2*time.Second {
		t.Fatalf("flight time = %v, want 2s", s.FlightTime)
	}
	wantKM := 60 * (2 * time.Second).Hours()
	if math.Abs(s.DistanceTraveled-wantKM) > 1e-9 {
		t.Fatalf("distance = %v, want %v", s.DistanceTraveled, wantKM)
	}
	if math.Abs(s.AverageSpeed-60) > 1e-6 {
		t.Fatalf("average speed = %v, want 60", s.AverageSpeed)
	}
	if s.MaxAltitude != 80 {
		t.Fatalf("max altitude = %v, want 80", s.MaxAltitude)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := NewFlightState(DefaultEnvironment())
	s.Apply(mustDecode(t, "SUM:CRUISE|Bat:80"), time.Now())
	snap := s.Snapshot()
	s.Apply(mustDecode(t, "SUM:CRUISE|Bat:70"), time.Now())
	if *snap.Battery != 80 {
		t.Fatalf("snapshot battery = %v, want 80", *snap.Battery)
	}
}
