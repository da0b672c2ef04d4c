package telemetry

import (
	"math"
	"time"
)

const (
	// speedNoiseFloor excludes taxi and ground noise from min/max tracking.
	speedNoiseFloor = 5.0
	// maxAccumulateGap bounds the interval credited to flight time and distance.
	maxAccumulateGap = 10 * time.Second
	gravity          = 9.81

	gpsOKSatellites   = 8
	gpsLostSatellites = 3
)

// Environment holds the configured airframe and wind parameters used for
// derived physics.
type Environment struct {
	MassKG           float64 `json:"mass_kg"`
	WindDirectionDeg float64 `json:"wind_direction_deg"`
	WindSpeedKMH     float64 `json:"wind_speed_kmh"`
}

// DefaultEnvironment is a 5 kg airframe with calm westerly wind.
func DefaultEnvironment() Environment {
	return Environment{MassKG: 5, WindDirectionDeg: 270}
}

// FlightState is the latest known vehicle state. It is updated only through
// Apply and is not safe for concurrent use; share Snapshot copies instead.
type FlightState struct {
	Mode        string  `json:"mode"`
	Airspeed    float64 `json:"airspeed"`
	Altitude    float64 `json:"altitude"`
	Heading     float64 `json:"heading"`
	Roll        float64 `json:"roll"`
	Pitch       float64 `json:"pitch"`
	Throttle    int     `json:"throttle"`
	Waypoint    int     `json:"waypoint"`
	SafetyState string  `json:"safety_state"`
	GPSOK       bool    `json:"gps_ok"`
	IMUOK       bool    `json:"imu_ok"`
	LinkOK      bool    `json:"link_ok"`
	Armed       bool    `json:"armed"`

	// Unknown until first reported.
	Battery    *float64 `json:"battery,omitempty"`
	HDOP       *float64 `json:"hdop,omitempty"`
	Satellites *int     `json:"satellites,omitempty"`

	MaxSpeed         float64       `json:"max_speed"`
	MinSpeed         float64       `json:"min_speed"`
	MaxAltitude      float64       `json:"max_altitude"`
	DistanceTraveled float64       `json:"distance_km"`
	FlightTime       time.Duration `json:"flight_time"`
	AverageSpeed     float64       `json:"average_speed"`

	Crosswind   float64 `json:"crosswind"`
	Headwind    float64 `json:"headwind"`
	GroundSpeed float64 `json:"ground_speed"`
	Energy      float64 `json:"energy_j"`

	Env       Environment `json:"environment"`
	Frames    uint64      `json:"frames"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewFlightState returns the pre-telemetry state.
func NewFlightState(env Environment) *FlightState {
	return &FlightState{
		Mode:        ModeNoData,
		SafetyState: SafetyUnknown,
		Throttle:    1000,
		Env:         env,
	}
}

// Apply folds f into the state. Fields f leaves unset keep their previous
// values. at is the receive time of the line.
func (s *FlightState) Apply(f Frame, at time.Time) {
	if f.Mode != "" {
		s.Mode = f.Mode
	}
	setFloat(&s.Airspeed, f.Airspeed)
	setFloat(&s.Altitude, f.Altitude)
	setFloat(&s.Heading, f.Heading)
	setFloat(&s.Roll, f.Roll)
	setFloat(&s.Pitch, f.Pitch)
	setInt(&s.Throttle, f.Throttle)
	setInt(&s.Waypoint, f.Waypoint)
	if f.SafetyState != "" {
		s.SafetyState = f.SafetyState
	}
	setBool(&s.GPSOK, f.GPSOK)
	setBool(&s.IMUOK, f.IMUOK)
	setBool(&s.LinkOK, f.LinkOK)
	setBool(&s.Armed, f.Armed)

	if f.Battery != nil {
		s.Battery = Float(*f.Battery)
	}
	if f.HDOP != nil {
		s.HDOP = Float(*f.HDOP)
	}
	switch {
	case f.Satellites != nil:
		s.Satellites = Int(*f.Satellites)
	case f.GPSOK != nil && *f.GPSOK:
		s.Satellites = Int(gpsOKSatellites)
	case f.GPSOK != nil:
		s.Satellites = Int(gpsLostSatellites)
	}

	if s.Armed {
		s.updatePerformance()
		s.accumulate(at)
	}
	s.Frames++
	s.UpdatedAt = at
}

func (s *FlightState) updatePerformance() {
	if s.Airspeed > speedNoiseFloor {
		s.MaxSpeed = math.Max(s.MaxSpeed, s.Airspeed)
		if s.MinSpeed == 0 || s.Airspeed < s.MinSpeed {
			s.MinSpeed = s.Airspeed
		}
	}
	s.MaxAltitude = math.Max(s.MaxAltitude, s.Altitude)

	angle := math.Abs(s.Heading-s.Env.WindDirectionDeg) * math.Pi / 180
	s.Crosswind = s.Env.WindSpeedKMH * math.Sin(angle)
	s.Headwind = s.Env.WindSpeedKMH * math.Cos(angle)
	s.GroundSpeed = math.Max(0, s.Airspeed-s.Headwind)

	v := s.Airspeed / 3.6
	s.Energy = 0.5*s.Env.MassKG*v*v + s.Env.MassKG*gravity*s.Altitude
}

// accumulate credits the interval since the previous frame to flight time
// and distance. Intervals longer than maxAccumulateGap are link outages.
func (s *FlightState) accumulate(at time.Time) {
	if s.UpdatedAt.IsZero() {
		return
	}
	dt := at.Sub(s.UpdatedAt)
	if dt <= 0 || dt > maxAccumulateGap {
		return
	}
	s.FlightTime += dt
	s.DistanceTraveled += s.GroundSpeed * dt.Hours()
	if h := s.FlightTime.Hours(); h > 0 {
		s.AverageSpeed = s.DistanceTraveled / h
	}
}

// Snapshot returns a deep copy of the state.
func (s *FlightState) Snapshot() FlightState {
	c := *s
	if s.Battery != nil {
		c.Battery = Float(*s.Battery)
	}
	if s.HDOP != nil {
		c.HDOP = Float(*s.HDOP)
	}
	if s.Satellites != nil {
		c.Satellites = Int(*s.Satellites)
	}
	return c
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
