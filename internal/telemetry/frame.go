package telemetry

// Prefix starts every AirDarwin summary line.
const Prefix = "SUM:"

// Frame is one decoded telemetry line. Nil pointers and empty strings mark
// fields the line did not carry.
type Frame struct {
	Mode        string   `json:"mode,omitempty"`
	Airspeed    *float64 `json:"airspeed,omitempty"`
	Altitude    *float64 `json:"altitude,omitempty"`
	Heading     *float64 `json:"heading,omitempty"`
	Roll        *float64 `json:"roll,omitempty"`
	Pitch       *float64 `json:"pitch,omitempty"`
	Throttle    *int     `json:"throttle,omitempty"`
	Waypoint    *int     `json:"waypoint,omitempty"`
	SafetyState string   `json:"safety_state,omitempty"`
	GPSOK       *bool    `json:"gps_ok,omitempty"`
	IMUOK       *bool    `json:"imu_ok,omitempty"`
	LinkOK      *bool    `json:"link_ok,omitempty"`
	Armed       *bool    `json:"motor_armed,omitempty"`

	// Newer firmware revisions append these.
	Battery    *float64 `json:"battery,omitempty"`
	HDOP       *float64 `json:"hdop,omitempty"`
	Satellites *int     `json:"satellites,omitempty"`
}

// Empty reports whether no field is populated.
func (f Frame) Empty() bool {
	return f.Mode == "" && f.Airspeed == nil && f.Altitude == nil && f.Heading == nil &&
		f.Roll == nil && f.Pitch == nil && f.Throttle == nil && f.Waypoint == nil &&
		f.SafetyState == "" && f.GPSOK == nil && f.IMUOK == nil && f.LinkOK == nil &&
		f.Armed == nil && f.Battery == nil && f.HDOP == nil && f.Satellites == nil
}

// hasFlags reports whether the line carried a Sys field.
func (f Frame) hasFlags() bool {
	return f.GPSOK != nil || f.IMUOK != nil || f.LinkOK != nil || f.Armed != nil
}

// Flight modes reported by the autopilot.
const (
	ModeNoData    = "NO DATA"
	ModeArmed     = "ARMED"
	ModeTakeoff   = "TAKEOFF"
	ModeCruise    = "CRUISE"
	ModeLanding   = "LANDING"
	ModeRTL       = "RTL"
	ModeEmergency = "EMERGENCY"
	ModeDisarmed  = "DISARMED"
)

// Safety states reported by the autopilot.
const (
	SafetyUnknown   = "UNKNOWN"
	SafetySafe      = "SAFE"
	SafetyCaution   = "CAUTION"
	SafetyWarning   = "WARNING"
	SafetyCritical  = "CRITICAL"
	SafetyEmergency = "EMERGENCY"
)

// Float returns a pointer to v. Handy when building frames by hand.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
