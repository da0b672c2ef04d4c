// Package safety evaluates flight state against the AirDarwin flight envelope.
package safety

// Envelope limits of the AirDarwin airframe.
const (
	StallSpeed        = 28.0  // km/h
	StallWarningSpeed = 33.0  // km/h
	NeverExceedSpeed  = 110.0 // km/h
	HighSpeedFraction = 0.9
	MaxBankDeg        = 30.0
	MinSatellites     = 6
	CriticalSats      = 4
	MaxHDOP           = 1.8
	BatteryCritical   = 15.0 // percent
	BatteryLow        = 25.0 // percent
	AltitudeCeiling   = 350.0
	GroundProximity   = 3.0
	MaxCrosswind      = 15.0 // km/h

	rtlBattery      = 40.0
	rtlAltitude     = 80.0
	climbAltitude   = 30.0
	autoLandWind    = 20.0
	optimalCruise   = 60.0
	efficientMargin = 80.0
	inefficient     = 40.0
)
