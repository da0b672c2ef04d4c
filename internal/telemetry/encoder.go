package telemetry

import (
	"strconv"
	"strings"
)

// Encode renders f as a summary line without the trailing newline.
// Fields are written in the order the autopilot firmware uses.
func Encode(f Frame) string {
	parts := make([]string, 0, 12)
	if f.Mode != "" {
		parts = append(parts, f.Mode)
	}
	if f.Airspeed != nil {
		parts = append(parts, "AS:"+formatFloat(*f.Airspeed))
	}
	if f.Altitude != nil {
		parts = append(parts, "Alt:"+formatFloat(*f.Altitude))
	}
	if f.Heading != nil {
		parts = append(parts, "Hdg:"+formatFloat(*f.Heading))
	}
	if f.Roll != nil && f.Pitch != nil {
		parts = append(parts, "Att:"+formatFloat(*f.Roll)+","+formatFloat(*f.Pitch))
	}
	if f.Throttle != nil {
		parts = append(parts, "Thr:"+strconv.Itoa(*f.Throttle))
	}
	if f.Waypoint != nil {
		parts = append(parts, "WP:"+strconv.Itoa(*f.Waypoint))
	}
	if f.SafetyState != "" {
		parts = append(parts, "Saf:"+f.SafetyState)
	}
	if f.hasFlags() {
		parts = append(parts, "Sys:"+flags(f))
	}
	if f.Battery != nil {
		parts = append(parts, "Bat:"+formatFloat(*f.Battery))
	}
	if f.HDOP != nil {
		parts = append(parts, "HDOP:"+formatFloat(*f.HDOP))
	}
	if f.Satellites != nil {
		parts = append(parts, "Sat:"+strconv.Itoa(*f.Satellites))
	}
	return Prefix + strings.Join(parts, "|")
}

func flags(f Frame) string {
	var b strings.Builder
	if f.GPSOK != nil && *f.GPSOK {
		b.WriteByte('G')
	}
	if f.IMUOK != nil && *f.IMUOK {
		b.WriteByte('I')
	}
	if f.LinkOK != nil && *f.LinkOK {
		b.WriteByte('L')
	}
	if f.Armed != nil && *f.Armed {
		b.WriteByte('M')
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
