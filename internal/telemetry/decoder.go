package telemetry

import (
	"math"
	"strconv"
	"strings"
)

// Decode parses one summary line of the form
//
//	SUM:<mode>|AS:50.5|Alt:120|Hdg:180|Att:2,-1|Thr:1500|WP:3|Saf:SAFE|Sys:GILM
//
// It returns false when the line lacks the prefix or yields no field at all.
// A field that does not match its grammar is skipped without affecting the
// rest of the line.
func Decode(line string) (Frame, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, Prefix) {
		return Frame{}, false
	}
	var f Frame
	for i, part := range strings.Split(line[len(Prefix):], "|") {
		part = strings.TrimSpace(part)
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			if i == 0 && part != "" {
				f.Mode = part
			}
			continue
		}
		decodeField(&f, key, value)
	}
	if f.Empty() {
		return Frame{}, false
	}
	return f, true
}

func decodeField(f *Frame, key, value string) {
	switch key {
	case "AS":
		f.Airspeed = parseFloat(value)
	case "Alt":
		f.Altitude = parseFloat(value)
	case "Hdg":
		f.Heading = parseFloat(value)
	case "Att":
		rs, ps, ok := strings.Cut(value, ",")
		if !ok || strings.Contains(ps, ",") {
			return
		}
		roll, pitch := parseFloat(rs), parseFloat(ps)
		if roll == nil || pitch == nil {
			return
		}
		f.Roll, f.Pitch = roll, pitch
	case "Thr":
		f.Throttle = parseInt(value)
	case "WP":
		f.Waypoint = parseInt(value)
	case "Saf":
		f.SafetyState = strings.TrimSpace(value)
	case "Sys":
		f.GPSOK = Bool(strings.ContainsRune(value, 'G'))
		f.IMUOK = Bool(strings.ContainsRune(value, 'I'))
		f.LinkOK = Bool(strings.ContainsRune(value, 'L'))
		f.Armed = Bool(strings.ContainsRune(value, 'M'))
	case "Bat":
		f.Battery = parseFloat(value)
	case "HDOP":
		f.HDOP = parseFloat(value)
	case "Sat":
		f.Satellites = parseInt(value)
	}
}

// parseFloat accepts finite values only.
func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}
