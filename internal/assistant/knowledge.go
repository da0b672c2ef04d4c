package assistant

import "strings"

type entry struct {
	key  string
	text string
}

var flightModes = []entry{
	{"ARMED", "Motor running but flight not started. Safe position."},
	{"TAKEOFF", "Takeoff mode. Automatic climb."},
	{"CRUISE", "Normal flight mode. Waypoint navigation active."},
	{"LANDING", "Landing mode. Automatic descent."},
	{"RTL", "Return to Launch - flying back to home."},
	{"EMERGENCY", "Emergency mode. Termination procedure active."},
}

var safetyStates = []entry{
	{"SAFE", "Safe state. Normal operation."},
	{"CAUTION", "Situation requires attention."},
	{"WARNING", "Warning state. Pilot intervention recommended."},
	{"CRITICAL", "Critical state. Immediate intervention required."},
	{"EMERGENCY", "Emergency. Termination procedure may start."},
}

var commands = []entry{
	{"motor_on", "Starts the motor"},
	{"motor_off", "Stops the motor"},
	{"takeoff_start", "Starts the takeoff procedure"},
	{"landing_start", "Starts the landing procedure"},
	{"go_around", "Abort landing and go around"},
	{"reset", "Resets the system"},
}

type topic struct {
	words []string
	text  string
}

var topics = []topic{
	{[]string{"battery", "batt"}, "Battery: below 20% land immediately, below 40% RTL is recommended."},
	{[]string{"gps", "satellit"}, "GPS: at least 6 satellites are required for safe flight. HDOP should stay below 1.8."},
	{[]string{"speed", "airspeed"}, "Speed limits: min 28 km/h (Vs), max 110 km/h (VNE). Optimal: 50-70 km/h."},
	{[]string{"altitude", "height"}, "Altitude: legal limit 350 m. Safe operation between 50 and 200 m."},
	{[]string{"wind"}, "Wind limits: max 25 km/h overall, 15 km/h crosswind."},
	{[]string{"emergency", "critical"}, "In an emergency: stop the motor, engage RTL, take manual control."},
}

// DefaultAnswer is returned when no keyword matches.
const DefaultAnswer = "Ask a more specific question about AirDarwin. Examples: battery, gps, speed, altitude"

// Fallback answers q from the built-in knowledge table. Flight modes are
// checked first, then safety states, commands and general topics.
func Fallback(q string) string {
	lower := strings.ToLower(q)
	for _, e := range flightModes {
		if strings.Contains(lower, strings.ToLower(e.key)) {
			return e.key + ": " + e.text
		}
	}
	for _, e := range safetyStates {
		if strings.Contains(lower, strings.ToLower(e.key)) {
			return e.key + ": " + e.text
		}
	}
	for _, e := range commands {
		if strings.Contains(lower, e.key) {
			return e.key + ": " + e.text
		}
	}
	for _, t := range topics {
		for _, w := range t.words {
			if strings.Contains(lower, w) {
				return t.text
			}
		}
	}
	return DefaultAnswer
}
