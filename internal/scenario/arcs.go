package scenario

import "airdarwin-gcs/internal/telemetry"

// BuiltIn returns predefined flights for the emulator.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"circuit": {
			Name:        "Circuit",
			Description: "Arm, climb out, fly the waypoint loop for two minutes and land.",
			Phases: []Phase{
				{
					Name:        "preflight",
					Description: "Motor armed on the ground.",
					Commands:    []string{"motor_on"},
					Triggers:    []Trigger{{Event: EventTimeElapsed, Value: 5, Next: "takeoff"}},
				},
				{
					Name:        "takeoff",
					Description: "Full throttle climb to cruise altitude.",
					Commands:    []string{"takeoff_start"},
					Triggers:    []Trigger{{Event: EventMode, Mode: telemetry.ModeCruise, Next: "cruise"}},
				},
				{
					Name:        "cruise",
					Description: "Waypoint navigation.",
					Triggers:    []Trigger{{Event: EventTimeElapsed, Value: 120, Next: "landing"}},
				},
				{
					Name:        "landing",
					Description: "Descend and roll out.",
					Commands:    []string{"landing_start"},
					Triggers:    []Trigger{{Event: EventMode, Mode: telemetry.ModeArmed, Next: "shutdown"}},
				},
				{
					Name:        "shutdown",
					Description: "Motor off after rollout.",
					Commands:    []string{"motor_off"},
				},
			},
		},
		"go-around": {
			Name:        "Go Around",
			Description: "Abort the first approach below 40 m and land on the second.",
			Phases: []Phase{
				{
					Name:     "preflight",
					Commands: []string{"motor_on"},
					Triggers: []Trigger{{Event: EventTimeElapsed, Value: 3, Next: "takeoff"}},
				},
				{
					Name:     "takeoff",
					Commands: []string{"takeoff_start"},
					Triggers: []Trigger{{Event: EventMode, Mode: telemetry.ModeCruise, Next: "approach"}},
				},
				{
					Name:     "approach",
					Commands: []string{"landing_start"},
					Triggers: []Trigger{{Event: EventTimeElapsed, Value: 10, Next: "abort"}},
				},
				{
					Name:        "abort",
					Description: "Balked landing.",
					Commands:    []string{"go_around"},
					Triggers:    []Trigger{{Event: EventMode, Mode: telemetry.ModeCruise, Next: "final"}},
				},
				{
					Name:     "final",
					Commands: []string{"landing_start"},
				},
			},
		},
		"low-battery": {
			Name:        "Low Battery",
			Description: "Cruise until the autopilot turns for home on low battery.",
			Phases: []Phase{
				{
					Name:     "preflight",
					Commands: []string{"motor_on", "takeoff_start"},
					Triggers: []Trigger{{Event: EventMode, Mode: telemetry.ModeRTL, Next: "rtl"}},
				},
				{
					Name:        "rtl",
					Description: "Autopilot returns and lands on its own.",
				},
			},
		},
	}
}
