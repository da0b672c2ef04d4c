// Package scenario scripts emulated flights: ordered phases, each sending
// uplink commands on entry and moving on when a trigger fires.
package scenario

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"airdarwin-gcs/internal/command"
	"airdarwin-gcs/internal/telemetry"
)

// Scenario defines a scripted flight with ordered phases.
type Scenario struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Phases      []Phase `yaml:"phases"`
}

// Phase is one stage of the flight.
type Phase struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Commands    []string  `yaml:"commands,omitempty"`
	Triggers    []Trigger `yaml:"triggers,omitempty"`
}

// Trigger moves the scenario to another phase. Numeric events fire once the
// observed value reaches Value; the mode event fires on an exact match.
type Trigger struct {
	Event string `yaml:"event"`
	Value int    `yaml:"value,omitempty"`
	Mode  string `yaml:"mode,omitempty"`
	Next  string `yaml:"next"`
}

// Trigger events.
const (
	EventTimeElapsed = "time_elapsed"
	EventAltitude    = "altitude"
	EventWaypoint    = "waypoint"
	EventMode        = "mode"
)

// Event is an observation that may advance the scenario.
type Event struct {
	Type  string
	Value int
	Mode  string
}

// Load reads and validates a YAML scenario definition.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks commands against the uplink vocabulary and that every
// trigger names an existing phase.
func (s *Scenario) Validate() error {
	if len(s.Phases) == 0 {
		return fmt.Errorf("scenario %q has no phases", s.Name)
	}
	names := make(map[string]bool, len(s.Phases))
	for _, p := range s.Phases {
		names[p.Name] = true
	}
	for _, p := range s.Phases {
		for _, c := range p.Commands {
			if _, ok := command.Lookup(c); !ok {
				return fmt.Errorf("phase %s: %w: %s", p.Name, command.ErrUnknownCommand, c)
			}
		}
		for _, tr := range p.Triggers {
			if !names[tr.Next] {
				return fmt.Errorf("phase %s: trigger to unknown phase %q", p.Name, tr.Next)
			}
			switch tr.Event {
			case EventTimeElapsed, EventAltitude, EventWaypoint, EventMode:
			default:
				return fmt.Errorf("phase %s: unknown trigger event %q", p.Name, tr.Event)
			}
		}
	}
	return nil
}

// NextPhase returns the name of the next phase given the current phase and event.
// If no trigger matches, ok will be false.
func (s *Scenario) NextPhase(current string, ev Event) (next string, ok bool) {
	for _, p := range s.Phases {
		if p.Name != current {
			continue
		}
		for _, tr := range p.Triggers {
			if tr.Event != ev.Type {
				continue
			}
			if ev.Type == EventMode {
				if ev.Mode == tr.Mode {
					return tr.Next, true
				}
				continue
			}
			if ev.Value >= tr.Value {
				return tr.Next, true
			}
		}
	}
	return "", false
}

func (s *Scenario) phase(name string) (Phase, bool) {
	for _, p := range s.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return Phase{}, false
}

// Runner tracks progress through a scenario.
type Runner struct {
	s     *Scenario
	phase string
	since time.Duration
}

// NewRunner positions a runner before the first phase.
func NewRunner(s *Scenario) *Runner {
	return &Runner{s: s}
}

// Phase returns the current phase name, empty before Start.
func (r *Runner) Phase() string { return r.phase }

// Start enters the first phase and returns its commands.
func (r *Runner) Start() []string {
	r.phase = r.s.Phases[0].Name
	r.since = 0
	return r.s.Phases[0].Commands
}

// Step accounts dt of flight ending in frame f. When a trigger fires it
// enters the next phase and returns that phase's commands. At most one
// transition happens per step.
func (r *Runner) Step(dt time.Duration, f telemetry.Frame) []string {
	if r.phase == "" {
		return nil
	}
	r.since += dt
	events := []Event{{Type: EventTimeElapsed, Value: int(r.since.Seconds())}}
	if f.Altitude != nil {
		events = append(events, Event{Type: EventAltitude, Value: int(*f.Altitude)})
	}
	if f.Waypoint != nil {
		events = append(events, Event{Type: EventWaypoint, Value: *f.Waypoint})
	}
	if f.Mode != "" {
		events = append(events, Event{Type: EventMode, Mode: f.Mode})
	}
	for _, ev := range events {
		next, ok := r.s.NextPhase(r.phase, ev)
		if !ok {
			continue
		}
		p, _ := r.s.phase(next)
		r.phase = next
		r.since = 0
		return p.Commands
	}
	return nil
}
