// Package console interprets operator text input: link control, uplink
// commands and questions for the flight assistant.
package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"airdarwin-gcs/internal/assistant"
	"airdarwin-gcs/internal/command"
	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/station"
	"airdarwin-gcs/internal/telemetry"
)

// Controller is the station surface the console drives.
type Controller interface {
	Connect(ctx context.Context, device string) error
	Disconnect(ctx context.Context) error
	SendCommand(ctx context.Context, name string) error
	Link() station.LinkInfo
	State() telemetry.FlightState
}

// Asker answers free-text questions.
type Asker interface {
	Ask(ctx context.Context, question string) string
}

var questionWords = []string{"what", "how", "why", "which", "when", "where", "who", "is", "are", "can", "should", "does", "do"}

// Console routes one line of input at a time.
type Console struct {
	ctl           Controller
	asker         Asker
	defaultDevice string
}

// New returns a console. asker may be nil, in which case questions are
// answered from the built-in knowledge table.
func New(ctl Controller, asker Asker, defaultDevice string) *Console {
	return &Console{ctl: ctl, asker: asker, defaultDevice: defaultDevice}
}

// Interpret handles input and returns the reply shown to the operator.
func (c *Console) Interpret(ctx context.Context, input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	fields := strings.Fields(input)
	verb := strings.ToLower(fields[0])
	if _, ok := command.Lookup(verb); ok && len(fields) == 1 {
		return c.send(ctx, verb)
	}
	switch verb {
	case "connect":
		device := c.defaultDevice
		if len(fields) > 1 {
			device = fields[1]
		}
		return c.connect(ctx, device)
	case "disconnect":
		if err := c.ctl.Disconnect(ctx); err != nil {
			return fmt.Sprintf("Disconnect failed: %v", err)
		}
		return "Disconnected from AirDarwin"
	case "status":
		return c.status()
	case "help":
		return helpText()
	}
	if isQuestion(input) {
		if c.asker == nil {
			return assistant.Fallback(input)
		}
		return c.asker.Ask(ctx, input)
	}
	return fmt.Sprintf("Command '%s' not recognized. Type 'help' for available commands or ask a question.", input)
}

func (c *Console) send(ctx context.Context, name string) string {
	err := c.ctl.SendCommand(ctx, name)
	switch {
	case err == nil:
		return fmt.Sprintf("Command '%s' sent to AirDarwin autopilot", name)
	case errors.Is(err, command.ErrLinkDown):
		return "Not connected - connect to AirDarwin first"
	default:
		return fmt.Sprintf("Failed to send command '%s': %v", name, err)
	}
}

func (c *Console) connect(ctx context.Context, device string) string {
	if device == "" || device == link.NoConnection {
		return "No device given - use: connect <device>"
	}
	if err := c.ctl.Connect(ctx, device); err != nil {
		return fmt.Sprintf("Failed to connect to %s: %v", device, err)
	}
	return fmt.Sprintf("Connected to %s - Listening for AirDarwin telemetry", device)
}

func (c *Console) status() string {
	info := c.ctl.Link()
	if info.Status == link.StatusDisconnected {
		return "Not connected - use: connect <device>"
	}
	s := c.ctl.State()
	where := info.Device
	if where == "" {
		where = "recording"
	}
	return fmt.Sprintf("%s on %s - mode %s, %d frames", info.Status, where, s.Mode, s.Frames)
}

func isQuestion(input string) bool {
	if strings.HasSuffix(input, "?") {
		return true
	}
	first := strings.ToLower(strings.Fields(input)[0])
	for _, w := range questionWords {
		if first == w {
			return true
		}
	}
	return false
}

func helpText() string {
	var b strings.Builder
	b.WriteString("AirDarwin Ground Control Commands:\n")
	b.WriteString("  connect [device]  connect to AirDarwin\n")
	b.WriteString("  disconnect        disconnect from AirDarwin\n")
	b.WriteString("  status            show connection status\n")
	b.WriteString("  help              show this help\n")
	for _, cmd := range command.Vocabulary() {
		fmt.Fprintf(&b, "  %-17s %s\n", cmd.Name, strings.ToLower(cmd.Description))
	}
	b.WriteString("Ask the flight assistant anything ending in '?', e.g. \"what is the battery status?\"")
	return b.String()
}
