// Package command validates and forwards uplink commands to the autopilot.
package command

import (
	"context"
	"errors"
	"fmt"

	"airdarwin-gcs/internal/link"
)

var (
	// ErrUnknownCommand is returned for names outside the vocabulary.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrLinkDown is returned when no link is open.
	ErrLinkDown = errors.New("link down")
)

// Command is one entry of the uplink vocabulary.
type Command struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var vocabulary = []Command{
	{"motor_on", "Start the motor"},
	{"motor_off", "Stop the motor"},
	{"takeoff_start", "Begin the takeoff procedure"},
	{"landing_start", "Begin the landing procedure"},
	{"go_around", "Abort landing and go around"},
	{"reset", "Reset the autopilot"},
}

// Vocabulary returns the accepted commands in protocol order.
func Vocabulary() []Command {
	out := make([]Command, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Lookup returns the command named name.
func Lookup(name string) (Command, bool) {
	for _, c := range vocabulary {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Sender is the link side of the dispatcher.
type Sender interface {
	Connected() bool
	Send(ctx context.Context, cmd string) error
}

// Dispatcher forwards validated commands to a Sender.
type Dispatcher struct {
	link Sender
}

// NewDispatcher returns a dispatcher writing to link.
func NewDispatcher(link Sender) *Dispatcher {
	return &Dispatcher{link: link}
}

// Dispatch sends name unchanged if it is in the vocabulary and the link is up.
func (d *Dispatcher) Dispatch(ctx context.Context, name string) error {
	if _, ok := Lookup(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	if d.link == nil || !d.link.Connected() {
		return ErrLinkDown
	}
	if err := d.link.Send(ctx, name); err != nil {
		if errors.Is(err, link.ErrNotConnected) {
			return ErrLinkDown
		}
		return fmt.Errorf("send %s: %w", name, err)
	}
	return nil
}
