package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"airdarwin-gcs/internal/assistant"
	"airdarwin-gcs/internal/config"
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Ask the flight assistant a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runAsk(withLogger(cmd, os.Stderr), cmd.OutOrStdout(), cfg, strings.Join(args, " "))
	},
}

// runAsk waits for the backend answer when one is started.
func runAsk(ctx context.Context, out io.Writer, cfg *config.Config, question string) error {
	a := newAssistant(cfg)
	answer := a.Ask(ctx, question)
	if answer == assistant.Thinking {
		select {
		case answer = <-a.Answers():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	_, err := fmt.Fprintln(out, answer)
	return err
}
