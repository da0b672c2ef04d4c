package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"airdarwin-gcs/internal/logging"
	"airdarwin-gcs/internal/station"
)

var (
	replayInput   string
	replaySpeed   float64
	replayJSON    bool
	replayLogFile string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded telemetry log",
	Long:  "replay feeds a recorded JSONL log or raw SUM capture through the safety pipeline and the configured sinks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if replayLogFile != "" {
			cfg.Sinks.LogFile = replayLogFile
		}
		ctx, stop := signal.NotifyContext(withLogger(cmd, os.Stderr), os.Interrupt, syscall.SIGTERM)
		defer stop()

		mw, _, cleanup, err := newWriters(ctx, cfg, sinkOptions{JSON: replayJSON})
		if err != nil {
			return err
		}
		defer cleanup()

		st := station.New(nil, mw, station.Options{
			DataTimeout: cfg.Link.DataTimeout,
			Env:         cfg.Environment(),
		})
		n, err := station.ReplayLogFile(ctx, replayInput, st, replaySpeed)
		logging.FromContext(ctx).Info("replay finished", "input", replayInput, "records", n)
		return err
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to telemetry log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 for no delay)")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "Print events as JSON even on a terminal")
	replayCmd.Flags().StringVar(&replayLogFile, "log-file", "", "Re-record the replayed events to this path (JSONL)")
	replayCmd.MarkFlagRequired("input")
}
