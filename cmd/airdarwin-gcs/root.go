package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"airdarwin-gcs/internal/config"
	"airdarwin-gcs/internal/logging"
)

var (
	logLevel   string
	logFormat  string
	configPath string
	schemaPath string
)

var rootCmd = &cobra.Command{
	Use:          "airdarwin-gcs",
	Short:        "AirDarwin ground control station",
	Long:         "airdarwin-gcs monitors AirDarwin autopilot telemetry over a serial link, evaluates flight safety and sends uplink commands.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text or json)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to monitor configuration YAML (e.g. config/monitor.yaml)")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "Path to CUE schema file (e.g. schemas/monitor.cue)")

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(emulateCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(dashboardCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath, schemaPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withLogger attaches a logger writing to w to the command context.
func withLogger(cmd *cobra.Command, w io.Writer) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.NewContext(ctx, logging.NewWithOptions(w, logLevel, logFormat))
}
