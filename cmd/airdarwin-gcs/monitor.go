package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"airdarwin-gcs/internal/admin"
	"airdarwin-gcs/internal/assistant"
	"airdarwin-gcs/internal/config"
	"airdarwin-gcs/internal/console"
	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/logging"
	"airdarwin-gcs/internal/metrics"
	"airdarwin-gcs/internal/safety"
	"airdarwin-gcs/internal/station"
)

var (
	monDevice    string
	monTUI       bool
	monJSON      bool
	monLogFile   string
	monLogOutput string
	monAdmin     string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Monitor live AirDarwin telemetry",
	Long:  "monitor connects to the autopilot serial link, decodes telemetry, evaluates flight safety and fans events out to the configured sinks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if monDevice != "" {
			cfg.Link.Device = monDevice
		}
		if monLogFile != "" {
			cfg.Sinks.LogFile = monLogFile
		}
		if monAdmin != "" {
			cfg.Admin.Listen = monAdmin
		}

		var logOut io.Writer = os.Stderr
		switch {
		case monLogOutput != "":
			f, err := os.OpenFile(monLogOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return err
			}
			defer f.Close()
			logOut = f
		case monTUI:
			// The dashboard owns the terminal.
			logOut = io.Discard
		}

		ctx, stop := signal.NotifyContext(withLogger(cmd, logOut), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runMonitor(ctx, cfg)
	},
}

func runMonitor(ctx context.Context, cfg *config.Config) error {
	log := logging.FromContext(ctx)

	mw, tui, cleanup, err := newWriters(ctx, cfg, sinkOptions{TUI: monTUI, JSON: monJSON})
	if err != nil {
		return err
	}
	defer cleanup()

	m := metrics.New()
	transport := link.NewTransport(link.SerialOpener{BaudRate: cfg.Link.BaudRate})
	st := station.New(transport, mw, station.Options{
		PollInterval:     cfg.Link.PollInterval,
		LivenessInterval: cfg.Link.LivenessInterval,
		DataTimeout:      cfg.Link.DataTimeout,
		Env:              cfg.Environment(),
		System:           safety.NewSimulatedSystem(time.Now()),
		Metrics:          m,
	})
	asst := newAssistant(cfg)
	con := console.New(st, asst, cfg.Link.Device)
	if tui != nil {
		tui.SetConsole(func(input string) string { return con.Interpret(ctx, input) })
	}
	go forwardAnswers(ctx, asst, tui)

	if cfg.Admin.Listen != "" {
		srv := admin.NewServer(st, con, asst, m.Handler())
		go func() {
			if err := srv.Start(ctx, cfg.Admin.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("admin server failed", "err", err)
			}
		}()
	}

	if cfg.Link.Device != "" {
		if err := st.Connect(ctx, cfg.Link.Device); err != nil {
			log.Error("initial connect failed", "device", cfg.Link.Device, "err", err)
		}
	} else {
		log.Info("no device configured, waiting for connect")
	}

	st.Run(ctx)
	if st.Connected() {
		_ = st.Disconnect(context.WithoutCancel(ctx))
	}
	log.Info("monitor stopped")
	return nil
}

// newAssistant uses the configured generate endpoint, or the knowledge table
// when none is set.
func newAssistant(cfg *config.Config) *assistant.Assistant {
	var backend assistant.Backend
	if cfg.Assistant.Endpoint != "" {
		backend = &assistant.HTTPBackend{
			Endpoint: cfg.Assistant.Endpoint,
			Model:    cfg.Assistant.Model,
			Client:   &http.Client{Timeout: cfg.Assistant.Timeout},
		}
	}
	return assistant.New(backend, cfg.Assistant.Timeout)
}

// forwardAnswers shows asynchronous assistant answers in the dashboard, or
// logs them when there is none.
func forwardAnswers(ctx context.Context, a *assistant.Assistant, tui *station.TUIWriter) {
	for {
		select {
		case <-ctx.Done():
			return
		case answer := <-a.Answers():
			if tui != nil {
				tui.Notify("Assistant: " + answer)
				continue
			}
			logging.FromContext(ctx).Info("assistant answer", "answer", answer)
		}
	}
}

func init() {
	monitorCmd.Flags().StringVar(&monDevice, "device", "", "Serial device to connect to (e.g. /dev/ttyUSB0)")
	monitorCmd.Flags().BoolVar(&monTUI, "tui", false, "Show the interactive dashboard")
	monitorCmd.Flags().BoolVar(&monJSON, "json", false, "Print events as JSON even on a terminal")
	monitorCmd.Flags().StringVar(&monLogFile, "log-file", "", "Path to record frames, alerts and link events (JSONL)")
	monitorCmd.Flags().StringVar(&monLogOutput, "log-output", "", "Write diagnostic logs to this file instead of stderr")
	monitorCmd.Flags().StringVar(&monAdmin, "admin", "", "Admin HTTP listen address (e.g. :8080)")
}
