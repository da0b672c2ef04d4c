package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"airdarwin-gcs/internal/config"
	"airdarwin-gcs/internal/logging"
	"airdarwin-gcs/internal/station"
)

// sinkOptions selects the interactive sinks. Persistent sinks come from the
// configuration.
type sinkOptions struct {
	TUI  bool
	JSON bool
}

// newWriters builds the event fan-out. It returns the TUI writer when one was
// started and a cleanup function closing every sink.
func newWriters(ctx context.Context, cfg *config.Config, opts sinkOptions) (*station.MultiWriter, *station.TUIWriter, func(), error) {
	mw := station.NewMultiWriter()
	cleanup := func() {
		if err := mw.Close(); err != nil {
			logging.FromContext(ctx).Warn("closing sinks failed", "err", err)
		}
	}
	fail := func(err error) (*station.MultiWriter, *station.TUIWriter, func(), error) {
		cleanup()
		return nil, nil, nil, err
	}

	if path := cfg.Sinks.LogFile; path != "" {
		fw, err := station.NewFileWriter(path, path+".alerts", path+".link")
		if err != nil {
			return fail(fmt.Errorf("log file: %w", err))
		}
		mw.Add(fw)
	}
	if g := cfg.Sinks.Greptime; g.Endpoint != "" {
		gw, err := station.NewGreptimeDBWriter(ctx, g.Endpoint, g.Port, g.Database)
		if err != nil {
			return fail(fmt.Errorf("greptimedb: %w", err))
		}
		mw.Add(gw)
	}
	if m := cfg.Sinks.MQTT; m.BrokerURL != "" {
		qw, err := station.NewMQTTWriter(ctx, m.BrokerURL, m.ClientID, m.TopicPrefix)
		if err != nil {
			return fail(fmt.Errorf("mqtt: %w", err))
		}
		mw.Add(qw)
	}

	var tui *station.TUIWriter
	if opts.TUI {
		tui = station.NewTUIWriter()
		mw.Add(tui)
	} else {
		mw.Add(stdoutWriter(opts.JSON))
	}
	return mw, tui, cleanup, nil
}

// stdoutWriter prints coloured text to a terminal and JSON otherwise.
func stdoutWriter(forceJSON bool) station.FrameWriter {
	if !forceJSON && term.IsTerminal(int(os.Stdout.Fd())) {
		return station.NewColorStdoutWriter()
	}
	return station.NewJSONStdoutWriter()
}
