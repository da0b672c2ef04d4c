package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/logging"
	"airdarwin-gcs/internal/scenario"
	"airdarwin-gcs/internal/telemetry"
)

var (
	emuDevice   string
	emuInterval time.Duration
	emuSeed     int64
	emuArm      bool
	emuScenario string
)

var emulateCmd = &cobra.Command{
	Use:   "emulate",
	Short: "Emulate an AirDarwin autopilot",
	Long:  "emulate simulates a flight and writes SUM telemetry to stdout or a serial port, applying uplink commands read back from the port.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(withLogger(cmd, os.Stderr), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var l emulatorLink = writerLink{w: cmd.OutOrStdout()}
		if emuDevice != "" {
			t := link.NewTransport(link.SerialOpener{BaudRate: cfg.Link.BaudRate})
			if err := t.Open(ctx, emuDevice); err != nil {
				return err
			}
			defer t.Close(context.WithoutCancel(ctx))
			l = t
		}
		gen := telemetry.NewGenerator(emuSeed)
		if emuArm {
			gen.Command("motor_on")
		}
		var runner *scenario.Runner
		if emuScenario != "" {
			sc, err := loadScenario(emuScenario)
			if err != nil {
				return err
			}
			runner = scenario.NewRunner(sc)
		}
		return runEmulator(ctx, gen, l, runner, emuInterval)
	},
}

// emulatorLink carries telemetry out and commands back in.
type emulatorLink interface {
	Send(ctx context.Context, line string) error
	Poll(ctx context.Context) ([]string, error)
}

// writerLink is a one-way link to w.
type writerLink struct {
	w io.Writer
}

func (l writerLink) Send(_ context.Context, line string) error {
	_, err := fmt.Fprintln(l.w, line)
	return err
}

func (writerLink) Poll(context.Context) ([]string, error) { return nil, nil }

// loadScenario resolves a built-in arc by name or reads a YAML file.
func loadScenario(nameOrPath string) (*scenario.Scenario, error) {
	if sc, ok := scenario.BuiltIn()[nameOrPath]; ok {
		return &sc, nil
	}
	return scenario.Load(nameOrPath)
}

// runEmulator emits one frame per interval until ctx is done. Commands are
// polled between frames. runner may be nil.
func runEmulator(ctx context.Context, gen *telemetry.Generator, l emulatorLink, runner *scenario.Runner, interval time.Duration) error {
	log := logging.FromContext(ctx)
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	log.Info("starting emulator", "interval", interval, "mode", gen.Mode())
	if runner != nil {
		for _, name := range runner.Start() {
			applyCommand(ctx, gen, name)
		}
		log.Info("scenario phase", "phase", runner.Phase())
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	var phase string
	if runner != nil {
		phase = runner.Phase()
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("stopping emulator")
			return nil
		case now := <-ticker.C:
			lines, err := l.Poll(ctx)
			for _, line := range lines {
				applyCommand(ctx, gen, line)
			}
			if err != nil {
				return err
			}
			dt := now.Sub(last)
			frame := gen.Step(dt)
			last = now
			if err := l.Send(ctx, telemetry.Encode(frame)); err != nil {
				return err
			}
			if runner == nil {
				continue
			}
			if cmds := runner.Step(dt, frame); cmds != nil || runner.Phase() != phase {
				phase = runner.Phase()
				log.Info("scenario phase", "phase", phase)
				for _, name := range cmds {
					applyCommand(ctx, gen, name)
				}
			}
		}
	}
}

func applyCommand(ctx context.Context, gen *telemetry.Generator, line string) {
	name := strings.TrimSpace(line)
	if name == "" {
		return
	}
	log := logging.FromContext(ctx)
	if !gen.Command(name) {
		log.Warn("unknown command", "command", name)
		return
	}
	log.Info("command applied", "command", name, "mode", gen.Mode())
}

func init() {
	emulateCmd.Flags().StringVar(&emuDevice, "device", "", "Serial device to emulate on (stdout when empty)")
	emulateCmd.Flags().DurationVar(&emuInterval, "interval", 200*time.Millisecond, "Telemetry frame interval")
	emulateCmd.Flags().Int64Var(&emuSeed, "seed", 1, "Random seed for sensor noise")
	emulateCmd.Flags().BoolVar(&emuArm, "arm", false, "Start with the motor armed")
	emulateCmd.Flags().StringVar(&emuScenario, "scenario", "", "Built-in scenario name (circuit, go-around, low-battery) or YAML path")
}
