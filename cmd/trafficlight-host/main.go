// Command trafficlight-host runs and inspects traffic-light controllers on
// a host: against the simulator, a serial lamp panel or an I2C expander.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"trafficlight/board"
	"trafficlight/config"
	"trafficlight/core"
	"trafficlight/host/i2c"
	"trafficlight/host/panel"
	"trafficlight/host/serial"
	"trafficlight/protocol"
	"trafficlight/sim"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type command struct {
	name  string
	usage string
	fn    func(ctx context.Context, env *cli, args []string) error
}

var commands = []command{
	{"run", "run a controller until interrupted", cmdRun},
	{"validate", "check a table file", cmdValidate},
	{"dump", "print a table as YAML", cmdDump},
	{"trace", "simulate cycles and print each one", cmdTrace},
	{"console", "step a simulated intersection interactively", cmdConsole},
}

// cli carries the streams and settings shared by every subcommand
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    *config.AppConfig
	logger *slog.Logger
}

// errUsage marks errors already reported with usage text
var errUsage = errors.New("usage")

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	name := "run"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		name, args = args[0], args[1:]
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		printUsage(stderr)
		return 2
	}

	cfg, err := config.LoadAppEnv(ctx, ".env")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	env := &cli{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		cfg:    cfg,
		logger: config.NewLogger(stderr, cfg.Env).With("component", "trafficlight-host"),
	}

	if err := cmd.fn(ctx, env, args); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: trafficlight-host [command] [flags]")
	fmt.Fprintln(w, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.usage)
	}
}

// flagSet returns a flag set whose errors go to the command's stderr
func (e *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// tableSource is a loaded table plus the pin wiring its file asked for
type tableSource struct {
	table *core.Table
	start core.StateID
	pins  *config.PinConfig
}

// loadTable reads path, or returns the built-in intersection when path is
// empty
func loadTable(path string) (*tableSource, error) {
	if path == "" {
		return &tableSource{table: core.DefaultTable()}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	f, err := config.ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	table, start, err := f.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &tableSource{table: table, start: start, pins: f.Pins}, nil
}

// intersectionIO is what a mode hands the controller
type intersectionIO struct {
	inputs  core.InputReader
	outputs core.OutputWriter
	delay   core.Delay
	close   func() error
}

func cmdRun(ctx context.Context, e *cli, args []string) error {
	cfg := e.cfg
	fs := e.flagSet("run")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "I/O back end: sim, serial or expander")
	fs.StringVar(&cfg.Table, "table", cfg.Table, "table file (default: built-in intersection)")
	fs.StringVar(&cfg.ID, "id", cfg.ID, "controller name (default: random)")
	fs.StringVar(&cfg.Device, "device", cfg.Device, "serial panel device path")
	fs.IntVar(&cfg.Baud, "baud", cfg.Baud, "serial panel baud rate")
	fs.StringVar(&cfg.I2CBus, "i2c-bus", cfg.I2CBus, "I2C bus device for the expander")
	fs.Float64Var(&cfg.Speed, "speed", cfg.Speed, "simulator time scale")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "simulator traffic seed")
	count := fs.Int("count", 1, "number of independent simulated intersections")
	verbose := fs.Bool("verbose", false, "log every cycle")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	src, err := loadTable(cfg.Table)
	if err != nil {
		return err
	}
	logger := e.logger.With("mode", cfg.Mode)

	if *count < 1 || (*count > 1 && cfg.Mode != config.ModeSim) {
		return fmt.Errorf("-count must be 1, or more in %s mode", config.ModeSim)
	}
	if dead := src.table.Unrecoverable(src.start); len(dead) > 0 {
		logger.Warn("table has states that never return to start", "states", dead)
	}

	controllers := make([]*core.Controller, 0, *count)
	for i := 0; i < *count; i++ {
		tio, err := openIO(cfg, src, logger, i)
		if err != nil {
			return err
		}
		defer func() {
			if err := tio.close(); err != nil {
				logger.Error("close", "error", err)
			}
		}()

		c, err := newController(cfg, src, tio, logger, i, *count, *verbose)
		if err != nil {
			return err
		}
		logger.Info("controller started", "id", c.ID(), "states", src.table.Len(), "start", src.start)
		controllers = append(controllers, c)
	}

	if err := core.RunAll(ctx, controllers...); err != nil {
		return err
	}
	for _, c := range controllers {
		logger.Info("controller stopped", "id", c.ID(), "cycles", c.Cycles(), "state", c.Current())
	}
	return nil
}

// newController builds controller i of count, logging its phase changes
func newController(cfg *config.AppConfig, src *tableSource, tio *intersectionIO, logger *slog.Logger, i, count int, verbose bool) (*core.Controller, error) {
	opts := []core.Option{core.WithStart(src.start)}
	switch {
	case cfg.ID != "" && count > 1:
		opts = append(opts, core.WithID(fmt.Sprintf("%s-%d", cfg.ID, i+1)))
	case cfg.ID != "":
		opts = append(opts, core.WithID(cfg.ID))
	}

	// clog is set once the controller has its id; observers only run
	// after that
	var clog *slog.Logger
	opts = append(opts, core.WithObserver(core.ObserverFunc(func(t core.Transition) {
		if t.From != t.To {
			clog.Info("transition",
				"cycle", t.Cycle,
				"from", src.table.State(t.From).Name,
				"to", src.table.State(t.To).Name,
				"input", t.Input.String(),
				"lights", src.table.Lights(t.From).String())
		}
	})))
	if verbose {
		opts = append(opts, core.WithDebugWriter(func(msg string) {
			clog.Debug(msg)
		}))
	}

	c, err := core.NewController(src.table, tio.inputs, tio.outputs, tio.delay, opts...)
	if err != nil {
		return nil, err
	}
	clog = logger.With("id", c.ID())
	return c, nil
}

func openIO(cfg *config.AppConfig, src *tableSource, logger *slog.Logger, i int) (*intersectionIO, error) {
	switch cfg.Mode {
	case config.ModeSerial:
		sc := serial.DefaultConfig(cfg.Device)
		sc.Baud = cfg.Baud
		sc.ReadTimeout = cfg.ReadTimeout
		p, err := panel.Open(sc, panel.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		version, err := p.Identify()
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("identify panel: %w", err)
		}
		if version != protocol.Version {
			p.Close()
			return nil, fmt.Errorf("panel speaks link version %d, want %d", version, protocol.Version)
		}
		logger.Info("panel connected", "device", cfg.Device, "version", version)
		return &intersectionIO{inputs: p, outputs: p, delay: core.SleepDelay{}, close: p.Close}, nil

	case config.ModeExpander:
		pins, err := src.pins.PinMap()
		if err != nil {
			return nil, err
		}
		bus, err := i2c.Open(cfg.I2CBus)
		if err != nil {
			return nil, err
		}
		port, err := board.NewPort(bus, cfg.I2CAddr, pins)
		if err != nil {
			bus.Close()
			return nil, err
		}
		logger.Info("expander configured", "bus", bus.Path(), "addr", fmt.Sprintf("0x%02x", cfg.I2CAddr))
		return &intersectionIO{inputs: port, outputs: port, delay: core.SleepDelay{}, close: bus.Close}, nil

	default:
		clock := sim.NewScaledClock(cfg.Speed)
		return &intersectionIO{
			inputs:  sim.NewTraffic(uint64(cfg.Seed)+uint64(i), sim.DefaultRates),
			outputs: sim.NewLights(clock),
			delay:   clock,
			close:   func() error { return nil },
		}, nil
	}
}
