package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"

	"github.com/google/shlex"

	"trafficlight/core"
	"trafficlight/sim"
)

// console is an interactive simulated intersection. Sensors stay as set
// until changed; each step runs one full cycle on a virtual clock.
type console struct {
	e       *cli
	src     *tableSource
	clock   *sim.Clock
	sensors *sim.Sensors
	lights  *sim.Lights
	trace   *core.TraceRing
	ctrl    *core.Controller
}

func cmdConsole(ctx context.Context, e *cli, args []string) error {
	fs := e.flagSet("console")
	path := fs.String("table", e.cfg.Table, "table file (default: built-in intersection)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	src, err := loadTable(*path)
	if err != nil {
		return err
	}

	con := &console{
		e:       e,
		src:     src,
		clock:   sim.NewClock(),
		sensors: &sim.Sensors{},
		trace:   core.NewTraceRing(core.TraceRingSize),
	}
	con.lights = sim.NewLights(con.clock)
	con.ctrl, err = core.NewController(src.table, con.sensors, con.lights, con.clock,
		core.WithID("console"),
		core.WithStart(src.start),
		core.WithObserver(con.trace),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(e.stdout, "Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(e.stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Fprint(e.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		parts, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(e.stdout, "Error: %v\n", err)
			continue
		}
		if len(parts) == 0 {
			continue
		}
		if quit := con.exec(parts[0], parts[1:]); quit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// exec runs one console command and reports whether to quit
func (con *console) exec(cmd string, args []string) bool {
	out := con.e.stdout
	switch cmd {
	case "quit", "exit", "q":
		fmt.Fprintln(out, "Goodbye!")
		return true

	case "help", "?":
		con.help()

	case "status":
		con.status()

	case "inputs":
		var in core.Input
		for _, a := range args {
			part, err := core.ParseInput(a)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				return false
			}
			in.CarEastWest = in.CarEastWest || part.CarEastWest
			in.CarNorthSouth = in.CarNorthSouth || part.CarNorthSouth
			in.Pedestrian = in.Pedestrian || part.Pedestrian
		}
		con.sensors.Set(in)
		fmt.Fprintf(out, "sensors: %s\n", in)

	case "step":
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				fmt.Fprintf(out, "Error: step count must be a positive integer, got %q\n", args[0])
				return false
			}
			n = v
		}
		for i := 0; i < n; i++ {
			if err := con.ctrl.Step(); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				return false
			}
		}
		con.status()

	case "reset":
		con.ctrl.Reset()
		con.lights.Reset()
		con.status()

	case "trace":
		snap := con.trace.Snapshot()
		if len(snap) == 0 {
			fmt.Fprintln(out, "no cycles yet")
		}
		for _, t := range snap {
			fmt.Fprintln(out, t.String())
		}

	default:
		fmt.Fprintf(out, "Unknown command: %s (type 'help' for available commands)\n", cmd)
	}
	return false
}

func (con *console) status() {
	c := con.ctrl
	fmt.Fprintf(con.e.stdout, "t=%s cycle=%d state=%d (%s) %s dwell=%s sensors=%s writes=%d\n",
		con.clock.Now(), c.Cycles(), c.Current(), con.src.table.State(c.Current()).Name,
		c.Lights(), c.Dwell(), con.sensors.State(), len(con.lights.History()))
}

func (con *console) help() {
	out := con.e.stdout
	fmt.Fprintln(out, "\nAvailable commands:")
	fmt.Fprintln(out, "  help              - Show this help message")
	fmt.Fprintln(out, "  status            - Show the current state and lights")
	fmt.Fprintln(out, "  inputs [ew ns ped] - Set the active sensors (none clears them)")
	fmt.Fprintln(out, "  step [n]          - Run n cycles (default 1)")
	fmt.Fprintln(out, "  reset             - Return to the start state")
	fmt.Fprintln(out, "  trace             - Show the recent transitions")
	fmt.Fprintln(out, "  quit/exit/q       - Exit the console")
	fmt.Fprintln(out)
}
