package main

import (
	"context"
	"fmt"
	"time"

	"trafficlight/config"
	"trafficlight/core"
	"trafficlight/sim"
)

func cmdValidate(_ context.Context, e *cli, args []string) error {
	fs := e.flagSet("validate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(e.stderr, "usage: trafficlight-host validate <table.yaml>...")
		return errUsage
	}

	failed := 0
	for _, path := range fs.Args() {
		src, err := loadTable(path)
		if err != nil {
			failed++
			fmt.Fprintf(e.stdout, "FAIL %v\n", err)
			continue
		}
		if _, err := src.pins.PinMap(); err != nil {
			failed++
			fmt.Fprintf(e.stdout, "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(e.stdout, "ok   %s: %d states, start %s\n",
			path, src.table.Len(), src.table.State(src.start).Name)
		for _, id := range src.table.Unrecoverable(src.start) {
			fmt.Fprintf(e.stdout, "warn %s: state %d (%s) never returns to start\n",
				path, id, src.table.State(id).Name)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tables invalid", failed, fs.NArg())
	}
	return nil
}

func cmdDump(_ context.Context, e *cli, args []string) error {
	fs := e.flagSet("dump")
	path := fs.String("table", "", "table file to normalize (default: built-in intersection)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	src, err := loadTable(*path)
	if err != nil {
		return err
	}
	data, err := config.MarshalTable(src.table)
	if err != nil {
		return err
	}
	_, err = e.stdout.Write(data)
	return err
}

func cmdTrace(_ context.Context, e *cli, args []string) error {
	fs := e.flagSet("trace")
	path := fs.String("table", e.cfg.Table, "table file (default: built-in intersection)")
	cycles := fs.Int("cycles", 20, "number of cycles to simulate")
	seed := fs.Int64("seed", e.cfg.Seed, "traffic seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cycles < 0 {
		return fmt.Errorf("cycles must not be negative")
	}

	src, err := loadTable(*path)
	if err != nil {
		return err
	}
	clock := sim.NewClock()
	c, err := core.NewController(src.table,
		sim.NewTraffic(uint64(*seed), sim.DefaultRates),
		sim.NewLights(clock),
		clock,
		core.WithID("trace"),
		core.WithStart(src.start),
		core.WithObserver(core.ObserverFunc(func(t core.Transition) {
			fmt.Fprintln(e.stdout, formatCycle(src.table, clock.Now()-t.Dwell, t))
		})),
	)
	if err != nil {
		return err
	}

	for i := 0; i < *cycles; i++ {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// formatCycle renders one cycle as: start time, state, lights, sample, next
func formatCycle(t *core.Table, at time.Duration, tr core.Transition) string {
	return fmt.Sprintf("%8s %-10s %-34s in=%-9s -> %s",
		at, t.State(tr.From).Name, t.Lights(tr.From), tr.Input, t.State(tr.To).Name)
}
