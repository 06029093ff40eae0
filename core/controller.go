package core

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Controller is one intersection's Moore machine: a cursor into an
// immutable table plus the collaborators it drives.
// A Controller must only be driven by one goroutine at a time.
type Controller struct {
	id    string
	table *Table
	start StateID

	inputs  InputReader
	outputs OutputWriter
	delay   Delay

	observers []Observer
	debug     DebugWriter

	current StateID
	cycles  uint64
	running atomic.Bool
}

// Option configures a Controller
type Option func(*Controller)

// WithID names the controller; the default is a random UUID
func WithID(id string) Option {
	return func(c *Controller) {
		c.id = id
	}
}

// WithStart selects the initial state (default 0)
func WithStart(id StateID) Option {
	return func(c *Controller) {
		c.start = id
	}
}

// WithObserver adds an observer notified after every cycle
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, o)
	}
}

// WithDebugWriter sets the debug output for per-cycle messages
func WithDebugWriter(w DebugWriter) Option {
	return func(c *Controller) {
		c.debug = w
	}
}

// NewController creates a controller positioned at the start state
func NewController(table *Table, inputs InputReader, outputs OutputWriter, delay Delay, opts ...Option) (*Controller, error) {
	if table == nil {
		return nil, NewConfigurationError("controller", NoState, "nil table")
	}
	if inputs == nil || outputs == nil || delay == nil {
		return nil, NewConfigurationError("controller", NoState, "missing input, output or delay collaborator")
	}

	c := &Controller{
		table:   table,
		inputs:  inputs,
		outputs: outputs,
		delay:   delay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.start < 0 || int(c.start) >= table.Len() {
		return nil, NewConfigurationError("controller", c.start, "start state out of range")
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	c.current = c.start
	return c, nil
}

// ID returns the controller name
func (c *Controller) ID() string {
	return c.id
}

// Table returns the transition table
func (c *Controller) Table() *Table {
	return c.table
}

// Current returns the current state
func (c *Controller) Current() StateID {
	return c.current
}

// Lights returns the outputs of the current state
func (c *Controller) Lights() Lights {
	return c.table.Lights(c.current)
}

// Output returns the packed outputs of the current state
func (c *Controller) Output() OutputVector {
	return c.table.Output(c.current)
}

// Dwell returns the dwell requested by the current state
func (c *Controller) Dwell() time.Duration {
	return c.table.Dwell(c.current)
}

// Cycles returns the number of completed cycles
func (c *Controller) Cycles() uint64 {
	return c.cycles
}

// Reset moves the cursor back to the start state
func (c *Controller) Reset() {
	c.current = c.start
	c.cycles = 0
}

// Step runs one cycle: assert outputs, wait the dwell, sample once, move
// to the successor. On a collaborator error the cursor does not move.
func (c *Controller) Step() error {
	from := c.current
	out := c.table.Output(from)
	dwell := c.table.Dwell(from)

	if err := c.outputs.WriteOutputs(out); err != nil {
		return fmt.Errorf("write outputs in state %d: %w", from, err)
	}

	c.delay.Wait(dwell)

	in, err := c.inputs.ReadInputs()
	if err != nil {
		return fmt.Errorf("read inputs in state %d: %w", from, err)
	}
	in &= InputMask

	c.current = c.table.NextVector(from, in)
	c.cycles++

	t := Transition{
		Cycle:  c.cycles,
		From:   from,
		To:     c.current,
		Input:  in,
		Output: out,
		Dwell:  dwell,
	}
	if c.debug != nil {
		c.debug(c.id + ": " + t.String())
	}
	for _, o := range c.observers {
		o.OnTransition(t)
	}
	return nil
}

// Run drives the controller until ctx is done or a collaborator fails.
// ctx is only checked between cycles: a dwell that has started always runs
// to completion. A nil return means ctx was cancelled.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := c.Step(); err != nil {
			return fmt.Errorf("controller %s: %w", c.id, err)
		}
	}
}
