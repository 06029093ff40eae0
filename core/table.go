package core

import (
	"errors"
	"fmt"
	"time"
)

// StateID is the index of a row in a Table
type StateID int

// StateSpec describes one row before validation.
// Next lists the successor per input; Default, when set, is used for every
// input Next does not list.
type StateSpec struct {
	Name    string
	Dwell   time.Duration
	Lights  Lights
	Next    map[Input]StateID
	Default *StateID
}

// State is a validated table row
type State struct {
	Name   string
	Dwell  time.Duration
	Lights Lights
	Output OutputVector

	next [InputCombinations]StateID
}

// Next returns the successor for the given input
func (s *State) Next(in Input) StateID {
	return s.next[in.Vector()]
}

// Successors returns the successor per input vector, in vector order
func (s *State) Successors() [InputCombinations]StateID {
	return s.next
}

// Table is an immutable, validated transition table. Every state has a
// successor for every input, so lookups cannot fail.
type Table struct {
	states []State
}

// Successor returns a pointer for StateSpec.Default
func Successor(id StateID) *StateID {
	return &id
}

// NewTable validates the specs and builds a table. All problems found are
// reported together; each is a *ConfigurationError.
func NewTable(specs []StateSpec) (*Table, error) {
	if len(specs) == 0 {
		return nil, NewConfigurationError("table", NoState, "no states")
	}

	var errs []error
	inRange := func(id StateID) bool {
		return id >= 0 && int(id) < len(specs)
	}

	t := &Table{states: make([]State, len(specs))}
	for i, spec := range specs {
		id := StateID(i)
		st := State{
			Name:   spec.Name,
			Dwell:  spec.Dwell,
			Lights: spec.Lights,
		}
		if st.Name == "" {
			st.Name = fmt.Sprintf("s%d", i)
		}

		if spec.Dwell <= 0 {
			errs = append(errs, NewConfigurationError("table", id,
				fmt.Sprintf("dwell must be positive, got %s", spec.Dwell)))
		}

		out, err := Pack(spec.Lights)
		if err != nil {
			errs = append(errs, NewConfigurationError("table", id, err.Error()))
		}
		st.Output = out

		if spec.Default != nil && !inRange(*spec.Default) {
			errs = append(errs, NewConfigurationError("table", id,
				fmt.Sprintf("default successor %d out of range [0,%d)", *spec.Default, len(specs))))
		}

		for _, in := range AllInputs() {
			next, ok := spec.Next[in]
			if !ok {
				if spec.Default == nil {
					errs = append(errs, NewConfigurationError("table", id,
						fmt.Sprintf("no successor for input %s (%d)", in, in.Vector())))
					continue
				}
				next = *spec.Default
			}
			if !inRange(next) {
				errs = append(errs, NewConfigurationError("table", id,
					fmt.Sprintf("successor %d for input %s out of range [0,%d)", next, in, len(specs))))
				continue
			}
			st.next[in.Vector()] = next
		}
		t.states[i] = st
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

// MustTable panics if the specs are invalid. Use for tables compiled into
// the binary.
func MustTable(specs []StateSpec) *Table {
	t, err := NewTable(specs)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of states
func (t *Table) Len() int {
	return len(t.states)
}

// State returns the row for id. id must come from this table.
func (t *Table) State(id StateID) *State {
	return &t.states[id]
}

// Dwell returns how long id holds its outputs before sampling
func (t *Table) Dwell(id StateID) time.Duration {
	return t.states[id].Dwell
}

// Lights returns the structured outputs of id
func (t *Table) Lights(id StateID) Lights {
	return t.states[id].Lights
}

// Output returns the packed outputs of id
func (t *Table) Output(id StateID) OutputVector {
	return t.states[id].Output
}

// Next returns the successor of id for a structured input
func (t *Table) Next(id StateID, in Input) StateID {
	return t.states[id].next[in.Vector()]
}

// NextVector returns the successor of id for a packed input
func (t *Table) NextVector(id StateID, v InputVector) StateID {
	return t.states[id].next[v&InputMask]
}

// Specs converts the table back into row specs
func (t *Table) Specs() []StateSpec {
	specs := make([]StateSpec, len(t.states))
	for i, st := range t.states {
		next := make(map[Input]StateID, InputCombinations)
		for v, id := range st.next {
			next[InputVector(v).Input()] = id
		}
		specs[i] = StateSpec{
			Name:   st.Name,
			Dwell:  st.Dwell,
			Lights: st.Lights,
			Next:   next,
		}
	}
	return specs
}

// Run replays a sequence of samples from start and returns the visited
// states, start included.
func (t *Table) Run(start StateID, inputs []Input) []StateID {
	path := make([]StateID, 0, len(inputs)+1)
	cur := start
	path = append(path, cur)
	for _, in := range inputs {
		cur = t.Next(cur, in)
		path = append(path, cur)
	}
	return path
}

// Reachable returns every state reachable from start under some input
// sequence, start included, in ascending order.
func (t *Table) Reachable(start StateID) []StateID {
	seen := make([]bool, len(t.states))
	stack := []StateID{start}
	seen[start] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range t.states[cur].next {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}

	var out []StateID
	for id, ok := range seen {
		if ok {
			out = append(out, StateID(id))
		}
	}
	return out
}

// Unrecoverable returns the states reachable from home from which no input
// sequence leads back to home. An empty result means the table is live.
func (t *Table) Unrecoverable(home StateID) []StateID {
	// Walk the reversed graph from home to find everything that can return.
	reverse := make([][]StateID, len(t.states))
	for from, st := range t.states {
		for _, to := range st.next {
			reverse[to] = append(reverse[to], StateID(from))
		}
	}
	canReturn := make([]bool, len(t.states))
	canReturn[home] = true
	stack := []StateID{home}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, prev := range reverse[cur] {
			if !canReturn[prev] {
				canReturn[prev] = true
				stack = append(stack, prev)
			}
		}
	}

	var dead []StateID
	for _, id := range t.Reachable(home) {
		if !canReturn[id] {
			dead = append(dead, id)
		}
	}
	return dead
}
