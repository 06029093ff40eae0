// Package config loads transition tables and pin maps from YAML files and
// host runtime settings from the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"trafficlight/core"
)

// DefaultKey is the successor key used for every input a row does not list
const DefaultKey = "default"

// TableFile is the on-disk form of a transition table
type TableFile struct {
	Name   string        `yaml:"name,omitempty"`
	Start  string        `yaml:"start,omitempty"`
	States []StateConfig `yaml:"states"`
	Pins   *PinConfig    `yaml:"pins,omitempty"`
}

// StateConfig is one row. Dwell is a Go duration ("2s", "500ms");
// DwellUnits gives it in 10ms units instead. Next maps input names
// (none, ew, ns, ns+ew, ped, ped+ew, ped+ns, ped+ns+ew) or "default" to a
// state name or index.
type StateConfig struct {
	Name       string            `yaml:"name"`
	Dwell      string            `yaml:"dwell,omitempty"`
	DwellUnits int               `yaml:"dwell_units,omitempty"`
	Lights     LightsConfig      `yaml:"lights"`
	Next       map[string]string `yaml:"next"`
}

// LightsConfig names the three signal heads of a row
type LightsConfig struct {
	EastWest   string `yaml:"east_west"`
	NorthSouth string `yaml:"north_south"`
	Pedestrian string `yaml:"pedestrian"`
}

// ParseTable decodes a table file. Unknown fields are rejected.
func ParseTable(data []byte) (*TableFile, error) {
	var f TableFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return &f, nil
}

// Build resolves names and validates the table. The returned StateID is the
// configured start state (0 when Start is empty).
func (f *TableFile) Build() (*core.Table, core.StateID, error) {
	if len(f.States) == 0 {
		return nil, core.NoState, core.NewConfigurationError("config", core.NoState, "no states")
	}

	index := make(map[string]core.StateID, len(f.States))
	for i, st := range f.States {
		if st.Name == "" {
			continue
		}
		if _, err := strconv.Atoi(st.Name); err == nil {
			return nil, core.NoState, core.NewConfigurationError("config", core.StateID(i),
				fmt.Sprintf("state name %q must not be a number", st.Name))
		}
		if _, dup := index[st.Name]; dup {
			return nil, core.NoState, core.NewConfigurationError("config", core.StateID(i),
				fmt.Sprintf("duplicate state name %q", st.Name))
		}
		index[st.Name] = core.StateID(i)
	}
	resolve := func(ref string) (core.StateID, error) {
		if id, ok := index[ref]; ok {
			return id, nil
		}
		n, err := strconv.Atoi(ref)
		if err != nil {
			return core.NoState, fmt.Errorf("unknown state %q", ref)
		}
		return core.StateID(n), nil
	}

	var errs []error
	specs := make([]core.StateSpec, len(f.States))
	for i, st := range f.States {
		id := core.StateID(i)
		fail := func(format string, args ...any) {
			errs = append(errs, core.NewConfigurationError("config", id, fmt.Sprintf(format, args...)))
		}

		spec := core.StateSpec{Name: st.Name}
		switch {
		case st.Dwell != "" && st.DwellUnits != 0:
			fail("both dwell and dwell_units set")
		case st.Dwell != "":
			d, err := time.ParseDuration(st.Dwell)
			if err != nil {
				fail("dwell: %v", err)
			}
			spec.Dwell = d
		default:
			spec.Dwell = time.Duration(st.DwellUnits) * core.DwellUnit
		}

		lights, err := st.Lights.parse()
		if err != nil {
			fail("%v", err)
		}
		spec.Lights = lights

		spec.Next = make(map[core.Input]core.StateID, len(st.Next))
		keys := make(map[core.Input]string, len(st.Next))
		for _, key := range slices.Sorted(maps.Keys(st.Next)) {
			ref := st.Next[key]
			next, err := resolve(ref)
			if err != nil {
				fail("next[%s]: %v", key, err)
				continue
			}
			if key == DefaultKey {
				spec.Default = core.Successor(next)
				continue
			}
			in, err := core.ParseInput(key)
			if err != nil {
				fail("next: %v", err)
				continue
			}
			if prev, dup := keys[in]; dup {
				fail("next: %q and %q both name input %s", prev, key, in)
				continue
			}
			keys[in] = key
			spec.Next[in] = next
		}
		specs[i] = spec
	}
	if len(errs) > 0 {
		return nil, core.NoState, errors.Join(errs...)
	}

	table, err := core.NewTable(specs)
	if err != nil {
		return nil, core.NoState, err
	}

	start := core.StateID(0)
	if f.Start != "" {
		if start, err = resolve(f.Start); err != nil {
			return nil, core.NoState, core.NewConfigurationError("config", core.NoState, "start: "+err.Error())
		}
		if start < 0 || int(start) >= table.Len() {
			return nil, core.NoState, core.NewConfigurationError("config", core.NoState,
				fmt.Sprintf("start state %d out of range", start))
		}
	}
	return table, start, nil
}

func (l LightsConfig) parse() (core.Lights, error) {
	ew, err := core.ParseApproachSignal(l.EastWest)
	if err != nil {
		return core.Lights{}, fmt.Errorf("east_west: %w", err)
	}
	ns, err := core.ParseApproachSignal(l.NorthSouth)
	if err != nil {
		return core.Lights{}, fmt.Errorf("north_south: %w", err)
	}
	ped, err := core.ParsePedestrianSignal(l.Pedestrian)
	if err != nil {
		return core.Lights{}, fmt.Errorf("pedestrian: %w", err)
	}
	return core.Lights{EastWest: ew, NorthSouth: ns, Pedestrian: ped}, nil
}

// LoadTable parses and validates a table file
func LoadTable(data []byte) (*core.Table, core.StateID, error) {
	f, err := ParseTable(data)
	if err != nil {
		return nil, core.NoState, err
	}
	return f.Build()
}

// LoadTableFile reads a table from path
func LoadTableFile(path string) (*core.Table, core.StateID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NoState, fmt.Errorf("read table: %w", err)
	}
	table, start, err := LoadTable(data)
	if err != nil {
		return nil, core.NoState, fmt.Errorf("%s: %w", path, err)
	}
	return table, start, nil
}

// FromTable converts a table to its file form. Rows whose successor does
// not depend on the input are written with a single default entry.
func FromTable(t *core.Table) *TableFile {
	f := &TableFile{States: make([]StateConfig, t.Len())}
	for i := range f.States {
		st := t.State(core.StateID(i))
		name := func(id core.StateID) string {
			return t.State(id).Name
		}

		sc := StateConfig{
			Name:  st.Name,
			Dwell: st.Dwell.String(),
			Lights: LightsConfig{
				EastWest:   st.Lights.EastWest.String(),
				NorthSouth: st.Lights.NorthSouth.String(),
				Pedestrian: st.Lights.Pedestrian.String(),
			},
			Next: make(map[string]string),
		}
		if st.Dwell%core.DwellUnit == 0 {
			sc.Dwell = ""
			sc.DwellUnits = core.DwellUnits(st.Dwell)
		}

		succ := st.Successors()
		constant := true
		for _, id := range succ {
			if id != succ[0] {
				constant = false
				break
			}
		}
		if constant {
			sc.Next[DefaultKey] = name(succ[0])
		} else {
			for v, id := range succ {
				sc.Next[core.InputVector(v).String()] = name(id)
			}
		}
		f.States[i] = sc
	}
	return f
}

// MarshalTable writes t as YAML
func MarshalTable(t *core.Table) ([]byte, error) {
	data, err := yaml.Marshal(FromTable(t))
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}
