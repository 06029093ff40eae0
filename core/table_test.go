package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefaultTableIsTotal(t *testing.T) {
	table := DefaultTable()

	if table.Len() != 11 {
		t.Fatalf("Expected 11 states, got %d", table.Len())
	}

	for s := 0; s < table.Len(); s++ {
		id := StateID(s)
		if table.Dwell(id) <= 0 {
			t.Errorf("State %d has non-positive dwell %s", s, table.Dwell(id))
		}
		for v := 0; v < InputCombinations; v++ {
			next := table.NextVector(id, InputVector(v))
			if next < 0 || int(next) >= table.Len() {
				t.Errorf("State %d input %d: successor %d out of range", s, v, next)
			}
		}
	}
}

func TestDefaultTableMatchesReferenceRows(t *testing.T) {
	// dwell in 10ms units, successors in input-vector order
	expected := []struct {
		dwell int
		next  [InputCombinations]StateID
	}{
		{200, [8]StateID{0, 0, 1, 1, 1, 1, 1, 1}},
		{300, [8]StateID{2, 2, 2, 2, 4, 4, 2, 2}},
		{200, [8]StateID{2, 3, 2, 3, 3, 3, 3, 3}},
		{300, [8]StateID{0, 0, 0, 0, 4, 0, 4, 4}},
		{200, [8]StateID{4, 5, 5, 5, 4, 5, 5, 5}},
		{50, [8]StateID{6, 6, 6, 6, 6, 6, 6, 6}},
		{50, [8]StateID{7, 7, 7, 7, 7, 7, 7, 7}},
		{50, [8]StateID{8, 8, 8, 8, 8, 8, 8, 8}},
		{50, [8]StateID{9, 9, 9, 9, 9, 9, 9, 9}},
		{50, [8]StateID{10, 10, 10, 10, 10, 10, 10, 10}},
		{50, [8]StateID{0, 0, 2, 0, 4, 0, 2, 0}},
	}

	table := DefaultTable()
	for i, row := range expected {
		st := table.State(StateID(i))
		if st.Dwell != time.Duration(row.dwell)*DwellUnit {
			t.Errorf("State %d dwell = %s, expected %d units", i, st.Dwell, row.dwell)
		}
		if st.Successors() != row.next {
			t.Errorf("State %d successors = %v, expected %v", i, st.Successors(), row.next)
		}
	}
}

func TestNSGreenWithEastWestOnlyDemand(t *testing.T) {
	table := DefaultTable()

	st := table.State(StateNSGreen)
	if st.Lights != (Lights{EastWest: Red, NorthSouth: Green, Pedestrian: DontWalk}) {
		t.Fatalf("State 0 lights = %v", st.Lights)
	}
	if st.Dwell != 2*time.Second {
		t.Errorf("State 0 dwell = %s, expected 2s", st.Dwell)
	}

	// Row {0,0,1,...}: entry 1 (bit0, east/west car only) holds state 0.
	if next := table.NextVector(StateNSGreen, InCarEastWest); next != StateNSGreen {
		t.Errorf("Next(0, ew) = %d, expected 0", next)
	}
	if next := table.Next(StateNSGreen, Input{CarNorthSouth: true}); next != StateNSYellow {
		t.Errorf("Next(0, ns) = %d, expected 1", next)
	}
	if next := table.Next(StateNSGreen, Input{}); next != StateNSGreen {
		t.Errorf("Next(0, none) = %d, expected 0", next)
	}
}

func TestWalkPhaseIgnoresFurtherPedestrianRequests(t *testing.T) {
	table := DefaultTable()

	if table.Lights(StateWalk).Pedestrian != Walk {
		t.Fatalf("State 4 should show walk, got %v", table.Lights(StateWalk))
	}
	if table.Dwell(StateWalk) != 200*DwellUnit {
		t.Errorf("State 4 dwell = %s", table.Dwell(StateWalk))
	}

	for _, in := range AllInputs() {
		next := table.Next(StateWalk, in)
		carDemand := in.CarEastWest || in.CarNorthSouth
		switch {
		case carDemand && next != StateFlash1Off:
			t.Errorf("Next(4, %s) = %d, expected 5", in, next)
		case !carDemand && next != StateWalk:
			t.Errorf("Next(4, %s) = %d, expected 4 (walk held without car demand)", in, next)
		}
		if next != StateWalk && next != StateFlash1Off {
			t.Errorf("Next(4, %s) = %d left the pedestrian phase", in, next)
		}
	}
}

func TestFlashingClearanceIsInputIndependent(t *testing.T) {
	table := DefaultTable()

	for s := StateFlash1Off; s <= StateFlash3Off; s++ {
		if table.Dwell(s) != 50*DwellUnit {
			t.Errorf("State %d dwell = %s, expected 50 units", s, table.Dwell(s))
		}
		for _, in := range AllInputs() {
			if next := table.Next(s, in); next != s+1 {
				t.Errorf("Next(%d, %s) = %d, expected %d", s, in, next, s+1)
			}
		}
	}

	// the clearance alternates dark and don't walk with all approaches red
	for s := StateFlash1Off; s <= StateFlash3On; s++ {
		l := table.Lights(s)
		if l.EastWest != Red || l.NorthSouth != Red {
			t.Errorf("State %d should be all red, got %v", s, l)
		}
		want := Dark
		if (s-StateFlash1Off)%2 == 1 {
			want = DontWalk
		}
		if l.Pedestrian != want {
			t.Errorf("State %d pedestrian = %s, expected %s", s, l.Pedestrian, want)
		}
	}
}

func TestReentryRoutesIntoVehicleFlow(t *testing.T) {
	table := DefaultTable()

	for _, in := range AllInputs() {
		next := table.Next(StateFlash3On, in)
		switch next {
		case StateNSGreen, StateEWGreen:
		case StateWalk:
			if in != (Input{Pedestrian: true}) {
				t.Errorf("Next(10, %s) = 4, only a lone pedestrian request may re-enter walk", in)
			}
		default:
			t.Errorf("Next(10, %s) = %d, expected one of 0, 2, 4", in, next)
		}
	}
}

func TestDefaultTableIsLive(t *testing.T) {
	table := DefaultTable()

	reachable := table.Reachable(StateNSGreen)
	if len(reachable) != table.Len() {
		t.Errorf("Expected every state reachable from 0, got %v", reachable)
	}
	if dead := table.Unrecoverable(StateNSGreen); len(dead) != 0 {
		t.Errorf("States %v cannot return to 0", dead)
	}
}

func TestUnrecoverableFindsTrap(t *testing.T) {
	lights := Lights{EastWest: Red, NorthSouth: Red, Pedestrian: DontWalk}
	table, err := NewTable([]StateSpec{
		{Dwell: time.Second, Lights: lights, Next: row(0, 1, 0, 0, 0, 0, 0, 0)},
		{Dwell: time.Second, Lights: lights, Default: Successor(2)},
		{Dwell: time.Second, Lights: lights, Default: Successor(2)},
	})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	dead := table.Unrecoverable(0)
	if !reflect.DeepEqual(dead, []StateID{1, 2}) {
		t.Errorf("Unrecoverable(0) = %v, expected [1 2]", dead)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	table := DefaultTable()
	inputs := []Input{
		{},
		{CarNorthSouth: true},
		{Pedestrian: true},
		{},
		{CarEastWest: true},
		{}, {}, {}, {}, {},
		{CarNorthSouth: true},
	}

	first := table.Run(StateNSGreen, inputs)
	second := table.Run(StateNSGreen, inputs)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Replays differ: %v vs %v", first, second)
	}

	expected := []StateID{0, 0, 1, 4, 4, 5, 6, 7, 8, 9, 10, 2}
	if !reflect.DeepEqual(first, expected) {
		t.Errorf("Run = %v, expected %v", first, expected)
	}
}

func TestNewTableRejectsIncompleteRows(t *testing.T) {
	lights := Lights{EastWest: Red, NorthSouth: Green, Pedestrian: DontWalk}
	next := row(0, 0, 0, 0, 0, 0, 0)

	_, err := NewTable([]StateSpec{{Dwell: time.Second, Lights: lights, Next: next}})
	if err == nil {
		t.Fatal("Expected error for missing successor")
	}
	if !IsConfigurationError(err) {
		t.Errorf("Expected ConfigurationError, got %T", err)
	}
	if !strings.Contains(err.Error(), "ped+ns+ew") {
		t.Errorf("Error should name the missing input: %v", err)
	}
}

func TestNewTableValidation(t *testing.T) {
	lights := Lights{EastWest: Red, NorthSouth: Green, Pedestrian: DontWalk}

	testCases := []struct {
		name  string
		specs []StateSpec
		issue string
	}{
		{"empty", nil, "no states"},
		{
			"zero dwell",
			[]StateSpec{{Lights: lights, Default: Successor(0)}},
			"dwell must be positive",
		},
		{
			"successor out of range",
			[]StateSpec{{Dwell: time.Second, Lights: lights, Next: row(0, 0, 0, 3, 0, 0, 0, 0)}},
			"successor 3",
		},
		{
			"default out of range",
			[]StateSpec{{Dwell: time.Second, Lights: lights, Default: Successor(-1)}},
			"default successor -1",
		},
		{
			"invalid lights",
			[]StateSpec{{Dwell: time.Second, Lights: Lights{EastWest: 7}, Default: Successor(0)}},
			"east/west",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTable(tc.specs)
			if err == nil {
				t.Fatal("Expected error")
			}
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("Expected ConfigurationError, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tc.issue) {
				t.Errorf("Error %q should mention %q", err, tc.issue)
			}
		})
	}
}

func TestNewTableReportsEveryBadRow(t *testing.T) {
	lights := Lights{EastWest: Red, NorthSouth: Green, Pedestrian: DontWalk}
	_, err := NewTable([]StateSpec{
		{Dwell: time.Second, Lights: lights, Default: Successor(5)},
		{Dwell: 0, Lights: lights, Default: Successor(0)},
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "state 0") || !strings.Contains(err.Error(), "state 1") {
		t.Errorf("Expected both rows reported, got %v", err)
	}
}

func TestNextOverridesDefault(t *testing.T) {
	lights := Lights{EastWest: Red, NorthSouth: Green, Pedestrian: DontWalk}
	table, err := NewTable([]StateSpec{
		{Dwell: time.Second, Lights: lights, Default: Successor(0), Next: map[Input]StateID{{Pedestrian: true}: 1}},
		{Dwell: time.Second, Lights: lights, Default: Successor(0)},
	})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	if table.Next(0, Input{Pedestrian: true}) != 1 {
		t.Error("explicit successor should win over default")
	}
	if table.Next(0, Input{CarEastWest: true}) != 0 {
		t.Error("unlisted input should use default")
	}
}

func TestSpecsRebuildSameTable(t *testing.T) {
	table := DefaultTable()
	rebuilt, err := NewTable(table.Specs())
	if err != nil {
		t.Fatalf("NewTable(Specs()) failed: %v", err)
	}
	if !reflect.DeepEqual(table, rebuilt) {
		t.Error("rebuilt table differs from the default")
	}
}
