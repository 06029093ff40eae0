package core

// States of the default intersection table
const (
	StateNSGreen StateID = iota
	StateNSYellow
	StateEWGreen
	StateEWYellow
	StateWalk
	StateFlash1Off
	StateFlash1On
	StateFlash2Off
	StateFlash2On
	StateFlash3Off
	StateFlash3On
)

// row expands a successor list in input-vector order (none, ew, ns, ns+ew,
// ped, ped+ew, ped+ns, ped+ns+ew).
func row(next ...StateID) map[Input]StateID {
	m := make(map[Input]StateID, InputCombinations)
	for v, id := range next {
		m[InputVector(v).Input()] = id
	}
	return m
}

// IntersectionSpecs returns the rows of the two-approach intersection with a
// pedestrian crossing. Green is held while the crossing approach has no
// demand; a pedestrian request leads through an all-red walk phase and a
// fixed flashing don't-walk clearance that ignores further requests.
func IntersectionSpecs() []StateSpec {
	allRed := func(p PedestrianSignal) Lights {
		return Lights{EastWest: Red, NorthSouth: Red, Pedestrian: p}
	}

	return []StateSpec{
		{
			Name:   "ns_green",
			Dwell:  200 * DwellUnit,
			Lights: Lights{EastWest: Red, NorthSouth: Green, Pedestrian: DontWalk},
			Next:   row(0, 0, 1, 1, 1, 1, 1, 1),
		},
		{
			Name:   "ns_yellow",
			Dwell:  300 * DwellUnit,
			Lights: Lights{EastWest: Red, NorthSouth: Yellow, Pedestrian: DontWalk},
			Next:   row(2, 2, 2, 2, 4, 4, 2, 2),
		},
		{
			Name:   "ew_green",
			Dwell:  200 * DwellUnit,
			Lights: Lights{EastWest: Green, NorthSouth: Red, Pedestrian: DontWalk},
			Next:   row(2, 3, 2, 3, 3, 3, 3, 3),
		},
		{
			Name:   "ew_yellow",
			Dwell:  300 * DwellUnit,
			Lights: Lights{EastWest: Yellow, NorthSouth: Red, Pedestrian: DontWalk},
			Next:   row(0, 0, 0, 0, 4, 0, 4, 4),
		},
		{
			Name:   "walk",
			Dwell:  200 * DwellUnit,
			Lights: allRed(Walk),
			Next:   row(4, 5, 5, 5, 4, 5, 5, 5),
		},
		{Name: "flash1_off", Dwell: 50 * DwellUnit, Lights: allRed(Dark), Default: Successor(StateFlash1On)},
		{Name: "flash1_on", Dwell: 50 * DwellUnit, Lights: allRed(DontWalk), Default: Successor(StateFlash2Off)},
		{Name: "flash2_off", Dwell: 50 * DwellUnit, Lights: allRed(Dark), Default: Successor(StateFlash2On)},
		{Name: "flash2_on", Dwell: 50 * DwellUnit, Lights: allRed(DontWalk), Default: Successor(StateFlash3Off)},
		{Name: "flash3_off", Dwell: 50 * DwellUnit, Lights: allRed(Dark), Default: Successor(StateFlash3On)},
		{
			// Re-entry: picks the next vehicle phase from current demand.
			Name:   "flash3_on",
			Dwell:  50 * DwellUnit,
			Lights: allRed(DontWalk),
			Next:   row(0, 0, 2, 0, 4, 0, 2, 0),
		},
	}
}

// DefaultTable returns the validated intersection table
func DefaultTable() *Table {
	return MustTable(IntersectionSpecs())
}
