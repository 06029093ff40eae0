package core

import (
	"errors"
	"fmt"
	"strings"
)

// ApproachSignal is the aspect shown to one traffic approach
type ApproachSignal uint8

const (
	Red ApproachSignal = iota
	Yellow
	Green
)

func (s ApproachSignal) String() string {
	switch s {
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	}
	return fmt.Sprintf("approach(%d)", uint8(s))
}

// PedestrianSignal is the aspect shown on the pedestrian head.
// Dark means both lamps are off, which is half of the flashing
// don't-walk clearance.
type PedestrianSignal uint8

const (
	DontWalk PedestrianSignal = iota
	Walk
	Dark
)

func (s PedestrianSignal) String() string {
	switch s {
	case DontWalk:
		return "dont_walk"
	case Walk:
		return "walk"
	case Dark:
		return "dark"
	}
	return fmt.Sprintf("pedestrian(%d)", uint8(s))
}

// Lights is the complete Moore output of a state
type Lights struct {
	EastWest   ApproachSignal
	NorthSouth ApproachSignal
	Pedestrian PedestrianSignal
}

func (l Lights) String() string {
	return fmt.Sprintf("ew=%s ns=%s ped=%s", l.EastWest, l.NorthSouth, l.Pedestrian)
}

// OutputVector is the packed light combination written to hardware in a
// single operation. The low six bits are the lamps of the two approaches.
type OutputVector uint8

// Output vector bits
const (
	OutNSGreen  OutputVector = 1 << 0
	OutNSYellow OutputVector = 1 << 1
	OutNSRed    OutputVector = 1 << 2
	OutEWGreen  OutputVector = 1 << 3
	OutEWYellow OutputVector = 1 << 4
	OutEWRed    OutputVector = 1 << 5
	OutDontWalk OutputVector = 1 << 6
	OutWalk     OutputVector = 1 << 7

	OutputBits = 8
)

// ErrInvalidOutput is returned when an output vector does not describe a
// displayable light combination.
var ErrInvalidOutput = errors.New("invalid output vector")

// approachBits returns the red/yellow/green bits of the approach whose red
// lamp sits at shift+2.
func approachBits(s ApproachSignal, shift uint) (OutputVector, bool) {
	switch s {
	case Green:
		return 1 << shift, true
	case Yellow:
		return 1 << (shift + 1), true
	case Red:
		return 1 << (shift + 2), true
	}
	return 0, false
}

// Pack converts structured lights into the boundary output vector
func Pack(l Lights) (OutputVector, error) {
	ns, ok := approachBits(l.NorthSouth, 0)
	if !ok {
		return 0, fmt.Errorf("%w: north/south %s", ErrInvalidOutput, l.NorthSouth)
	}
	ew, ok := approachBits(l.EastWest, 3)
	if !ok {
		return 0, fmt.Errorf("%w: east/west %s", ErrInvalidOutput, l.EastWest)
	}

	v := ns | ew
	switch l.Pedestrian {
	case DontWalk:
		v |= OutDontWalk
	case Walk:
		v |= OutWalk
	case Dark:
	default:
		return 0, fmt.Errorf("%w: pedestrian %s", ErrInvalidOutput, l.Pedestrian)
	}
	return v, nil
}

// MustPack is Pack for values known to be valid
func MustPack(l Lights) OutputVector {
	v, err := Pack(l)
	if err != nil {
		panic(err)
	}
	return v
}

func unpackApproach(v OutputVector, shift uint) (ApproachSignal, bool) {
	switch (v >> shift) & 0x7 {
	case 0x1:
		return Green, true
	case 0x2:
		return Yellow, true
	case 0x4:
		return Red, true
	}
	return 0, false
}

// Unpack decodes a boundary output vector. Exactly one lamp must be lit per
// approach and at most one on the pedestrian head.
func Unpack(v OutputVector) (Lights, error) {
	var l Lights
	var ok bool

	if l.NorthSouth, ok = unpackApproach(v, 0); !ok {
		return Lights{}, fmt.Errorf("%w: north/south bits %03b", ErrInvalidOutput, uint8(v)&0x7)
	}
	if l.EastWest, ok = unpackApproach(v, 3); !ok {
		return Lights{}, fmt.Errorf("%w: east/west bits %03b", ErrInvalidOutput, uint8(v>>3)&0x7)
	}

	switch v & (OutDontWalk | OutWalk) {
	case OutDontWalk:
		l.Pedestrian = DontWalk
	case OutWalk:
		l.Pedestrian = Walk
	case 0:
		l.Pedestrian = Dark
	default:
		return Lights{}, fmt.Errorf("%w: walk and don't walk both lit", ErrInvalidOutput)
	}
	return l, nil
}

// InputVector is the packed sensor reading used as the successor key.
// Bit order is a fixed contract: bit0 east/west car, bit1 north/south car,
// bit2 pedestrian.
type InputVector uint8

const (
	InCarEastWest   InputVector = 1 << 0
	InCarNorthSouth InputVector = 1 << 1
	InPedestrian    InputVector = 1 << 2

	InputMask         InputVector = 0x7
	InputBits                     = 3
	InputCombinations             = 1 << InputBits
)

// Input is the structured form of one sensor sample
type Input struct {
	CarEastWest   bool
	CarNorthSouth bool
	Pedestrian    bool
}

// Vector packs the input using the fixed bit order
func (in Input) Vector() InputVector {
	var v InputVector
	if in.CarEastWest {
		v |= InCarEastWest
	}
	if in.CarNorthSouth {
		v |= InCarNorthSouth
	}
	if in.Pedestrian {
		v |= InPedestrian
	}
	return v
}

// String returns the canonical input name used in table files, e.g.
// "none", "ew", "ped+ns".
func (in Input) String() string {
	var parts []string
	if in.Pedestrian {
		parts = append(parts, "ped")
	}
	if in.CarNorthSouth {
		parts = append(parts, "ns")
	}
	if in.CarEastWest {
		parts = append(parts, "ew")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Input unpacks the vector. Bits above bit2 are ignored.
func (v InputVector) Input() Input {
	v &= InputMask
	return Input{
		CarEastWest:   v&InCarEastWest != 0,
		CarNorthSouth: v&InCarNorthSouth != 0,
		Pedestrian:    v&InPedestrian != 0,
	}
}

func (v InputVector) String() string {
	return v.Input().String()
}

// AllInputs returns the eight input combinations in vector order
func AllInputs() []Input {
	inputs := make([]Input, InputCombinations)
	for v := 0; v < InputCombinations; v++ {
		inputs[v] = InputVector(v).Input()
	}
	return inputs
}

// ParseInput parses a canonical input name. Parts may appear in any order
// and are separated by '+'.
func ParseInput(s string) (Input, error) {
	var in Input
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "none" || s == "" {
		return in, nil
	}
	for _, part := range strings.Split(s, "+") {
		switch strings.TrimSpace(part) {
		case "ew":
			in.CarEastWest = true
		case "ns":
			in.CarNorthSouth = true
		case "ped":
			in.Pedestrian = true
		default:
			return Input{}, fmt.Errorf("unknown input %q in %q", part, s)
		}
	}
	return in, nil
}

// ParseApproachSignal parses "red", "yellow" or "green"
func ParseApproachSignal(s string) (ApproachSignal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return Red, nil
	case "yellow":
		return Yellow, nil
	case "green":
		return Green, nil
	}
	return 0, fmt.Errorf("unknown approach signal %q", s)
}

// ParsePedestrianSignal parses "walk", "dont_walk" or "dark"
func ParsePedestrianSignal(s string) (PedestrianSignal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "walk":
		return Walk, nil
	case "dont_walk", "dontwalk", "don't walk":
		return DontWalk, nil
	case "dark", "off":
		return Dark, nil
	}
	return 0, fmt.Errorf("unknown pedestrian signal %q", s)
}
