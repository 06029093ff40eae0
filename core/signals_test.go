package core

import (
	"errors"
	"testing"
)

func TestPackMatchesBoardPortValues(t *testing.T) {
	// Traffic port (low six bits) and walk port values of the reference board.
	testCases := []struct {
		lights  Lights
		traffic uint8
		dontW   bool
		walk    bool
	}{
		{Lights{EastWest: Red, NorthSouth: Green, Pedestrian: DontWalk}, 0x21, true, false},
		{Lights{EastWest: Red, NorthSouth: Yellow, Pedestrian: DontWalk}, 0x22, true, false},
		{Lights{EastWest: Green, NorthSouth: Red, Pedestrian: DontWalk}, 0x0C, true, false},
		{Lights{EastWest: Yellow, NorthSouth: Red, Pedestrian: DontWalk}, 0x14, true, false},
		{Lights{EastWest: Red, NorthSouth: Red, Pedestrian: Walk}, 0x24, false, true},
		{Lights{EastWest: Red, NorthSouth: Red, Pedestrian: Dark}, 0x24, false, false},
	}

	for _, tc := range testCases {
		v, err := Pack(tc.lights)
		if err != nil {
			t.Fatalf("Pack(%v) failed: %v", tc.lights, err)
		}
		if got := uint8(v) & 0x3F; got != tc.traffic {
			t.Errorf("Pack(%v) traffic bits = %#02x, expected %#02x", tc.lights, got, tc.traffic)
		}
		if got := v&OutDontWalk != 0; got != tc.dontW {
			t.Errorf("Pack(%v) don't walk = %v, expected %v", tc.lights, got, tc.dontW)
		}
		if got := v&OutWalk != 0; got != tc.walk {
			t.Errorf("Pack(%v) walk = %v, expected %v", tc.lights, got, tc.walk)
		}

		back, err := Unpack(v)
		if err != nil {
			t.Fatalf("Unpack(%08b) failed: %v", uint8(v), err)
		}
		if back != tc.lights {
			t.Errorf("Unpack(Pack(%v)) = %v", tc.lights, back)
		}
	}
}

func TestUnpackRejectsInconsistentVectors(t *testing.T) {
	bad := []OutputVector{
		// no lamp on either approach
		0,
		// two lamps on north/south
		OutNSGreen | OutNSRed | OutEWRed,
		// east/west dark
		OutNSRed,
		// both pedestrian lamps
		OutNSRed | OutEWRed | OutWalk | OutDontWalk,
	}
	for _, v := range bad {
		if _, err := Unpack(v); !errors.Is(err, ErrInvalidOutput) {
			t.Errorf("Unpack(%08b) error = %v, expected ErrInvalidOutput", uint8(v), err)
		}
	}
}

func TestPackRejectsUnknownSignals(t *testing.T) {
	if _, err := Pack(Lights{EastWest: ApproachSignal(9)}); !errors.Is(err, ErrInvalidOutput) {
		t.Errorf("expected ErrInvalidOutput, got %v", err)
	}
	if _, err := Pack(Lights{Pedestrian: PedestrianSignal(9)}); !errors.Is(err, ErrInvalidOutput) {
		t.Errorf("expected ErrInvalidOutput, got %v", err)
	}
}

func TestInputVectorBitOrder(t *testing.T) {
	if v := (Input{CarEastWest: true}).Vector(); v != 1 {
		t.Errorf("east/west car should be bit0, got %03b", v)
	}
	if v := (Input{CarNorthSouth: true}).Vector(); v != 2 {
		t.Errorf("north/south car should be bit1, got %03b", v)
	}
	if v := (Input{Pedestrian: true}).Vector(); v != 4 {
		t.Errorf("pedestrian should be bit2, got %03b", v)
	}

	for i, in := range AllInputs() {
		if in.Vector() != InputVector(i) {
			t.Errorf("AllInputs()[%d] = %v packs to %d", i, in, in.Vector())
		}
	}

	if in := InputVector(0xF9).Input(); in != (Input{CarEastWest: true}) {
		t.Errorf("high bits should be ignored, got %v", in)
	}
}

func TestParseInputNames(t *testing.T) {
	for _, in := range AllInputs() {
		parsed, err := ParseInput(in.String())
		if err != nil {
			t.Fatalf("ParseInput(%q) failed: %v", in.String(), err)
		}
		if parsed != in {
			t.Errorf("ParseInput(%q) = %v, expected %v", in.String(), parsed, in)
		}
	}

	in, err := ParseInput("ew + PED")
	if err != nil {
		t.Fatalf("ParseInput failed: %v", err)
	}
	if in != (Input{CarEastWest: true, Pedestrian: true}) {
		t.Errorf("unexpected input %v", in)
	}

	if _, err := ParseInput("ped+bus"); err == nil {
		t.Error("expected error for unknown sensor")
	}
}

func TestParseSignals(t *testing.T) {
	for _, s := range []ApproachSignal{Red, Yellow, Green} {
		got, err := ParseApproachSignal(s.String())
		if err != nil || got != s {
			t.Errorf("ParseApproachSignal(%q) = %v, %v", s.String(), got, err)
		}
	}
	for _, s := range []PedestrianSignal{DontWalk, Walk, Dark} {
		got, err := ParsePedestrianSignal(s.String())
		if err != nil || got != s {
			t.Errorf("ParsePedestrianSignal(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseApproachSignal("blue"); err == nil {
		t.Error("expected error for blue")
	}
}
