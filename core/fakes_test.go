package core

import "time"

// scriptedInputs returns one scripted vector per sample, then fallback
type scriptedInputs struct {
	script   []InputVector
	fallback InputVector
	reads    int
	err      error
}

func (s *scriptedInputs) ReadInputs() (InputVector, error) {
	if s.err != nil {
		return 0, s.err
	}
	v := s.fallback
	if s.reads < len(s.script) {
		v = s.script[s.reads]
	}
	s.reads++
	return v, nil
}

// recordingOutputs keeps every vector written
type recordingOutputs struct {
	writes []OutputVector
	err    error
}

func (r *recordingOutputs) WriteOutputs(v OutputVector) error {
	if r.err != nil {
		return r.err
	}
	r.writes = append(r.writes, v)
	return nil
}

// fakeDelay advances a virtual clock instead of sleeping
type fakeDelay struct {
	now    time.Duration
	waits  []time.Duration
	onWait func(time.Duration)
}

func (f *fakeDelay) Wait(d time.Duration) {
	f.waits = append(f.waits, d)
	if f.onWait != nil {
		f.onWait(d)
	}
	f.now += d
}

// MockGPIODriver is a test implementation of GPIODriver
type MockGPIODriver struct {
	bank     uint32
	outputs  map[GPIOPin]bool
	pullUps  map[GPIOPin]bool
	pullDown map[GPIOPin]bool
	writes   int
}

func NewMockGPIODriver() *MockGPIODriver {
	return &MockGPIODriver{
		outputs:  make(map[GPIOPin]bool),
		pullUps:  make(map[GPIOPin]bool),
		pullDown: make(map[GPIOPin]bool),
	}
}

func (m *MockGPIODriver) ConfigureOutput(pin GPIOPin) error {
	m.outputs[pin] = true
	return nil
}

func (m *MockGPIODriver) ConfigureInputPullUp(pin GPIOPin) error {
	m.pullUps[pin] = true
	return nil
}

func (m *MockGPIODriver) ConfigureInputPullDown(pin GPIOPin) error {
	m.pullDown[pin] = true
	return nil
}

func (m *MockGPIODriver) WritePins(values, mask uint32) error {
	m.bank = (m.bank &^ mask) | (values & mask)
	m.writes++
	return nil
}

func (m *MockGPIODriver) ReadPins() (uint32, error) {
	return m.bank, nil
}
