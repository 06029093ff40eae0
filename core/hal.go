package core

import "time"

// InputReader samples the three presence sensors.
// Implementations must be side-effect free and safe to call at any time.
type InputReader interface {
	ReadInputs() (InputVector, error)
}

// OutputWriter asserts a complete light combination. The write must not be
// observably partial: all lamps change together.
type OutputWriter interface {
	WriteOutputs(v OutputVector) error
}

// Delay blocks the calling goroutine for at least d.
// Precision below d is the implementation's concern.
type Delay interface {
	Wait(d time.Duration)
}

// InputFunc adapts a function to InputReader
type InputFunc func() (InputVector, error)

func (f InputFunc) ReadInputs() (InputVector, error) {
	return f()
}

// OutputFunc adapts a function to OutputWriter
type OutputFunc func(OutputVector) error

func (f OutputFunc) WriteOutputs(v OutputVector) error {
	return f(v)
}

// DelayFunc adapts a function to Delay
type DelayFunc func(time.Duration)

func (f DelayFunc) Wait(d time.Duration) {
	f(d)
}
