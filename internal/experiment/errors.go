package experiment

import (
	"errors"
	"fmt"
)

var (
	// ErrNilConfig indicates New was called without a configuration.
	ErrNilConfig = errors.New("experiment: config is nil")

	// ErrCanceled indicates a run stopped because its context ended.
	ErrCanceled = errors.New("experiment: run canceled by context")

	// ErrInvalidRuns indicates an ensemble of fewer than one run.
	ErrInvalidRuns = errors.New("experiment: ensemble needs at least one run")
)

// TickError wraps a failure with the tick and phase it happened in.
type TickError struct {
	Tick    int
	Phase   string
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (%s): %v", e.Tick, e.Phase, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
