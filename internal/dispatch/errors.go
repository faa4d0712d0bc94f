package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRange is returned when a dispatch covers no indices.
	ErrEmptyRange = errors.New("dispatch: empty range")

	// ErrInvalidRange is returned for negative counts or begin > end.
	ErrInvalidRange = errors.New("dispatch: invalid range")

	// ErrClosed is returned when dispatching on a closed pool.
	ErrClosed = errors.New("dispatch: pool closed")
)

// TaskError reports a task that panicked while processing its chunk.
type TaskError struct {
	Chunk Chunk
	Value any
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("dispatch: task panicked on [%d, %d): %v", e.Chunk.Begin, e.Chunk.End, e.Value)
}
