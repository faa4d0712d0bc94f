package grid

import "errors"

var (
	// ErrInvalidDim indicates a non-positive grid side.
	ErrInvalidDim = errors.New("grid: dimension must be positive")

	// ErrFrameSize indicates a frame whose length does not match the grid.
	ErrFrameSize = errors.New("grid: frame size mismatch")

	// ErrUnknownPattern indicates a seed pattern name that is not recognized.
	ErrUnknownPattern = errors.New("grid: unknown seed pattern")

	// ErrUnknownAxis indicates an axis name that is not recognized.
	ErrUnknownAxis = errors.New("grid: unknown axis")
)
