package stamp

import "errors"

var (
	// ErrInvalidSize indicates a non-positive stamp dimension.
	ErrInvalidSize = errors.New("stamp: size must be positive")

	// ErrNotSquare indicates width != height; the field is indexed with a
	// single stride, so only square stamps are supported.
	ErrNotSquare = errors.New("stamp: field must be square")

	// ErrOffGrid indicates an impulse rectangle that covers no grid cell.
	ErrOffGrid = errors.New("stamp: impulse does not cover the grid")

	// ErrInvalidImpulse indicates non-finite or negative impulse parameters.
	ErrInvalidImpulse = errors.New("stamp: invalid impulse parameters")
)
