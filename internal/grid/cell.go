package grid

import (
	"fmt"
	"strings"
)

// Channel offsets within a cell's four bytes.
const (
	ChanDirection = iota
	ChanGained
	ChanLost
	ChanTotal

	Channels
)

// MaxTotal is the capacity of a single cell.
const MaxTotal = 255

// Direction is the movement a cell's particles take along the active axis.
type Direction uint8

const (
	None Direction = iota
	Negative
	Positive
)

func (d Direction) String() string {
	switch d {
	case None:
		return "none"
	case Negative:
		return "negative"
	case Positive:
		return "positive"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// Cell is the decoded form of one lattice position.
type Cell struct {
	Direction Direction
	Gained    uint8
	Lost      uint8
	Total     uint8
}

// Pending returns the total the cell will hold once its transfers commit.
func (c Cell) Pending() uint8 {
	return Commit(c.Total, c.Gained, c.Lost)
}

// Commit applies a loss and a gain to total, saturating to [0, MaxTotal].
func Commit(total, gained, lost uint8) uint8 {
	v := int(total) - int(lost) + int(gained)
	if v < 0 {
		return 0
	}
	if v > MaxTotal {
		return MaxTotal
	}
	return uint8(v)
}

// Axis selects which neighbours a kernel pass exchanges particles with.
type Axis uint8

const (
	Horizontal Axis = iota
	Vertical
)

// Next returns the axis of the following tick.
func (a Axis) Next() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// ParseAxis accepts "horizontal"/"h" and "vertical"/"v".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h", "x":
		return Horizontal, nil
	case "vertical", "v", "y":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("%w: %q", ErrUnknownAxis, s)
}
