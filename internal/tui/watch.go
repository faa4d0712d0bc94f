// Package tui prints a frame-limited ANSI view of a batch run, for
// terminals where the interactive viewer is unwanted.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/tiltsand/internal/automaton"
	"github.com/san-kum/tiltsand/internal/grid"
	"github.com/san-kum/tiltsand/internal/viz"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Watcher redraws the grid as density glyphs after a tick, at most
// frameRate times a second.
type Watcher struct {
	out       io.Writer
	frameRate int
	maxCols   int
	lastFrame time.Time
	frames    int
	now       func() time.Time
}

var _ automaton.Observer = (*Watcher)(nil)

func NewWatcher(out io.Writer, frameRate, maxCols int) *Watcher {
	return &Watcher{
		out:       out,
		frameRate: max(frameRate, 1),
		maxCols:   maxCols,
		now:       time.Now,
	}
}

// Start hides the cursor. Stop restores it.
func (w *Watcher) Start() { fmt.Fprint(w.out, hideCursor) }
func (w *Watcher) Stop()  { fmt.Fprint(w.out, showCursor) }

// Frames returns how many frames have been drawn.
func (w *Watcher) Frames() int { return w.frames }

func (w *Watcher) OnTick(info automaton.TickInfo, g *grid.Grid) {
	now := w.now()
	if now.Sub(w.lastFrame) < time.Second/time.Duration(w.frameRate) {
		return
	}
	w.lastFrame = now
	w.frames++

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(viz.RenderASCII(g, w.maxCols))
	fmt.Fprintf(&b, "\ntick %-6d pass %-10s hint %-8s bias %3d  mass %d\n",
		info.Tick, info.Axis, info.Hint, info.Bias, g.Mass())
	fmt.Fprint(w.out, b.String())
}
