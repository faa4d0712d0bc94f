package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/tiltsand/internal/automaton"
	"github.com/san-kum/tiltsand/internal/grid"
)

func TestWatcher_FrameLimit(t *testing.T) {
	var buf bytes.Buffer
	w := NewWatcher(&buf, 10, 0)
	clock := time.Unix(100, 0)
	w.now = func() time.Time { return clock }

	g, _ := grid.New(4)
	g.SetTotal(0, 0, 255)
	info := automaton.TickInfo{Tick: 1, Axis: grid.Vertical, Bias: 100, Hint: grid.None}

	w.OnTick(info, g)
	w.OnTick(info, g)
	if w.Frames() != 1 {
		t.Fatalf("expected 1 frame inside the interval, got %d", w.Frames())
	}

	clock = clock.Add(150 * time.Millisecond)
	w.OnTick(info, g)
	if w.Frames() != 2 {
		t.Errorf("expected 2 frames, got %d", w.Frames())
	}

	out := buf.String()
	if strings.Count(out, clearScreen) != 2 {
		t.Errorf("expected two redraws")
	}
	if !strings.Contains(out, "@   ") || !strings.Contains(out, "mass 255") {
		t.Errorf("frame missing content: %q", out)
	}
}

func TestWatcher_CursorToggles(t *testing.T) {
	var buf bytes.Buffer
	w := NewWatcher(&buf, 0, 0)
	w.Start()
	w.Stop()
	if buf.String() != hideCursor+showCursor {
		t.Errorf("unexpected output %q", buf.String())
	}
}
