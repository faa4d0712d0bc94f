package grid

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNew(t *testing.T) {
	g, err := New(DefaultDim)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if len(g.Cells()) != DefaultDim*DefaultDim*Channels {
		t.Errorf("expected %d bytes, got %d", DefaultDim*DefaultDim*Channels, len(g.Cells()))
	}
	for i, b := range g.Cells() {
		if b != 0 {
			t.Fatalf("byte %d not zeroed", i)
		}
	}
	if g.NextPass() != Vertical {
		t.Errorf("expected first pass vertical, got %v", g.NextPass())
	}
}

func TestNew_InvalidDim(t *testing.T) {
	for _, dim := range []int{0, -4} {
		if _, err := New(dim); !errors.Is(err, ErrInvalidDim) {
			t.Errorf("New(%d): expected ErrInvalidDim, got %v", dim, err)
		}
	}
}

func TestCell_Channels(t *testing.T) {
	g, _ := New(8)
	g.Set(2, 5, Cell{Direction: Positive, Gained: 1, Lost: 0, Total: 9})

	o := g.Index(2, 5) * Channels
	buf := g.Cells()
	if buf[o] != 2 || buf[o+1] != 1 || buf[o+2] != 0 || buf[o+3] != 9 {
		t.Errorf("unexpected channel layout: %v", buf[o:o+4])
	}

	row, col := g.Coords(g.Index(2, 5))
	if row != 2 || col != 5 {
		t.Errorf("coords round trip gave (%d, %d)", row, col)
	}
}

func TestCommit_Saturates(t *testing.T) {
	tests := []struct {
		name                string
		total, gained, lost uint8
		want                uint8
	}{
		{"plain gain", 4, 1, 0, 5},
		{"plain loss", 4, 0, 1, 3},
		{"both", 4, 1, 1, 4},
		{"overflow", 255, 1, 0, 255},
		{"underflow", 0, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Commit(tt.total, tt.gained, tt.lost); got != tt.want {
				t.Errorf("Commit(%d, %d, %d) = %d, want %d", tt.total, tt.gained, tt.lost, got, tt.want)
			}
		})
	}
}

func TestAxis_Alternates(t *testing.T) {
	g, _ := New(4, WithFirstPass(Horizontal))
	want := []Axis{Vertical, Horizontal, Vertical, Horizontal}
	for i, w := range want {
		if got := g.Advance(); got != w {
			t.Errorf("advance %d: got %v, want %v", i, got, w)
		}
	}
}

func TestParseAxis(t *testing.T) {
	if a, err := ParseAxis("Horizontal"); err != nil || a != Horizontal {
		t.Errorf("ParseAxis(Horizontal) = %v, %v", a, err)
	}
	if a, err := ParseAxis("v"); err != nil || a != Vertical {
		t.Errorf("ParseAxis(v) = %v, %v", a, err)
	}
	if _, err := ParseAxis("diagonal"); !errors.Is(err, ErrUnknownAxis) {
		t.Errorf("expected ErrUnknownAxis, got %v", err)
	}
}

func TestGravityBias_Identity(t *testing.T) {
	g, _ := New(4)
	for _, a := range []Axis{Horizontal, Vertical} {
		if bias := g.GravityBias(a); bias != 100 {
			t.Errorf("%v bias = %d, want 100", a, bias)
		}
		if hint := g.Hint(a); hint != None {
			t.Errorf("%v hint = %v, want none", a, hint)
		}
	}
}

func TestGravityBias_Tilted(t *testing.T) {
	tests := []struct {
		name  string
		axis  r3.Vec
		angle float64
		pass  Axis
		want  Direction
	}{
		{"roll right", r3.Vec{Z: 1}, -math.Pi / 2, Horizontal, Positive},
		{"roll left", r3.Vec{Z: 1}, math.Pi / 2, Horizontal, Negative},
		{"pitch forward", r3.Vec{X: 1}, -math.Pi / 2, Vertical, Positive},
		{"pitch back", r3.Vec{X: 1}, math.Pi / 2, Vertical, Negative},
		{"small roll", r3.Vec{Z: 1}, 0.2, Horizontal, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := New(4)
			if !g.Rotate(tt.axis, tt.angle) {
				t.Fatal("rotation ignored")
			}
			if got := g.Hint(tt.pass); got != tt.want {
				t.Errorf("hint = %v (bias %d), want %v", got, g.GravityBias(tt.pass), tt.want)
			}
		})
	}
}

func TestRotate_NegligibleAxis(t *testing.T) {
	g, _ := New(4)
	if g.Rotate(r3.Vec{X: 0.5}, 1.0) {
		t.Error("expected short axis to be ignored")
	}
	gl := g.OrientationGL()
	for i, v := range gl {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if v != want {
			t.Fatalf("orientation[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestOrientationGL_ColumnMajor(t *testing.T) {
	g, _ := New(4)
	g.Rotate(r3.Vec{Z: 1}, math.Pi/2)

	m := g.Orientation()
	gl := g.OrientationGL()
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			if math.Abs(float64(gl[c*4+r])-m.At(r, c)) > 1e-6 {
				t.Errorf("gl[%d] = %v, want %v", c*4+r, gl[c*4+r], m.At(r, c))
			}
		}
	}
}

func TestHintFor_Thresholds(t *testing.T) {
	tests := []struct {
		bias uint8
		want Direction
	}{
		{0, Negative}, {40, Negative}, {41, None}, {100, None}, {159, None}, {160, Positive}, {200, Positive},
	}
	for _, tt := range tests {
		if got := HintFor(tt.bias); got != tt.want {
			t.Errorf("HintFor(%d) = %v, want %v", tt.bias, got, tt.want)
		}
	}
}

func TestFill_Patterns(t *testing.T) {
	g, _ := New(8)

	if err := g.Fill(PatternRamp, 0); err != nil {
		t.Fatalf("ramp: %v", err)
	}
	if g.At(0, 1).Total != 4 || g.At(2, 4).Total != 0 {
		t.Errorf("unexpected ramp totals %d, %d", g.At(0, 1).Total, g.At(2, 4).Total)
	}

	if err := g.Fill(PatternRandom, 7); err != nil {
		t.Fatalf("random: %v", err)
	}
	first := g.Snapshot()
	_ = g.Fill(PatternRandom, 7)
	for i := range first {
		if first[i] != g.Cells()[i] {
			t.Fatal("random fill is not reproducible for a fixed seed")
		}
	}

	if err := g.Fill(PatternPile, 0); err != nil {
		t.Fatalf("pile: %v", err)
	}
	if g.Mass() != MaxTotal {
		t.Errorf("pile mass = %d, want %d", g.Mass(), MaxTotal)
	}

	if err := g.Fill("sponge", 0); !errors.Is(err, ErrUnknownPattern) {
		t.Errorf("expected ErrUnknownPattern, got %v", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	g, _ := New(4)
	g.SetTotal(1, 1, 42)
	frame := g.Snapshot()
	g.Clear()

	if err := g.Restore(frame); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if g.At(1, 1).Total != 42 {
		t.Errorf("expected total 42, got %d", g.At(1, 1).Total)
	}
	if err := g.Restore(frame[:3]); !errors.Is(err, ErrFrameSize) {
		t.Errorf("expected ErrFrameSize, got %v", err)
	}
}

func TestFreeze_IsIndependent(t *testing.T) {
	g, _ := New(4)
	g.SetTotal(0, 0, 3)
	view := g.Freeze()
	g.SetTotal(0, 0, 9)
	if view[ChanTotal] != 3 {
		t.Errorf("frozen view changed with live buffer: %d", view[ChanTotal])
	}
}
