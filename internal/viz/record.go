package viz

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"

	"github.com/san-kum/tiltsand/internal/grid"
)

// ErrNoFrames is returned when saving a recording that captured nothing.
var ErrNoFrames = errors.New("viz: no frames recorded")

const shadeLevels = 16

// Recorder captures grid totals as GIF frames.
type Recorder struct {
	scale   int
	delay   int
	palette color.Palette
	frames  []*image.Paletted
}

// NewRecorder builds a recorder drawing each cell as a scale×scale square
// in the theme's sand ramp. delay is in hundredths of a second.
func NewRecorder(theme Theme, scale, delay int) *Recorder {
	scale = max(scale, 1)
	palette := make(color.Palette, shadeLevels)
	for i := range palette {
		r, g, b := theme.RGB(levelTotal(i))
		palette[i] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	return &Recorder{scale: scale, delay: delay, palette: palette}
}

func levelTotal(level int) uint8 {
	if level == 0 {
		return 0
	}
	return uint8(level * grid.MaxTotal / (shadeLevels - 1))
}

func totalLevel(total uint8) uint8 {
	if total == 0 {
		return 0
	}
	return uint8(max(1, (int(total)*(shadeLevels-1)+grid.MaxTotal/2)/grid.MaxTotal))
}

// Capture appends the current totals of g as a frame.
func (r *Recorder) Capture(g *grid.Grid) {
	dim := g.Dim()
	side := dim * r.scale
	img := image.NewPaletted(image.Rect(0, 0, side, side), r.palette)
	cells := g.Cells()
	for row := 0; row < dim; row++ {
		for col := 0; col < dim; col++ {
			idx := totalLevel(cells[(row*dim+col)*grid.Channels+grid.ChanTotal])
			for py := 0; py < r.scale; py++ {
				off := img.PixOffset(col*r.scale, row*r.scale+py)
				for px := 0; px < r.scale; px++ {
					img.Pix[off+px] = idx
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *Recorder) Frames() int { return len(r.frames) }

// Encode writes the recording as a looping GIF.
func (r *Recorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}
	return gif.EncodeAll(w, &anim)
}

// Save encodes the recording to path.
func (r *Recorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create recording: %w", err)
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
