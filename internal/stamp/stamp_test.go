package stamp_test

import (
	"bytes"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tiltsand/internal/dispatch"
	"github.com/san-kum/tiltsand/internal/grid"
	"github.com/san-kum/tiltsand/internal/stamp"
)

var _ = Describe("Field generation", func() {
	var (
		pool *dispatch.Pool
		s    *stamp.Stamp
	)

	BeforeEach(func() {
		pool = dispatch.New(4)
		var err error
		s, err = stamp.Default(stamp.Ellipse, stamp.WithPool(pool))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		pool.Close()
	})

	It("is square with the default side", func() {
		Expect(s.Size()).To(Equal(stamp.DefaultSize))
		Expect(s.Variety()).To(Equal(stamp.Ellipse))
	})

	It("is point symmetric about the centre", func() {
		n := s.Size()
		for row := 0; row < n; row++ {
			for col := 0; col < n; col++ {
				v := s.At(row, col)
				w := s.At(n-1-row, n-1-col)
				Expect(v.DX).To(Equal(-w.DX), "dx at (%d, %d)", row, col)
				Expect(v.DY).To(Equal(-w.DY), "dy at (%d, %d)", row, col)
			}
		}
	})

	It("is zero outside the inscribed circle", func() {
		n := float64(s.Size())
		c := (n - 1) / 2
		for row := 0; row < s.Size(); row++ {
			for col := 0; col < s.Size(); col++ {
				dx := (float64(col) - c) * 2 / n
				dy := (float64(row) - c) * 2 / n
				if dx*dx+dy*dy > 1 {
					Expect(s.At(row, col)).To(Equal(stamp.Vector{}), "cell (%d, %d)", row, col)
				}
			}
		}
	})

	It("points away from the centre with the strongest push in the middle", func() {
		mid := s.Size() / 2
		Expect(s.At(0, 0)).To(Equal(stamp.Vector{}))

		upperLeft := s.At(mid-1, mid-1)
		Expect(upperLeft.DX).To(BeNumerically("<", 0))
		Expect(upperLeft.DY).To(BeNumerically("<", 0))

		lowerRight := s.At(mid, mid)
		Expect(lowerRight.DX).To(BeNumerically(">", 0))
		Expect(lowerRight.DY).To(BeNumerically(">", 0))

		centre := math.Hypot(float64(lowerRight.DX), float64(lowerRight.DY))
		edge := s.At(mid, s.Size()-4)
		Expect(centre).To(BeNumerically(">", math.Hypot(float64(edge.DX), float64(edge.DY))))
		Expect(centre).To(BeNumerically("<=", 128))
	})

	It("matches the inline build when built on a pool", func() {
		inline, err := stamp.New(stamp.Ellipse, 64, 64)
		Expect(err).NotTo(HaveOccurred())
		for row := 0; row < 64; row++ {
			for col := 0; col < 64; col++ {
				Expect(inline.At(row, col)).To(Equal(s.At(row, col)))
			}
		}
	})

	It("falls back to ellipse with a warning for unknown varieties", func() {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		fallback, err := stamp.New(stamp.ParseVariety("star"), 16, 16, stamp.WithLogger(logger))
		Expect(err).NotTo(HaveOccurred())
		Expect(fallback.Variety()).To(Equal(stamp.Ellipse))
		Expect(buf.String()).To(ContainSubstring("level=WARN"))
		Expect(buf.String()).To(ContainSubstring("falling back to ellipse"))
	})

	DescribeTable("rejects bad dimensions",
		func(w, h int, want error) {
			_, err := stamp.New(stamp.Ellipse, w, h)
			Expect(err).To(MatchError(want))
		},
		Entry("zero width", 0, 16, stamp.ErrInvalidSize),
		Entry("negative height", 16, -1, stamp.ErrInvalidSize),
		Entry("non-square", 32, 16, stamp.ErrNotSquare),
	)
})

var _ = Describe("Clipping", func() {
	DescribeTable("rectangles inside the unit interval are not clipped",
		func(size, center float64) {
			Expect(stamp.ClipStart(size, center)).To(Equal(0.0))
			Expect(stamp.ClipEnd(size, center)).To(Equal(1.0))
		},
		Entry("full", 1.0, 0.5),
		Entry("small", 0.2, 0.3),
		Entry("touching zero", 0.4, 0.2),
		Entry("degenerate", 0.0, 0.5),
	)

	It("clips the part hanging off the low edge", func() {
		Expect(stamp.ClipStart(1.0, 0.25)).To(BeNumerically("~", 0.25, 1e-12))
		Expect(stamp.ClipEnd(1.0, 0.25)).To(Equal(1.0))
	})

	It("clips the part hanging off the high edge", func() {
		Expect(stamp.ClipStart(0.5, 1.0)).To(Equal(0.0))
		Expect(stamp.ClipEnd(0.5, 1.0)).To(BeNumerically("~", 0.5, 1e-12))
	})

	DescribeTable("rectangles outside the unit square yield an empty placement",
		func(imp stamp.Impulse) {
			p, err := stamp.Place(imp, 64, 64)
			Expect(err).To(MatchError(stamp.ErrOffGrid))
			Expect(p.Dest.Empty()).To(BeTrue())
			Expect(p.Source.Empty()).To(BeTrue())
		},
		Entry("right of the grid", stamp.Impulse{CenterX: 2, CenterY: 0.5, Width: 0.5, Height: 0.5}),
		Entry("left of the grid", stamp.Impulse{CenterX: -1, CenterY: 0.5, Width: 0.5, Height: 0.5}),
		Entry("below the grid", stamp.Impulse{CenterX: 0.5, CenterY: 1.5, Width: 0.5, Height: 0.5}),
		Entry("zero width", stamp.Impulse{CenterX: 0.5, CenterY: 0.5, Width: 0, Height: 0.5}),
	)

	It("maps a centred full-size impulse one to one", func() {
		p, err := stamp.Place(stamp.Impulse{CenterX: 0.5, CenterY: 0.5, Width: 1, Height: 1}, 64, 64)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Source).To(Equal(stamp.Rect{Row: 0, Col: 0, Height: 64, Width: 64}))
		Expect(p.Dest).To(Equal(stamp.Rect{Row: 0, Col: 0, Height: 64, Width: 64}))
	})

	It("keeps only the visible quadrant of a corner impulse", func() {
		p, err := stamp.Place(stamp.Impulse{CenterX: 0, CenterY: 0, Width: 0.5, Height: 0.5}, 64, 128)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Source).To(Equal(stamp.Rect{Row: 32, Col: 32, Height: 32, Width: 32}))
		Expect(p.Dest).To(Equal(stamp.Rect{Row: 0, Col: 0, Height: 32, Width: 32}))
	})

	It("rejects non-finite and negative parameters", func() {
		_, err := stamp.Place(stamp.Impulse{CenterX: math.NaN(), Width: 1, Height: 1}, 64, 64)
		Expect(err).To(MatchError(stamp.ErrInvalidImpulse))

		_, err = stamp.Place(stamp.Impulse{CenterX: 0.5, CenterY: 0.5, Width: 1, Height: 1, Strength: -1}, 64, 64)
		Expect(err).To(MatchError(stamp.ErrInvalidImpulse))
	})
})

var _ = Describe("Apply", func() {
	var (
		pool *dispatch.Pool
		g    *grid.Grid
		s    *stamp.Stamp
	)

	BeforeEach(func() {
		pool = dispatch.New(8)
		var err error
		g, err = grid.New(64)
		Expect(err).NotTo(HaveOccurred())
		s, err = stamp.Default(stamp.Ellipse)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		pool.Close()
	})

	expected := func(c int8) grid.Direction {
		switch {
		case c < 0:
			return grid.Negative
		case c > 0:
			return grid.Positive
		}
		return grid.None
	}

	DescribeTable("sets directions from the sampled component sign",
		func(axis grid.Axis) {
			p, err := stamp.Place(stamp.Impulse{CenterX: 0.5, CenterY: 0.5, Width: 1, Height: 1, Strength: 1}, s.Size(), g.Dim())
			Expect(err).NotTo(HaveOccurred())
			Expect(stamp.Apply(pool, g, s, p, axis)).To(Succeed())

			set := 0
			for row := 0; row < 64; row++ {
				for col := 0; col < 64; col++ {
					v := s.At(row, col)
					c := v.DX
					if axis == grid.Vertical {
						c = v.DY
					}
					got := g.At(row, col).Direction
					Expect(got).To(Equal(expected(c)), "cell (%d, %d)", row, col)
					if got != grid.None {
						set++
					}
				}
			}
			// Roughly the inscribed circle, pi/4 of the square.
			Expect(set).To(BeNumerically(">", 64*64/2))
		},
		Entry("horizontal", grid.Horizontal),
		Entry("vertical", grid.Vertical),
	)

	It("leaves cells outside the unit circle untouched", func() {
		p, _ := stamp.Place(stamp.Impulse{CenterX: 0.5, CenterY: 0.5, Width: 1, Height: 1}, s.Size(), g.Dim())
		Expect(stamp.Apply(pool, g, s, p, grid.Horizontal)).To(Succeed())

		for row := 0; row < 64; row++ {
			for col := 0; col < 64; col++ {
				dx := (float64(col) - 31.5) / 32
				dy := (float64(row) - 31.5) / 32
				if dx*dx+dy*dy > 1 {
					Expect(g.At(row, col).Direction).To(Equal(grid.None), "cell (%d, %d)", row, col)
				}
			}
		}
	})

	It("only touches the destination rectangle", func() {
		p, err := stamp.Place(stamp.Impulse{CenterX: 0.25, CenterY: 0.25, Width: 0.5, Height: 0.5}, s.Size(), g.Dim())
		Expect(err).NotTo(HaveOccurred())
		Expect(stamp.Apply(pool, g, s, p, grid.Horizontal)).To(Succeed())

		for row := 0; row < 64; row++ {
			for col := 0; col < 64; col++ {
				if row >= 32 || col >= 32 {
					Expect(g.At(row, col).Direction).To(Equal(grid.None))
				}
			}
		}
		// Downsampled 2:1, so (row, col) reads stamp cell (2*row, 2*col).
		Expect(g.At(10, 5).Direction).To(Equal(expected(s.At(20, 10).DX)))
	})

	It("is a no-op for an empty placement", func() {
		Expect(stamp.Apply(pool, g, s, stamp.Placement{}, grid.Horizontal)).To(Succeed())
		Expect(g.Mass()).To(Equal(0))
	})
})
