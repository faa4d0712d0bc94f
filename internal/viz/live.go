package viz

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/tiltsand/internal/config"
	"github.com/san-kum/tiltsand/internal/experiment"
	"github.com/san-kum/tiltsand/internal/grid"
	"github.com/san-kum/tiltsand/internal/stamp"
)

const (
	historyCapacity = 600
	maxHeatmapCols  = 96
	cursorStep      = 0.05
	impulseSize     = 0.3
)

type viewMode int

const (
	viewHeatmap viewMode = iota
	viewDots
	viewBoard
	numViews
)

func (v viewMode) String() string {
	switch v {
	case viewDots:
		return "dots"
	case viewBoard:
		return "board"
	}
	return "heatmap"
}

// TickMsg advances the live view. Gen ties it to one tick loop so a stale
// loop from a previous session stops on its own.
type TickMsg struct {
	Gen  int
	Time time.Time
}

// session holds the mutable simulation state shared by every copy of a
// Model, so Close on the first copy releases what Update replaced.
type session struct {
	exp      *experiment.Experiment
	recorder *Recorder
}

// Model is the Bubble Tea model of the live view.
type Model struct {
	cfg    *config.Config
	logger *slog.Logger
	sess   *session
	gen    int

	running  bool
	showHelp bool
	view     viewMode

	tiltAxis  r3.Vec
	tiltAngle float64

	cursorX, cursorY float64

	moving []float64
	mass   []float64

	camera *Camera
	status string

	width, height int
}

type ModelOption func(*Model)

func WithLogger(l *slog.Logger) ModelOption {
	return func(m *Model) { m.logger = l }
}

// NewModel builds the live view for cfg. The model owns the experiment it
// creates; call Close when the program exits.
func NewModel(cfg *config.Config, opts ...ModelOption) (Model, error) {
	m := Model{
		cfg:     cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		sess:    &session{},
		gen:     1,
		running: true,
		cursorX: 0.5,
		cursorY: 0.5,
		camera:  NewCamera(),
		width:   100,
		height:  40,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) fps() int {
	if m.cfg.Live.FPS > 0 {
		return m.cfg.Live.FPS
	}
	return config.DefaultFPS
}

func (m Model) rotateStep() float64 {
	if m.cfg.Live.RotateStep > 0 {
		return m.cfg.Live.RotateStep
	}
	return config.DefaultRotateStep
}

func (m Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(time.Second/time.Duration(m.fps()), func(t time.Time) tea.Msg {
		return TickMsg{Gen: gen, Time: t}
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Experiment returns the running experiment.
func (m Model) Experiment() *experiment.Experiment { return m.sess.exp }

// Close releases the experiment and drops an unfinished recording.
func (m Model) Close() {
	if m.sess.exp != nil {
		m.sess.exp.Close()
		m.sess.exp = nil
	}
	m.sess.recorder = nil
}

func (m *Model) reset() error {
	exp, err := experiment.New(m.cfg.Clone(), experiment.WithLogger(m.logger))
	if err != nil {
		return err
	}
	if m.sess.exp != nil {
		m.sess.exp.Close()
	}
	m.sess.exp = exp
	m.tiltAxis, m.tiltAngle = r3.Vec{}, 0
	m.moving = make([]float64, 0, historyCapacity)
	m.mass = make([]float64, 0, historyCapacity)
	return nil
}

// Update handles input events and steps the automaton.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		if m.running {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.rotateStep()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case ".":
		if !m.running {
			m.advance()
		}
	case "right":
		m.tilt(r3.Vec{Z: 1}, -step)
	case "left":
		m.tilt(r3.Vec{Z: 1}, step)
	case "down":
		m.tilt(r3.Vec{X: 1}, -step)
	case "up":
		m.tilt(r3.Vec{X: 1}, step)
	case "h":
		m.cursorX = max(0, m.cursorX-cursorStep)
	case "l":
		m.cursorX = min(1, m.cursorX+cursorStep)
	case "k":
		m.cursorY = max(0, m.cursorY-cursorStep)
	case "j":
		m.cursorY = min(1, m.cursorY+cursorStep)
	case "i":
		m.fire()
	case "r":
		if err := m.reset(); err != nil {
			m.status = "reset failed: " + err.Error()
		} else {
			m.status = "reset"
		}
	case "v":
		m.view = (m.view + 1) % numViews
	case "t":
		NextTheme()
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "g":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// tilt queues a rotation for the next tick. A second key press before that
// tick commits the queued one to the grid first.
func (m *Model) tilt(axis r3.Vec, angle float64) {
	if m.tiltAngle != 0 {
		m.sess.exp.Grid().Rotate(m.tiltAxis, m.tiltAngle)
	}
	m.tiltAxis, m.tiltAngle = axis, angle
}

func (m *Model) advance() {
	exp := m.sess.exp
	if err := exp.Step(m.tiltAxis, m.tiltAngle); err != nil {
		m.logger.Error("live tick failed", "error", err)
		m.status = err.Error()
		m.running = false
		return
	}
	m.tiltAxis, m.tiltAngle = r3.Vec{}, 0

	if last, ok := exp.Last(); ok {
		m.moving = appendCapped(m.moving, float64(last.Moving))
		m.mass = appendCapped(m.mass, float64(last.Mass))
	}
	if m.sess.recorder != nil {
		m.sess.recorder.Capture(exp.Grid())
	}
}

func (m *Model) fire() {
	imp := stamp.Impulse{
		CenterX:  m.cursorX,
		CenterY:  m.cursorY,
		Width:    impulseSize,
		Height:   impulseSize,
		Strength: 1,
	}
	err := m.sess.exp.Impulse(imp, grid.Horizontal)
	switch {
	case errors.Is(err, stamp.ErrOffGrid):
		m.status = "impulse missed the grid"
	case err != nil:
		m.status = "impulse failed: " + err.Error()
	default:
		m.status = fmt.Sprintf("impulse at (%.2f, %.2f)", m.cursorX, m.cursorY)
	}
}

func (m *Model) toggleRecording() {
	if m.sess.recorder == nil {
		m.sess.recorder = NewRecorder(CurrentTheme, max(1, 256/m.cfg.Dim), 100/m.fps())
		m.status = "recording"
		return
	}
	path := fmt.Sprintf("tiltsand_%d.gif", time.Now().Unix())
	if err := m.sess.recorder.Save(path); err != nil {
		m.status = "recording not saved: " + err.Error()
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", m.sess.recorder.Frames(), path)
	}
	m.sess.recorder = nil
}

func appendCapped(s []float64, v float64) []float64 {
	if len(s) >= historyCapacity {
		s = s[1:]
	}
	return append(s, v)
}

func (m Model) View() string {
	if m.showHelp {
		return m.helpView()
	}

	g := m.sess.exp.Grid()
	var body string
	switch m.view {
	case viewDots:
		c := CanvasFor(g.Dim())
		c.DrawGrid(g, 1)
		m.drawCursor(c, g.Dim())
		body = lipgloss.NewStyle().Foreground(CurrentTheme.Sand).Render(c.String())
	case viewBoard:
		c := NewCanvas(40, 16)
		DrawBoard(c, g, m.camera)
		body = lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(c.String())
	default:
		body = RenderHeatmap(g, CurrentTheme, min(maxHeatmapCols, max(16, m.width-40)))
	}

	left := Panel.BorderForeground(CurrentTheme.Muted).Render(body)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, m.sidebar()) + "\n" + m.footer()
}

func (m Model) drawCursor(c *Canvas, dim int) {
	x := int(m.cursorX * float64(dim-1))
	y := int(m.cursorY * float64(dim-1))
	for d := -2; d <= 2; d++ {
		c.Set(x+d, y)
		c.Set(x, y+d)
	}
}

func (m Model) sidebar() string {
	var s strings.Builder
	title := GradientText("tiltsand", CurrentTheme.Primary, CurrentTheme.Accent)
	s.WriteString(title + "  " + m.statusBadge() + "\n\n")

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(fmt.Sprintf("%-10s", label)) + MetricValue.Render(value) + "\n")
	}

	exp := m.sess.exp
	g := exp.Grid()
	row("tick", fmt.Sprintf("%d", exp.Engine().Ticks()))
	if last, ok := exp.Last(); ok {
		row("pass", last.Axis)
		row("hint", fmt.Sprintf("%s (%d)", last.Hint, last.Bias))
		row("mass", fmt.Sprintf("%d", last.Mass))
		row("moving", fmt.Sprintf("%d", last.Moving))
		row("saturated", fmt.Sprintf("%d", last.Saturated))
		row("peak", fmt.Sprintf("%d", last.Peak))
	} else {
		row("mass", fmt.Sprintf("%d", g.Mass()))
	}
	dx, dy := Slope(g)
	row("slope", fmt.Sprintf("%+.2f %+.2f", dx, dy))
	row("cursor", fmt.Sprintf("%.2f, %.2f", m.cursorX, m.cursorY))
	row("view", m.view.String())
	row("theme", CurrentTheme.Name)

	s.WriteString("\n" + Separator(30) + "\n")
	if len(m.moving) > 1 {
		chart := asciigraph.Plot(m.moving,
			asciigraph.Height(6), asciigraph.Width(30), asciigraph.Caption("moving"))
		s.WriteString(chart + "\n")
	}
	s.WriteString(SparklineChart(m.mass, 30) + "\n")
	if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}
	return Panel.BorderForeground(CurrentTheme.Muted).Render(s.String())
}

func (m Model) statusBadge() string {
	if m.sess.recorder != nil {
		return StatusRecording.Render(fmt.Sprintf("● REC %d", m.sess.recorder.Frames()))
	}
	if m.running {
		return StatusRunning.Render("▶ running")
	}
	return StatusPaused.Render("⏸ paused")
}

func (m Model) footer() string {
	return KeyHint.Render("arrows tilt · hjkl cursor · i impulse · space pause · v view · ? help · q quit")
}

func (m Model) helpView() string {
	help := `Keys

  Arrows   Tilt the board (right/left roll, down/up pitch)
  h j k l  Move the impulse cursor
  i        Fire an impulse at the cursor
  Space    Pause / resume
  .        Single tick while paused
  r        Reset to the configured start
  v        Cycle views (heatmap, dots, board)
  + -      Zoom the board view
  t        Cycle colour themes
  g        Start / stop GIF recording
  ?        Close this help
  q        Quit`
	return Panel.BorderForeground(CurrentTheme.Primary).Render(help)
}
