package viz

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/tiltsand/internal/config"
)

type menuState int

const (
	stateMenu menuState = iota
	stateConfig
	stateLive
)

var menuParams = []string{"dim", "seed", "workers", "fps", "rotate_step"}

// Menu picks a preset, lets its numeric settings be edited and then runs
// the live view.
type Menu struct {
	state   menuState
	cursor  int
	presets []string
	logger  *slog.Logger

	cfg         *config.Config
	paramCursor int
	editing     bool
	editBuf     string
	err         string

	live *Model
	gen  int
}

// NewMenu lists every preset as pattern/name.
func NewMenu(logger *slog.Logger) *Menu {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var refs []string
	for _, pattern := range config.PresetPatterns() {
		for _, name := range config.ListPresets(pattern) {
			refs = append(refs, pattern+"/"+name)
		}
	}
	return &Menu{presets: refs, logger: logger}
}

func (m *Menu) Init() tea.Cmd { return nil }

func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case stateMenu:
			return m.menuKey(msg)
		case stateConfig:
			return m.configKey(msg)
		case stateLive:
			return m.liveKey(msg)
		}
	default:
		if m.state == stateLive && m.live != nil {
			next, cmd := m.live.Update(msg)
			lm := next.(Model)
			m.live = &lm
			return m, cmd
		}
	}
	return m, nil
}

func (m *Menu) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		cfg, err := config.LookupPreset(m.presets[m.cursor])
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.state, m.paramCursor, m.err = stateConfig, 0, ""
	}
	return m, nil
}

func (m *Menu) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if err := m.setParam(menuParams[m.paramCursor], m.editBuf); err != nil {
				m.err = err.Error()
			} else {
				m.err = ""
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-") {
				m.editBuf += s
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(menuParams)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = m.param(menuParams[m.paramCursor])
	case "s":
		return m, m.start()
	}
	return m, nil
}

func (m *Menu) liveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.live.Close()
		m.live = nil
		m.state = stateConfig
		return m, tea.ClearScreen
	case "ctrl+c":
		m.live.Close()
		return m, tea.Quit
	}
	next, cmd := m.live.Update(msg)
	lm := next.(Model)
	m.live = &lm
	return m, cmd
}

func (m *Menu) start() tea.Cmd {
	if err := m.cfg.Validate(); err != nil {
		m.err = err.Error()
		return nil
	}
	live, err := NewModel(m.cfg, WithLogger(m.logger))
	if err != nil {
		m.err = err.Error()
		return nil
	}
	m.gen++
	live.gen = m.gen
	m.live = &live
	m.state, m.err = stateLive, ""
	return tea.Batch(tea.ClearScreen, live.Init())
}

func (m *Menu) param(name string) string {
	switch name {
	case "dim":
		return strconv.Itoa(m.cfg.Dim)
	case "seed":
		return strconv.FormatInt(m.cfg.Seed, 10)
	case "workers":
		return strconv.Itoa(m.cfg.Workers)
	case "fps":
		return strconv.Itoa(m.cfg.Live.FPS)
	case "rotate_step":
		return strconv.FormatFloat(m.cfg.Live.RotateStep, 'g', -1, 64)
	}
	return ""
}

func (m *Menu) setParam(name, value string) error {
	var err error
	switch name {
	case "dim":
		m.cfg.Dim, err = strconv.Atoi(value)
	case "seed":
		m.cfg.Seed, err = strconv.ParseInt(value, 10, 64)
	case "workers":
		m.cfg.Workers, err = strconv.Atoi(value)
	case "fps":
		m.cfg.Live.FPS, err = strconv.Atoi(value)
	case "rotate_step":
		m.cfg.Live.RotateStep, err = strconv.ParseFloat(value, 64)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (m *Menu) View() string {
	switch m.state {
	case stateConfig:
		return m.viewConfig()
	case stateLive:
		if m.live != nil {
			return m.live.View()
		}
	}
	return m.viewMenu()
}

func (m *Menu) viewMenu() string {
	var s strings.Builder
	s.WriteString(GradientText("tiltsand", CurrentTheme.Primary, CurrentTheme.Accent) + "\n\n")
	for i, ref := range m.presets {
		line := "  " + ref
		if i == m.cursor {
			line = MetricValue.Render("> " + ref)
		}
		s.WriteString(line + "\n")
	}
	if m.err != "" {
		s.WriteString("\n" + StatusRecording.UnsetBlink().Render(m.err) + "\n")
	}
	s.WriteString("\n" + KeyHint.Render("j/k select · enter configure · q quit"))
	return Panel.Render(s.String())
}

func (m *Menu) viewConfig() string {
	var s strings.Builder
	s.WriteString(MetricValue.Render(m.presets[m.cursor]) + "\n\n")
	for i, name := range menuParams {
		value := m.param(name)
		if m.editing && i == m.paramCursor {
			value = m.editBuf + "_"
		}
		line := fmt.Sprintf("%-12s %s", name, value)
		if i == m.paramCursor {
			s.WriteString(MetricValue.Render("> "+line) + "\n")
		} else {
			s.WriteString(MetricLabel.Render("  "+line) + "\n")
		}
	}
	if m.err != "" {
		s.WriteString("\n" + StatusRecording.UnsetBlink().Render(m.err) + "\n")
	}
	s.WriteString("\n" + KeyHint.Render("enter edit · s start · esc back"))
	return Panel.Render(s.String())
}

// RunInteractive runs the preset menu until the user quits.
func RunInteractive(logger *slog.Logger) error {
	m := NewMenu(logger)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if m.live != nil {
		m.live.Close()
	}
	return err
}
