package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour scheme of the TUI and the sand ramp.
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Sand       lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
}

var (
	ThemeDesert = Theme{
		Name:       "desert",
		Primary:    lipgloss.Color("#e0b060"),
		Secondary:  lipgloss.Color("#c08040"),
		Accent:     lipgloss.Color("#ff6b3d"),
		Background: lipgloss.Color("#1a1208"),
		Sand:       lipgloss.Color("#ffe0a0"),
		Text:       lipgloss.Color("#fff5e0"),
		Muted:      lipgloss.Color("#806040"),
	}

	ThemeRetroGreen = Theme{
		Name:       "retro",
		Primary:    lipgloss.Color("#00ff00"),
		Secondary:  lipgloss.Color("#00cc00"),
		Accent:     lipgloss.Color("#88ff88"),
		Background: lipgloss.Color("#001100"),
		Sand:       lipgloss.Color("#00ff00"),
		Text:       lipgloss.Color("#00ff00"),
		Muted:      lipgloss.Color("#005500"),
	}

	ThemeOcean = Theme{
		Name:       "ocean",
		Primary:    lipgloss.Color("#0077be"),
		Secondary:  lipgloss.Color("#00a8cc"),
		Accent:     lipgloss.Color("#ffd700"),
		Background: lipgloss.Color("#001a33"),
		Sand:       lipgloss.Color("#e0f0ff"),
		Text:       lipgloss.Color("#e0f0ff"),
		Muted:      lipgloss.Color("#4488aa"),
	}

	ThemeMinimal = Theme{
		Name:       "minimal",
		Primary:    lipgloss.Color("#ffffff"),
		Secondary:  lipgloss.Color("#cccccc"),
		Accent:     lipgloss.Color("#0088ff"),
		Background: lipgloss.Color("#000000"),
		Sand:       lipgloss.Color("#ffffff"),
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#888888"),
	}

	CurrentTheme = ThemeDesert

	Themes = []Theme{
		ThemeDesert,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to desert.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDesert
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Shade interpolates from the background to the sand colour. Any non-zero
// total gets at least a quarter of the way so single grains stay visible.
func (t Theme) Shade(total uint8) lipgloss.Color {
	if total == 0 {
		return t.Background
	}
	f := 0.25 + 0.75*float64(total)/255
	return lerpColor(t.Background, t.Sand, f)
}

// RGB returns the shade of total as 8-bit components.
func (t Theme) RGB(total uint8) (r, g, b uint8) {
	cr, cg, cb := parseHex(string(t.Shade(total)))
	return uint8(cr), uint8(cg), uint8(cb)
}

func lerpColor(from, to lipgloss.Color, f float64) lipgloss.Color {
	sr, sg, sb := parseHex(string(from))
	er, eg, eb := parseHex(string(to))
	r := int(float64(sr) + f*float64(er-sr))
	g := int(float64(sg) + f*float64(eg-sg))
	b := int(float64(sb) + f*float64(eb-sb))
	return lipgloss.Color(hexColor(r, g, b))
}
