package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	Background string // terminal fill behind panels and the command bar
	Surface    string // header and footer bars

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// StatusColors is keyed by badge name: order statuses, user and
	// setting state, "sale" and "admin".
	StatusColors map[string]string
}

// palette is the handful of colors a theme is derived from.
type palette struct {
	bg, surface, selBg, selText, border string
	text, muted, faint, accent          string
	green, yellow, red, cyan, blue      string
	orange, violet                      string
}

func (p palette) theme(name string) Theme {
	return Theme{
		Name:          name,
		Background:    p.bg,
		Surface:       p.surface,
		SelectionBg:   p.selBg,
		SelectionText: p.selText,
		Border:        p.border,
		BorderFocus:   p.accent,
		Text:          p.text,
		Muted:         p.muted,
		Faint:         p.faint,
		Accent:        p.accent,
		Success:       p.green,
		Warning:       p.yellow,
		Danger:        p.red,
		Info:          p.cyan,
		StatusColors: map[string]string{
			"pending":    p.faint,
			"processing": p.cyan,
			"shipped":    p.blue,
			"delivered":  p.green,
			"cancelled":  p.red,
			"active":     p.green,
			"hidden":     p.faint,
			"banned":     p.red,
			"sale":       p.orange,
			"admin":      p.violet,
		},
	}
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	bar := lipgloss.NewStyle().Background(lipgloss.Color(t.Surface)).Padding(0, 1)
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),
		Price:       fg(t.Warning).Bold(true),
		Liked:       fg(t.Danger),

		Header: bar.Foreground(lipgloss.Color(t.Text)),
		Footer: bar.Foreground(lipgloss.Color(t.Muted)),
		Logo:   fg(t.Warning).Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		statusColors: t.StatusColors,
		background:   t.Background,
		muted:        t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style
	Price       lipgloss.Style
	Liked       lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	statusColors map[string]string
	background   string
	muted        string
}

// StatusStyle returns the badge style for status. Unknown statuses use the
// muted color.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	color := s.statusColors[status]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// WithBackground returns a copy whose styles all paint bgColor behind their
// text, so segments on a colored bar do not show the terminal background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	for _, st := range []*lipgloss.Style{
		&s.Text, &s.MutedText, &s.FaintText, &s.AccentText, &s.SuccessText,
		&s.WarningText, &s.DangerText, &s.InfoText, &s.Price, &s.Liked,
		&s.Header, &s.Footer, &s.Logo, &s.Selected,
	} {
		*st = st.Background(bg)
	}
	return s
}

var themes = map[string]Theme{
	"Nightfox": nightfox.theme("Nightfox"),
	"Kanagawa": kanagawa.theme("Kanagawa"),
	"Slate":    slate.theme("Slate"),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns a theme by name, Nightfox when the name is unknown.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["Nightfox"]
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

// https://github.com/EdenEast/nightfox.nvim
var nightfox = palette{
	bg: "#131a24", surface: "#192330", selBg: "#2b3b51", selText: "#cdcecf", border: "#39506d",
	text: "#cdcecf", muted: "#738091", faint: "#71839b", accent: "#719cd6",
	green: "#81b29a", yellow: "#dbc074", red: "#c94f6d", cyan: "#63cdcf", blue: "#719cd6",
	orange: "#f4a261", violet: "#9d79d6",
}

// https://github.com/rebelot/kanagawa.nvim
var kanagawa = palette{
	bg: "#16161D", surface: "#1F1F28", selBg: "#2D4F67", selText: "#DCD7BA", border: "#54546D",
	text: "#DCD7BA", muted: "#C8C093", faint: "#727169", accent: "#7E9CD8",
	green: "#98BB6C", yellow: "#E6C384", red: "#E46876", cyan: "#7FB4CA", blue: "#7E9CD8",
	orange: "#FFA066", violet: "#957FB8",
}

// Tailwind slate and sky.
var slate = palette{
	bg: "#020617", surface: "#0f172a", selBg: "#0284c7", selText: "#f8fafc", border: "#334155",
	text: "#f1f5f9", muted: "#94a3b8", faint: "#64748b", accent: "#38bdf8",
	green: "#22c55e", yellow: "#f59e0b", red: "#ef4444", cyan: "#06b6d4", blue: "#0284c7",
	orange: "#fb923c", violet: "#8b5cf6",
}
