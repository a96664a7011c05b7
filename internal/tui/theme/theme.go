// Package theme holds the light and dark lipgloss palettes.
package theme

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/genie/internal/models"
)

type Palette struct {
	Accent  lipgloss.Color
	Accent2 lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Subtle  lipgloss.Color
	Surface lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color
}

var (
	light = Palette{
		Accent:  lipgloss.Color("#4f46e5"),
		Accent2: lipgloss.Color("#7c3aed"),
		Text:    lipgloss.Color("#0f172a"),
		Muted:   lipgloss.Color("#64748b"),
		Subtle:  lipgloss.Color("#cbd5e1"),
		Surface: lipgloss.Color("#eef2ff"),
		Success: lipgloss.Color("#059669"),
		Warning: lipgloss.Color("#d97706"),
		Danger:  lipgloss.Color("#dc2626"),
	}
	dark = Palette{
		Accent:  lipgloss.Color("#818cf8"),
		Accent2: lipgloss.Color("#c084fc"),
		Text:    lipgloss.Color("#e2e8f0"),
		Muted:   lipgloss.Color("#94a3b8"),
		Subtle:  lipgloss.Color("#334155"),
		Surface: lipgloss.Color("#1e1b4b"),
		Success: lipgloss.Color("#34d399"),
		Warning: lipgloss.Color("#fbbf24"),
		Danger:  lipgloss.Color("#f87171"),
	}
)

// Styles is the full set of styles for one theme.
type Styles struct {
	Dark    bool
	Palette Palette

	Doc         lipgloss.Style
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Text        lipgloss.Style
	Muted       lipgloss.Style
	Accent      lipgloss.Style
	Card        lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Button      lipgloss.Style
	ButtonOff   lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Danger      lipgloss.Style
	Banner      lipgloss.Style
	Quote       lipgloss.Style
}

func New(t models.Theme) Styles {
	p := light
	if t == models.ThemeDark {
		p = dark
	}

	return Styles{
		Dark:    t == models.ThemeDark,
		Palette: p,

		Doc: lipgloss.NewStyle().Padding(1, 2),
		Title: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.Accent2).
			Bold(true),
		Text:   lipgloss.NewStyle().Foreground(p.Text),
		Muted:  lipgloss.NewStyle().Foreground(p.Muted),
		Accent: lipgloss.NewStyle().Foreground(p.Accent),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Subtle).
			Padding(1, 2),
		ActiveTab: lipgloss.NewStyle().
			Foreground(p.Accent).
			Background(p.Surface).
			Padding(0, 1).
			Bold(true),
		InactiveTab: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 1),
		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(p.Accent).
			Padding(0, 2).
			Bold(true),
		ButtonOff: lipgloss.NewStyle().
			Foreground(p.Muted).
			Background(p.Subtle).
			Padding(0, 2),
		Success: lipgloss.NewStyle().Foreground(p.Success),
		Warning: lipgloss.NewStyle().
			Foreground(p.Warning).
			Italic(true),
		Danger: lipgloss.NewStyle().
			Foreground(p.Danger).
			Bold(true),
		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(p.Warning).
			Bold(true).
			Padding(0, 1),
		Quote: lipgloss.NewStyle().
			Foreground(p.Text).
			Italic(true).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(p.Accent2).
			PaddingLeft(2),
	}
}

// Form returns the huh theme matching t.
func Form(t models.Theme) *huh.Theme {
	if t == models.ThemeDark {
		return huh.ThemeDracula()
	}
	return huh.ThemeBase()
}
