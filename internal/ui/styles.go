package ui

import (
	"github.com/abelbrown/ramah/internal/prefs"
	"github.com/abelbrown/ramah/internal/render"
	"github.com/charmbracelet/lipgloss"
)

// palette is one colour scheme.
type palette struct {
	text      lipgloss.Color
	muted     lipgloss.Color
	primary   lipgloss.Color
	highlight lipgloss.Color
	success   lipgloss.Color
	bar       lipgloss.Color
	errColor  lipgloss.Color
}

var (
	darkPalette = palette{
		text:      lipgloss.Color("255"),
		muted:     lipgloss.Color("241"),
		primary:   lipgloss.Color("62"),
		highlight: lipgloss.Color("212"),
		success:   lipgloss.Color("78"),
		bar:       lipgloss.Color("236"),
		errColor:  lipgloss.Color("196"),
	}
	lightPalette = palette{
		text:      lipgloss.Color("235"),
		muted:     lipgloss.Color("245"),
		primary:   lipgloss.Color("61"),
		highlight: lipgloss.Color("162"),
		success:   lipgloss.Color("28"),
		bar:       lipgloss.Color("254"),
		errColor:  lipgloss.Color("160"),
	}
)

// Styles is the full set of styles for one theme.
type Styles struct {
	Title         lipgloss.Style
	Headline      lipgloss.Style
	Focused       lipgloss.Style
	Preview       lipgloss.Style
	Meta          lipgloss.Style
	Indicator     lipgloss.Style
	Separator     lipgloss.Style
	EndMessage    lipgloss.Style
	ErrorStyle    lipgloss.Style
	HelpStyle     lipgloss.Style
	StatusBar     lipgloss.Style
	StatusBarText lipgloss.Style
	Overlay       lipgloss.Style
	OverlayTitle  lipgloss.Style
	StatLabel     lipgloss.Style
	StatValue     lipgloss.Style
	Code          lipgloss.Style
}

// NewStyles returns the styles for theme ("light" or "dark").
func NewStyles(theme string) Styles {
	p := darkPalette
	if theme == prefs.ThemeLight {
		p = lightPalette
	}

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.highlight).
			Padding(0, 1),
		Headline: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.text),
		Focused: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(p.primary).
			PaddingLeft(1),
		Preview: lipgloss.NewStyle().
			Foreground(p.text),
		Meta: lipgloss.NewStyle().
			Foreground(p.muted),
		Indicator: lipgloss.NewStyle().
			Foreground(p.success),
		Separator: lipgloss.NewStyle().
			Foreground(p.muted).
			Faint(true),
		EndMessage: lipgloss.NewStyle().
			Foreground(p.muted).
			Italic(true).
			Padding(1, 2),
		ErrorStyle: lipgloss.NewStyle().
			Foreground(p.errColor).
			Bold(true).
			Padding(1, 2),
		HelpStyle: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(1, 2),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.text).
			Background(p.bar).
			Padding(0, 1),
		StatusBarText: lipgloss.NewStyle().
			Foreground(p.muted),
		Overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.primary).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.highlight).
			MarginBottom(1),
		StatLabel: lipgloss.NewStyle().
			Foreground(p.muted),
		StatValue: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.text),
		Code: lipgloss.NewStyle().
			Foreground(p.primary),
	}
}

// indicator returns the positivity marker for a tier, or "" for none.
func indicator(t render.Tier) string {
	switch t {
	case render.TierHigh:
		return "△△△"
	case render.TierMedium:
		return "△△"
	case render.TierLow:
		return "△"
	}
	return ""
}
