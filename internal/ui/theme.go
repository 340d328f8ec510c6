package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme defines the colors used by the query bar.
type Theme struct {
	PromptFG   color.Color // prompt glyph
	GhostFG    color.Color // ghost completion after the caret
	HintFG     color.Color // example text and parse hints
	SelectedFG color.Color // focused row foreground
	SelectedBG color.Color // focused row background
	AmountFG   color.Color // result amount column
	Separator  color.Color // rule between suggestions and results
	StatusFG   color.Color // normal status line
	ErrorFG    color.Color // fetch failure flag
}

// DefaultTheme returns the dark palette.
func DefaultTheme() Theme {
	return Theme{
		PromptFG:   lipgloss.Color("12"),
		GhostFG:    lipgloss.Color("240"),
		HintFG:     lipgloss.Color("244"),
		SelectedFG: lipgloss.Color("230"),
		SelectedBG: lipgloss.Color("62"),
		AmountFG:   lipgloss.Color("14"),
		Separator:  lipgloss.Color("240"),
		StatusFG:   lipgloss.Color("248"),
		ErrorFG:    lipgloss.Color("203"),
	}
}

type styles struct {
	prompt, ghost, hint, selected, amount, separator, status, err lipgloss.Style
}

func newStyles(th Theme, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			prompt: plain, ghost: plain, hint: plain, amount: plain,
			separator: plain, status: plain, err: plain,
			selected: lipgloss.NewStyle().Reverse(true),
		}
	}
	return styles{
		prompt:    lipgloss.NewStyle().Foreground(th.PromptFG).Bold(true),
		ghost:     lipgloss.NewStyle().Foreground(th.GhostFG),
		hint:      lipgloss.NewStyle().Foreground(th.HintFG).Faint(true),
		selected:  lipgloss.NewStyle().Foreground(th.SelectedFG).Background(th.SelectedBG),
		amount:    lipgloss.NewStyle().Foreground(th.AmountFG),
		separator: lipgloss.NewStyle().Foreground(th.Separator),
		status:    lipgloss.NewStyle().Foreground(th.StatusFG),
		err:       lipgloss.NewStyle().Foreground(th.ErrorFG).Bold(true),
	}
}
