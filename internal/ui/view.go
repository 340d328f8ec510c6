package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/qbar/internal/focus"
)

const (
	defaultRuleWidth = 60
	focusMarker      = "▸ "
	blankMarker      = "  "
	footerHelp       = "tab complete · ↑/↓ move · enter select · ctrl+y copy id · esc clear · ctrl+c quit"
)

func (m *Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// The screen is laid out one row per line:
//
//	0            input line
//	1..n         visible suggestions
//	n+1          separator
//	n+2..        results
//
// itemAtLine inverts that layout for mouse clicks.
func (m *Model) itemAtLine(y int) (focus.Item, bool) {
	rows := m.ctrl.Suggestions()
	if y >= 1 && y <= len(rows) {
		return rows[y-1].Item, true
	}
	r := y - len(rows) - 2
	if r >= 0 && r < len(m.records) {
		return focus.Item{Kind: focus.Result, Index: r}, true
	}
	return focus.Item{}, false
}

func (m *Model) render() string {
	var lines []string
	lines = append(lines, m.renderInput())
	lines = append(lines, m.renderSuggestions()...)

	width := m.width
	if width <= 0 {
		width = defaultRuleWidth
	}
	lines = append(lines, m.styles.separator.Render(strings.Repeat("─", width)))

	results := m.renderResults()
	if m.height > 0 {
		// input, suggestions, separator, status and footer are always shown
		room := m.height - len(lines) - 2
		if room < 0 {
			room = 0
		}
		if len(results) > room {
			results = results[:room]
		}
	}
	lines = append(lines, results...)
	lines = append(lines, m.renderStatus(), m.styles.hint.Render(footerHelp))
	return strings.Join(lines, "\n")
}

func (m *Model) renderInput() string {
	return m.styles.prompt.Render(m.prompt) + m.field.View() + m.styles.ghost.Render(m.ctrl.Ghost())
}

func (m *Model) renderSuggestions() []string {
	rows := m.ctrl.Suggestions()
	selW := 0
	for _, r := range rows {
		selW = max(selW, lipgloss.Width(r.Entry.Selector))
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		sel := r.Entry.Selector + strings.Repeat(" ", selW-lipgloss.Width(r.Entry.Selector))
		example := ""
		if m.showExamples && r.Entry.Example != "" {
			example = "  Ex. " + r.Entry.Selector + " " + r.Entry.Example
		}
		if r.Focused {
			out = append(out, m.styles.selected.Render(focusMarker+sel+example))
			continue
		}
		out = append(out, blankMarker+sel+m.styles.hint.Render(example))
	}
	return out
}

func (m *Model) renderResults() []string {
	amountW := 0
	for _, r := range m.records {
		amountW = max(amountW, lipgloss.Width(r.FormatAmount()))
	}
	out := make([]string, 0, len(m.records))
	for i, r := range m.records {
		amount := r.FormatAmount()
		amount = strings.Repeat(" ", amountW-lipgloss.Width(amount)) + amount
		rest := "  " + r.ID()
		if s := r.String("status"); s != "" {
			rest += "  " + s
		}
		if m.ctrl.Navigator().IsFocused(focus.Item{Kind: focus.Result, Index: i}) {
			out = append(out, m.styles.selected.Render(focusMarker+amount+rest))
			continue
		}
		out = append(out, blankMarker+m.styles.amount.Render(amount)+rest)
	}
	return out
}

func (m *Model) renderStatus() string {
	var parts []string
	switch {
	case m.loading:
		parts = append(parts, m.styles.status.Render("searching..."))
	case m.fetchErr != nil:
		parts = append(parts, m.styles.err.Render("source unavailable"))
	case m.parseErr != nil:
		parts = append(parts, m.styles.hint.Render("add an operator (<, >, =) or a range like 5..10"))
	case m.total > len(m.records):
		parts = append(parts, m.styles.status.Render(fmt.Sprintf("showing %d of %d results", len(m.records), m.total)))
	case m.ctrl.Text() != "":
		parts = append(parts, m.styles.status.Render(fmt.Sprintf("%d results", len(m.records))))
	}
	if m.status != "" {
		parts = append(parts, m.styles.status.Render(m.status))
	}
	return strings.Join(parts, "  ")
}
