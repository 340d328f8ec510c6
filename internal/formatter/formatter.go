// Package formatter renders records for the terminal: a column table with the
// shared lipgloss theme, or JSON and YAML documents for scripting.
package formatter

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"reflect"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var (
	defaultHeaderFG   = lipgloss.Color("12")
	defaultHeaderBG   = lipgloss.Color("236")
	defaultKeyColor   = lipgloss.Color("14")
	defaultValueColor = lipgloss.Color("248")
	defaultSeparator  = lipgloss.Color("240")

	headerStyle    lipgloss.Style
	keyStyle       lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
)

// TableColors controls the rendered colors for the record table.
// Empty fields fall back to the defaults (ANSI 256 codes).
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
}

func applyTableTheme(tc TableColors) {
	hfg := tc.HeaderFG
	hbg := tc.HeaderBG
	kc := tc.KeyColor
	vc := tc.ValueColor
	sep := tc.SeparatorColor
	if hfg == nil {
		hfg = defaultHeaderFG
	}
	if hbg == nil {
		hbg = defaultHeaderBG
	}
	if kc == nil {
		kc = defaultKeyColor
	}
	if vc == nil {
		vc = defaultValueColor
	}
	if sep == nil {
		sep = defaultSeparator
	}

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(hfg).Background(hbg)
	keyStyle = lipgloss.NewStyle().Foreground(kc)
	valueStyle = lipgloss.NewStyle().Foreground(vc)
	separatorStyle = lipgloss.NewStyle().Foreground(sep)
}

// SetTableTheme overrides the global table styles. Callers can pass zero-valued
// fields to fall back to formatter defaults.
func SetTableTheme(tc TableColors) {
	applyTableTheme(tc)
}

//nolint:gochecknoinits // initialize default table theme for package consumers
func init() {
	applyTableTheme(TableColors{})
}

// Stringify returns a compact single-line representation of a field value.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return flattenNewlines(t)
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	case map[string]any, []any:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", t)
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() { //nolint:exhaustive // only complex types need JSON marshaling
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
			if b, err := json.Marshal(v); err == nil {
				return string(b)
			}
		}
		return fmt.Sprintf("%v", v)
	}
}

// flattenNewlines keeps table rows on one line.
func flattenNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}

// truncate shortens s to maxLen display cells, ending in an ellipsis when
// there is room for one.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

// padLeft right-aligns s within width display cells.
func padLeft(s string, width int) string {
	return runewidth.FillLeft(truncate(s, width), width)
}

// TerminalWidth returns the width of stdout, or 120 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}
