package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/qbar/internal/query"
)

// Format selects how records are printed.
type Format string

const (
	OutputTable Format = "table"
	OutputJSON  Format = "json"
	OutputYAML  Format = "yaml"
)

// ParseFormat validates an output format name. An empty name is a table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputTable, nil
	case OutputTable, OutputJSON, OutputYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
}

// Options control record rendering.
type Options struct {
	Format  Format
	NoColor bool
	// Width caps the table width in cells; 0 means no limit.
	Width int
	// Columns overrides the column set; empty derives it from the records.
	Columns []string
}

const (
	colSep      = 2
	minColWidth = 4
)

// Render writes records to w in the requested format.
func Render(w io.Writer, records []query.Record, opts Options) error {
	var (
		out string
		err error
	)
	switch opts.Format {
	case OutputJSON:
		out, err = RenderJSON(records)
	case OutputYAML:
		out, err = FormatYAML(documents(records), YAMLFormatOptions{Indent: 2})
	case OutputTable, "":
		out = RenderTable(records, opts)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// RenderJSON returns records as an indented JSON array. Each element carries
// its "type" alongside the record fields.
func RenderJSON(records []query.Record) (string, error) {
	b, err := json.MarshalIndent(documents(records), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

func documents(records []query.Record) []map[string]any {
	docs := make([]map[string]any, len(records))
	for i, r := range records {
		doc := make(map[string]any, len(r.Fields)+1)
		for k, v := range r.Fields {
			doc[k] = v
		}
		if _, ok := doc["type"]; !ok && r.Type != "" {
			doc["type"] = r.Type
		}
		docs[i] = doc
	}
	return docs
}

// Columns returns the table columns for records: type and id first, then
// every other field name sorted. Currency is folded into the amount column
// when both are present.
func Columns(records []query.Record) []string {
	seen := map[string]bool{}
	for _, r := range records {
		for k := range r.Fields {
			seen[k] = true
		}
	}
	cols := []string{"type", query.DefaultKey}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		switch {
		case k == "type", k == query.DefaultKey:
		case k == "currency" && seen["amount"]:
		default:
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(cols, rest...)
}

// Cell returns the display text of column col for r.
func Cell(r query.Record, col string) string {
	switch col {
	case "type":
		return r.Type
	case "amount":
		return r.FormatAmount()
	}
	return Stringify(r.Fields[col])
}

// RenderTable renders records as a column table. It returns "" when there are
// no records.
func RenderTable(records []query.Record, opts Options) string {
	if len(records) == 0 {
		return ""
	}
	cols := opts.Columns
	if len(cols) == 0 {
		cols = Columns(records)
	}

	headers := make([]string, len(cols))
	widths := make([]int, len(cols))
	for i, c := range cols {
		headers[i] = strings.ToUpper(c)
		widths[i] = runewidth.StringWidth(headers[i])
	}
	rows := make([][]string, len(records))
	for ri, r := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = Cell(r, c)
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
		rows[ri] = row
	}
	if opts.Width > 0 {
		widths = shrink(widths, opts.Width-colSep*(len(cols)-1))
	}

	sep := strings.Repeat(" ", colSep)
	var b strings.Builder

	parts := make([]string, len(cols))
	for i, h := range headers {
		parts[i] = padRight(h, widths[i])
		if !opts.NoColor {
			parts[i] = headerStyle.Render(parts[i])
		}
	}
	b.WriteString(strings.Join(parts, sep) + "\n")

	total := colSep * (len(cols) - 1)
	for _, w := range widths {
		total += w
	}
	separator := strings.Repeat("─", total)
	if !opts.NoColor {
		separator = separatorStyle.Render(separator)
	}
	b.WriteString(separator + "\n")

	for _, row := range rows {
		for i, v := range row {
			if cols[i] == "amount" {
				parts[i] = padLeft(v, widths[i])
			} else {
				parts[i] = padRight(v, widths[i])
			}
			if opts.NoColor {
				continue
			}
			if cols[i] == query.DefaultKey {
				parts[i] = keyStyle.Render(parts[i])
			} else {
				parts[i] = valueStyle.Render(parts[i])
			}
		}
		b.WriteString(strings.Join(parts, sep) + "\n")
	}
	return b.String()
}

// shrink narrows the widest column one cell at a time until the widths fit
// usable or every column is at minColWidth.
func shrink(widths []int, usable int) []int {
	out := append([]int(nil), widths...)
	sum := 0
	for _, w := range out {
		sum += w
	}
	for sum > usable {
		widest := -1
		for i, w := range out {
			if w > minColWidth && (widest == -1 || w > out[widest]) {
				widest = i
			}
		}
		if widest == -1 {
			break
		}
		out[widest]--
		sum--
	}
	return out
}
