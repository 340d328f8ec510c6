// Package query implements the filter mini-language: parsing free text into a
// Query and deciding whether a record field satisfies it.
package query

import "fmt"

// Operator is the comparison a Query applies to a record field.
type Operator int

const (
	Eq    Operator = iota // "="
	Gt                    // ">" (inclusive)
	Lt                    // "<" (inclusive)
	Range                 // "a..b", wire form "<=>"
)

// String returns the wire form of the operator as understood by record sources.
func (o Operator) String() string {
	switch o {
	case Eq:
		return "="
	case Gt:
		return ">"
	case Lt:
		return "<"
	case Range:
		return "<=>"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// ParseOperator converts a wire form back into an Operator.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "=":
		return Eq, nil
	case ">":
		return Gt, nil
	case "<":
		return Lt, nil
	case "<=>":
		return Range, nil
	}
	return Eq, fmt.Errorf("unknown filter operator %q", s)
}

// DefaultKey is the record field a selector targets when it names no key.
const DefaultKey = "id"

// Query is the structured form of one parse attempt. It is a value: parsing
// the same text again yields an equal, independent Query.
type Query struct {
	RawText        string // trimmed input that produced this query
	FilterType     string // record family, e.g. "order"
	FilterKey      string // record field, "id" unless the selector names one
	FilterOperator Operator
	FilterValue    string // operator stripped; range literals keep their ".."
}

// Selector returns the filterType[:filterKey] portion as typed.
func (q Query) Selector() string {
	if q.FilterKey == "" {
		return q.FilterType + ":"
	}
	return q.FilterType + ":" + q.FilterKey
}

// Params is what a record source receives for a query.
type Params struct {
	FilterType     string
	FilterKey      string
	FilterOperator Operator
	FilterValue    string
	Search         string
}

// Params returns the parameters handed to a record source.
func (q Query) Params() Params {
	return Params{
		FilterType:     q.FilterType,
		FilterKey:      q.FilterKey,
		FilterOperator: q.FilterOperator,
		FilterValue:    q.FilterValue,
		Search:         q.RawText,
	}
}
