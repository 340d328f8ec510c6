package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingOperator is reported when a value has no leading operator and is
// not a range.
var ErrMissingOperator = errors.New("missing operator")

// ParseError describes text that looked like a query but could not be used.
type ParseError struct {
	Input string // normalized input
	Value string // value segment that failed
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v (value %q needs one of <, >, = or a..b)", e.Input, e.Err, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse turns free text into a Query.
//
// Blank input, or a selector without a value, returns (nil, nil): no filter
// is active yet and the caller should show suggestions only. A value with no
// operator and no range returns a *ParseError wrapping ErrMissingOperator.
func Parse(text string) (*Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	fields := strings.Fields(text)
	selector := fields[0]
	value := strings.Join(fields[1:], "")
	if value == "" {
		return nil, nil
	}

	filterType, filterKey, found := strings.Cut(selector, ":")
	if !found {
		filterKey = DefaultKey
	}

	var op Operator
	switch value[0] {
	case '<':
		op = Lt
		value = strings.TrimSpace(value[1:])
	case '>':
		op = Gt
		value = strings.TrimSpace(value[1:])
	case '=':
		op = Eq
		value = strings.TrimSpace(value[1:])
	default:
		if !strings.Contains(value, "..") {
			return nil, &ParseError{Input: text, Value: value, Err: ErrMissingOperator}
		}
		op = Range
	}

	return &Query{
		RawText:        text,
		FilterType:     filterType,
		FilterKey:      filterKey,
		FilterOperator: op,
		FilterValue:    value,
	}, nil
}
