package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// minorUnitsPerMajor converts integer minor units (cents) to major units.
const minorUnitsPerMajor = 100

// Matches reports whether a record field value satisfies operator and literal.
//
// Gt and Lt are inclusive. Numeric field values are integer minor units and
// are divided by 100 before being compared against the decimal literal. Any
// value that cannot be converted makes the comparison false.
func Matches(op Operator, field any, literal string) bool {
	if field == nil {
		return false
	}
	switch op {
	case Range:
		low, high, ok := strings.Cut(literal, "..")
		if !ok {
			return false
		}
		return boundMatches(Gt, field, low) && boundMatches(Lt, field, high)
	case Gt, Lt:
		value, ok := majorUnits(field)
		if !ok {
			return false
		}
		bound, ok := parseDecimal(literal)
		if !ok {
			return false
		}
		if op == Gt {
			return value >= bound
		}
		return value <= bound
	}

	if isNumeric(field) {
		if bound, ok := parseDecimal(literal); ok {
			value, ok := majorUnits(field)
			return ok && value == bound
		}
	}
	return strings.EqualFold(stringify(field), strings.TrimSpace(literal))
}

// boundMatches treats an empty range side as an open bound.
func boundMatches(op Operator, field any, literal string) bool {
	if strings.TrimSpace(literal) == "" {
		return true
	}
	return Matches(op, field, literal)
}

// majorUnits converts a minor-unit field value, truncating fractional input.
func majorUnits(field any) (float64, bool) {
	var minor float64
	switch v := field.(type) {
	case int:
		minor = float64(v)
	case int32:
		minor = float64(v)
	case int64:
		minor = float64(v)
	case uint:
		minor = float64(v)
	case uint32:
		minor = float64(v)
	case uint64:
		minor = float64(v)
	case float32:
		minor = math.Trunc(float64(v))
	case float64:
		minor = math.Trunc(v)
	case string:
		f, ok := parseDecimal(v)
		if !ok {
			return 0, false
		}
		minor = math.Trunc(f)
	default:
		return 0, false
	}
	if math.IsNaN(minor) || math.IsInf(minor, 0) {
		return 0, false
	}
	return minor / minorUnitsPerMajor, true
}

func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isNumeric(field any) bool {
	switch v := field.(type) {
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return true
	case string:
		_, ok := parseDecimal(v)
		return ok
	}
	return false
}

func stringify(field any) string {
	switch v := field.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
