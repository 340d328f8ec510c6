package query

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Record is one row returned by a record source. Fields hold the
// type-specific shape; id, amount, currency and status are always present in
// the bundled datasets.
type Record struct {
	Type   string
	Fields map[string]any
}

// MarshalJSON encodes the record as its flat field map.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields)
}

// UnmarshalJSON decodes a flat field map. Numbers decode as float64.
func (r *Record) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &r.Fields)
}

// MarshalYAML encodes the record as its flat field map.
func (r Record) MarshalYAML() (interface{}, error) {
	return r.Fields, nil
}

// Field returns the value stored under key. An empty key looks up "id".
func (r Record) Field(key string) any {
	if key == "" {
		key = DefaultKey
	}
	return r.Fields[key]
}

// ID returns the record identifier as a string.
func (r Record) ID() string {
	v := r.Field(DefaultKey)
	if v == nil {
		return ""
	}
	return stringify(v)
}

// Amount returns the amount in minor units and whether it was numeric.
func (r Record) Amount() (int64, bool) {
	switch v := r.Fields["amount"].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// String returns a field value as display text.
func (r Record) String(key string) string {
	v := r.Field(key)
	if v == nil {
		return ""
	}
	return stringify(v)
}

// Keys returns the record's field names sorted, with "id" first.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		if k != DefaultKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := r.Fields[DefaultKey]; ok {
		keys = append([]string{DefaultKey}, keys...)
	}
	return keys
}

// FormatAmount renders minor units as "12.34 EUR".
func (r Record) FormatAmount() string {
	minor, ok := r.Amount()
	if !ok {
		return r.String("amount")
	}
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	amount := fmt.Sprintf("%s%d.%02d", sign, minor/minorUnitsPerMajor, minor%minorUnitsPerMajor)
	if cur := r.String("currency"); cur != "" {
		return amount + " " + cur
	}
	return amount
}

// Filter returns the records whose q.FilterKey field satisfies q. A nil query
// means no filter is active and returns records unchanged.
func Filter(records []Record, q *Query) []Record {
	if q == nil {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if Matches(q.FilterOperator, r.Field(q.FilterKey), q.FilterValue) {
			out = append(out, r)
		}
	}
	return out
}
