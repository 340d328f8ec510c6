package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Query
	}{
		{
			name:  "default key with equals",
			input: "order =9",
			want:  &Query{RawText: "order =9", FilterType: "order", FilterKey: "id", FilterOperator: Eq, FilterValue: "9"},
		},
		{
			name:  "explicit key and equals",
			input: "payment:currency =EUR",
			want:  &Query{RawText: "payment:currency =EUR", FilterType: "payment", FilterKey: "currency", FilterOperator: Eq, FilterValue: "EUR"},
		},
		{
			name:  "greater than",
			input: "order:amount >0.01",
			want:  &Query{RawText: "order:amount >0.01", FilterType: "order", FilterKey: "amount", FilterOperator: Gt, FilterValue: "0.01"},
		},
		{
			name:  "less than with space after operator",
			input: "order:amount < 3",
			want:  &Query{RawText: "order:amount < 3", FilterType: "order", FilterKey: "amount", FilterOperator: Lt, FilterValue: "3"},
		},
		{
			name:  "range keeps literal",
			input: "order 5..10",
			want:  &Query{RawText: "order 5..10", FilterType: "order", FilterKey: "id", FilterOperator: Range, FilterValue: "5..10"},
		},
		{
			name:  "range with spaces collapses",
			input: "  payment 0.02 .. 5.00  ",
			want:  &Query{RawText: "payment 0.02 .. 5.00", FilterType: "payment", FilterKey: "id", FilterOperator: Range, FilterValue: "0.02..5.00"},
		},
		{
			name:  "multi word value collapses",
			input: "order:status =in progress",
			want:  &Query{RawText: "order:status =in progress", FilterType: "order", FilterKey: "status", FilterOperator: Eq, FilterValue: "inprogress"},
		},
		{
			name:  "trailing colon keeps empty key",
			input: "payment: =x",
			want:  &Query{RawText: "payment: =x", FilterType: "payment", FilterKey: "", FilterOperator: Eq, FilterValue: "x"},
		},
		{
			name:  "only first colon splits",
			input: "a:b:c >1",
			want:  &Query{RawText: "a:b:c >1", FilterType: "a", FilterKey: "b:c", FilterOperator: Gt, FilterValue: "1"},
		},
		{
			name:  "operator alone leaves empty value",
			input: "order >",
			want:  &Query{RawText: "order >", FilterType: "order", FilterKey: "id", FilterOperator: Gt, FilterValue: ""},
		},
		{
			name:  "one sided range",
			input: "order:amount 5..",
			want:  &Query{RawText: "order:amount 5..", FilterType: "order", FilterKey: "amount", FilterOperator: Range, FilterValue: "5.."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParseNoQuery(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n", "order", "payment:amount", "  order:currency  "} {
		got, err := Parse(input)
		assert.NoError(t, err, "input %q", input)
		assert.Nil(t, got, "input %q", input)
	}
}

func TestParseMissingOperator(t *testing.T) {
	for _, input := range []string{"payment:amount 0.02", "order 9", "payment:currency EUR", "order 5.10"} {
		got, err := Parse(input)
		require.Error(t, err, "input %q", input)
		assert.Nil(t, got)
		assert.True(t, errors.Is(err, ErrMissingOperator), "input %q", input)

		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, input, perr.Input)
	}
}

func TestParseIsPure(t *testing.T) {
	inputs := []string{"", "order", "order 5..10", "payment:amount 0.02", "payment:currency =EUR"}
	for _, input := range inputs {
		a, errA := Parse(input)
		b, errB := Parse(input)
		assert.Equal(t, a, b)
		assert.Equal(t, errA, errB)
		if a != nil {
			assert.NotSame(t, a, b, "each parse yields a fresh query")
		}
	}
}

func TestParseCaseSensitiveStructure(t *testing.T) {
	q, err := Parse("Order:Currency =eur")
	require.NoError(t, err)
	assert.Equal(t, "Order", q.FilterType)
	assert.Equal(t, "Currency", q.FilterKey)
	assert.Equal(t, "eur", q.FilterValue)
}

func TestOperatorWireForm(t *testing.T) {
	for _, op := range []Operator{Eq, Gt, Lt, Range} {
		got, err := ParseOperator(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	_, err := ParseOperator("~")
	assert.Error(t, err)
}

func TestQueryParams(t *testing.T) {
	q, err := Parse("payment:amount 1..2")
	require.NoError(t, err)
	p := q.Params()
	assert.Equal(t, "payment", p.FilterType)
	assert.Equal(t, "amount", p.FilterKey)
	assert.Equal(t, Range, p.FilterOperator)
	assert.Equal(t, "1..2", p.FilterValue)
	assert.Equal(t, "payment:amount 1..2", p.Search)
	assert.Equal(t, "payment:amount", q.Selector())
}
