package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/qbar/internal/query"
)

func search(t *testing.T, src Source, text string) []query.Record {
	t.Helper()
	q, err := query.Parse(text)
	require.NoError(t, err)
	require.NotNil(t, q)
	records, err := src.Search(context.Background(), q.Params())
	require.NoError(t, err)
	return records
}

func ids(records []query.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()[:8]
	}
	return out
}

func TestMemorySearch(t *testing.T) {
	src := NewMemory(DefaultDataset())

	tests := []struct {
		text string
		want []string
	}{
		{"order:amount >0.1", []string{"b26955c1", "5b7d8e6e", "9f0c8296"}},
		{"order:amount <0.09", []string{"22bf2dd0"}},
		{"payment:amount 0.8..1.2", []string{"4980a59c", "713dd187", "5b38c398"}},
		{"payment:amount ..0.05", []string{"8d36d130"}},
		{"payment:currency =eur", []string{"4980a59c", "713dd187"}},
		{"payment:paymentMethod =VISA", []string{"4980a59c"}},
		{"order =9f0c8296-a8bb-44fc-903a-0c02a7546782", []string{"9f0c8296"}},
		{"order:status =unknown", []string{}},
		{"order:missing =x", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(search(t, src, tt.text)))
		})
	}
}

func TestMemoryUnknownType(t *testing.T) {
	src := NewMemory(DefaultDataset())
	records := search(t, src, "refund =1")
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestMemoryLatencyHonorsContext(t *testing.T) {
	src := NewMemory(DefaultDataset(), WithLatency(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.Search(ctx, query.Params{FilterType: "order", FilterOperator: query.Gt, FilterValue: "0"})
	assert.ErrorIs(t, err, context.Canceled)

	src = NewMemory(DefaultDataset(), WithLatency(5*time.Millisecond))
	records := search(t, src, "order:amount >0")
	assert.Len(t, records, 4)
}
