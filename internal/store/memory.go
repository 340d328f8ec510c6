package store

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/qbar/internal/query"
)

// Memory serves a dataset by linear scan. An optional latency delays every
// search to mimic a remote backend; the wait honors ctx.
type Memory struct {
	data    Dataset
	latency time.Duration
	log     logr.Logger
}

// MemoryOption configures a Memory source.
type MemoryOption func(*Memory)

// WithLatency delays every search by d.
func WithLatency(d time.Duration) MemoryOption {
	return func(m *Memory) { m.latency = d }
}

// WithLogger sets the logger used for debug traces.
func WithLogger(log logr.Logger) MemoryOption {
	return func(m *Memory) { m.log = log }
}

// NewMemory returns a source over data.
func NewMemory(data Dataset, opts ...MemoryOption) *Memory {
	m := &Memory{data: data, log: logr.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dataset returns the records served.
func (m *Memory) Dataset() Dataset { return m.data }

// Search implements Source.
func (m *Memory) Search(ctx context.Context, p query.Params) ([]query.Record, error) {
	if m.latency > 0 {
		timer := time.NewTimer(m.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, ok := m.data[p.FilterType]
	if !ok {
		m.log.V(1).Info("unknown filter type", "filterType", p.FilterType)
		return []query.Record{}, nil
	}
	out := query.Filter(records, filterQuery(p))
	m.log.V(1).Info("memory search", "filterType", p.FilterType, "filterKey", p.FilterKey,
		"operator", p.FilterOperator.String(), "value", p.FilterValue, "matches", len(out))
	return out, nil
}
