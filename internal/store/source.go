// Package store provides the record sources a search is run against: an
// in-memory dataset, a caching decorator and an HTTP client for the record API.
package store

import (
	"context"

	"github.com/oakwood-commons/qbar/internal/query"
)

// Source answers a parsed query with matching records. Implementations must
// honor ctx cancellation and return an empty slice, not an error, for a
// filter type they do not know.
type Source interface {
	Search(ctx context.Context, p query.Params) ([]query.Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, p query.Params) ([]query.Record, error)

// Search calls f.
func (f SourceFunc) Search(ctx context.Context, p query.Params) ([]query.Record, error) {
	return f(ctx, p)
}

// filterQuery rebuilds the query a source evaluates from its parameters.
func filterQuery(p query.Params) *query.Query {
	return &query.Query{
		RawText:        p.Search,
		FilterType:     p.FilterType,
		FilterKey:      p.FilterKey,
		FilterOperator: p.FilterOperator,
		FilterValue:    p.FilterValue,
	}
}
