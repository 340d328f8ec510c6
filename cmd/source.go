package cmd

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/qbar/internal/config"
	"github.com/oakwood-commons/qbar/internal/formatter"
	"github.com/oakwood-commons/qbar/internal/query"
	"github.com/oakwood-commons/qbar/internal/store"
)

// buildSource returns the configured record source behind the response
// cache.
func buildSource(cfg config.Config, log logr.Logger) (store.Source, error) {
	var src store.Source
	switch cfg.Source.Kind {
	case config.SourceHTTP:
		h, err := store.NewHTTP(store.HTTPConfig{
			BaseURL:         cfg.Source.URL,
			Timeout:         cfg.Source.Timeout,
			Retries:         cfg.Source.Retries,
			BreakerFailures: cfg.Source.BreakerFailures,
			BreakerTimeout:  cfg.Source.BreakerTimeout,
		}, log)
		if err != nil {
			return nil, err
		}
		src = h
	case config.SourceMemory:
		data := store.DefaultDataset()
		if cfg.Source.Dataset != "" {
			loaded, err := store.LoadDataset(cfg.Source.Dataset)
			if err != nil {
				return nil, fmt.Errorf("load dataset: %w", err)
			}
			data = loaded
		}
		log.V(1).Info("memory source ready", "types", data.Types(), "records", data.Len())
		src = store.NewMemory(data, store.WithLatency(cfg.Source.Latency), store.WithLogger(log))
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
	return store.NewCached(src, cfg.Search.CacheTTL, log), nil
}

// printRecord writes a single record as a table.
func printRecord(w io.Writer, r query.Record, noColor bool) error {
	return formatter.Render(w, []query.Record{r}, formatter.Options{Format: formatter.OutputTable, NoColor: noColor})
}
