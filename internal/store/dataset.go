package store

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/oakwood-commons/qbar/internal/query"
	"github.com/oakwood-commons/qbar/pkg/loader"
)

//go:embed default_dataset.yaml
var embeddedDataset []byte

// Dataset maps a filter type to its records in declared order.
type Dataset map[string][]query.Record

// Types returns the filter types present, sorted.
func (d Dataset) Types() []string {
	types := make([]string, 0, len(d))
	for t := range d {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Len returns the total number of records.
func (d Dataset) Len() int {
	n := 0
	for _, records := range d {
		n += len(records)
	}
	return n
}

// DefaultDataset returns the embedded seed records.
func DefaultDataset() Dataset {
	docs, err := loader.Decode(embeddedDataset, loader.FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded dataset: %v", err))
	}
	ds, err := DatasetFrom(docs)
	if err != nil {
		panic(fmt.Sprintf("embedded dataset: %v", err))
	}
	return ds
}

// LoadDataset returns the dataset at path, or the embedded one when path is
// empty.
func LoadDataset(path string) (Dataset, error) {
	if path == "" {
		return DefaultDataset(), nil
	}
	docs, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	ds, err := DatasetFrom(docs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// DatasetFrom builds a dataset from decoded documents. Two shapes are
// accepted: a mapping from filter type to a list of records, or standalone
// records (one per document, or a top-level list) carrying a "type" field.
func DatasetFrom(docs []any) (Dataset, error) {
	ds := Dataset{}
	for i, doc := range docs {
		switch v := doc.(type) {
		case map[string]any:
			if typ, ok := v["type"].(string); ok {
				if err := ds.add(typ, v); err != nil {
					return nil, fmt.Errorf("document %d: %w", i, err)
				}
				continue
			}
			for typ, rows := range v {
				list, ok := rows.([]any)
				if !ok {
					return nil, fmt.Errorf("document %d: %q is not a list of records", i, typ)
				}
				for j, row := range list {
					fields, ok := row.(map[string]any)
					if !ok {
						return nil, fmt.Errorf("document %d: %s[%d] is not a record", i, typ, j)
					}
					if err := ds.add(typ, fields); err != nil {
						return nil, fmt.Errorf("document %d: %s[%d]: %w", i, typ, j, err)
					}
				}
			}
		case []any:
			nested, err := DatasetFrom(v)
			if err != nil {
				return nil, fmt.Errorf("document %d: %w", i, err)
			}
			for typ, records := range nested {
				ds[typ] = append(ds[typ], records...)
			}
		default:
			return nil, fmt.Errorf("document %d: unsupported shape %T", i, doc)
		}
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("dataset holds no records")
	}
	return ds, nil
}

func (d Dataset) add(typ string, fields map[string]any) error {
	if typ == "" {
		return fmt.Errorf("record without type")
	}
	if _, ok := fields[query.DefaultKey]; !ok {
		return fmt.Errorf("record without %q", query.DefaultKey)
	}
	rec := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "type" {
			continue
		}
		rec[k] = v
	}
	d[typ] = append(d[typ], query.Record{Type: typ, Fields: rec})
	return nil
}
