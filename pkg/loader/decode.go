package loader

import (
	"fmt"
	"reflect"
)

const maxNormalizeDepth = 20

// Normalize rewrites typed containers produced by the decoders (for example
// []map[string]any from TOML arrays of tables, or map[any]any from YAML with
// non-string keys) into map[string]any and []any so callers can walk a
// dataset with plain type switches.
func Normalize(node any) any {
	return normalize(node, 0)
}

func normalize(node any, depth int) any {
	if depth > maxNormalizeDepth {
		return node
	}
	switch v := node.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = normalize(val, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = normalize(val, depth+1)
		}
		return out
	}

	rv := reflect.ValueOf(node)
	//exhaustive:ignore // only containers need rewriting
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key()
			key := fmt.Sprintf("%v", k.Interface())
			if k.Kind() == reflect.String {
				key = k.String()
			}
			out[key] = normalize(iter.Value().Interface(), depth+1)
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return node
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = normalize(rv.Index(i).Interface(), depth+1)
		}
		return out
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface(), depth+1)
	}
	return node
}
