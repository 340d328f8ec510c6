// Package loader decodes record datasets from JSON, NDJSON, YAML (single or
// multi-document) and TOML, detecting the format from the file extension or,
// failing that, from the content itself.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a serialization format.
type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatNDJSON
	FormatYAML
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatNDJSON:
		return "ndjson"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	}
	return "auto"
}

// ErrEmpty is returned for input that holds no document.
var ErrEmpty = errors.New("empty input")

var (
	tomlSection  = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// FormatFromPath maps a file extension to a format. Unknown extensions return
// FormatAuto.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	}
	return FormatAuto
}

// Detect guesses the format of input. Multi-document YAML is checked first,
// then NDJSON, then TOML (whose [section] headers look like JSON arrays), then
// JSON; anything else is treated as YAML.
func Detect(input string) Format {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "---") || strings.Contains(input, "\n---") {
		return FormatYAML
	}
	lines := strings.Split(input, "\n")
	if len(lines) > 1 && isLikelyNDJSON(lines) {
		return FormatNDJSON
	}
	if isLikelyTOML(lines) {
		return FormatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses data in format f and returns one element per document.
func Decode(data []byte, f Format) ([]any, error) {
	input := strings.TrimSpace(string(data))
	if input == "" {
		return nil, ErrEmpty
	}
	if f == FormatAuto {
		f = Detect(input)
	}
	var (
		docs []any
		err  error
	)
	switch f {
	case FormatJSON:
		docs, err = decodeJSON(input)
	case FormatNDJSON:
		docs, err = decodeNDJSON(input)
	case FormatTOML:
		docs, err = decodeTOML(input)
	default:
		docs, err = decodeYAML(input)
	}
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i] = Normalize(docs[i])
	}
	return docs, nil
}

// LoadFile reads and decodes the file at path.
func LoadFile(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	docs, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

func decodeJSON(input string) ([]any, error) {
	var v any
	if err := json.Unmarshal([]byte(input), &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return []any{v}, nil
}

// decodeNDJSON parses one JSON value per non-empty line.
func decodeNDJSON(input string) ([]any, error) {
	var docs []any
	for n, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			return nil, fmt.Errorf("invalid NDJSON at line %d: %w", n+1, err)
		}
		docs = append(docs, v)
	}
	if len(docs) == 0 {
		return nil, ErrEmpty
	}
	return docs, nil
}

func decodeYAML(input string) ([]any, error) {
	var docs []any
	dec := yaml.NewDecoder(strings.NewReader(input))
	for {
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if v != nil {
			docs = append(docs, v)
		}
	}
	if len(docs) == 0 {
		return nil, ErrEmpty
	}
	return docs, nil
}

func decodeTOML(input string) ([]any, error) {
	var v map[string]any
	if err := toml.Unmarshal([]byte(input), &v); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []any{v}, nil
}

// isLikelyNDJSON requires several lines, most of them opening a JSON object
// or array. Bare YAML list items must not qualify.
func isLikelyNDJSON(lines []string) bool {
	jsonLines, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonLines++
		}
	}
	return nonEmpty > 1 && jsonLines > nonEmpty/2
}

// isLikelyTOML looks for [section] / [[array]] headers, or a majority of
// key = value lines.
func isLikelyTOML(lines []string) bool {
	sections, pairs, nonEmpty := 0, 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		if tomlSection.MatchString(line) {
			sections++
		}
		if tomlKeyValue.MatchString(line) {
			pairs++
		}
	}
	return sections > 0 || (nonEmpty > 0 && pairs > nonEmpty/2)
}
