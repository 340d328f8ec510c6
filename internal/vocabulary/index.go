// Package vocabulary holds the static set of filter selectors offered as
// suggestions and autocompletions.
package vocabulary

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

//go:embed default_vocabulary.yaml
var embeddedVocabulary []byte

// Entry is one known filter selector.
type Entry struct {
	Selector    string `yaml:"selector"`
	DisplayName string `yaml:"name"`
	Example     string `yaml:"example,omitempty"`
}

// Index is an immutable, ordered vocabulary. Entries keep their declared
// order for display; prefix lookups use lexicographic order.
type Index struct {
	entries []Entry
	sorted  []string // selectors, lexicographic
	byName  map[string]int
}

// New builds an index from entries. Selectors must be non-empty, contain no
// whitespace and be unique.
func New(entries []Entry) (*Index, error) {
	idx := &Index{
		entries: make([]Entry, 0, len(entries)),
		sorted:  make([]string, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		e.Selector = strings.TrimSpace(e.Selector)
		if e.Selector == "" {
			return nil, fmt.Errorf("vocabulary entry %d: empty selector", i)
		}
		if strings.ContainsAny(e.Selector, " \t\n") {
			return nil, fmt.Errorf("vocabulary entry %d: selector %q contains whitespace", i, e.Selector)
		}
		if _, dup := idx.byName[e.Selector]; dup {
			return nil, fmt.Errorf("vocabulary entry %d: duplicate selector %q", i, e.Selector)
		}
		if e.DisplayName == "" {
			e.DisplayName = e.Selector
		}
		idx.byName[e.Selector] = len(idx.entries)
		idx.entries = append(idx.entries, e)
		idx.sorted = append(idx.sorted, e.Selector)
	}
	sort.Strings(idx.sorted)
	return idx, nil
}

// Parse decodes a YAML list of entries.
func Parse(data []byte) (*Index, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}
	return New(entries)
}

// LoadFile reads a YAML vocabulary file.
func LoadFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	idx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

// Default returns the embedded vocabulary.
func Default() *Index {
	idx, err := Parse(embeddedVocabulary)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary: %v", err))
	}
	return idx
}

// Load returns the vocabulary at path, or the embedded default when path is empty.
func Load(path string) (*Index, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Len returns the number of entries.
func (x *Index) Len() int { return len(x.entries) }

// Entries returns the entries in declared order. The slice is a copy.
func (x *Index) Entries() []Entry {
	return append([]Entry(nil), x.entries...)
}

// Entry returns the entry at position i in declared order.
func (x *Index) Entry(i int) (Entry, bool) {
	if i < 0 || i >= len(x.entries) {
		return Entry{}, false
	}
	return x.entries[i], true
}

// Selectors returns the selectors in declared order.
func (x *Index) Selectors() []string {
	out := make([]string, len(x.entries))
	for i, e := range x.entries {
		out[i] = e.Selector
	}
	return out
}

// Lookup finds an entry by its exact selector.
func (x *Index) Lookup(selector string) (Entry, bool) {
	i, ok := x.byName[selector]
	if !ok {
		return Entry{}, false
	}
	return x.entries[i], true
}

// FirstWithPrefix returns the lexicographically first selector that starts
// with prefix (case-sensitive). An empty prefix matches nothing.
func (x *Index) FirstWithPrefix(prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	i := sort.SearchStrings(x.sorted, prefix)
	if i < len(x.sorted) && strings.HasPrefix(x.sorted[i], prefix) {
		return x.sorted[i], true
	}
	return "", false
}

// WithPrefix returns every selector starting with prefix, lexicographically.
func (x *Index) WithPrefix(prefix string) []string {
	i := sort.SearchStrings(x.sorted, prefix)
	var out []string
	for ; i < len(x.sorted) && strings.HasPrefix(x.sorted[i], prefix); i++ {
		out = append(out, x.sorted[i])
	}
	return out
}

// Visible reports whether the entry with selector belongs in the dropdown for
// text: the selector extends the text, the text extends the selector, or the
// text mentions the selector regardless of case.
func Visible(selector, text string) bool {
	return strings.HasPrefix(selector, text) ||
		strings.HasPrefix(text, selector) ||
		strings.Contains(strings.ToLower(text), strings.ToLower(selector))
}

// Hidden returns, in declared order, which entries are filtered out for text.
func (x *Index) Hidden(text string) []bool {
	hidden := make([]bool, len(x.entries))
	for i, e := range x.entries {
		hidden[i] = !Visible(e.Selector, text)
	}
	return hidden
}

// Matching returns the dropdown entries for text in declared order.
func (x *Index) Matching(text string) []Entry {
	var out []Entry
	for _, e := range x.entries {
		if Visible(e.Selector, text) {
			out = append(out, e)
		}
	}
	return out
}

// Search ranks entries by fuzzy similarity of pattern against selector and
// display name. An empty pattern returns every entry in declared order.
func (x *Index) Search(pattern string) []Entry {
	if strings.TrimSpace(pattern) == "" {
		return x.Entries()
	}
	matches := fuzzy.FindFrom(pattern, searchSource(x.entries))
	seen := make(map[string]bool, len(matches))
	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		e := x.entries[m.Index]
		if seen[e.Selector] {
			continue
		}
		seen[e.Selector] = true
		out = append(out, e)
	}
	return out
}

// searchSource adapts entries to fuzzy.Source.
type searchSource []Entry

func (s searchSource) String(i int) string {
	if s[i].DisplayName == s[i].Selector {
		return s[i].Selector
	}
	return s[i].Selector + " " + s[i].DisplayName
}

func (s searchSource) Len() int { return len(s) }
