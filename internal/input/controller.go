// Package input wires the autocomplete engine and the focus navigator behind
// the key events of a single search field.
package input

import (
	"github.com/oakwood-commons/qbar/internal/autocomplete"
	"github.com/oakwood-commons/qbar/internal/focus"
	"github.com/oakwood-commons/qbar/internal/query"
	"github.com/oakwood-commons/qbar/internal/vocabulary"
)

// Key is a navigation or completion key the controller reacts to.
type Key int

const (
	KeyTab Key = iota
	KeyRight
	KeyUp
	KeyDown
	KeyEnter
	KeyEscape
)

// Outcome reports what a key or click did.
type Outcome struct {
	Handled     bool // the event was consumed and must not reach the text field
	TextChanged bool // Text() differs from before the event
}

// Controller owns the text of the search field and its navigation state for
// one session. It is driven from a single event loop.
type Controller struct {
	vocab *vocabulary.Index
	nav   *focus.Navigator
	text  string
}

// New returns a controller offering every entry of vocab as a suggestion.
func New(vocab *vocabulary.Index) *Controller {
	nav := focus.New()
	nav.SetSuggestions(vocab.Selectors())
	return &Controller{vocab: vocab, nav: nav}
}

// Text returns the committed input text.
func (c *Controller) Text() string { return c.text }

// Navigator exposes the focus state machine shared by both lists.
func (c *Controller) Navigator() *focus.Navigator { return c.nav }

// Vocabulary returns the suggestion index.
func (c *Controller) Vocabulary() *vocabulary.Index { return c.vocab }

// State returns the navigation state.
func (c *Controller) State() focus.State { return c.nav.State() }

// Suggestion returns the full ghost suggestion, or "".
func (c *Controller) Suggestion() string { return c.nav.Ghost() }

// Ghost returns the dimmed completion text to render after the input.
func (c *Controller) Ghost() string {
	return autocomplete.Ghost(c.text, c.nav.Ghost())
}

// Query parses the current text. See query.Parse for the meaning of a nil
// query with a nil error.
func (c *Controller) Query() (*query.Query, error) {
	return query.Parse(c.text)
}

// SuggestionRow is one visible entry of the dropdown.
type SuggestionRow struct {
	Item    focus.Item
	Entry   vocabulary.Entry
	Focused bool
}

// Suggestions returns the visible dropdown entries in display order.
func (c *Controller) Suggestions() []SuggestionRow {
	var rows []SuggestionRow
	for i, e := range c.vocab.Entries() {
		item := focus.Item{Kind: focus.Suggestion, Index: i}
		if c.nav.Hidden(item) {
			continue
		}
		rows = append(rows, SuggestionRow{Item: item, Entry: e, Focused: c.nav.IsFocused(item)})
	}
	return rows
}

// SetText applies an edit made in the text field.
func (c *Controller) SetText(text string) {
	c.text = text
	c.nav.Filter(focus.Suggestion, c.vocab.Hidden(text))
	c.nav.TextChanged(text, autocomplete.Suggest(text, c.nav.FocusedSuggestion(), c.vocab))
}

// SetResults replaces the result list with records identified by ids. Focus
// survives as focus.Navigator.SetResults describes; with nothing focused the
// ghost is recomputed from the text.
func (c *Controller) SetResults(ids []string) {
	c.nav.SetResults(ids)
	if _, ok := c.nav.Focused(); !ok {
		c.nav.TextChanged(c.text, autocomplete.Suggest(c.text, "", c.vocab))
	}
}

// HandleKey processes a navigation or completion key.
func (c *Controller) HandleKey(key Key, caret autocomplete.Caret) Outcome {
	switch key {
	case KeyTab:
		text, ok := autocomplete.Complete(c.text, c.nav.Ghost())
		if !ok {
			return Outcome{}
		}
		c.SetText(text)
		return Outcome{Handled: true, TextChanged: true}

	case KeyRight:
		text, ok := autocomplete.Advance(c.text, c.nav.Ghost(), caret)
		if !ok {
			return Outcome{}
		}
		c.SetText(text)
		return Outcome{Handled: true, TextChanged: true}

	case KeyDown:
		c.nav.Down()
		return Outcome{Handled: true}

	case KeyUp:
		c.nav.Up()
		return Outcome{Handled: true}

	case KeyEnter:
		text, ok := c.nav.Enter()
		if !ok {
			return Outcome{}
		}
		return c.commit(text)

	case KeyEscape:
		c.nav.Escape()
		return Outcome{Handled: true}
	}
	return Outcome{}
}

// Click focuses item as a mouse activation does; a suggestion also replaces
// the text with its selector.
func (c *Controller) Click(item focus.Item) Outcome {
	text, ok := c.nav.Activate(item)
	if !ok {
		return Outcome{Handled: c.nav.IsFocused(item)}
	}
	return c.commit(text)
}

// commit writes text into the field without disturbing the navigation state
// the transition just produced, then re-filters the dropdown.
func (c *Controller) commit(text string) Outcome {
	changed := text != c.text
	c.text = text
	c.nav.Filter(focus.Suggestion, c.vocab.Hidden(text))
	return Outcome{Handled: true, TextChanged: changed}
}
