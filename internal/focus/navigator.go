// Package focus implements keyboard and mouse focus over the suggestion list
// followed by the result list, treated as one ordered focus ring.
package focus

import "fmt"

// Kind tags which list an Item belongs to.
type Kind int

const (
	Suggestion Kind = iota
	Result
)

func (k Kind) String() string {
	switch k {
	case Suggestion:
		return "suggestion"
	case Result:
		return "result"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Item is a positional handle into one of the two lists.
type Item struct {
	Kind  Kind
	Index int
}

func (i Item) String() string { return fmt.Sprintf("%s[%d]", i.Kind, i.Index) }

// State is the navigation state of one search session. A nil Focused means
// nothing is focused; an empty Ghost means no ghost suggestion.
type State struct {
	Focused *Item
	Ghost   string
}

type slot struct {
	key    string
	hidden bool
}

// Navigator is the focus state machine. Traversal never wraps: moving past
// either end of the ring keeps the current focus. It is not safe for
// concurrent use; it is driven by a single input event loop.
type Navigator struct {
	lists   [2][]slot
	focused Item
	has     bool
	ghost   string
}

// New returns a navigator with empty lists and nothing focused.
func New() *Navigator {
	return &Navigator{}
}

// State returns a copy of the current navigation state.
func (n *Navigator) State() State {
	s := State{Ghost: n.ghost}
	if n.has {
		item := n.focused
		s.Focused = &item
	}
	return s
}

// Focused returns the focused item, if any.
func (n *Navigator) Focused() (Item, bool) {
	return n.focused, n.has
}

// IsFocused reports whether item is the focused item.
func (n *Navigator) IsFocused(item Item) bool {
	return n.has && n.focused == item
}

// Ghost returns the current ghost suggestion.
func (n *Navigator) Ghost() string { return n.ghost }

// FocusedSuggestion returns the key of the focused suggestion, or "" when
// nothing or a result is focused.
func (n *Navigator) FocusedSuggestion() string {
	if !n.has || n.focused.Kind != Suggestion {
		return ""
	}
	return n.lists[Suggestion][n.focused.Index].key
}

// Len returns the size of one list, hidden entries included.
func (n *Navigator) Len(kind Kind) int { return len(n.lists[kind]) }

// Key returns the key stored for item.
func (n *Navigator) Key(item Item) (string, bool) {
	if !n.valid(item) {
		return "", false
	}
	return n.lists[item.Kind][item.Index].key, true
}

// Hidden reports whether item is currently filtered out.
func (n *Navigator) Hidden(item Item) bool {
	if !n.valid(item) {
		return true
	}
	return n.lists[item.Kind][item.Index].hidden
}

// Ring returns the focusable items in traversal order.
func (n *Navigator) Ring() []Item {
	var ring []Item
	for pos, total := 0, n.size(); pos < total; pos++ {
		item := n.at(pos)
		if !n.lists[item.Kind][item.Index].hidden {
			ring = append(ring, item)
		}
	}
	return ring
}

// Reset clears focus and ghost.
func (n *Navigator) Reset() {
	n.has = false
	n.focused = Item{}
	n.ghost = ""
}

// SetSuggestions replaces the suggestion list wholesale and resets the state.
func (n *Navigator) SetSuggestions(keys []string) {
	n.lists[Suggestion] = slotsFor(keys)
	n.Reset()
}

// SetResults replaces the result list. The same keys in the same order are
// not a replacement and change nothing. Otherwise the new list starts
// unfiltered; a focused suggestion keeps focus and ghost, while a focused
// result keeps focus only if the same key sits at its index.
func (n *Navigator) SetResults(keys []string) {
	old := n.lists[Result]
	if sameKeys(old, keys) {
		return
	}
	n.lists[Result] = slotsFor(keys)
	if n.has && n.focused.Kind == Result {
		i := n.focused.Index
		if i >= len(keys) || old[i].key != keys[i] {
			n.has = false
			n.focused = Item{}
		}
	}
}

// Filter re-applies visibility to an existing list without replacing it.
// Entries beyond len(hidden) become visible. If the focused item is hidden
// by the new filter, focus is dropped.
func (n *Navigator) Filter(kind Kind, hidden []bool) {
	list := n.lists[kind]
	for i := range list {
		list[i].hidden = i < len(hidden) && hidden[i]
	}
	if n.has && n.focused.Kind == kind && list[n.focused.Index].hidden {
		n.has = false
		n.focused = Item{}
	}
}

// Down moves focus to the next visible item. From no focus it focuses the
// first visible item.
func (n *Navigator) Down() {
	start := 0
	if n.has {
		start = n.pos(n.focused) + 1
	}
	for pos, total := start, n.size(); pos < total; pos++ {
		if n.focusAt(pos) {
			return
		}
	}
}

// Up moves focus to the previous visible item. From no focus it focuses the
// last visible item.
func (n *Navigator) Up() {
	start := n.size() - 1
	if n.has {
		start = n.pos(n.focused) - 1
	}
	for pos := start; pos >= 0; pos-- {
		if n.focusAt(pos) {
			return
		}
	}
}

// Enter commits the focused suggestion. It returns the text to put in the
// field and true, leaving nothing focused. On a result or with nothing
// focused it does nothing.
func (n *Navigator) Enter() (string, bool) {
	key := n.FocusedSuggestion()
	if key == "" {
		return "", false
	}
	n.has = false
	n.focused = Item{}
	n.ghost = key
	return key, true
}

// Escape clears focus and ghost unconditionally.
func (n *Navigator) Escape() {
	n.Reset()
}

// TextChanged records an edit of the input. Emptying the field ends the
// session; otherwise focus is kept and ghost becomes the new ghost.
func (n *Navigator) TextChanged(text, ghost string) {
	if text == "" {
		n.Reset()
		return
	}
	n.ghost = ghost
}

// Activate focuses item directly, as a mouse click does. For a suggestion it
// also returns the key to commit as input text. Hidden or unknown items are
// ignored.
func (n *Navigator) Activate(item Item) (string, bool) {
	if !n.valid(item) || n.lists[item.Kind][item.Index].hidden {
		return "", false
	}
	n.focused = item
	n.has = true
	if item.Kind != Suggestion {
		return "", false
	}
	key := n.lists[item.Kind][item.Index].key
	n.ghost = key
	return key, true
}

func (n *Navigator) focusAt(pos int) bool {
	item := n.at(pos)
	s := n.lists[item.Kind][item.Index]
	if s.hidden {
		return false
	}
	n.focused = item
	n.has = true
	if item.Kind == Suggestion {
		n.ghost = s.key
	}
	return true
}

func (n *Navigator) size() int {
	return len(n.lists[Suggestion]) + len(n.lists[Result])
}

func (n *Navigator) pos(item Item) int {
	if item.Kind == Result {
		return len(n.lists[Suggestion]) + item.Index
	}
	return item.Index
}

func (n *Navigator) at(pos int) Item {
	if s := len(n.lists[Suggestion]); pos >= s {
		return Item{Kind: Result, Index: pos - s}
	}
	return Item{Kind: Suggestion, Index: pos}
}

func (n *Navigator) valid(item Item) bool {
	if item.Kind != Suggestion && item.Kind != Result {
		return false
	}
	return item.Index >= 0 && item.Index < len(n.lists[item.Kind])
}

func sameKeys(slots []slot, keys []string) bool {
	if len(slots) != len(keys) {
		return false
	}
	for i, s := range slots {
		if s.key != keys[i] {
			return false
		}
	}
	return true
}

func slotsFor(keys []string) []slot {
	slots := make([]slot, len(keys))
	for i, k := range keys {
		slots[i] = slot{key: k}
	}
	return slots
}
