// Package autocomplete derives the ghost completion shown ahead of the caret
// and the edits that accept it.
package autocomplete

import (
	"strings"
	"unicode/utf8"
)

// Vocabulary is the lookup the engine needs from a suggestion index.
type Vocabulary interface {
	FirstWithPrefix(prefix string) (string, bool)
}

// Caret is the cursor and selection of the text field, in runes.
type Caret struct {
	Pos      int
	SelStart int
	SelEnd   int
}

// CaretAtEnd returns a caret after the last rune of text with no selection.
func CaretAtEnd(text string) Caret {
	n := utf8.RuneCountInString(text)
	return Caret{Pos: n, SelStart: n, SelEnd: n}
}

// Suggest returns the full completion for text. A focused suggestion always
// wins; otherwise the lexicographically first selector that starts with text
// (case-sensitive) is returned. The empty string means no suggestion.
func Suggest(text, focused string, vocab Vocabulary) string {
	if focused != "" {
		return focused
	}
	if text == "" || vocab == nil {
		return ""
	}
	s, _ := vocab.FirstWithPrefix(text)
	return s
}

// Ghost returns the part of suggestion to draw after text, or "" when the
// suggestion does not extend text (compared case-insensitively).
func Ghost(text, suggestion string) string {
	if suggestion == "" {
		return ""
	}
	rest, ok := cutPrefixFold(suggestion, text)
	if !ok {
		return ""
	}
	return rest
}

// Complete returns the text after accepting the whole suggestion with Tab.
// It refuses unless the suggestion starts with text exactly, so a ghost that
// only matches ignoring case never overwrites what the user typed.
func Complete(text, suggestion string) (string, bool) {
	if suggestion == "" || suggestion == text || !strings.HasPrefix(suggestion, text) {
		return text, false
	}
	return suggestion, true
}

// Advance returns the text after accepting one more rune of the suggestion,
// as Right arrow does when the caret is at the end with nothing selected.
func Advance(text, suggestion string, caret Caret) (string, bool) {
	if suggestion == "" {
		return text, false
	}
	n := utf8.RuneCountInString(text)
	if caret.Pos != n || caret.SelStart != caret.SelEnd {
		return text, false
	}
	rest := Ghost(text, suggestion)
	if rest == "" {
		return text, false
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return text + string(r), true
}

// cutPrefixFold strips prefix from s ignoring case, rune by rune.
func cutPrefixFold(s, prefix string) (string, bool) {
	for prefix != "" {
		if s == "" {
			return "", false
		}
		pr, pn := utf8.DecodeRuneInString(prefix)
		sr, sn := utf8.DecodeRuneInString(s)
		if pr != sr && !strings.EqualFold(string(pr), string(sr)) {
			return "", false
		}
		prefix = prefix[pn:]
		s = s[sn:]
	}
	return s, true
}
