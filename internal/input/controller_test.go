package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/qbar/internal/autocomplete"
	"github.com/oakwood-commons/qbar/internal/focus"
	"github.com/oakwood-commons/qbar/internal/query"
	"github.com/oakwood-commons/qbar/internal/vocabulary"
)

func typeText(c *Controller, s string) {
	for _, r := range s {
		c.SetText(c.Text() + string(r))
	}
}

func press(c *Controller, k Key) Outcome {
	return c.HandleKey(k, autocomplete.CaretAtEnd(c.Text()))
}

func selectors(rows []SuggestionRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Entry.Selector
	}
	return out
}

func TestTypingUpdatesGhostAndDropdown(t *testing.T) {
	c := New(vocabulary.Default())
	assert.Len(t, c.Suggestions(), 6)
	assert.Equal(t, "", c.Suggestion())

	typeText(c, "pay")
	assert.Equal(t, "payment", c.Suggestion())
	assert.Equal(t, "ment", c.Ghost())
	assert.Equal(t, []string{"payment", "payment:currency", "payment:amount"}, selectors(c.Suggestions()))

	typeText(c, "ment:")
	assert.Equal(t, "payment:amount", c.Suggestion(), "lexicographically first match")

	c.SetText("XYZ")
	assert.Equal(t, "", c.Suggestion())
	assert.Empty(t, c.Suggestions())
}

func TestTabCommitsSuggestion(t *testing.T) {
	c := New(vocabulary.Default())
	typeText(c, "ord")
	out := press(c, KeyTab)
	assert.Equal(t, Outcome{Handled: true, TextChanged: true}, out)
	assert.Equal(t, "order", c.Text())

	// nothing left to complete: Tab falls through
	out = press(c, KeyTab)
	assert.False(t, out.Handled)
}

func TestCaseMismatchOffersNothing(t *testing.T) {
	c := New(vocabulary.Default())
	c.SetText("PAY")
	assert.Equal(t, "", c.Suggestion())
	assert.Empty(t, c.Suggestions())

	out := press(c, KeyTab)
	assert.False(t, out.Handled)
	assert.Equal(t, "PAY", c.Text())

	// mentioning a selector in any case keeps it listed
	c.SetText("PAYMENT")
	assert.Equal(t, []string{"payment"}, selectors(c.Suggestions()))
}

func TestRightArrowAcceptsOneRune(t *testing.T) {
	c := New(vocabulary.Default())
	typeText(c, "pay")
	out := press(c, KeyRight)
	assert.True(t, out.TextChanged)
	assert.Equal(t, "paym", c.Text())

	out = c.HandleKey(KeyRight, autocomplete.Caret{Pos: 1, SelStart: 1, SelEnd: 1})
	assert.False(t, out.Handled, "caret not at end moves the caret instead")
	assert.Equal(t, "paym", c.Text())
}

func TestArrowNavigationAndEnter(t *testing.T) {
	c := New(vocabulary.Default())
	typeText(c, "order")
	// visible: order, order:currency, order:amount
	press(c, KeyDown)
	press(c, KeyDown)
	assert.Equal(t, "order:currency", c.Suggestion())
	assert.Equal(t, ":currency", c.Ghost())

	out := press(c, KeyEnter)
	assert.Equal(t, Outcome{Handled: true, TextChanged: true}, out)
	assert.Equal(t, "order:currency", c.Text())
	assert.Nil(t, c.State().Focused)

	// Enter with nothing focused falls through to the caller
	out = press(c, KeyEnter)
	assert.False(t, out.Handled)
}

func TestFocusSurvivesTypingUntilCleared(t *testing.T) {
	c := New(vocabulary.Default())
	typeText(c, "o")
	press(c, KeyDown)
	require.NotNil(t, c.State().Focused)

	typeText(c, "r")
	require.NotNil(t, c.State().Focused)
	assert.Equal(t, "order", c.Suggestion(), "focused suggestion wins")

	c.SetText("")
	assert.Equal(t, focus.State{}, c.State())
}

func TestTypingHidesFocusedSuggestion(t *testing.T) {
	c := New(vocabulary.Default())
	press(c, KeyDown) // payment
	typeText(c, "ord")
	assert.Nil(t, c.State().Focused, "hidden items lose focus")
	assert.Equal(t, "order", c.Suggestion())
}

func TestEscape(t *testing.T) {
	c := New(vocabulary.Default())
	typeText(c, "pay")
	press(c, KeyDown)
	out := press(c, KeyEscape)
	assert.True(t, out.Handled)
	assert.Equal(t, focus.State{}, c.State())
	assert.Equal(t, "pay", c.Text())
	assert.Equal(t, "", c.Ghost())
}

func TestResultsJoinFocusRing(t *testing.T) {
	c := New(vocabulary.Default())
	c.SetText("order:amount >0.01")
	c.SetResults([]string{"r1", "r2"})
	assert.Equal(t, "", c.Suggestion())

	// dropdown shows order and order:amount, then the two results
	for i := 0; i < 3; i++ {
		press(c, KeyDown)
	}
	assert.Equal(t, &focus.Item{Kind: focus.Result, Index: 0}, c.State().Focused)
	out := press(c, KeyEnter)
	assert.False(t, out.Handled)

	c.SetResults([]string{"r3"})
	assert.Nil(t, c.State().Focused, "a replaced result loses focus")
}

func TestSuggestionFocusSurvivesResultUpdates(t *testing.T) {
	c := New(vocabulary.Default())
	typeText(c, "pay")
	press(c, KeyDown)
	press(c, KeyDown)
	require.Equal(t, "payment:currency", c.Suggestion())

	c.SetResults(nil)
	assert.Equal(t, "payment:currency", c.Suggestion())
	assert.Equal(t, "ment:currency", c.Ghost())

	c.SetResults([]string{"r1"})
	assert.Equal(t, &focus.Item{Kind: focus.Suggestion, Index: 1}, c.State().Focused)

	out := press(c, KeyEnter)
	assert.True(t, out.TextChanged)
	assert.Equal(t, "payment:currency", c.Text())

	// with nothing focused the ghost follows the text
	c.SetText("ord")
	c.SetResults([]string{"r2"})
	assert.Equal(t, "order", c.Suggestion())
}

func TestClick(t *testing.T) {
	c := New(vocabulary.Default())
	typeText(c, "pay")
	out := c.Click(focus.Item{Kind: focus.Suggestion, Index: 2})
	assert.Equal(t, Outcome{Handled: true, TextChanged: true}, out)
	assert.Equal(t, "payment:amount", c.Text())
	assert.Equal(t, &focus.Item{Kind: focus.Suggestion, Index: 2}, c.State().Focused)

	c.SetResults([]string{"r1"})
	out = c.Click(focus.Item{Kind: focus.Result, Index: 0})
	assert.Equal(t, Outcome{Handled: true}, out)

	out = c.Click(focus.Item{Kind: focus.Suggestion, Index: 3}) // "order", hidden
	assert.False(t, out.Handled)
}

func TestQuery(t *testing.T) {
	c := New(vocabulary.Default())
	q, err := c.Query()
	assert.Nil(t, q)
	assert.NoError(t, err)

	c.SetText("payment:amount 0.02")
	_, err = c.Query()
	assert.ErrorIs(t, err, query.ErrMissingOperator)

	c.SetText("payment 0.02..5.00")
	q, err = c.Query()
	require.NoError(t, err)
	assert.Equal(t, query.Range, q.FilterOperator)
}
