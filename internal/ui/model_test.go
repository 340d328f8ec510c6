package ui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/qbar/internal/config"
	"github.com/oakwood-commons/qbar/internal/fetch"
	"github.com/oakwood-commons/qbar/internal/focus"
	"github.com/oakwood-commons/qbar/internal/query"
	"github.com/oakwood-commons/qbar/internal/store"
)

func newTestModel(t *testing.T, src store.Source, maxResults int) *Model {
	t.Helper()
	if src == nil {
		src = store.NewMemory(store.DefaultDataset())
	}
	return New(context.Background(), Options{
		Source: src,
		UI:     config.UIConfig{Prompt: "> ", Placeholder: "Search...", NoColor: true, ShowExamples: true},
		Search: config.SearchConfig{MaxResults: maxResults},
		Logger: logr.Discard(),
	})
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func press(m *Model, code rune) tea.Cmd {
	_, cmd := m.Update(tea.KeyPressMsg{Code: code})
	return cmd
}

// settle fires the debounce for the current generation and applies the fetch
// it starts, if any.
func settle(t *testing.T, m *Model) {
	t.Helper()
	gen, _ := m.tracker.Current()
	_, cmd := m.Update(searchDebounceMsg{Gen: gen})
	if cmd == nil {
		return
	}
	msg := cmd()
	_, ok := msg.(fetchResultMsg)
	require.True(t, ok, "expected a fetch result, got %T", msg)
	m.Update(msg)
}

func render(m *Model) string {
	return fmt.Sprint(m.View().Content)
}

func TestPlaceholderOnlyWithoutGhost(t *testing.T) {
	m := newTestModel(t, nil, 0)
	assert.Equal(t, "Search...", m.field.Placeholder)

	press(m, tea.KeyDown) // focuses "payment" with an empty field
	assert.Equal(t, "payment", m.ctrl.Ghost())
	assert.Equal(t, "", m.field.Placeholder)

	press(m, tea.KeyEscape)
	assert.Equal(t, "Search...", m.field.Placeholder)
}

func TestTypingShowsGhostAndExamples(t *testing.T) {
	m := newTestModel(t, nil, 0)
	typeText(m, "pay")
	assert.Equal(t, "pay", m.Text())
	assert.Equal(t, "ment", m.ctrl.Ghost())

	view := render(m)
	assert.Contains(t, view, "ment")
	assert.Contains(t, view, "Ex. payment 12X889013")
	assert.Contains(t, view, "Ex. payment:amount > 0.01")
	assert.NotContains(t, view, "Ex. order ")
}

func TestTabCompletesAndSchedulesSearch(t *testing.T) {
	m := newTestModel(t, nil, 0)
	typeText(m, "ord")
	before, _ := m.tracker.Current()

	cmd := press(m, tea.KeyTab)
	require.NotNil(t, cmd)
	assert.Equal(t, "order", m.field.Value())
	assert.Equal(t, "order", m.Text())
	after, text := m.tracker.Current()
	assert.Greater(t, after, before)
	assert.Equal(t, "order", text)
}

func TestSearchAppliesResults(t *testing.T) {
	m := newTestModel(t, nil, 0)
	typeText(m, "order:amount >3")
	settle(t, m)

	require.Len(t, m.Records(), 2)
	assert.Equal(t, "5b7d8e6e-d58c-4af1-96f1-0d0ed5b827d2", m.Records()[0].ID())
	view := render(m)
	assert.Contains(t, view, "5.00 EUR")
	assert.Contains(t, view, "3.20 USD")
	assert.Contains(t, view, "2 results")
}

func TestEmptyQueryClearsResults(t *testing.T) {
	m := newTestModel(t, nil, 0)
	typeText(m, "order:amount >3")
	settle(t, m)
	require.NotEmpty(t, m.Records())

	for range "order:amount >3" {
		press(m, tea.KeyBackspace)
	}
	require.Equal(t, "", m.Text())
	settle(t, m)
	assert.Empty(t, m.Records())
}

func TestStaleGenerationsAreDropped(t *testing.T) {
	m := newTestModel(t, nil, 0)
	typeText(m, "order:amount >3")
	stale, _ := m.tracker.Current()
	typeText(m, "00")

	_, cmd := m.Update(searchDebounceMsg{Gen: stale})
	assert.Nil(t, cmd, "a superseded debounce starts no fetch")

	m.Update(fetchResultMsg{fetch.Result{
		Gen:     stale,
		Records: []query.Record{{Type: "order", Fields: map[string]any{"id": "late"}}},
	}})
	assert.Empty(t, m.Records(), "a superseded result is never applied")
}

func TestParseErrorSuppressesFetch(t *testing.T) {
	m := newTestModel(t, nil, 0)
	typeText(m, "payment:amount 0.02")
	gen, _ := m.tracker.Current()
	_, cmd := m.Update(searchDebounceMsg{Gen: gen})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.parseErr, query.ErrMissingOperator)
	assert.Contains(t, render(m), "add an operator")
}

func TestFetchFailureShowsFlag(t *testing.T) {
	failing := store.SourceFunc(func(context.Context, query.Params) ([]query.Record, error) {
		return nil, errors.New("boom")
	})
	m := newTestModel(t, failing, 0)
	typeText(m, "order:amount >3")
	settle(t, m)

	assert.Empty(t, m.Records())
	assert.Error(t, m.fetchErr)
	view := render(m)
	assert.Contains(t, view, "source unavailable")
	assert.NotContains(t, view, "boom")

	// navigation keeps working
	press(m, tea.KeyDown)
	_, ok := m.ctrl.Navigator().Focused()
	assert.True(t, ok)
}

func TestPreviousResultsStayWhileLoading(t *testing.T) {
	m := newTestModel(t, nil, 0)
	typeText(m, "order:amount >3")
	settle(t, m)
	require.Len(t, m.Records(), 2)

	typeText(m, ".5")
	gen, _ := m.tracker.Current()
	_, cmd := m.Update(searchDebounceMsg{Gen: gen})
	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	assert.Len(t, m.Records(), 2)
	assert.Contains(t, render(m), "searching...")

	m.Update(cmd())
	assert.False(t, m.loading)
	assert.Len(t, m.Records(), 1)
}

func TestEnterOnResultChoosesIt(t *testing.T) {
	m := newTestModel(t, nil, 0)
	typeText(m, "order:amount >3")
	settle(t, m)

	// suggestions "order" and "order:amount" come first
	for i := 0; i < 3; i++ {
		press(m, tea.KeyDown)
	}
	item, ok := m.ctrl.Navigator().Focused()
	require.True(t, ok)
	require.Equal(t, focus.Result, item.Kind)

	cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	chosen, ok := m.Chosen()
	require.True(t, ok)
	assert.Equal(t, "5b7d8e6e-d58c-4af1-96f1-0d0ed5b827d2", chosen.ID())
	assert.Equal(t, "", render(m))
}

func TestEnterOnSuggestionCommitsText(t *testing.T) {
	m := newTestModel(t, nil, 0)
	typeText(m, "order")
	press(m, tea.KeyDown)
	press(m, tea.KeyDown)
	cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, "order:currency", m.field.Value())
	_, ok := m.Chosen()
	assert.False(t, ok)
}

func TestCopyFocusedID(t *testing.T) {
	copied, restore := StubPlatformActions()
	defer restore()

	m := newTestModel(t, nil, 0)
	m.Update(tea.KeyPressMsg{Code: 'y', Mod: tea.ModCtrl})
	assert.Empty(t, *copied)
	assert.Contains(t, render(m), "focus a result")

	typeText(m, "order:amount >3")
	settle(t, m)
	press(m, tea.KeyUp) // last result
	m.Update(tea.KeyPressMsg{Code: 'y', Mod: tea.ModCtrl})
	assert.Equal(t, []string{"9f0c8296-a8bb-44fc-903a-0c02a7546782"}, *copied)
	assert.Contains(t, render(m), "copied 9f0c8296")
}

func TestClickSuggestionAndResult(t *testing.T) {
	m := newTestModel(t, nil, 0)
	// line 0 is the input, lines 1..6 the six suggestions
	_, cmd := m.Update(tea.MouseClickMsg{X: 4, Y: 3, Button: tea.MouseLeft})
	require.NotNil(t, cmd)
	assert.Equal(t, "payment:amount", m.Text())
	assert.Equal(t, "payment:amount", m.field.Value())

	m.ctrl.SetText("order:amount >3")
	m.syncField()
	m.scheduleSearch()
	settle(t, m)
	// visible suggestions: order, order:amount; separator on line 3
	m.Update(tea.MouseClickMsg{X: 4, Y: 5, Button: tea.MouseLeft})
	assert.True(t, m.ctrl.Navigator().IsFocused(focus.Item{Kind: focus.Result, Index: 1}))

	_, cmd = m.Update(tea.MouseClickMsg{X: 4, Y: 40, Button: tea.MouseLeft})
	assert.Nil(t, cmd)
	_, cmd = m.Update(tea.MouseClickMsg{X: 4, Y: 1, Button: tea.MouseRight})
	assert.Nil(t, cmd)
}

func TestMaxResultsWindow(t *testing.T) {
	m := newTestModel(t, nil, 1)
	typeText(m, "order:amount >3")
	settle(t, m)
	assert.Len(t, m.Records(), 1)
	assert.Contains(t, render(m), "showing 1 of 2 results")
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, nil, 0)
	cmd := press(m, tea.KeyEscape)
	require.NotNil(t, cmd, "escape on an idle empty field quits")
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m = newTestModel(t, nil, 0)
	typeText(m, "pay")
	assert.Nil(t, press(m, tea.KeyEscape), "escape with text only resets navigation")

	_, cmd = m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestInitialText(t *testing.T) {
	m := New(context.Background(), Options{
		Source: store.NewMemory(store.DefaultDataset()),
		UI:     config.UIConfig{Placeholder: "Search..."},
		Logger: logr.Discard(),
		Text:   "order",
	})
	assert.Equal(t, "order", m.field.Value())
	assert.NotNil(t, m.Init())
	gen, text := m.tracker.Current()
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, "order", text)
}

func TestSuggestionFocusSurvivesEmptyResults(t *testing.T) {
	m := newTestModel(t, nil, 0)
	typeText(m, "pay")
	press(m, tea.KeyDown)
	press(m, tea.KeyDown)
	require.Equal(t, "payment:currency", m.ctrl.Navigator().Ghost())

	// "pay" has no value yet, so the tick clears an already empty result list
	settle(t, m)
	assert.True(t, m.ctrl.Navigator().IsFocused(focus.Item{Kind: focus.Suggestion, Index: 1}))
	assert.Equal(t, "payment:currency", m.ctrl.Navigator().Ghost())

	press(m, tea.KeyEnter)
	assert.Equal(t, "payment:currency", m.Text())
}

func TestSuggestionFocusSurvivesNewResults(t *testing.T) {
	m := newTestModel(t, nil, 0)
	typeText(m, "order:amount >3")
	press(m, tea.KeyDown) // "order"
	settle(t, m)

	require.Len(t, m.Records(), 2)
	assert.True(t, m.ctrl.Navigator().IsFocused(focus.Item{Kind: focus.Suggestion, Index: 3}))
	assert.Equal(t, "order", m.ctrl.Navigator().Ghost())
}

func TestCancelledFetchShowsFlag(t *testing.T) {
	cancelled := store.SourceFunc(func(context.Context, query.Params) ([]query.Record, error) {
		return nil, context.Canceled
	})
	m := newTestModel(t, cancelled, 0)
	typeText(m, "order:amount >3")
	settle(t, m)

	assert.False(t, m.loading)
	assert.ErrorIs(t, m.fetchErr, context.Canceled)
	assert.Contains(t, render(m), "source unavailable")
}
