// Package ui is the interactive query bar: a single text field with ghost
// completion, a suggestion dropdown and a live result list.
package ui

import (
	"context"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/qbar/internal/autocomplete"
	"github.com/oakwood-commons/qbar/internal/config"
	"github.com/oakwood-commons/qbar/internal/fetch"
	"github.com/oakwood-commons/qbar/internal/focus"
	"github.com/oakwood-commons/qbar/internal/input"
	"github.com/oakwood-commons/qbar/internal/limiter"
	"github.com/oakwood-commons/qbar/internal/query"
	"github.com/oakwood-commons/qbar/internal/store"
	"github.com/oakwood-commons/qbar/internal/vocabulary"
)

// Options configure a Model.
type Options struct {
	Source     store.Source
	Vocabulary *vocabulary.Index
	UI         config.UIConfig
	Search     config.SearchConfig
	Logger     logr.Logger
	Theme      *Theme
	// Text pre-fills the field; a search for it starts on Init.
	Text string
}

// searchDebounceMsg is sent after the debounce delay. Only the message whose
// generation is still current starts a fetch.
type searchDebounceMsg struct {
	Gen uint64
}

// fetchResultMsg carries a finished fetch back into the event loop.
type fetchResultMsg struct {
	fetch.Result
}

// Model is the Bubble Tea model of the query bar.
type Model struct {
	ctx     context.Context
	log     logr.Logger
	src     store.Source
	ctrl    *input.Controller
	tracker *fetch.Tracker
	field   textinput.Model
	styles  styles

	prompt       string
	placeholder  string
	showExamples bool
	debounce     time.Duration
	window       limiter.Config

	records  []query.Record // last applied results, kept while a fetch runs
	total    int            // result count before windowing
	loading  bool
	fetchErr error
	parseErr error
	status   string

	width, height int
	chosen        *query.Record
	quitting      bool
}

// New builds the model. ctx bounds every fetch the model starts.
func New(ctx context.Context, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	vocab := opts.Vocabulary
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	th := DefaultTheme()
	if opts.Theme != nil {
		th = *opts.Theme
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 500
	ti.Placeholder = opts.UI.Placeholder
	ti.Focus()

	m := &Model{
		ctx:          ctx,
		log:          opts.Logger,
		src:          opts.Source,
		ctrl:         input.New(vocab),
		tracker:      fetch.NewTracker(),
		field:        ti,
		styles:       newStyles(th, opts.UI.NoColor),
		prompt:       opts.UI.Prompt,
		placeholder:  opts.UI.Placeholder,
		showExamples: opts.UI.ShowExamples,
		debounce:     opts.Search.Debounce,
		window:       limiter.Config{Limit: opts.Search.MaxResults},
	}
	if opts.Text != "" {
		m.ctrl.SetText(opts.Text)
		m.syncField()
	}
	m.syncPlaceholder()
	return m
}

// Chosen returns the record the session ended on, if any.
func (m *Model) Chosen() (query.Record, bool) {
	if m.chosen == nil {
		return query.Record{}, false
	}
	return *m.chosen, true
}

// Text returns the current input text.
func (m *Model) Text() string { return m.ctrl.Text() }

// Records returns the results currently on screen.
func (m *Model) Records() []query.Record { return m.records }

func (m *Model) Init() tea.Cmd {
	if m.ctrl.Text() == "" {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.scheduleSearch())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.syncPlaceholder()

	switch msg := msg.(type) {
	case searchDebounceMsg:
		return m, m.startFetch(msg.Gen)

	case fetchResultMsg:
		m.applyResult(msg.Result)
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.MouseClickMsg:
		return m, m.handleClick(msg.Mouse())

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}

	return m, m.updateField(msg)
}

var controllerKeys = map[string]input.Key{
	"tab":   input.KeyTab,
	"right": input.KeyRight,
	"up":    input.KeyUp,
	"down":  input.KeyDown,
	"enter": input.KeyEnter,
	"esc":   input.KeyEscape,
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	keyStr := msg.String()
	m.status = ""

	switch keyStr {
	case "ctrl+c":
		m.quitting = true
		return tea.Quit
	case "ctrl+y":
		m.copyFocusedID()
		return nil
	case "esc":
		if _, focused := m.ctrl.Navigator().Focused(); !focused && m.ctrl.Text() == "" {
			m.quitting = true
			return tea.Quit
		}
	}

	if key, ok := controllerKeys[keyStr]; ok {
		pos := m.field.Position()
		out := m.ctrl.HandleKey(key, autocomplete.Caret{Pos: pos, SelStart: pos, SelEnd: pos})
		if out.Handled {
			if out.TextChanged {
				m.syncField()
				return m.scheduleSearch()
			}
			return nil
		}
		if key == input.KeyEnter {
			if r, ok := m.focusedRecord(); ok {
				m.chosen = &r
				m.quitting = true
				return tea.Quit
			}
			return nil
		}
	}

	return m.updateField(msg)
}

// updateField passes msg to the text field and starts a search when the
// edit changed the text.
func (m *Model) updateField(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.field, cmd = m.field.Update(msg)
	if v := m.field.Value(); v != m.ctrl.Text() {
		m.ctrl.SetText(v)
		return tea.Batch(cmd, m.scheduleSearch())
	}
	return cmd
}

func (m *Model) handleClick(mouse tea.Mouse) tea.Cmd {
	if mouse.Button != tea.MouseLeft {
		return nil
	}
	item, ok := m.itemAtLine(mouse.Y)
	if !ok {
		return nil
	}
	out := m.ctrl.Click(item)
	if out.TextChanged {
		m.syncField()
		return m.scheduleSearch()
	}
	return nil
}

// scheduleSearch issues a new generation for the current text and arms the
// debounce timer for it.
func (m *Model) scheduleSearch() tea.Cmd {
	gen := m.tracker.Next(m.ctrl.Text())
	if m.debounce <= 0 {
		return func() tea.Msg { return searchDebounceMsg{Gen: gen} }
	}
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{Gen: gen}
	})
}

// startFetch parses the text of gen and returns the fetch command. Text that
// does not form a query never reaches the source.
func (m *Model) startFetch(gen uint64) tea.Cmd {
	if !m.tracker.IsCurrent(gen) {
		return nil
	}
	_, text := m.tracker.Current()
	q, err := query.Parse(text)
	if err != nil {
		m.parseErr = err
		m.loading = false
		return nil
	}
	m.parseErr = nil
	if q == nil {
		m.loading = false
		m.fetchErr = nil
		m.applyRecords(nil)
		return nil
	}
	if m.src == nil {
		return nil
	}

	m.loading = true
	m.log.V(1).Info("fetching", "gen", gen, "selector", q.Selector(), "operator", q.FilterOperator.String())
	ctx, src, tracker := m.ctx, m.src, m.tracker
	return func() tea.Msg {
		return fetchResultMsg{tracker.Run(ctx, src, gen, text, q)}
	}
}

func (m *Model) applyResult(res fetch.Result) {
	if !m.tracker.Accept(m.log, res) {
		return
	}
	m.loading = false
	if res.Err != nil {
		if m.ctx.Err() != nil {
			// the program is shutting down
			return
		}
		m.log.Error(res.Err, "fetch failed", "text", res.Text)
		m.fetchErr = res.Err
		m.applyRecords(nil)
		return
	}
	m.fetchErr = nil
	m.applyRecords(res.Records)
}

func (m *Model) applyRecords(records []query.Record) {
	m.total = len(records)
	m.records = limiter.Apply(m.window, records)
	ids := make([]string, len(m.records))
	for i, r := range m.records {
		ids[i] = r.ID()
	}
	m.ctrl.SetResults(ids)
}

func (m *Model) focusedRecord() (query.Record, bool) {
	item, ok := m.ctrl.Navigator().Focused()
	if !ok || item.Kind != focus.Result || item.Index >= len(m.records) {
		return query.Record{}, false
	}
	return m.records[item.Index], true
}

func (m *Model) copyFocusedID() {
	r, ok := m.focusedRecord()
	if !ok {
		m.status = "focus a result to copy its id"
		return
	}
	if err := CopyToClipboard(r.ID()); err != nil {
		m.log.Error(err, "copy to clipboard")
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "copied " + r.ID()
}

// syncField mirrors a text change made by the controller into the field.
func (m *Model) syncField() {
	m.field.SetValue(m.ctrl.Text())
	m.field.CursorEnd()
}

// syncPlaceholder shows the placeholder only while there is no ghost.
func (m *Model) syncPlaceholder() {
	if m.ctrl.Ghost() == "" {
		m.field.Placeholder = m.placeholder
	} else {
		m.field.Placeholder = ""
	}
}
