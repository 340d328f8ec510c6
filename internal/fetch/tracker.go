// Package fetch keys record fetches by a generation counter so that only the
// response for the latest input text is ever applied.
package fetch

import (
	"context"
	"sync"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/qbar/internal/query"
	"github.com/oakwood-commons/qbar/internal/store"
)

// Tracker issues generations and cancels superseded fetches. Next and Accept
// are called from the UI loop while Begin may run inside a tea.Cmd goroutine,
// so the tracker is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	gen    uint64
	text   string
	cancel context.CancelFunc
	// fetchGen is the generation cancel belongs to.
	fetchGen uint64
}

// NewTracker returns a tracker at generation zero.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Next records a text change, cancels any in-flight fetch and returns the new
// generation.
func (t *Tracker) Next(text string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.text = text
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	return t.gen
}

// Current returns the latest generation and its text.
func (t *Tracker) Current() (uint64, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen, t.text
}

// IsCurrent reports whether gen is still the latest generation.
func (t *Tracker) IsCurrent(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.gen
}

// Begin derives the context for the fetch of gen. The context is cancelled as
// soon as a newer generation is issued. For a stale gen the returned context
// is already cancelled.
func (t *Tracker) Begin(ctx context.Context, gen uint64) (context.Context, context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fctx, cancel := context.WithCancel(ctx)
	if gen != t.gen {
		cancel()
		return fctx, cancel
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.cancel = cancel
	t.fetchGen = gen
	return fctx, cancel
}

// finish releases the cancel func of gen's fetch once it has returned.
func (t *Tracker) finish(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil && t.fetchGen == gen {
		t.cancel()
		t.cancel = nil
	}
}

// Accept reports whether res may be applied. Superseded results are logged at
// V(1) and rejected.
func (t *Tracker) Accept(log logr.Logger, res Result) bool {
	if t.IsCurrent(res.Gen) {
		return true
	}
	log.V(1).Info("dropping stale fetch result", "gen", res.Gen, "text", res.Text)
	return false
}

// Result is the outcome of one fetch. Err is set when the source failed, in
// which case Records is nil.
type Result struct {
	Gen     uint64
	Text    string
	Records []query.Record
	Err     error
}

// Run executes q against src under the tracker's context for gen. A nil q
// returns an empty result without touching the source.
func (t *Tracker) Run(ctx context.Context, src store.Source, gen uint64, text string, q *query.Query) Result {
	res := Result{Gen: gen, Text: text}
	if q == nil {
		return res
	}
	fctx, cancel := t.Begin(ctx, gen)
	defer cancel()
	records, err := src.Search(fctx, q.Params())
	t.finish(gen)
	if err != nil {
		res.Err = err
		return res
	}
	res.Records = records
	return res
}
