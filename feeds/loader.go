package feeds

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"campusvoice/models"
)

// Loader owns the visible feed state for one feed instance. Loads are not
// cancelled when new ones start; instead each load carries a sequence
// number and only the most recently initiated load may commit its result,
// so rapid filter changes never render stale responses out of order.
type Loader struct {
	engine *Engine
	seq    atomic.Int64

	mu      sync.Mutex
	closed  bool
	filters models.FilterSelection
	userID  string
	result  *models.FeedResponse
	err     error

	// onChange, if set, is called after every committed state change.
	onChange func()
}

func NewLoader(engine *Engine, onChange func()) *Loader {
	return &Loader{engine: engine, onChange: onChange}
}

// Update re-loads the feed if the filter selection or identity changed by
// value. Unchanged inputs are a no-op.
func (l *Loader) Update(ctx context.Context, sel models.FilterSelection, userID string) {
	l.mu.Lock()
	if l.closed || (filtersEqual(l.filters, sel) && l.userID == userID) {
		l.mu.Unlock()
		return
	}
	l.filters = sel
	l.userID = userID
	l.mu.Unlock()

	l.load(ctx, sel, userID)
}

// Refresh re-runs the load with the current inputs, e.g. after a new issue
// was reported elsewhere.
func (l *Loader) Refresh(ctx context.Context) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	sel, userID := l.filters, l.userID
	l.mu.Unlock()

	l.load(ctx, sel, userID)
}

func (l *Loader) load(ctx context.Context, sel models.FilterSelection, userID string) {
	id := l.seq.Add(1)

	result, err := l.engine.LoadFeed(ctx, sel, userID)

	l.mu.Lock()
	// A newer load was initiated, or the loader was torn down: discard.
	if l.closed || id != l.seq.Load() {
		l.mu.Unlock()
		return
	}
	l.result = result
	l.err = err
	notify := l.onChange
	l.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Result returns the last committed feed state.
func (l *Loader) Result() (*models.FeedResponse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result, l.err
}

// Remove drops the issue from the committed result after a confirmed
// deletion, without a full refetch.
func (l *Loader) Remove(issueID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.result == nil {
		return
	}
	rows := l.result.Issues[:0]
	for _, row := range l.result.Issues {
		if row.ID != issueID {
			rows = append(rows, row)
		}
	}
	l.result.Issues = rows
	if len(rows) == 0 {
		l.result.Message = EmptyMessage(l.filters)
	}
}

// Close tears the loader down; any in-flight load result is discarded.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

func filtersEqual(a, b models.FilterSelection) bool {
	return slices.Equal(a.Schools, b.Schools) &&
		slices.Equal(a.Categories, b.Categories) &&
		a.AuthorID == b.AuthorID &&
		a.SearchQuery == b.SearchQuery
}
