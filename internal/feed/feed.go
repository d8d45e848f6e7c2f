package feed

import (
	"context"
	"slices"
	"sync"

	"github.com/matheus3301/tides/internal/bus"
	"github.com/matheus3301/tides/internal/logging"
	"github.com/matheus3301/tides/internal/remote"
	"go.uber.org/zap"
)

// Searcher runs the conversation search query.
type Searcher interface {
	Search(ctx context.Context, vars map[string]any) ([]remote.Conversation, error)
}

// Snapshot is a copy of the feed state for rendering.
type Snapshot struct {
	Entries     []ContactEntry
	Variables   SearchVariables
	Page        int
	Loading     bool
	NoMoreItems bool
}

// Empty reports whether a settled feed has nothing to show.
func (s Snapshot) Empty() bool {
	return !s.Loading && len(s.Entries) == 0
}

// Feed owns the paginated conversation list of one screen.
//
// A search replaces the list; LoadMore appends the next window. Only the most
// recent search applies its result: each fetch carries a generation number and
// completions from an older generation are dropped on arrival.
type Feed struct {
	searcher Searcher
	pageSize int
	bus      *bus.Bus
	logger   *zap.Logger

	mu      sync.Mutex
	vars    SearchVariables
	entries []ContactEntry
	page    int
	noMore  bool
	loading bool
	gen     uint64

	// needFirst is set by a filter change and cleared when the first page
	// of the new filter lands. LoadMore is refused meanwhile.
	needFirst bool
}

// New creates a feed. A non-positive pageSize falls back to DefaultPageSize.
func New(s Searcher, pageSize int, b *bus.Bus, logger *zap.Logger) *Feed {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Feed{
		searcher: s,
		pageSize: pageSize,
		bus:      b,
		logger:   logging.OrNop(logger).Named("feed"),
		vars:     DefaultVariables(pageSize),
		page:     1,
	}
}

// PageSize returns the window size used for every fetch.
func (f *Feed) PageSize() int { return f.pageSize }

// SetSearchVariables installs new variables for the next fetch. The page
// counter goes back to 1, the end-of-results flag is cleared and the list of
// the previous filter is dropped. An in-flight fetch keeps running but its
// result is discarded. LoadMore refuses to run until Refetch has loaded the
// first page of the new variables.
func (f *Feed) SetSearchVariables(vars SearchVariables) {
	f.mu.Lock()
	f.setVarsLocked(vars)
	f.gen++
	f.loading = false
	f.needFirst = true
	f.entries = nil
	f.mu.Unlock()
	f.publish()
}

func (f *Feed) setVarsLocked(vars SearchVariables) {
	vars = vars.ForPage(0)
	vars.ContactOptions.Limit = f.pageSize
	if vars.Filter == nil {
		vars.Filter = map[string]any{}
	}
	f.vars = vars
	f.page = 1
	f.noMore = false
}

// Search replaces the list with the first page for vars.
func (f *Feed) Search(ctx context.Context, vars SearchVariables) error {
	return f.fetchFirst(ctx, &vars)
}

// SearchTerm is Search with a free-text filter.
func (f *Feed) SearchTerm(ctx context.Context, term string) error {
	return f.Search(ctx, TermVariables(term, f.pageSize))
}

// Refetch reruns the current variables from the first page.
func (f *Feed) Refetch(ctx context.Context) error {
	return f.fetchFirst(ctx, nil)
}

func (f *Feed) fetchFirst(ctx context.Context, next *SearchVariables) error {
	f.mu.Lock()
	if next != nil {
		f.setVarsLocked(*next)
	} else {
		f.setVarsLocked(f.vars)
	}
	f.gen++
	gen := f.gen
	f.loading = true
	vars := f.vars
	f.mu.Unlock()
	f.publish()

	convs, err := f.searcher.Search(ctx, vars.GraphQL())

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		f.logger.Debug("dropping superseded search result", zap.Uint64("generation", gen))
		return nil
	}
	f.loading = false
	if err != nil {
		f.mu.Unlock()
		f.logger.Warn("search failed", zap.Error(err))
		f.publish()
		return err
	}
	f.needFirst = false
	f.entries = mapEntries(convs, nil)
	if len(convs) < f.pageSize {
		f.noMore = true
	}
	f.mu.Unlock()
	f.publish()
	return nil
}

// LoadMore fetches the next window and appends it. It returns false without
// calling the searcher while another fetch is pending, after the end of
// results was reached, or before the first page of a new filter has loaded.
func (f *Feed) LoadMore(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if f.loading || f.noMore || f.needFirst {
		f.mu.Unlock()
		return false, nil
	}
	f.loading = true
	gen := f.gen
	vars := f.vars.ForPage(f.page)
	f.mu.Unlock()
	f.publish()

	convs, err := f.searcher.Search(ctx, vars.GraphQL())

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		f.logger.Debug("dropping stale page", zap.Int("offset", vars.ContactOptions.Offset))
		return true, nil
	}
	f.loading = false
	if err != nil {
		f.mu.Unlock()
		f.logger.Warn("load more failed", zap.Int("offset", vars.ContactOptions.Offset), zap.Error(err))
		f.publish()
		return true, err
	}
	switch {
	case len(convs) == 0:
		f.noMore = true
	default:
		if len(convs) < f.pageSize {
			f.noMore = true
		}
		f.page++
		f.entries = mapEntries(convs, f.entries)
	}
	f.mu.Unlock()
	f.publish()
	return true, nil
}

// Snapshot returns a copy of the current state.
func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Entries:     slices.Clone(f.entries),
		Variables:   f.vars.clone(),
		Page:        f.page,
		Loading:     f.loading,
		NoMoreItems: f.noMore,
	}
}

// Entries returns a copy of the current list.
func (f *Feed) Entries() []ContactEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.entries)
}

// Variables returns a copy of the variables the next fetch will use.
func (f *Feed) Variables() SearchVariables {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vars.clone()
}

// Loading reports whether a fetch is outstanding.
func (f *Feed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// NoMoreItems reports whether the end of results was reached.
func (f *Feed) NoMoreItems() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.noMore
}

// Page returns the page counter used for the next load-more offset.
func (f *Feed) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

func (f *Feed) publish() {
	f.bus.Emit(bus.KindFeedUpdated, nil)
}

// mapEntries appends the mapped rows to dst, which is copied first so earlier
// snapshots keep their backing array.
func mapEntries(convs []remote.Conversation, dst []ContactEntry) []ContactEntry {
	out := make([]ContactEntry, len(dst), len(dst)+len(convs))
	copy(out, dst)
	for _, c := range convs {
		if e, ok := entryFromConversation(c); ok {
			out = append(out, e)
		}
	}
	return out
}
