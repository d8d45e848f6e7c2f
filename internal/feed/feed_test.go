package feed

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/matheus3301/tides/internal/bus"
	"github.com/matheus3301/tides/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher answers each call through fn and records the variables.
type fakeSearcher struct {
	mu    sync.Mutex
	calls []map[string]any
	fn    func(n int, vars map[string]any) ([]remote.Conversation, error)
}

func (s *fakeSearcher) Search(_ context.Context, vars map[string]any) ([]remote.Conversation, error) {
	s.mu.Lock()
	s.calls = append(s.calls, vars)
	n := len(s.calls)
	s.mu.Unlock()
	return s.fn(n, vars)
}

func (s *fakeSearcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeSearcher) offset(i int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]["contactOpts"].(map[string]any)["offset"].(int)
}

// pages returns a searcher that serves the given page sizes in order, then
// empty pages.
func pages(sizes ...int) *fakeSearcher {
	return &fakeSearcher{fn: func(n int, vars map[string]any) ([]remote.Conversation, error) {
		if n > len(sizes) {
			return nil, nil
		}
		offset := vars["contactOpts"].(map[string]any)["offset"].(int)
		return contacts(sizes[n-1], offset), nil
	}}
}

func contacts(n, start int) []remote.Conversation {
	out := make([]remote.Conversation, n)
	for i := range out {
		id := strconv.Itoa(start + i)
		out[i] = remote.Conversation{
			Contact:  &remote.Contact{ID: id, Name: "contact " + id},
			Messages: []remote.Message{{Body: "hello " + id}},
		}
	}
	return out
}

func ids(entries []ContactEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestSearchReplacesList(t *testing.T) {
	s := pages(10, 10)
	f := New(s, 10, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.Search(ctx, DefaultVariables(10)))
	require.NoError(t, f.SearchTerm(ctx, "ali"))

	snap := f.Snapshot()
	assert.Len(t, snap.Entries, 10)
	assert.Equal(t, 1, snap.Page)
	assert.False(t, snap.NoMoreItems)
	assert.False(t, snap.Loading)
	assert.Equal(t, "ali", snap.Variables.Filter["term"])
	assert.Equal(t, 0, s.offset(1))
}

func TestShortFirstPageEndsResults(t *testing.T) {
	s := pages(4)
	f := New(s, 10, nil, nil)

	require.NoError(t, f.Refetch(context.Background()))
	assert.True(t, f.NoMoreItems())

	started, err := f.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, 1, s.callCount())
}

func TestLoadMoreAppendsInArrivalOrder(t *testing.T) {
	s := pages(10, 10, 3)
	f := New(s, 10, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.Refetch(ctx))

	started, err := f.LoadMore(ctx)
	require.NoError(t, err)
	require.True(t, started)
	assert.Equal(t, 10, s.offset(1))
	assert.Equal(t, 2, f.Page())
	assert.False(t, f.NoMoreItems())

	started, err = f.LoadMore(ctx)
	require.NoError(t, err)
	require.True(t, started)
	assert.Equal(t, 20, s.offset(2))
	assert.True(t, f.NoMoreItems(), "short page must end results")

	got := ids(f.Entries())
	require.Len(t, got, 23)
	for i, id := range got {
		assert.Equal(t, strconv.Itoa(i), id)
	}

	started, err = f.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, 3, s.callCount())
}

func TestLoadMoreDoesNotDeduplicate(t *testing.T) {
	s := &fakeSearcher{fn: func(int, map[string]any) ([]remote.Conversation, error) {
		return contacts(2, 0), nil
	}}
	f := New(s, 2, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.Refetch(ctx))
	_, err := f.LoadMore(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1", "0", "1"}, ids(f.Entries()))
}

func TestEmptyPageKeepsListAndEnds(t *testing.T) {
	s := pages(10, 0)
	f := New(s, 10, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.Refetch(ctx))
	started, err := f.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, started)
	assert.Len(t, f.Entries(), 10)
	assert.True(t, f.NoMoreItems())
	assert.Equal(t, 1, f.Page(), "empty page does not advance the counter")
}

func TestLoadMoreIgnoredWhileFetchPending(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	s := &fakeSearcher{fn: func(n int, _ map[string]any) ([]remote.Conversation, error) {
		if n == 2 {
			entered <- struct{}{}
			<-release
		}
		return contacts(10, 0), nil
	}}
	f := New(s, 10, nil, nil)
	ctx := context.Background()
	require.NoError(t, f.Refetch(ctx))

	done := make(chan bool)
	go func() {
		started, _ := f.LoadMore(ctx)
		done <- started
	}()
	<-entered

	for range 5 {
		started, err := f.LoadMore(ctx)
		require.NoError(t, err)
		assert.False(t, started)
	}
	assert.True(t, f.Loading())

	close(release)
	assert.True(t, <-done)
	assert.Equal(t, 2, s.callCount())
	assert.False(t, f.Loading())
}

func TestLoadMoreIgnoredWhileSearchPending(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	s := &fakeSearcher{fn: func(int, map[string]any) ([]remote.Conversation, error) {
		entered <- struct{}{}
		<-release
		return contacts(10, 0), nil
	}}
	f := New(s, 10, nil, nil)

	errc := make(chan error)
	go func() { errc <- f.Refetch(context.Background()) }()
	<-entered

	started, err := f.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, started)

	close(release)
	require.NoError(t, <-errc)
	assert.Equal(t, 1, s.callCount())
}

func TestLatestSearchWins(t *testing.T) {
	slow := make(chan struct{})
	entered := make(chan struct{}, 1)
	s := &fakeSearcher{fn: func(n int, vars map[string]any) ([]remote.Conversation, error) {
		term, _ := vars["filter"].(map[string]any)["term"].(string)
		if term == "old" {
			entered <- struct{}{}
			<-slow
			return []remote.Conversation{{Contact: &remote.Contact{ID: "old"}}}, nil
		}
		return []remote.Conversation{{Contact: &remote.Contact{ID: "new"}}}, nil
	}}
	f := New(s, 10, nil, nil)
	ctx := context.Background()

	errc := make(chan error)
	go func() { errc <- f.SearchTerm(ctx, "old") }()
	<-entered

	require.NoError(t, f.SearchTerm(ctx, "new"))
	close(slow)
	require.NoError(t, <-errc)

	assert.Equal(t, []string{"new"}, ids(f.Entries()))
	assert.False(t, f.Loading())
}

func TestStalePageDroppedAfterFilterChange(t *testing.T) {
	slow := make(chan struct{})
	entered := make(chan struct{}, 1)
	s := &fakeSearcher{fn: func(n int, _ map[string]any) ([]remote.Conversation, error) {
		if n == 2 {
			entered <- struct{}{}
			<-slow
		}
		return contacts(10, n*100), nil
	}}
	f := New(s, 10, nil, nil)
	ctx := context.Background()
	require.NoError(t, f.Refetch(ctx))

	done := make(chan struct{})
	go func() {
		_, _ = f.LoadMore(ctx)
		close(done)
	}()
	<-entered

	require.NoError(t, f.SearchTerm(ctx, "fresh"))
	close(slow)
	<-done

	entries := f.Entries()
	require.Len(t, entries, 10)
	assert.Equal(t, "300", entries[0].ID)
	assert.Equal(t, 1, f.Page())
}

func TestFilterChangeResetsPaging(t *testing.T) {
	s := pages(10, 2, 10)
	f := New(s, 10, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.Refetch(ctx))
	_, err := f.LoadMore(ctx)
	require.NoError(t, err)
	require.True(t, f.NoMoreItems())
	require.Equal(t, 2, f.Page())

	f.SetSearchVariables(f.Snapshot().Variables.WithFilter(map[string]any{"includeTags": []string{"7"}}))
	assert.Equal(t, 1, f.Page())
	assert.False(t, f.NoMoreItems())
	assert.Empty(t, f.Entries())

	require.NoError(t, f.Refetch(ctx))
	assert.Equal(t, 0, s.offset(2))
	assert.Equal(t, []string{"7"}, s.calls[2]["filter"].(map[string]any)["includeTags"])
}

func TestLoadMoreWaitsForFirstPageAfterFilterChange(t *testing.T) {
	s := pages(10, 10)
	f := New(s, 10, nil, nil)
	ctx := context.Background()

	f.SetSearchVariables(TermVariables("ana", 10))
	started, err := f.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Zero(t, s.callCount())

	require.NoError(t, f.Refetch(ctx))
	assert.Equal(t, 0, s.offset(0))
	started, err = f.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, 10, s.offset(1))
	assert.Equal(t, []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
		"10", "11", "12", "13", "14", "15", "16", "17", "18", "19"}, ids(f.Entries()))
}

func TestFilterChangeDuringSearchKeepsOneFetch(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	s := &fakeSearcher{fn: func(n int, _ map[string]any) ([]remote.Conversation, error) {
		if n == 1 {
			entered <- struct{}{}
			<-release
		}
		return contacts(10, 0), nil
	}}
	f := New(s, 10, nil, nil)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		_ = f.Refetch(ctx)
		close(done)
	}()
	<-entered

	f.SetSearchVariables(TermVariables("ana", 10))
	started, err := f.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, 1, s.callCount())

	close(release)
	<-done
	assert.Empty(t, f.Entries(), "superseded result is dropped")

	started, err = f.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, 1, s.callCount())
}

func TestTermVariables(t *testing.T) {
	v := TermVariables("ana", 5)
	assert.Equal(t, "ana", v.Term())
	assert.Equal(t, 5, v.ContactOptions.Limit)
	assert.Empty(t, TermVariables("", 5).Term())
	assert.Empty(t, v.WithFilter(map[string]any{"includeTags": []string{"1"}}).Term())
}

func TestFailureLeavesListUnchanged(t *testing.T) {
	boom := errors.New("network down")
	s := &fakeSearcher{fn: func(n int, _ map[string]any) ([]remote.Conversation, error) {
		if n == 1 {
			return contacts(10, 0), nil
		}
		return nil, boom
	}}
	f := New(s, 10, nil, nil)
	ctx := context.Background()
	require.NoError(t, f.Refetch(ctx))

	started, err := f.LoadMore(ctx)
	assert.True(t, started)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, f.Entries(), 10)
	assert.False(t, f.Loading())
	assert.False(t, f.NoMoreItems())
	assert.Equal(t, 1, f.Page())

	assert.ErrorIs(t, f.Refetch(ctx), boom)
	assert.Len(t, f.Entries(), 10)
	assert.False(t, f.Loading())
}

func TestPublishesUpdates(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("feed.", 16)
	defer unsub()

	f := New(pages(3), 10, b, nil)
	require.NoError(t, f.Refetch(context.Background()))

	select {
	case evt := <-ch:
		assert.Equal(t, bus.KindFeedUpdated, evt.Kind)
	case <-time.After(time.Second):
		t.Fatal("no feed event")
	}
}

func TestEntryMapping(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	convs := []remote.Conversation{
		{
			Contact:  &remote.Contact{ID: "1", MaskedPhone: "9198****21", LastMessageAt: &at, IsOrgRead: false},
			Messages: []remote.Message{{Body: "first"}, {Body: "latest"}},
		},
		{Contact: &remote.Contact{ID: "2", Name: "Asha", IsOrgRead: true}},
		{Group: &remote.Group{ID: "g1", Label: "Volunteers"}, Messages: []remote.Message{{Body: "broadcast"}}},
		{},
	}

	got := mapEntries(convs, nil)
	want := []ContactEntry{
		{ID: "1", ConversationType: "contact", DisplayName: "9198****21", LastMessageAt: at, LastMessageBody: "latest"},
		{ID: "2", ConversationType: "contact", DisplayName: "Asha", IsRead: true},
		{ID: "g1", ConversationType: "collection", DisplayName: "Volunteers", LastMessageBody: "broadcast", IsRead: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mapEntries mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	f := New(pages(2), 10, nil, nil)
	require.NoError(t, f.Refetch(context.Background()))

	snap := f.Snapshot()
	snap.Entries[0].DisplayName = "mutated"
	snap.Variables.Filter["term"] = "mutated"

	assert.NotEqual(t, "mutated", f.Entries()[0].DisplayName)
	assert.NotContains(t, f.Snapshot().Variables.Filter, "term")
}

func TestEmptySnapshot(t *testing.T) {
	f := New(pages(0), 10, nil, nil)
	assert.True(t, f.Snapshot().Empty())
	require.NoError(t, f.Refetch(context.Background()))
	assert.True(t, f.Snapshot().Empty())
	assert.True(t, f.NoMoreItems())
}

func TestConcurrentLoadMoreSingleFlight(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	s := &fakeSearcher{fn: func(int, map[string]any) ([]remote.Conversation, error) {
		cur := inFlight.Add(1)
		for {
			prev := maxInFlight.Load()
			if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return contacts(10, 0), nil
	}}
	f := New(s, 10, nil, nil)
	ctx := context.Background()
	require.NoError(t, f.Refetch(ctx))

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.LoadMore(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight.Load())
	assert.Equal(t, (s.callCount()-1)*10+10, len(f.Entries()))
}
