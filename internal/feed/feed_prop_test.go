package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/matheus3301/tides/internal/remote"
	"pgregory.net/rapid"
)

// scripted serves whatever the next response was set to.
type scripted struct {
	size    int
	fail    bool
	calls   int
	offsets []int
}

func (s *scripted) Search(_ context.Context, vars map[string]any) ([]remote.Conversation, error) {
	s.calls++
	s.offsets = append(s.offsets, vars["contactOpts"].(map[string]any)["offset"].(int))
	if s.fail {
		return nil, errors.New("scripted failure")
	}
	return contacts(s.size, 0), nil
}

// TestPagingProperties drives a feed with random operations and checks it
// against a small model of the paging rules.
func TestPagingProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pageSize := rapid.IntRange(1, 8).Draw(t, "pageSize")
		s := &scripted{}
		f := New(s, pageSize, nil, nil)
		ctx := context.Background()

		var (
			page      = 1
			noMore    = false
			count     = 0
			needFirst = false
		)

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for range steps {
			s.size = rapid.IntRange(0, pageSize).Draw(t, "size")
			s.fail = rapid.IntRange(0, 9).Draw(t, "fail") == 0
			before := s.calls

			switch rapid.SampledFrom([]string{"search", "more", "more", "more", "filter"}).Draw(t, "op") {
			case "search":
				err := f.Refetch(ctx)
				page, noMore = 1, false
				if s.offsets[len(s.offsets)-1] != 0 {
					t.Fatalf("search offset = %d, want 0", s.offsets[len(s.offsets)-1])
				}
				if err == nil {
					count = s.size
					noMore = s.size < pageSize
				}
			case "more":
				started, err := f.LoadMore(ctx)
				if noMore {
					if started || s.calls != before {
						t.Fatalf("load more ran after end of results")
					}
					break
				}
				if !started {
					t.Fatalf("load more refused while idle")
				}
				if got, want := s.offsets[len(s.offsets)-1], page*pageSize; got != want {
					t.Fatalf("load more offset = %d, want %d", got, want)
				}
				if err != nil {
					break
				}
				if s.size == 0 {
					noMore = true
					break
				}
				noMore = s.size < pageSize
				page++
				count += s.size
			case "filter":
				f.SetSearchVariables(TermVariables("x", pageSize))
				page, noMore, count, needFirst = 1, false, 0, true
			}

			snap := f.Snapshot()
			if snap.Loading {
				t.Fatalf("feed left loading after a synchronous fetch")
			}
			if snap.Page != page || snap.NoMoreItems != noMore || len(snap.Entries) != count {
				t.Fatalf("state = page %d noMore %v len %d, want page %d noMore %v len %d",
					snap.Page, snap.NoMoreItems, len(snap.Entries), page, noMore, count)
			}
		}
	})
}
