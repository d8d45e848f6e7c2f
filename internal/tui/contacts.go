package tui

import (
	"context"
	"strings"

	"github.com/matheus3301/tides/internal/feed"
	"github.com/matheus3301/tides/internal/remote"
	"github.com/matheus3301/tides/internal/tui/ui"
	"golang.org/x/sync/errgroup"
)

// recentSearches is how many past terms the prompt and the saved searches
// page offer.
const recentSearches = 10

// initialLoad fetches the first contact page and the unread count together.
func (a *App) initialLoad() {
	g, ctx := errgroup.WithContext(a.ctx)
	g.Go(func() error { return a.deps.Feed.Refetch(ctx) })
	g.Go(func() error {
		_, err := a.deps.Notify.RefreshUnread(ctx)
		return err
	})
	err := g.Wait()
	a.vm.Report(err)
	if err != nil && a.ctx.Err() == nil {
		a.logger.Warn("initial load failed")
		a.queue(func() { a.flash.Err(err) })
	}
}

func (a *App) refetch() {
	a.run("refetch contacts", a.deps.Feed.Refetch, nil)
}

func (a *App) loadMore() {
	go func() {
		_, err := a.deps.Feed.LoadMore(a.ctx)
		a.vm.Report(err)
		if err != nil && a.ctx.Err() == nil {
			a.queue(func() { a.flash.Err(err) })
		}
	}()
}

func (a *App) openSelectedContact() {
	entry, ok := a.contacts.Selected()
	if !ok {
		return
	}
	a.openChat(entry)
}

func (a *App) showDetails() {
	entry, ok := a.contacts.Selected()
	if !ok {
		return
	}
	a.details.Update(entry)
	a.show(pageDetails, false)
}

func (a *App) searchPrompt() {
	a.showPrompt(ui.PromptSearch, a.deps.Feed.Variables().Term(), a.vm.RecentSearches(recentSearches))
}

// searchTerm runs a contact search. A blank term goes back to the full list.
func (a *App) searchTerm(term string) {
	term = strings.TrimSpace(term)
	if term != "" {
		a.vm.RecordSearch(term)
	}
	a.run("search contacts", func(ctx context.Context) error {
		return a.deps.Feed.SearchTerm(ctx, term)
	}, nil)
}

func (a *App) searchFilter(s remote.SavedSearch) {
	vars := feed.DefaultVariables(a.deps.Feed.PageSize()).WithFilter(s.Filter())
	a.run("saved search", func(ctx context.Context) error {
		return a.deps.Feed.Search(ctx, vars)
	}, nil)
}

func (a *App) clearSearch() {
	vars := feed.DefaultVariables(a.deps.Feed.PageSize())
	a.run("clear search", func(ctx context.Context) error {
		return a.deps.Feed.Search(ctx, vars)
	}, nil)
}

func (a *App) showSavedSearches() {
	a.searches.Update(a.vm.SavedSearches(), a.vm.RecentSearches(recentSearches))
	a.show(pageSearches, false)
	a.run("load saved searches", func(ctx context.Context) error {
		_, err := a.vm.LoadSavedSearches(ctx)
		return err
	}, func(err error) {
		if err == nil && a.pages.Current() == pageSearches {
			a.searches.Update(a.vm.SavedSearches(), a.vm.RecentSearches(recentSearches))
		}
	})
}
