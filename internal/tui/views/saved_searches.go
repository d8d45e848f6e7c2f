package views

import (
	"github.com/matheus3301/tides/internal/remote"
	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/rivo/tview"
)

// SavedSearches lists the server-stored filters followed by the recent
// search terms.
type SavedSearches struct {
	*tview.List
	theme    *ui.Theme
	saved    []remote.SavedSearch
	recent   []string
	onFilter func(remote.SavedSearch)
	onTerm   func(term string)
	onClear  func()
}

// NewSavedSearches creates a new saved search list.
func NewSavedSearches(theme *ui.Theme) *SavedSearches {
	list := tview.NewList()
	list.SetBorder(true)
	list.SetBorderColor(theme.BorderColor)
	list.SetBackgroundColor(theme.BgColor)
	list.SetTitle(" Saved searches ")
	list.SetTitleColor(theme.TitleColor)
	list.SetMainTextColor(theme.FgColor)
	list.SetSecondaryTextColor(theme.MutedColor)

	return &SavedSearches{
		List:  list,
		theme: theme,
	}
}

// Name implements Component.
func (sv *SavedSearches) Name() string { return "searches" }

// Start implements Component.
func (sv *SavedSearches) Start() {}

// Stop implements Component.
func (sv *SavedSearches) Stop() {}

// SetHandlers sets the callbacks for choosing a saved filter, a recent term
// or the unfiltered list.
func (sv *SavedSearches) SetHandlers(onFilter func(remote.SavedSearch), onTerm func(string), onClear func()) {
	sv.onFilter, sv.onTerm, sv.onClear = onFilter, onTerm, onClear
}

// Update lists saved and recent searches.
func (sv *SavedSearches) Update(saved []remote.SavedSearch, recent []string) {
	sv.saved = saved
	sv.recent = recent
	sv.Clear()
	sv.AddItem("All contacts", "clear search and filters", '0', func() {
		if sv.onClear != nil {
			sv.onClear()
		}
	})
	for _, s := range saved {
		secondary := s.Shortcode
		if secondary == "" {
			secondary = "saved search"
		}
		sv.AddItem(display(s.Label), display(secondary), 0, func() {
			if sv.onFilter != nil {
				sv.onFilter(s)
			}
		})
	}
	for _, term := range recent {
		sv.AddItem("/"+display(term), "recent", 0, func() {
			if sv.onTerm != nil {
				sv.onTerm(term)
			}
		})
	}
}
