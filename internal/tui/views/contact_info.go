package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/tides/internal/feed"
	"github.com/matheus3301/tides/internal/remote"
	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/rivo/tview"
)

// ContactInfo displays what the feed knows about a contact or group.
type ContactInfo struct {
	*tview.TextView
	theme *ui.Theme
}

// NewContactInfo creates a new contact details view.
func NewContactInfo(theme *ui.Theme) *ContactInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ContactInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (ci *ContactInfo) Name() string { return "details" }

// Start implements Component.
func (ci *ContactInfo) Start() {}

// Stop implements Component.
func (ci *ContactInfo) Stop() {}

// Update renders the details of e.
func (ci *ContactInfo) Update(e feed.ContactEntry) {
	ci.Clear()

	fg := ui.Tag(ci.theme.FgColor)
	ct := ui.Tag(ci.theme.CounterColor)

	kind := "Contact"
	if e.ConversationType != remote.ConversationContact {
		kind = "Collection"
	}
	read := "yes"
	if !e.IsRead {
		read = "no"
	}
	last := "-"
	if !e.LastMessageAt.IsZero() {
		last = e.LastMessageAt.Local().Format(time.DateTime)
	}

	_, _ = fmt.Fprintf(ci,
		"\n [%s::b]Name:[-:-:-]         [%s]%s[-]\n"+
			" [%s::b]ID:[-:-:-]           [%s]%s[-]\n"+
			" [%s::b]Type:[-:-:-]         [%s]%s[-]\n"+
			" [%s::b]Read:[-:-:-]         [%s]%s[-]\n"+
			" [%s::b]Last active:[-:-:-]  [%s]%s[-]\n"+
			" [%s::b]Last message:[-:-:-] [%s]%s[-]",
		fg, ct, display(e.DisplayName),
		fg, ct, tview.Escape(e.ID),
		fg, ct, kind,
		fg, ct, read,
		fg, ct, last,
		fg, ct, display(e.LastMessageBody),
	)
	ci.SetTitle(fmt.Sprintf(" %s ", display(e.DisplayName)))
}
