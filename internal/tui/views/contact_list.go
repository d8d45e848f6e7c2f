package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/tides/internal/feed"
	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/rivo/tview"
)

// EmptyContacts is shown when a settled search found nothing.
const EmptyContacts = "No contact"

// ContactList is the paginated contact feed table.
type ContactList struct {
	*tview.Table
	theme     *ui.Theme
	snap      feed.Snapshot
	now       func() time.Time
	onNearEnd func()
}

// NewContactList creates a new contact table.
func NewContactList(theme *ui.Theme) *ContactList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitleColor(theme.TitleColor)

	cl := &ContactList{
		Table: table,
		theme: theme,
		now:   time.Now,
	}
	table.SetSelectionChangedFunc(func(row, _ int) {
		if cl.onNearEnd != nil && cl.atLastRow(row) {
			cl.onNearEnd()
		}
	})
	cl.render()
	return cl
}

// Name implements Component.
func (cl *ContactList) Name() string { return "chats" }

// Start implements Component.
func (cl *ContactList) Start() {}

// Stop implements Component.
func (cl *ContactList) Stop() {}

// SetOnNearEnd sets the callback run when the selection reaches the last
// loaded contact while more may follow.
func (cl *ContactList) SetOnNearEnd(fn func()) {
	cl.onNearEnd = fn
}

func (cl *ContactList) atLastRow(row int) bool {
	n := len(cl.snap.Entries)
	return n > 0 && row == n && !cl.snap.NoMoreItems && !cl.snap.Loading
}

// Update renders a feed snapshot, keeping the selected row.
func (cl *ContactList) Update(snap feed.Snapshot) {
	cl.snap = snap
	cl.render()
}

func (cl *ContactList) render() {
	row, _ := cl.GetSelection()
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NAME", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
	}
	for col, h := range headers {
		cl.SetCell(0, col, tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp))
	}

	now := cl.now()
	for i, e := range cl.snap.Entries {
		name := display(e.DisplayName)
		color := cl.theme.FgColor
		if !e.IsRead {
			name = "● " + name
			color = cl.theme.UnreadColor
		}
		r := i + 1
		cl.SetCell(r, 0, tview.NewTableCell(" "+name).SetExpansion(1).SetTextColor(color))
		cl.SetCell(r, 1, tview.NewTableCell(" "+display(e.LastMessageBody)).SetExpansion(2).SetMaxWidth(60).SetTextColor(cl.theme.FgColor))
		cl.SetCell(r, 2, tview.NewTableCell(formatTimestamp(e.LastMessageAt, now)+" ").SetAlign(tview.AlignRight).SetTextColor(cl.theme.MutedColor))
	}

	switch {
	case cl.snap.Empty():
		cl.SetCell(1, 0, tview.NewTableCell(" "+EmptyContacts).SetSelectable(false).SetTextColor(cl.theme.MutedColor))
	case cl.snap.Loading:
		cl.SetCell(len(cl.snap.Entries)+1, 0, tview.NewTableCell(" Loading…").SetSelectable(false).SetTextColor(cl.theme.MutedColor))
	}

	title := fmt.Sprintf(" Contacts (%d", len(cl.snap.Entries))
	if !cl.snap.NoMoreItems && len(cl.snap.Entries) > 0 {
		title += "+"
	}
	title += ") "
	if term, _ := cl.snap.Variables.Filter["term"].(string); term != "" {
		title += fmt.Sprintf("search: %s ", tview.Escape(term))
	} else if len(cl.snap.Variables.Filter) > 0 {
		title += "filtered "
	}
	cl.SetTitle(title)

	if n := len(cl.snap.Entries); n > 0 {
		switch {
		case row < 1:
			row = 1
		case row > n:
			row = n
		}
		cl.Select(row, 0)
	}
}

// Selected returns the contact under the cursor.
func (cl *ContactList) Selected() (feed.ContactEntry, bool) {
	row, _ := cl.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(cl.snap.Entries) {
		return feed.ContactEntry{}, false
	}
	return cl.snap.Entries[idx], true
}
