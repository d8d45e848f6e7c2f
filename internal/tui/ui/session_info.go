package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// SessionData holds what the header shows about the session.
type SessionData struct {
	Session      string
	Organization string
	Server       string
	Status       string
	Contacts     int
	MoreContacts bool
	Unread       int
}

// SessionInfo displays session metadata in the header.
type SessionInfo struct {
	*tview.TextView
	theme *Theme
}

// NewSessionInfo creates a new session info panel.
func NewSessionInfo(theme *Theme) *SessionInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &SessionInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the session info.
func (si *SessionInfo) Update(data *SessionData) {
	si.Clear()
	if data == nil {
		return
	}

	fg := colorName(si.theme.FgColor)
	counter := colorName(si.theme.CounterColor)

	org := data.Organization
	if org == "" {
		org = "-"
	}
	server := data.Server
	if server == "" {
		server = "-"
	}
	contacts := fmt.Sprintf("%d", data.Contacts)
	if data.MoreContacts {
		contacts += "+"
	}
	unread := fmt.Sprintf("[%s]%d[-]", counter, data.Unread)
	if data.Unread > 0 {
		unread = fmt.Sprintf("[%s::b]%d[-:-:-]", colorName(si.theme.UnreadColor), data.Unread)
	}

	_, _ = fmt.Fprintf(si,
		"[%s::b]Session:[-:-:-]  [%s]%s[-]\n"+
			"[%s::b]Org:[-:-:-]      [%s]%s[-]\n"+
			"[%s::b]Server:[-:-:-]   [%s]%s[-]\n"+
			"[%s::b]Status:[-:-:-]   [%s]%s[-]\n"+
			"[%s::b]Contacts:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]Alerts:[-:-:-]   %s",
		fg, counter, tview.Escape(data.Session),
		fg, counter, tview.Escape(org),
		fg, counter, tview.Escape(server),
		fg, counter, data.Status,
		fg, counter, contacts,
		fg, unread,
	)
}
