package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/tides/internal/status"
	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/rivo/tview"
)

// StatusBar displays the connection state, the unread notification badge and
// the clock.
type StatusBar struct {
	*tview.TextView
	theme   *ui.Theme
	session string
	org     string
	state   status.State
	unread  int
	busy    bool
	now     func() time.Time
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme, now: time.Now}
}

// SetSession updates the session and organization names.
func (sb *StatusBar) SetSession(session, org string) {
	sb.session, sb.org = session, org
	sb.render()
}

// SetState updates the connection state.
func (sb *StatusBar) SetState(s status.State) {
	sb.state = s
	sb.render()
}

// SetUnread updates the notification badge.
func (sb *StatusBar) SetUnread(n int) {
	sb.unread = n
	sb.render()
}

// SetBusy shows the activity indicator while requests are in flight.
func (sb *StatusBar) SetBusy(busy bool) {
	sb.busy = busy
	sb.render()
}

// Tick redraws the clock.
func (sb *StatusBar) Tick() {
	sb.render()
}

func (sb *StatusBar) stateColor() string {
	switch sb.state {
	case status.Ready:
		return ui.Tag(sb.theme.UnreadColor)
	case status.Degraded, status.Connecting:
		return ui.Tag(sb.theme.FlashWarnColor)
	case status.Error, status.AuthRequired:
		return ui.Tag(sb.theme.ErrorColor)
	}
	return ui.Tag(sb.theme.MutedColor)
}

func (sb *StatusBar) render() {
	sb.Clear()

	busy := " "
	if sb.busy {
		busy = "[green]~[-]"
	}
	org := sb.org
	if org == "" {
		org = "no server"
	}
	line := fmt.Sprintf(" [::b]%s[-:-:-] @ %s | [%s]%s[-] %s",
		tview.Escape(sb.session), tview.Escape(org), sb.stateColor(), sb.state, busy)
	if sb.unread > 0 {
		line += fmt.Sprintf(" | [%s::b]🔔 %d[-:-:-]", ui.Tag(sb.theme.UnreadColor), sb.unread)
	}
	line += " | " + sb.now().Format("15:04")

	_, _ = fmt.Fprint(sb, line)
}
