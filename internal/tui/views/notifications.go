package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/tides/internal/notify"
	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/rivo/tview"
)

// EmptyNotifications is shown when the selected tab has no rows.
const EmptyNotifications = "No notifications"

// Notifications lists notifications under severity tabs.
type Notifications struct {
	*tview.Flex
	theme *ui.Theme
	tabs  *tview.TextView
	table *tview.Table
}

// NewNotifications creates a new notifications view.
func NewNotifications(theme *ui.Theme) *Notifications {
	tabs := tview.NewTextView().SetDynamicColors(true)
	tabs.SetBackgroundColor(theme.BgColor)

	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitle(" Notifications ")
	table.SetTitleColor(theme.TitleColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(tabs, 1, 0, false).
		AddItem(table, 0, 1, true)

	return &Notifications{
		Flex:  flex,
		theme: theme,
		tabs:  tabs,
		table: table,
	}
}

// Name implements Component.
func (nv *Notifications) Name() string { return "notifications" }

// Start implements Component.
func (nv *Notifications) Start() {}

// Stop implements Component.
func (nv *Notifications) Stop() {}

// Update renders the rows of the selected tab.
func (nv *Notifications) Update(tab string, rows []notify.Notification, unread int) {
	nv.tabs.Clear()
	var labels []string
	for i, t := range notify.Tabs {
		label := fmt.Sprintf("%d %s", i+1, t)
		if t == tab {
			label = fmt.Sprintf("[%s:%s:b] %s [-:-:-]", ui.Tag(nv.theme.CrumbActiveFg), ui.Tag(nv.theme.CrumbActiveBg), label)
		} else {
			label = fmt.Sprintf("[%s] %s [-]", ui.Tag(nv.theme.MutedColor), label)
		}
		labels = append(labels, label)
	}
	_, _ = fmt.Fprint(nv.tabs, " "+strings.Join(labels, " "))

	nv.table.Clear()
	for col, h := range []string{" FROM", " MESSAGE", " SEVERITY", " WHEN"} {
		nv.table.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(nv.theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold))
	}
	if len(rows) == 0 {
		nv.table.SetCell(1, 0, tview.NewTableCell(" "+EmptyNotifications).
			SetSelectable(false).
			SetTextColor(nv.theme.MutedColor))
	}
	for i, n := range rows {
		r := i + 1
		nv.table.SetCell(r, 0, tview.NewTableCell(" "+display(n.Header)).SetMaxWidth(24).SetTextColor(nv.theme.FgColor))
		nv.table.SetCell(r, 1, tview.NewTableCell(" "+display(n.Message)).SetExpansion(1).SetTextColor(nv.theme.FgColor))
		nv.table.SetCell(r, 2, tview.NewTableCell(" "+display(n.Severity)).SetTextColor(nv.severityColor(n.Severity)))
		nv.table.SetCell(r, 3, tview.NewTableCell(" "+n.Time+" ").SetAlign(tview.AlignRight).SetTextColor(nv.theme.MutedColor))
	}
	nv.table.SetTitle(fmt.Sprintf(" Notifications (%d unread) ", unread))
}

func (nv *Notifications) severityColor(severity string) tcell.Color {
	switch severity {
	case "Critical":
		return nv.theme.FlashErrColor
	case "Warning":
		return nv.theme.FlashWarnColor
	}
	return nv.theme.FgColor
}
