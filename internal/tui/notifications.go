package tui

import (
	"github.com/matheus3301/tides/internal/notify"
	"github.com/matheus3301/tides/internal/tui/ui"
)

func (a *App) showNotifications() {
	if a.pages.Current() != pageNotifications {
		a.show(pageNotifications, false)
	}
	a.renderNotifications()
	a.run("load notifications", a.deps.Notify.Load, nil)
}

func (a *App) renderNotifications() {
	p := a.deps.Notify
	a.notifications.Update(p.Tab(), p.Visible(), p.Unread())
}

// selectTab switches to tab n of notify.Tabs, counted from 1.
func (a *App) selectTab(n int) {
	if n < 1 || n > len(notify.Tabs) {
		return
	}
	if err := a.deps.Notify.SelectTab(notify.Tabs[n-1]); err != nil {
		a.flash.Err(err)
	}
}

func (a *App) notificationSearchPrompt() {
	a.showPrompt(ui.PromptSearch, "", nil)
}
