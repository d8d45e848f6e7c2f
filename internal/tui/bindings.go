package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/tides/internal/composer"
	"github.com/matheus3301/tides/internal/status"
	"github.com/matheus3301/tides/internal/tui/keys"
	"github.com/matheus3301/tides/internal/tui/ui"
)

// composerKeys work while the composer text field or panel has focus.
var composerKeys = map[tcell.Key]bool{
	tcell.KeyCtrlO: true,
	tcell.KeyCtrlG: true,
	tcell.KeyCtrlT: true,
	tcell.KeyCtrlR: true,
}

// rootPages quit on q instead of going back.
var rootPages = map[string]bool{
	pageServer: true,
	pageLogin:  true,
	pageChats:  true,
}

func (a *App) setupBindings() {
	r := a.registry

	r.AddGlobal("command", &keys.Action{
		Key: tcell.KeyRune, Rune: ':', Description: "Command", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptCommand, "", nil) },
	})
	r.AddGlobal("help", &keys.Action{
		Key: tcell.KeyRune, Rune: '?', Description: "Help", Visible: true,
		Handler: func() {
			if a.pages.Current() != pageHelp {
				a.show(pageHelp, false)
			}
		},
	})
	r.AddGlobal("notifications", &keys.Action{
		Key: tcell.KeyRune, Rune: 'n', Description: "Notifications", Visible: true,
		Handler: func() {
			if a.signedIn() {
				a.showNotifications()
			}
		},
	})
	r.AddGlobal("quit", &keys.Action{
		Key: tcell.KeyRune, Rune: 'q', Description: "Back/Quit", Visible: true,
		Handler: func() {
			if rootPages[a.pages.Current()] || !a.back() {
				a.app.Stop()
			}
		},
	})

	r.AddView(pageChats, "open", &keys.Action{
		Key: tcell.KeyEnter, Description: "Open", Visible: true,
		Handler: a.openSelectedContact,
	})
	r.AddView(pageChats, "search", &keys.Action{
		Key: tcell.KeyRune, Rune: '/', Description: "Search", Visible: true,
		Handler: a.searchPrompt,
	})
	r.AddView(pageChats, "saved", &keys.Action{
		Key: tcell.KeyRune, Rune: 'S', Description: "Saved searches", Visible: true,
		Handler: a.showSavedSearches,
	})
	r.AddView(pageChats, "details", &keys.Action{
		Key: tcell.KeyRune, Rune: 'd', Description: "Details", Visible: true,
		Handler: a.showDetails,
	})
	r.AddView(pageChats, "reload", &keys.Action{
		Key: tcell.KeyRune, Rune: 'r', Description: "Reload", Visible: true,
		Handler: a.refetch,
	})

	r.AddView(pageChat, "compose", &keys.Action{
		Key: tcell.KeyRune, Rune: 'i', Description: "Compose", Visible: true,
		Handler: a.focusComposer,
	})
	r.AddView(pageChat, "activate", &keys.Action{
		Key: tcell.KeyEnter, Description: "Open link",
		Handler: a.activateMessage,
	})
	r.AddView(pageChat, "link", &keys.Action{
		Key: tcell.KeyRune, Rune: 'o', Description: "QR", Visible: true,
		Handler: a.showLink,
	})
	r.AddView(pageChat, "menu", &keys.Action{
		Key: tcell.KeyRune, Rune: 'm', Description: "Menu", Visible: true,
		Handler: a.openMenu,
	})
	r.AddView(pageChat, "reload", &keys.Action{
		Key: tcell.KeyRune, Rune: 'r', Description: "Reload",
		Handler: a.reloadChat,
	})
	r.AddView(pageChat, "options", &keys.Action{
		Key: tcell.KeyCtrlO, Description: "Options", Visible: true,
		Handler: func() { a.toggle((*composer.Composer).ToggleOptions) },
	})
	r.AddView(pageChat, "emoji", &keys.Action{
		Key: tcell.KeyCtrlG, Description: "Emoji", Visible: true,
		Handler: func() { a.toggle((*composer.Composer).ToggleEmoji) },
	})
	r.AddView(pageChat, "attachments", &keys.Action{
		Key: tcell.KeyCtrlT, Description: "Attach",
		Handler: func() { a.toggle((*composer.Composer).ToggleAttachments) },
	})
	r.AddView(pageChat, "untemplate", &keys.Action{
		Key: tcell.KeyCtrlR, Description: "Drop template",
		Handler: func() {
			if a.chat != nil {
				a.chat.composer.ClearTemplate()
			}
		},
	})
	for n := 1; n <= 9; n++ {
		r.AddView(pageChat, "reply"+string(rune('0'+n)), &keys.Action{
			Key: tcell.KeyRune, Rune: rune('0' + n), Description: "Reply",
			Handler: func() { a.answer(n) },
		})
	}

	for n := range 4 {
		r.AddView(pageNotifications, "tab"+string(rune('1'+n)), &keys.Action{
			Key: tcell.KeyRune, Rune: rune('1' + n), Description: "Tab",
			Handler: func() { a.selectTab(n + 1) },
		})
	}
	r.AddView(pageNotifications, "search", &keys.Action{
		Key: tcell.KeyRune, Rune: '/', Description: "Search", Visible: true,
		Handler: a.notificationSearchPrompt,
	})
	r.AddView(pageNotifications, "reload", &keys.Action{
		Key: tcell.KeyRune, Rune: 'r', Description: "Reload", Visible: true,
		Handler: a.showNotifications,
	})

	r.AddView(pageLink, "open", &keys.Action{
		Key: tcell.KeyEnter, Description: "Open", Visible: true,
		Handler: func() {
			a.back()
			a.activateMessage()
		},
	})
}

func (a *App) signedIn() bool {
	switch a.deps.Machine.Current() {
	case status.Connecting, status.Ready, status.Degraded:
		return true
	}
	return false
}
