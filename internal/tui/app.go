// Package tui is the terminal client: a tview application whose pages drive
// the feed, composer, menu and notification controllers.
package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/tides/internal/bus"
	"github.com/matheus3301/tides/internal/config"
	"github.com/matheus3301/tides/internal/feed"
	"github.com/matheus3301/tides/internal/logging"
	"github.com/matheus3301/tides/internal/menu"
	"github.com/matheus3301/tides/internal/notify"
	"github.com/matheus3301/tides/internal/organization"
	"github.com/matheus3301/tides/internal/remote"
	"github.com/matheus3301/tides/internal/render"
	"github.com/matheus3301/tides/internal/status"
	"github.com/matheus3301/tides/internal/store"
	"github.com/matheus3301/tides/internal/tui/keys"
	"github.com/matheus3301/tides/internal/tui/model"
	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/matheus3301/tides/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Page names.
const (
	pageServer        = "server"
	pageLogin         = "login"
	pageChats         = "chats"
	pageChat          = "chat"
	pageMenu          = "menu"
	pageNotifications = "notifications"
	pageSearches      = "searches"
	pageDetails       = "details"
	pageLink          = "link"
	pageHelp          = "help"
)

const (
	tickInterval   = time.Second
	unreadInterval = 30 * time.Second
)

// Deps are the session components the terminal client drives.
type Deps struct {
	fx.In

	Bus     *bus.Bus
	Machine *status.Machine
	Client  *remote.Client
	Orgs    *organization.Service
	Store   *store.DB
	Feed    *feed.Feed
	Notify  *notify.Panel
	Flows   *menu.FlowCache
	Opener  render.Opener
	Logger  *zap.Logger
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	pages    *ui.Pages
	registry *keys.Registry
	theme    *ui.Theme
	flash    *ui.FlashModel
	vm       *model.ViewModel
	deps     Deps
	logger   *zap.Logger
	session  string
	cfg      *config.Config

	root        *tview.Flex
	sessionInfo *ui.SessionInfo
	hints       *ui.Menu
	crumbs      *ui.Crumbs
	prompt      *ui.Prompt
	flashBar    *ui.FlashBar
	statusBar   *views.StatusBar

	server        *views.ServerView
	login         *views.LoginView
	contacts      *views.ContactList
	conversation  *views.Conversation
	menuDialog    *views.MenuDialog
	notifications *views.Notifications
	searches      *views.SavedSearches
	details       *views.ContactInfo
	link          *views.LinkView
	help          *views.HelpView

	components map[string]ui.Component
	focus      map[string]func() tview.Primitive
	chat       *chatSession
	promptOn   bool

	// queue applies f on the event loop.
	queue func(f func())

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(d Deps, sessionName string, cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()
	logger := logging.OrNop(d.Logger).Named("tui")

	a := &App{
		app:      tview.NewApplication(),
		pages:    ui.NewPages(),
		registry: keys.NewRegistry(),
		theme:    theme,
		flash:    ui.NewFlashModel(),
		vm:       model.NewViewModel(d.Client, d.Orgs, d.Machine, d.Store, cfg.MessageLimit, logger),
		deps:     d,
		logger:   logger,
		session:  sessionName,
		cfg:      cfg,

		sessionInfo: ui.NewSessionInfo(theme),
		hints:       ui.NewMenu(theme),
		crumbs:      ui.NewCrumbs(theme),
		prompt:      ui.NewPrompt(theme),
		flashBar:    ui.NewFlashBar(theme),
		statusBar:   views.NewStatusBar(theme),

		server:        views.NewServerView(theme, cfg.Domain),
		login:         views.NewLoginView(theme),
		contacts:      views.NewContactList(theme),
		conversation:  views.NewConversation(theme),
		menuDialog:    views.NewMenuDialog(theme),
		notifications: views.NewNotifications(theme),
		searches:      views.NewSavedSearches(theme),
		details:       views.NewContactInfo(theme),
		link:          views.NewLinkView(theme),
		help:          views.NewHelpView(theme),

		ctx:    ctx,
		cancel: cancel,
	}

	a.queue = func(f func()) { a.app.QueueUpdateDraw(f) }

	a.setupPages()
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	return a
}

func (a *App) setupPages() {
	type page struct {
		c     ui.Component
		p     tview.Primitive
		focus func() tview.Primitive
		modal bool
	}
	pages := []page{
		{a.server, a.server, func() tview.Primitive { return a.server }, false},
		{a.login, a.login, func() tview.Primitive { return a.login }, false},
		{a.contacts, a.contacts, func() tview.Primitive { return a.contacts }, false},
		{a.conversation, a.conversation, func() tview.Primitive { return a.conversation.Messages() }, false},
		{a.menuDialog, a.menuDialog, nil, true},
		{a.notifications, a.notifications, func() tview.Primitive { return a.notifications }, false},
		{a.searches, a.searches, func() tview.Primitive { return a.searches }, false},
		{a.details, a.details, func() tview.Primitive { return a.details }, false},
		{a.link, a.link, func() tview.Primitive { return a.link }, false},
		{a.help, a.help, func() tview.Primitive { return a.help }, false},
	}
	a.components = make(map[string]ui.Component, len(pages))
	a.focus = make(map[string]func() tview.Primitive, len(pages))
	for _, p := range pages {
		a.pages.AddPage(p.c.Name(), p.p, true, false)
		a.components[p.c.Name()] = p.c
		if p.focus != nil {
			a.focus[p.c.Name()] = p.focus
		}
	}
	a.pages.SetOnChange(func(stack []string) {
		a.crumbs.Update(stack)
		if len(stack) > 0 {
			a.hints.Update(ui.MenuHints(a.registry.Hints(stack[len(stack)-1])))
		}
	})
}

func (a *App) setupCallbacks() {
	a.prompt.SetOnSubmit(a.onPromptSubmit)
	a.prompt.SetOnCancel(a.cancelPrompt)

	a.server.SetOnSubmit(a.submitServer)
	a.login.SetHandlers(a.submitLogin, a.changeServer)

	a.contacts.SetOnNearEnd(a.loadMore)
	a.searches.SetHandlers(
		func(s remote.SavedSearch) { a.back(); a.searchFilter(s) },
		func(term string) { a.back(); a.searchTerm(term) },
		func() { a.back(); a.clearSearch() },
	)

	a.conversation.SetOnEdit(func(text string, cursor int) {
		if a.chat != nil {
			a.chat.composer.SetText(text)
			a.chat.composer.SetCursor(cursor)
		}
	})
	a.conversation.SetOnFocus(func(focused bool) {
		if a.chat == nil {
			return
		}
		if focused {
			a.chat.composer.Focus()
		} else {
			a.chat.composer.Blur()
		}
	})
	a.conversation.SetOnSend(a.send)
	a.conversation.SetOnPanelPick(a.pickPanel)
	a.conversation.Messages().SetSelectionChangedFunc(func(int, int) { a.hintQuickReply() })

	a.menuDialog.SetHandlers(a.menuAction, a.menuSelect, a.menuConfirm, a.menuCancel)
}

func (a *App) setupLayout() {
	header := tview.NewFlex().
		AddItem(ui.NewLogo(a.theme), 16, 0, false).
		AddItem(a.sessionInfo, 0, 1, false).
		AddItem(a.hints, 0, 2, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 7, 0, false).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.root, true)
	a.app.SetInputCapture(a.handleKey)
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if a.promptOn {
		return event
	}
	page := a.pages.Current()

	switch a.app.GetFocus().(type) {
	case *tview.TextArea:
		switch {
		case event.Key() == tcell.KeyEscape:
			a.app.SetFocus(a.conversation.Messages())
			return nil
		case composerKeys[event.Key()] && a.registry.HandleEvent(page, event):
			return nil
		}
		return event
	case *tview.InputField, *tview.DropDown, *tview.Button, *tview.Form:
		return event
	}

	if page == pageChat && a.app.GetFocus() == a.conversation.Panel() {
		switch {
		case event.Key() == tcell.KeyEscape:
			a.closePanel()
			return nil
		case event.Key() == tcell.KeyRune && event.Rune() == '/':
			a.panelFilterPrompt()
			return nil
		case composerKeys[event.Key()] && a.registry.HandleEvent(page, event):
			return nil
		}
		return event
	}

	if event.Key() == tcell.KeyEscape && a.back() {
		return nil
	}
	if a.registry.HandleEvent(page, event) {
		return nil
	}
	return event
}

// show pushes page and focuses it. Modal pages stay over their parent.
func (a *App) show(name string, modal bool) {
	a.pages.Push(name, modal)
	a.components[name].Start()
	if f, ok := a.focus[name]; ok {
		a.app.SetFocus(f())
	}
}

// back pops the top page. It reports false on a root page.
func (a *App) back() bool {
	top := a.pages.Current()
	if a.pages.Pop() == "" {
		return false
	}
	a.components[top].Stop()
	if top == pageChat {
		a.closeChat()
	}
	if f, ok := a.focus[a.pages.Current()]; ok {
		a.app.SetFocus(f())
	}
	return true
}

// reset makes name the only page.
func (a *App) reset(name string) {
	for _, n := range a.pages.Stack() {
		a.components[n].Stop()
	}
	a.closeChat()
	a.pages.Reset(name)
	a.components[name].Start()
	if f, ok := a.focus[name]; ok {
		a.app.SetFocus(f())
	}
}

// route shows the page the connection state calls for.
func (a *App) route(s status.State) {
	current := a.pages.Current()
	switch s {
	case status.Unconfigured:
		a.server.Reset()
		a.reset(pageServer)
	case status.AuthRequired:
		if org := a.vm.Organization(); org != nil {
			a.login.SetOrganization(org.Name, org.URL)
		}
		a.login.Reset()
		a.reset(pageLogin)
	case status.Connecting:
		if current == "" || current == pageServer || current == pageLogin {
			a.reset(pageChats)
		}
		go a.initialLoad()
	case status.Ready, status.Degraded:
		if current == "" || current == pageServer || current == pageLogin {
			a.reset(pageChats)
		}
	}
}

func (a *App) showPrompt(mode ui.PromptMode, initial string, history []string) {
	a.promptOn = true
	a.prompt.Activate(mode, initial, history)
	a.root.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.promptOn = false
	a.root.ResizeItem(a.prompt, 0, 0)
	if f, ok := a.focus[a.pages.Current()]; ok {
		a.app.SetFocus(f())
	}
}

// Run starts the TUI application. It blocks until the user quits.
func (a *App) Run() error {
	events, unsub := a.deps.Bus.Subscribe("", 256)
	defer unsub()

	a.refreshHeader()
	a.statusBar.SetState(a.deps.Machine.Current())
	a.route(a.deps.Machine.Current())

	go a.watch(events)
	go a.tick()
	err := a.app.Run()
	if n := a.deps.Bus.Dropped(); n > 0 {
		a.logger.Debug("ui missed events", zap.Uint64("dropped", n))
	}
	return err
}

// watch applies controller events on the UI goroutine.
func (a *App) watch(events <-chan bus.Event) {
	for {
		select {
		case <-a.ctx.Done():
			return
		case evt := <-events:
			a.queue(func() { a.onEvent(evt) })
		case <-a.vm.RefreshCh():
			a.queue(a.refreshConversation)
		case msg := <-a.flash.Watch():
			a.queue(func() { a.flashBar.Update(&msg) })
		}
	}
}

func (a *App) tick() {
	clock := time.NewTicker(tickInterval)
	defer clock.Stop()
	unread := time.NewTicker(unreadInterval)
	defer unread.Stop()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-clock.C:
			a.queue(func() {
				a.flashBar.Update(a.flash.GetMessage())
				a.statusBar.Tick()
			})
		case <-unread.C:
			if a.deps.Machine.Current() == status.Ready || a.deps.Machine.Current() == status.Degraded {
				_, err := a.deps.Notify.RefreshUnread(a.ctx)
				a.vm.Report(err)
			}
		}
	}
}

func (a *App) onEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindStatusChanged:
		change, _ := evt.Payload.(status.StatusChange)
		a.statusBar.SetState(change.To)
		a.refreshHeader()
		a.route(change.To)
	case bus.KindFeedUpdated:
		a.contacts.Update(a.deps.Feed.Snapshot())
		a.statusBar.SetBusy(a.deps.Feed.Loading())
		a.refreshHeader()
	case bus.KindComposerChanged, bus.KindComposerError, bus.KindComposerErrCleared:
		a.refreshComposer()
	case bus.KindNotifyUpdated:
		a.statusBar.SetUnread(a.deps.Notify.Unread())
		a.notifications.Update(a.deps.Notify.Tab(), a.deps.Notify.Visible(), a.deps.Notify.Unread())
		a.refreshHeader()
	case bus.KindOrgSelected:
		a.refreshHeader()
	}
}

func (a *App) refreshHeader() {
	data := &ui.SessionData{
		Session: a.session,
		Status:  string(a.deps.Machine.Current()),
		Unread:  a.deps.Notify.Unread(),
	}
	if org := a.vm.Organization(); org != nil {
		data.Organization = org.Name
		data.Server = org.Shortcode
	}
	snap := a.deps.Feed.Snapshot()
	data.Contacts = len(snap.Entries)
	data.MoreContacts = !snap.NoMoreItems && len(snap.Entries) > 0
	a.sessionInfo.Update(data)
	a.statusBar.SetSession(a.session, data.Organization)
}

// run calls fn off the UI goroutine and reports its outcome: the connection
// state follows it and failures flash.
func (a *App) run(what string, fn func(ctx context.Context) error, done func(err error)) {
	go func() {
		err := fn(a.ctx)
		a.vm.Report(err)
		if err != nil && a.ctx.Err() == nil {
			a.logger.Warn(what+" failed", zap.Error(err))
		}
		a.queue(func() {
			if err != nil && a.ctx.Err() == nil {
				a.flash.Err(err)
			}
			if done != nil {
				done(err)
			}
		})
	}()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.closeChat()
	a.app.Stop()
}

// Preselect resolves code as the organization when none is configured yet,
// skipping the server page.
func (a *App) Preselect(ctx context.Context, code string) error {
	if code == "" || a.deps.Machine.Current() != status.Unconfigured {
		return nil
	}
	_, err := a.vm.SelectOrganization(ctx, code)
	return err
}
