package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matheus3301/tides/internal/bus"
	"github.com/matheus3301/tides/internal/composer"
	"github.com/matheus3301/tides/internal/feed"
	"github.com/matheus3301/tides/internal/menu"
	"github.com/matheus3301/tides/internal/notify"
	"github.com/matheus3301/tides/internal/organization"
	"github.com/matheus3301/tides/internal/remote"
	"github.com/matheus3301/tides/internal/render"
	"github.com/matheus3301/tides/internal/status"
	"github.com/matheus3301/tides/internal/store"
	"github.com/matheus3301/tides/internal/tui/model"
	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	db, _, err := store.OpenMigrated(filepath.Join(t.TempDir(), "tides.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b := bus.New()
	client := remote.New("")
	lookup := func(context.Context, string) (*remote.OrganizationInfo, error) {
		return &remote.OrganizationInfo{Name: "Example"}, nil
	}
	a := NewApp(Deps{
		Bus:     b,
		Machine: status.NewMachine(b),
		Client:  client,
		Orgs:    organization.NewService(db, "tides.test", lookup, b, nil),
		Store:   db,
		Feed:    feed.New(client, 10, b, nil),
		Notify:  notify.New(client, notify.DefaultLimit, b, nil),
		Flows:   menu.NewFlowCache(menu.FlowTTL),
		Opener:  render.OpenerFunc(func(string) error { return nil }),
	}, "main", nil)
	a.queue = func(func()) {}
	t.Cleanup(a.Stop)
	return a
}

// queued makes a collect event loop updates instead of dropping them.
func queued(a *App) chan func() {
	updates := make(chan func(), 16)
	a.queue = func(f func()) { updates <- f }
	return updates
}

func applyNext(t *testing.T, updates chan func()) {
	t.Helper()
	select {
	case f := <-updates:
		f()
	case <-time.After(2 * time.Second):
		t.Fatal("no update reached the event loop")
	}
}

type stubMutator struct {
	flows      []remote.Flow
	err        error
	flowsCalls atomic.Int32
}

func (m *stubMutator) Flows(context.Context) ([]remote.Flow, error) {
	m.flowsCalls.Add(1)
	return m.flows, m.err
}
func (m *stubMutator) StartContactFlow(context.Context, string, string) error { return m.err }
func (m *stubMutator) StartGroupFlow(context.Context, string, string) error   { return m.err }
func (m *stubMutator) TerminateFlows(context.Context, string) error           { return m.err }
func (m *stubMutator) ClearConversation(context.Context, string) error        { return m.err }
func (m *stubMutator) BlockContact(context.Context, string) error             { return m.err }

func openTestChat(a *App, m menu.Mutator) {
	a.chat = &chatSession{
		entry:    feed.ContactEntry{ID: "7", ConversationType: remote.ConversationContact, DisplayName: "Ana"},
		composer: composer.New(remote.ConversationContact, "7", a.deps.Client, a.deps.Bus, nil),
		menu:     menu.New(remote.ConversationContact, "7", m, a.deps.Flows, a.deps.Bus, nil),
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
		name  string
	}{
		{"quit", Command{Name: "quit"}, "quit"},
		{":Q", Command{Name: "q"}, "quit"},
		{"  search  ana maria ", Command{Name: "search", Args: "ana maria"}, "search"},
		{"notif", Command{Name: "notif"}, "notifications"},
		{"", Command{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := ParseCommand(tt.input)
			assert.Equal(t, tt.want, cmd)
			assert.Equal(t, tt.name, cmd.Resolve())
		})
	}
}

func TestRouteFollowsStatus(t *testing.T) {
	a := newTestApp(t)

	a.route(status.Unconfigured)
	assert.Equal(t, []string{pageServer}, a.pages.Stack())

	a.route(status.AuthRequired)
	assert.Equal(t, []string{pageLogin}, a.pages.Stack())

	a.route(status.Ready)
	assert.Equal(t, []string{pageChats}, a.pages.Stack())

	a.show(pageHelp, false)
	a.route(status.Degraded)
	assert.Equal(t, []string{pageChats, pageHelp}, a.pages.Stack(), "degraded keeps the open page")
}

func TestBackKeepsRootPage(t *testing.T) {
	a := newTestApp(t)
	a.route(status.Ready)
	a.show(pageNotifications, false)

	assert.True(t, a.back())
	assert.Equal(t, pageChats, a.pages.Current())
	assert.False(t, a.back())
}

func TestUnknownCommand(t *testing.T) {
	a := newTestApp(t)
	a.route(status.Ready)

	assert.Error(t, a.runCommand(ParseCommand("bogus")))
	assert.NoError(t, a.runCommand(ParseCommand("")))
	require.NoError(t, a.runCommand(ParseCommand("help")))
	assert.Equal(t, pageHelp, a.pages.Current())
}

func TestCommandsNeedSignIn(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.deps.Machine.Transition(status.Unconfigured))
	a.route(status.Unconfigured)

	assert.Error(t, a.runCommand(ParseCommand("notifications")))
	assert.Equal(t, pageServer, a.pages.Current())
}

func TestComposerPanels(t *testing.T) {
	a := newTestApp(t)
	a.route(status.Ready)
	a.chat = &chatSession{
		entry:    feed.ContactEntry{ID: "7", ConversationType: remote.ConversationContact, DisplayName: "Ana"},
		composer: composer.New(remote.ConversationContact, "7", a.deps.Client, a.deps.Bus, nil),
	}
	defer a.closeChat()

	a.toggle((*composer.Composer).ToggleOptions)
	items := a.panelItems(a.chat.composer.State())
	assert.Equal(t, "Options", items.Title)
	assert.Equal(t, []string{"Speed sends", "Templates", "Interactive messages"}, items.Items)

	a.toggle((*composer.Composer).ToggleEmoji)
	a.pickPanel(0)
	st := a.chat.composer.State()
	assert.Equal(t, composer.PanelNone, st.Panel)
	assert.Equal(t, composer.Picker()[0].Glyph, st.Text)

	a.toggle((*composer.Composer).ToggleAttachments)
	assert.Equal(t, "Attachments", a.panelItems(a.chat.composer.State()).Title)
	a.pickPanel(0)
	assert.Equal(t, composer.PanelNone, a.chat.composer.State().Panel)
	msg := a.flash.GetMessage()
	require.NotNil(t, msg)
	assert.Equal(t, composer.ErrAttachmentsUnsupported.Error(), msg.Text)
}

func TestClosePanelStepsBack(t *testing.T) {
	a := newTestApp(t)
	a.chat = &chatSession{
		composer: composer.New(remote.ConversationContact, "7", a.deps.Client, a.deps.Bus, nil),
	}
	defer a.closeChat()

	a.toggle((*composer.Composer).ToggleOptions)
	kind := composer.OptionTemplates
	a.chat.kind = &kind
	a.chat.loading = true
	assert.Equal(t, []string{"loading…"}, a.panelItems(a.chat.composer.State()).Items)

	a.closePanel()
	assert.Nil(t, a.chat.kind)
	assert.Equal(t, composer.PanelOptions, a.chat.composer.State().Panel)

	a.closePanel()
	assert.Equal(t, composer.PanelNone, a.chat.composer.State().Panel)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "Enter a valid organization code", serverError(organization.ErrInvalidCode))
	assert.Equal(t, "Phone and password are required", loginError(model.ErrMissingCredentials))
	assert.Equal(t, "Incorrect phone or password", loginError(remote.ErrUnauthorized))
	assert.Equal(t, "boom", loginError(errors.New("boom")))
}

func TestOptionsFilterAndTemplateParams(t *testing.T) {
	a := newTestApp(t)
	a.route(status.Ready)
	openTestChat(a, &stubMutator{})
	defer a.closeChat()

	a.toggle((*composer.Composer).ToggleOptions)
	kind := composer.OptionTemplates
	a.chat.kind = &kind
	a.chat.choices = []composer.Choice{
		{Kind: kind, ID: "t1", Label: "Appointment reminder", Body: "See you {{1}} at {{2}}",
			Template: &remote.Template{ID: "t1", IsHSM: true, NumberParameters: 2}},
		{Kind: kind, ID: "t2", Label: "Welcome", Body: "Hi there",
			Template: &remote.Template{ID: "t2", IsHSM: true}},
	}

	a.panelFilterPrompt()
	assert.Equal(t, ui.PromptFilter, a.prompt.Mode())
	a.onPromptSubmit(ui.PromptFilter, " welc ")
	items := a.panelItems(a.chat.composer.State())
	assert.Equal(t, "Templates /welc", items.Title)
	assert.Equal(t, []string{"Welcome"}, items.Items)

	a.onPromptSubmit(ui.PromptFilter, "")
	items = a.panelItems(a.chat.composer.State())
	assert.Equal(t, []string{"Appointment reminder (2 params)", "Welcome"}, items.Items)

	a.pickPanel(0)
	require.NotNil(t, a.chat.pending)
	assert.True(t, a.promptOn)
	assert.Equal(t, ui.PromptParams, a.prompt.Mode())
	assert.Equal(t, composer.PanelOptions, a.chat.composer.State().Panel, "nothing applied yet")

	a.onPromptSubmit(ui.PromptParams, "Asha")
	msg := a.flash.GetMessage()
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, composer.ErrTemplateParams.Error())
	assert.True(t, a.promptOn, "asks again")
	require.NotNil(t, a.chat.pending)

	a.onPromptSubmit(ui.PromptParams, "Asha | Monday")
	st := a.chat.composer.State()
	assert.Equal(t, composer.PanelNone, st.Panel)
	assert.Equal(t, "See you {{1}} at {{2}}", st.Text)
	require.NotNil(t, st.Template)
	assert.Equal(t, "t1", st.Template.ID)
	assert.Equal(t, []string{"Asha", "Monday"}, st.TemplateParams)
	assert.Nil(t, a.chat.pending)
}

func TestCancelParamsDropsPendingTemplate(t *testing.T) {
	a := newTestApp(t)
	openTestChat(a, &stubMutator{})
	defer a.closeChat()

	a.toggle((*composer.Composer).ToggleOptions)
	kind := composer.OptionTemplates
	a.chat.kind = &kind
	a.chat.choices = []composer.Choice{{Kind: kind, ID: "t1", Label: "Reminder", Body: "{{1}}",
		Template: &remote.Template{ID: "t1", IsHSM: true, NumberParameters: 1}}}

	a.pickPanel(0)
	require.NotNil(t, a.chat.pending)
	a.cancelPrompt()
	assert.False(t, a.promptOn)
	assert.Nil(t, a.chat.pending)
	assert.Nil(t, a.chat.composer.State().Template)
}

func TestEmojiFilterResolvesShortNames(t *testing.T) {
	a := newTestApp(t)
	openTestChat(a, &stubMutator{})
	defer a.closeChat()

	a.toggle((*composer.Composer).ToggleEmoji)
	a.panelFilterPrompt()
	assert.Equal(t, ui.PromptFilter, a.prompt.Mode())
	a.onPromptSubmit(ui.PromptFilter, ":rocket:")
	items := a.panelItems(a.chat.composer.State())
	require.NotEmpty(t, items.Items)
	assert.True(t, strings.HasPrefix(items.Items[0], "🚀"), items.Items[0])

	a.pickPanel(0)
	st := a.chat.composer.State()
	assert.Equal(t, "🚀", st.Text)
	assert.Equal(t, composer.PanelNone, st.Panel)
}

func TestReloadChatForgetsFlows(t *testing.T) {
	a := newTestApp(t)
	m := &stubMutator{flows: []remote.Flow{{ID: "1", Name: "Registration"}}}
	openTestChat(a, m)
	defer a.closeChat()
	ctx := context.Background()

	require.NoError(t, a.chat.menu.Open(ctx, menu.ActionStartFlow))
	a.chat.menu.Cancel()
	require.NoError(t, a.chat.menu.Open(ctx, menu.ActionStartFlow))
	assert.Equal(t, int32(1), m.flowsCalls.Load())

	a.reloadChat()
	a.chat.menu.Cancel()
	require.NoError(t, a.chat.menu.Open(ctx, menu.ActionStartFlow))
	assert.Equal(t, int32(2), m.flowsCalls.Load())
}

func TestMenuConfirmFlashesFailure(t *testing.T) {
	a := newTestApp(t)
	updates := queued(a)
	a.route(status.Ready)
	openTestChat(a, &stubMutator{err: &remote.Error{Op: "clearMessages", Messages: []string{"Conversation is locked"}}})
	defer a.closeChat()

	require.NoError(t, a.chat.menu.Open(context.Background(), menu.ActionClearConversation))
	a.show(pageMenu, true)
	a.menuConfirm()
	assert.Equal(t, pageChats, a.pages.Current(), "dialog closes right away")

	applyNext(t, updates)
	msg := a.flash.GetMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "Conversation is locked", msg.Text)
	assert.Equal(t, ui.FlashErr, msg.Level)
	assert.Equal(t, menu.StateNone, a.chat.menu.View().State)
}

func TestMenuConfirmReportsSuccess(t *testing.T) {
	a := newTestApp(t)
	updates := queued(a)
	a.route(status.Ready)
	openTestChat(a, &stubMutator{})
	defer a.closeChat()

	require.NoError(t, a.chat.menu.Open(context.Background(), menu.ActionTerminateFlow))
	a.show(pageMenu, true)
	a.menuConfirm()

	applyNext(t, updates)
	msg := a.flash.GetMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "Terminate flows done", msg.Text)
	assert.Equal(t, ui.FlashInfo, msg.Level)
}
