package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matheus3301/tides/internal/composer"
	"github.com/matheus3301/tides/internal/feed"
	"github.com/matheus3301/tides/internal/menu"
	"github.com/matheus3301/tides/internal/render"
	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/matheus3301/tides/internal/tui/views"
	"go.uber.org/zap"
)

// chatSession is the state of the open conversation page.
type chatSession struct {
	entry    feed.ContactEntry
	composer *composer.Composer
	menu     *menu.Dispatcher

	// Options tray stage: nil kind lists the kinds.
	kind    *composer.OptionKind
	choices []composer.Choice
	loading bool
	filter  string
	// pending is the template waiting for its parameters.
	pending *composer.Choice
}

func (s *chatSession) resetOptions() {
	s.kind = nil
	s.choices = nil
	s.loading = false
	s.filter = ""
	s.pending = nil
}

func (s *chatSession) visibleChoices() []composer.Choice {
	return composer.FilterChoices(s.choices, s.filter)
}

func (s *chatSession) emojis() []composer.Emoji {
	return composer.FilterEmoji(s.filter)
}

func (a *App) openChat(entry feed.ContactEntry) {
	a.closeChat()
	a.vm.Open(entry)
	a.chat = &chatSession{
		entry:    entry,
		composer: composer.New(entry.ConversationType, entry.ID, a.deps.Client, a.deps.Bus, a.logger),
		menu:     menu.New(entry.ConversationType, entry.ID, a.deps.Client, a.deps.Flows, a.deps.Bus, a.logger),
	}
	a.conversation.SetContact(entry.DisplayName)
	a.crumbs.SetTitle(pageChat, entry.DisplayName)
	a.show(pageChat, false)
	a.refreshComposer()
	a.reloadMessages()
}

func (a *App) closeChat() {
	if a.chat == nil {
		return
	}
	a.chat.composer.Close()
	a.chat = nil
	a.vm.Open(feed.ContactEntry{})
}

func (a *App) reloadMessages() {
	a.run("load messages", a.vm.LoadMessages, nil)
}

// reloadChat reloads the messages and forgets the cached flow lists.
func (a *App) reloadChat() {
	a.deps.Flows.Invalidate()
	a.reloadMessages()
}

func (a *App) refreshConversation() {
	if a.chat == nil {
		return
	}
	a.conversation.UpdateMessages(a.vm.Messages())
}

func (a *App) refreshComposer() {
	if a.chat == nil {
		return
	}
	st := a.chat.composer.State()
	a.conversation.UpdateComposer(st, a.panelItems(st))
}

func (a *App) panelItems(st composer.State) views.PanelItems {
	switch st.Panel {
	case composer.PanelOptions:
		if a.chat.kind == nil {
			items := make([]string, len(composer.OptionKinds))
			for i, k := range composer.OptionKinds {
				items[i] = k.String()
			}
			return views.PanelItems{Title: "Options", Items: items}
		}
		title := filterTitle(a.chat.kind.String(), a.chat.filter)
		if a.chat.loading {
			return views.PanelItems{Title: title, Items: []string{"loading…"}}
		}
		choices := a.chat.visibleChoices()
		if len(choices) == 0 {
			return views.PanelItems{Title: title, Items: []string{"nothing here"}}
		}
		items := make([]string, len(choices))
		for i, c := range choices {
			items[i] = c.Label
			if c.NeedsParams() {
				items[i] += fmt.Sprintf(" (%d params)", c.Template.NumberParameters)
			}
		}
		return views.PanelItems{Title: title, Items: items}
	case composer.PanelEmoji:
		title := filterTitle("Emoji", a.chat.filter)
		emojis := a.chat.emojis()
		if len(emojis) == 0 {
			return views.PanelItems{Title: title, Items: []string{"nothing here"}}
		}
		items := make([]string, len(emojis))
		for i, e := range emojis {
			items[i] = fmt.Sprintf("%s  :%s:", e.Glyph, e.ShortName)
		}
		return views.PanelItems{Title: title, Items: items}
	case composer.PanelAttachments:
		return views.PanelItems{Title: "Attachments", Items: composer.Attachments}
	}
	return views.PanelItems{}
}

func filterTitle(title, filter string) string {
	if filter == "" {
		return title
	}
	return title + " /" + filter
}

// focusComposer puts focus on the open panel, or on the text field.
func (a *App) focusComposer() {
	if a.chat == nil {
		return
	}
	if a.chat.composer.State().Panel != composer.PanelNone {
		a.app.SetFocus(a.conversation.Panel())
		return
	}
	a.app.SetFocus(a.conversation.Input())
}

func (a *App) toggle(fn func(*composer.Composer)) {
	if a.chat == nil {
		return
	}
	a.chat.resetOptions()
	fn(a.chat.composer)
	a.refreshComposer()
	a.focusComposer()
}

// closePanel steps back out of the options lists, or closes the panel.
func (a *App) closePanel() {
	if a.chat == nil {
		return
	}
	st := a.chat.composer.State()
	switch {
	case st.Panel == composer.PanelOptions && a.chat.kind != nil:
		a.chat.resetOptions()
		a.refreshComposer()
		return
	case st.Panel == composer.PanelOptions:
		a.chat.composer.ToggleOptions()
	case st.Panel == composer.PanelEmoji:
		a.chat.composer.ToggleEmoji()
	case st.Panel == composer.PanelAttachments:
		a.chat.composer.ToggleAttachments()
	}
	a.refreshComposer()
	a.focusComposer()
}

func (a *App) pickPanel(i int) {
	s := a.chat
	if s == nil || i < 0 {
		return
	}
	switch s.composer.State().Panel {
	case composer.PanelOptions:
		if s.kind == nil {
			if i < len(composer.OptionKinds) {
				a.loadChoices(composer.OptionKinds[i])
			}
			return
		}
		choices := s.visibleChoices()
		if s.loading || i >= len(choices) {
			return
		}
		if ch := choices[i]; ch.NeedsParams() {
			s.pending = &ch
			a.showPrompt(ui.PromptParams, "", nil)
			return
		}
		s.composer.Apply(choices[i])
		s.resetOptions()
	case composer.PanelEmoji:
		emojis := s.emojis()
		if i >= len(emojis) {
			return
		}
		s.composer.InsertEmoji(emojis[i].Glyph)
		s.filter = ""
		s.composer.ToggleEmoji()
	case composer.PanelAttachments:
		a.flash.Warn(composer.ErrAttachmentsUnsupported.Error())
		s.composer.ToggleAttachments()
	}
	a.refreshComposer()
	a.focusComposer()
}

func (a *App) loadChoices(kind composer.OptionKind) {
	s := a.chat
	s.kind = &kind
	s.choices = nil
	s.filter = ""
	s.loading = true
	a.refreshComposer()

	var choices []composer.Choice
	a.run("load "+kind.String(), func(ctx context.Context) error {
		var err error
		choices, err = composer.LoadChoices(ctx, a.deps.Client, kind)
		return err
	}, func(err error) {
		if a.chat != s || s.kind == nil || *s.kind != kind {
			return
		}
		s.loading = false
		if err != nil {
			s.resetOptions()
		} else {
			s.choices = choices
		}
		a.refreshComposer()
	})
}

// panelFilterPrompt asks for a term narrowing the open list.
func (a *App) panelFilterPrompt() {
	s := a.chat
	if s == nil {
		return
	}
	switch st := s.composer.State(); {
	case st.Panel == composer.PanelEmoji,
		st.Panel == composer.PanelOptions && s.kind != nil && !s.loading:
		a.showPrompt(ui.PromptFilter, s.filter, nil)
	}
}

func (a *App) setPanelFilter(term string) {
	if a.chat == nil {
		return
	}
	a.chat.filter = strings.TrimSpace(term)
	a.refreshComposer()
	a.focusComposer()
}

// submitParams attaches the pending template with the typed parameters.
// Bad input asks again.
func (a *App) submitParams(text string) {
	s := a.chat
	if s == nil || s.pending == nil {
		return
	}
	ch := *s.pending
	params, err := composer.ParseTemplateParams(text, ch.Template.NumberParameters)
	if err != nil {
		a.flash.Warn(err.Error())
		a.showPrompt(ui.PromptParams, text, nil)
		return
	}
	s.composer.Apply(ch)
	s.composer.SelectTemplate(*ch.Template, params)
	s.resetOptions()
	a.refreshComposer()
	a.focusComposer()
}

func (a *App) send() {
	s := a.chat
	if s == nil {
		return
	}
	go func() {
		err := s.composer.Send(a.ctx)
		a.vm.Report(err)
		if err == nil {
			_ = a.vm.LoadMessages(a.ctx)
		}
	}()
}

// answer sends the title of option n of the selected quick reply.
func (a *App) answer(n int) {
	s := a.chat
	if s == nil {
		return
	}
	_, r, ok := a.conversation.Selected()
	if !ok || r.Variant != render.VariantQuickReply {
		return
	}
	for _, o := range r.Options {
		if o.Index+1 != n {
			continue
		}
		go func() {
			err := s.composer.SendReply(a.ctx, o.Title)
			a.vm.Report(err)
			if err == nil {
				_ = a.vm.LoadMessages(a.ctx)
			}
		}()
		return
	}
}

func (a *App) activateMessage() {
	msg, _, ok := a.conversation.Selected()
	if !ok {
		return
	}
	if err := render.Activate(msg, a.deps.Opener); err != nil {
		if errors.Is(err, render.ErrNoLink) {
			a.flash.Warn("nothing to open in this message")
			return
		}
		a.flash.Err(err)
	}
}

func (a *App) showLink() {
	_, r, ok := a.conversation.Selected()
	if !ok || r.Link == "" {
		a.flash.Warn("nothing to open in this message")
		return
	}
	a.link.ShowLink(r.Link)
	a.show(pageLink, false)
}

func (a *App) hintQuickReply() {
	if _, r, ok := a.conversation.Selected(); ok && r.Variant == render.VariantQuickReply {
		a.flash.Info("reply with " + views.QuickReplyTitles(r))
	}
}

func (a *App) openMenu() {
	if a.chat == nil {
		return
	}
	focus := a.menuDialog.ShowActions(a.chat.menu.Actions())
	a.show(pageMenu, true)
	a.app.SetFocus(focus)
}

func (a *App) menuAction(action menu.Action) {
	s := a.chat
	if s == nil {
		return
	}
	a.run("open "+action.String(), func(ctx context.Context) error {
		return s.menu.Open(ctx, action)
	}, func(err error) {
		if a.chat != s || a.pages.Current() != pageMenu {
			return
		}
		if err != nil {
			a.back()
			return
		}
		a.app.SetFocus(a.menuDialog.Show(s.menu.View()))
	})
}

func (a *App) menuSelect(i int) {
	if a.chat == nil {
		return
	}
	if err := a.chat.menu.Select(i); err != nil {
		a.logger.Debug("flow select ignored", zap.Int("index", i), zap.Error(err))
	}
}

func (a *App) menuConfirm() {
	s := a.chat
	if s == nil || !s.menu.CanConfirm() {
		return
	}
	action := s.menu.View().Action
	a.back()
	a.run(action.String(), s.menu.Confirm, func(err error) {
		a.menuFired(s, action, err)
	})
}

func (a *App) menuCancel() {
	if a.chat != nil {
		a.chat.menu.Cancel()
	}
	if a.pages.Current() == pageMenu {
		a.back()
	}
}

// menuFired reloads what a finished menu action changed. Failures were
// already flashed by run.
func (a *App) menuFired(s *chatSession, action menu.Action, err error) {
	if err != nil {
		return
	}
	a.flash.Info(action.String() + " done")
	switch {
	case action == menu.ActionBlockContact:
		if a.chat == s {
			a.pages.PopTo(pageChats)
			a.closeChat()
		}
		a.refetch()
	case a.chat == s:
		a.reloadMessages()
	}
}
