package tui

import (
	"fmt"
	"strings"

	"github.com/matheus3301/tides/internal/tui/ui"
)

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

// commandAliases maps short forms to command names.
var commandAliases = map[string]string{
	"q":     "quit",
	"h":     "help",
	"notif": "notifications",
	"org":   "server",
	"s":     "search",
}

// Resolve returns the canonical command name.
func (c Command) Resolve() string {
	if name, ok := commandAliases[c.Name]; ok {
		return name
	}
	return c.Name
}

func (a *App) onPromptSubmit(mode ui.PromptMode, text string) {
	a.hidePrompt()
	switch mode {
	case ui.PromptCommand:
		if err := a.runCommand(ParseCommand(text)); err != nil {
			a.flash.Warn(err.Error())
		}
		return
	case ui.PromptFilter:
		a.setPanelFilter(text)
		return
	case ui.PromptParams:
		a.submitParams(text)
		return
	}
	switch a.pages.Current() {
	case pageNotifications:
		a.deps.Notify.SetSearch(text)
	case pageChats:
		a.searchTerm(text)
	}
}

// cancelPrompt hides the prompt. Panel prompts hand focus back to the panel.
func (a *App) cancelPrompt() {
	mode := a.prompt.Mode()
	a.hidePrompt()
	if mode == ui.PromptFilter || mode == ui.PromptParams {
		if a.chat != nil {
			a.chat.pending = nil
		}
		a.focusComposer()
	}
}

func (a *App) runCommand(cmd Command) error {
	switch cmd.Resolve() {
	case "":
		return nil
	case "quit":
		a.app.Stop()
	case "help":
		if a.pages.Current() != pageHelp {
			a.show(pageHelp, false)
		}
	case "notifications":
		if !a.signedIn() {
			return fmt.Errorf("sign in first")
		}
		a.showNotifications()
	case "search":
		if !a.signedIn() {
			return fmt.Errorf("sign in first")
		}
		a.pages.PopTo(pageChats)
		a.closeChat()
		a.searchTerm(cmd.Args)
	case "logout":
		a.signOut()
	case "server":
		a.changeServer()
	default:
		return fmt.Errorf("unknown command %q", cmd.Name)
	}
	return nil
}
