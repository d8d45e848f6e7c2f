// Package model holds the screen state the views render that no controller
// package owns: the signed-in organization, the open conversation and its
// messages.
package model

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/matheus3301/tides/internal/feed"
	"github.com/matheus3301/tides/internal/logging"
	"github.com/matheus3301/tides/internal/organization"
	"github.com/matheus3301/tides/internal/remote"
	"github.com/matheus3301/tides/internal/status"
	"go.uber.org/zap"
)

// ErrMissingCredentials is returned by SignIn when phone or password is blank.
var ErrMissingCredentials = errors.New("phone and password are required")

// API is the part of the remote client the screens call directly.
type API interface {
	ConversationMessages(ctx context.Context, conversationType, id string, limit int) ([]remote.Message, error)
	SavedSearches(ctx context.Context) ([]remote.SavedSearch, error)
	Login(ctx context.Context, phone, password string) (*remote.Session, error)
	SetBaseURL(baseURL string)
	SetToken(token string)
}

// SearchHistory remembers the terms typed into the search prompt.
type SearchHistory interface {
	RecordSearch(term string) error
	RecentSearches(limit int) ([]string, error)
}

// ViewModel caches what the screens load and signals UI refreshes.
type ViewModel struct {
	api          API
	orgs         *organization.Service
	machine      *status.Machine
	history      SearchHistory
	logger       *zap.Logger
	messageLimit int

	mu       sync.RWMutex
	active   feed.ContactEntry
	messages []remote.Message
	saved    []remote.SavedSearch

	refreshCh chan struct{}
}

// NewViewModel creates a view model over the given boundaries.
func NewViewModel(api API, orgs *organization.Service, machine *status.Machine, history SearchHistory, messageLimit int, logger *zap.Logger) *ViewModel {
	return &ViewModel{
		api:          api,
		orgs:         orgs,
		machine:      machine,
		history:      history,
		logger:       logging.OrNop(logger).Named("tui"),
		messageLimit: messageLimit,
		refreshCh:    make(chan struct{}, 1),
	}
}

// RefreshCh returns the channel that signals UI refresh.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

func (vm *ViewModel) signalRefresh() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// Organization returns the selected organization, nil before one is chosen.
func (vm *ViewModel) Organization() *organization.Organization {
	org, err := vm.orgs.Current()
	if err != nil {
		return nil
	}
	return org
}

// SelectOrganization stores the organization for code and points the client
// at it. Any previous sign-in belongs to another server and is dropped.
func (vm *ViewModel) SelectOrganization(ctx context.Context, code string) (*organization.Organization, error) {
	org, err := vm.orgs.Submit(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := vm.orgs.SignOut(); err != nil {
		vm.logger.Warn("drop previous session failed", zap.Error(err))
	}
	vm.api.SetBaseURL(org.URL)
	vm.api.SetToken("")
	vm.ensure(status.AuthRequired)
	return org, nil
}

// SignIn exchanges credentials for a session and stores it.
func (vm *ViewModel) SignIn(ctx context.Context, phone, password string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return ErrMissingCredentials
	}
	sess, err := vm.api.Login(ctx, phone, password)
	if err != nil {
		return err
	}
	if err := vm.orgs.SaveSession(*sess); err != nil {
		return err
	}
	vm.logger.Info("signed in")
	vm.ensure(status.Connecting)
	return nil
}

// SignOut forgets the session but keeps the organization.
func (vm *ViewModel) SignOut() error {
	if err := vm.orgs.SignOut(); err != nil {
		return err
	}
	vm.api.SetToken("")
	vm.ensure(status.AuthRequired)
	return nil
}

// ResetServer forgets the organization and its session.
func (vm *ViewModel) ResetServer() error {
	if err := vm.orgs.Clear(); err != nil {
		return err
	}
	vm.api.SetBaseURL("")
	vm.api.SetToken("")
	vm.ensure(status.AuthRequired)
	vm.ensure(status.Unconfigured)
	return nil
}

// Report folds the outcome of a request into the connection status. A
// rejected token asks for a new sign-in; other failures degrade the
// connection until a request succeeds again.
func (vm *ViewModel) Report(err error) {
	switch {
	case err == nil:
		if s := vm.machine.Current(); s == status.Connecting || s == status.Degraded {
			vm.ensure(status.Ready)
		}
	case errors.Is(err, context.Canceled):
	case errors.Is(err, remote.ErrUnauthorized):
		vm.ensure(status.AuthRequired)
	default:
		if s := vm.machine.Current(); s == status.Connecting || s == status.Ready {
			vm.ensure(status.Degraded)
		}
	}
}

func (vm *ViewModel) ensure(to status.State) {
	if err := vm.machine.Ensure(to); err != nil {
		vm.logger.Debug("status unchanged", zap.String("want", string(to)), zap.Error(err))
	}
}

// Open makes entry the active conversation and drops the previous messages.
func (vm *ViewModel) Open(entry feed.ContactEntry) {
	vm.mu.Lock()
	vm.active = entry
	vm.messages = nil
	vm.mu.Unlock()
	vm.signalRefresh()
}

// Active returns the open conversation.
func (vm *ViewModel) Active() feed.ContactEntry {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.active
}

// LoadMessages fetches the messages of the active conversation. A result for
// a conversation that was closed meanwhile is dropped.
func (vm *ViewModel) LoadMessages(ctx context.Context) error {
	entry := vm.Active()
	if entry.ID == "" {
		return nil
	}
	msgs, err := vm.api.ConversationMessages(ctx, entry.ConversationType, entry.ID, vm.messageLimit)
	vm.Report(err)
	if err != nil {
		vm.logger.Warn("load messages failed", zap.String("id", entry.ID), zap.Error(err))
		return err
	}
	vm.mu.Lock()
	if vm.active.ID == entry.ID && vm.active.ConversationType == entry.ConversationType {
		vm.messages = msgs
	}
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// Messages returns the loaded messages of the active conversation.
func (vm *ViewModel) Messages() []remote.Message {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	out := make([]remote.Message, len(vm.messages))
	copy(out, vm.messages)
	return out
}

// LoadSavedSearches fetches the server-stored search filters.
func (vm *ViewModel) LoadSavedSearches(ctx context.Context) ([]remote.SavedSearch, error) {
	saved, err := vm.api.SavedSearches(ctx)
	vm.Report(err)
	if err != nil {
		return nil, err
	}
	vm.mu.Lock()
	vm.saved = saved
	vm.mu.Unlock()
	return saved, nil
}

// SavedSearches returns the last loaded saved searches.
func (vm *ViewModel) SavedSearches() []remote.SavedSearch {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return append([]remote.SavedSearch(nil), vm.saved...)
}

// RecordSearch remembers term for the prompt history. Failures are logged.
func (vm *ViewModel) RecordSearch(term string) {
	if err := vm.history.RecordSearch(term); err != nil {
		vm.logger.Warn("record search failed", zap.Error(err))
	}
}

// RecentSearches returns up to limit remembered terms, newest first.
func (vm *ViewModel) RecentSearches(limit int) []string {
	terms, err := vm.history.RecentSearches(limit)
	if err != nil {
		vm.logger.Warn("recent searches failed", zap.Error(err))
		return nil
	}
	return terms
}
