package model

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/matheus3301/tides/internal/bus"
	"github.com/matheus3301/tides/internal/feed"
	"github.com/matheus3301/tides/internal/organization"
	"github.com/matheus3301/tides/internal/remote"
	"github.com/matheus3301/tides/internal/status"
	"github.com/matheus3301/tides/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	baseURL  string
	token    string
	loginErr error
	msgs     map[string][]remote.Message
	msgErr   error
	saved    []remote.SavedSearch
	block    chan struct{}
}

func (f *fakeAPI) ConversationMessages(_ context.Context, _, id string, _ int) ([]remote.Message, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.msgs[id], f.msgErr
}

func (f *fakeAPI) SavedSearches(context.Context) ([]remote.SavedSearch, error) {
	return f.saved, nil
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (*remote.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &remote.Session{AccessToken: "tok"}, nil
}

func (f *fakeAPI) SetBaseURL(u string) {
	f.mu.Lock()
	f.baseURL = u
	f.mu.Unlock()
}

func (f *fakeAPI) SetToken(tok string) {
	f.mu.Lock()
	f.token = tok
	f.mu.Unlock()
}

type fixture struct {
	api     *fakeAPI
	db      *store.DB
	orgs    *organization.Service
	machine *status.Machine
	vm      *ViewModel
}

func newFixture(t *testing.T, start ...status.State) *fixture {
	t.Helper()
	db, _, err := store.OpenMigrated(filepath.Join(t.TempDir(), "tides.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b := bus.New()
	lookup := func(context.Context, string) (*remote.OrganizationInfo, error) {
		return &remote.OrganizationInfo{Name: "Example"}, nil
	}
	f := &fixture{
		api:     &fakeAPI{msgs: map[string][]remote.Message{}},
		db:      db,
		orgs:    organization.NewService(db, "tides.test", lookup, b, nil),
		machine: status.NewMachine(b),
	}
	for _, s := range start {
		require.NoError(t, f.machine.Transition(s))
	}
	f.vm = NewViewModel(f.api, f.orgs, f.machine, db, 20, nil)
	return f
}

func TestSelectOrganizationAsksForSignIn(t *testing.T) {
	f := newFixture(t, status.Unconfigured)
	require.NoError(t, f.orgs.SaveSession(remote.Session{AccessToken: "old"}))

	org, err := f.vm.SelectOrganization(context.Background(), " example ")
	require.NoError(t, err)
	assert.Equal(t, "Example", org.Name)
	assert.Equal(t, "https://api.example.tides.test/api", f.api.baseURL)
	assert.Empty(t, f.api.token)
	assert.Equal(t, status.AuthRequired, f.machine.Current())

	_, err = f.orgs.Session()
	assert.ErrorIs(t, err, organization.ErrSignedOut)
	assert.Equal(t, "example", f.vm.Organization().Shortcode)
}

func TestSelectOrganizationRejectsShortCode(t *testing.T) {
	f := newFixture(t, status.Unconfigured)
	_, err := f.vm.SelectOrganization(context.Background(), "x")
	assert.ErrorIs(t, err, organization.ErrInvalidCode)
	assert.Equal(t, status.Unconfigured, f.machine.Current())
	assert.Nil(t, f.vm.Organization())
}

func TestSignIn(t *testing.T) {
	f := newFixture(t, status.AuthRequired)

	assert.ErrorIs(t, f.vm.SignIn(context.Background(), "  ", "pw"), ErrMissingCredentials)
	assert.ErrorIs(t, f.vm.SignIn(context.Background(), "9190", ""), ErrMissingCredentials)

	require.NoError(t, f.vm.SignIn(context.Background(), "9190", "pw"))
	sess, err := f.orgs.Session()
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.AccessToken)
	assert.Equal(t, status.Connecting, f.machine.Current())
}

func TestSignInRejected(t *testing.T) {
	f := newFixture(t, status.AuthRequired)
	f.api.loginErr = &remote.Error{Op: "login", Messages: []string{"Invalid phone or password"}}

	err := f.vm.SignIn(context.Background(), "9190", "pw")
	require.Error(t, err)
	assert.Equal(t, status.AuthRequired, f.machine.Current())
	_, err = f.orgs.Session()
	assert.ErrorIs(t, err, organization.ErrSignedOut)
}

func TestReport(t *testing.T) {
	f := newFixture(t, status.Connecting)

	f.vm.Report(nil)
	assert.Equal(t, status.Ready, f.machine.Current())

	f.vm.Report(errors.New("connection refused"))
	assert.Equal(t, status.Degraded, f.machine.Current())

	f.vm.Report(context.Canceled)
	assert.Equal(t, status.Degraded, f.machine.Current())

	f.vm.Report(nil)
	assert.Equal(t, status.Ready, f.machine.Current())

	f.vm.Report(remote.ErrUnauthorized)
	assert.Equal(t, status.AuthRequired, f.machine.Current())

	f.vm.Report(nil)
	assert.Equal(t, status.AuthRequired, f.machine.Current(), "success does not sign in")
}

func TestSignOutAndReset(t *testing.T) {
	f := newFixture(t, status.Connecting, status.Ready)
	_, err := f.orgs.Submit(context.Background(), "example")
	require.NoError(t, err)
	require.NoError(t, f.orgs.SaveSession(remote.Session{AccessToken: "tok"}))

	require.NoError(t, f.vm.SignOut())
	assert.Equal(t, status.AuthRequired, f.machine.Current())
	assert.NotNil(t, f.vm.Organization())

	require.NoError(t, f.vm.ResetServer())
	assert.Equal(t, status.Unconfigured, f.machine.Current())
	assert.Nil(t, f.vm.Organization())
	assert.Empty(t, f.api.baseURL)
}

func TestResetFromDegraded(t *testing.T) {
	f := newFixture(t, status.Connecting, status.Degraded)
	require.NoError(t, f.vm.ResetServer())
	assert.Equal(t, status.Unconfigured, f.machine.Current())
}

func TestLoadMessages(t *testing.T) {
	f := newFixture(t, status.Connecting)
	f.api.msgs["7"] = []remote.Message{{ID: "1", Body: "hi"}, {ID: "2", Body: "there"}}

	require.NoError(t, f.vm.LoadMessages(context.Background()), "nothing open")

	f.vm.Open(feed.ContactEntry{ID: "7", ConversationType: remote.ConversationContact})
	require.NoError(t, f.vm.LoadMessages(context.Background()))
	assert.Len(t, f.vm.Messages(), 2)
	assert.Equal(t, status.Ready, f.machine.Current())

	select {
	case <-f.vm.RefreshCh():
	default:
		t.Fatal("expected a refresh signal")
	}

	f.vm.Open(feed.ContactEntry{ID: "8", ConversationType: remote.ConversationContact})
	assert.Empty(t, f.vm.Messages(), "opening drops the previous messages")
}

func TestLoadMessagesDropsClosedConversation(t *testing.T) {
	f := newFixture(t, status.Connecting)
	f.api.msgs["7"] = []remote.Message{{ID: "1"}}
	f.api.block = make(chan struct{})

	f.vm.Open(feed.ContactEntry{ID: "7", ConversationType: remote.ConversationContact})
	done := make(chan error, 1)
	go func() { done <- f.vm.LoadMessages(context.Background()) }()

	f.vm.Open(feed.ContactEntry{ID: "9", ConversationType: remote.ConversationCollection})
	close(f.api.block)
	require.NoError(t, <-done)
	assert.Empty(t, f.vm.Messages())
}

func TestLoadMessagesFailure(t *testing.T) {
	f := newFixture(t, status.Connecting, status.Ready)
	f.api.msgErr = errors.New("timeout")
	f.vm.Open(feed.ContactEntry{ID: "7", ConversationType: remote.ConversationContact})

	assert.Error(t, f.vm.LoadMessages(context.Background()))
	assert.Equal(t, status.Degraded, f.machine.Current())
}

func TestSearchHistory(t *testing.T) {
	f := newFixture(t)
	f.vm.RecordSearch("alice")
	f.vm.RecordSearch("  ")
	f.vm.RecordSearch("bob")
	f.vm.RecordSearch("alice")
	assert.Equal(t, []string{"alice", "bob"}, f.vm.RecentSearches(5))
}

func TestSavedSearches(t *testing.T) {
	f := newFixture(t, status.Connecting)
	f.api.saved = []remote.SavedSearch{{ID: "1", Label: "Unread"}}
	got, err := f.vm.LoadSavedSearches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.api.saved, got)
	assert.Equal(t, f.api.saved, f.vm.SavedSearches())
}
