package menu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matheus3301/tides/internal/bus"
	"github.com/matheus3301/tides/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	Op   string
	Args []string
}

type fakeMutator struct {
	flows      []remote.Flow
	flowsErr   error
	flowsCalls int
	err        error
	calls      []call
}

func (f *fakeMutator) Flows(context.Context) ([]remote.Flow, error) {
	f.flowsCalls++
	return f.flows, f.flowsErr
}

func (f *fakeMutator) record(op string, args ...string) error {
	f.calls = append(f.calls, call{op, args})
	return f.err
}

func (f *fakeMutator) StartContactFlow(_ context.Context, flowID, contactID string) error {
	return f.record("startContactFlow", flowID, contactID)
}

func (f *fakeMutator) StartGroupFlow(_ context.Context, flowID, groupID string) error {
	return f.record("startGroupFlow", flowID, groupID)
}

func (f *fakeMutator) TerminateFlows(_ context.Context, contactID string) error {
	return f.record("terminateContactFlows", contactID)
}

func (f *fakeMutator) ClearConversation(_ context.Context, contactID string) error {
	return f.record("clearMessages", contactID)
}

func (f *fakeMutator) BlockContact(_ context.Context, contactID string) error {
	return f.record("updateContact", contactID)
}

var twoFlows = []remote.Flow{{ID: "f1", Name: "Registration"}, {ID: "f2", Name: "Feedback"}}

func TestActionsPerConversationType(t *testing.T) {
	assert.Equal(t, []Action{ActionStartFlow, ActionTerminateFlow, ActionClearConversation, ActionBlockContact},
		Actions(remote.ConversationContact))
	assert.Equal(t, []Action{ActionStartFlow}, Actions(remote.ConversationCollection))
}

func TestConfirmFiresMutation(t *testing.T) {
	tests := []struct {
		name     string
		convType string
		action   Action
		want     call
	}{
		{"terminate", remote.ConversationContact, ActionTerminateFlow, call{"terminateContactFlows", []string{"9"}}},
		{"clear", remote.ConversationContact, ActionClearConversation, call{"clearMessages", []string{"9"}}},
		{"block", remote.ConversationContact, ActionBlockContact, call{"updateContact", []string{"9"}}},
		{"contact flow", remote.ConversationContact, ActionStartFlow, call{"startContactFlow", []string{"f1", "9"}}},
		{"group flow", remote.ConversationCollection, ActionStartFlow, call{"startGroupFlow", []string{"f1", "9"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMutator{flows: twoFlows}
			d := New(tt.convType, "9", m, nil, nil, nil)
			ctx := context.Background()

			require.NoError(t, d.Open(ctx, tt.action))
			assert.Empty(t, m.calls, "opening must not fire")
			require.True(t, d.CanConfirm())
			require.NoError(t, d.Confirm(ctx))

			assert.Equal(t, []call{tt.want}, m.calls)
			assert.Equal(t, StateNone, d.View().State)
		})
	}
}

func TestStartFlowSelection(t *testing.T) {
	m := &fakeMutator{flows: twoFlows}
	d := New(remote.ConversationContact, "3", m, nil, nil, nil)
	ctx := context.Background()

	require.NoError(t, d.Open(ctx, ActionStartFlow))
	v := d.View()
	assert.Equal(t, StateSelecting, v.State)
	assert.Equal(t, 0, v.Selected)
	assert.Equal(t, twoFlows, v.Flows)

	require.NoError(t, d.Select(1))
	assert.Error(t, d.Select(2))
	require.NoError(t, d.Confirm(ctx))
	assert.Equal(t, []call{{"startContactFlow", []string{"f2", "3"}}}, m.calls)
}

func TestStartFlowWithoutFlowsCannotConfirm(t *testing.T) {
	m := &fakeMutator{}
	d := New(remote.ConversationContact, "3", m, nil, nil, nil)

	require.NoError(t, d.Open(context.Background(), ActionStartFlow))
	assert.False(t, d.CanConfirm())
	assert.ErrorIs(t, d.Confirm(context.Background()), ErrNotReady)
	assert.Empty(t, m.calls)
	assert.Equal(t, StateSelecting, d.View().State)
}

func TestCancelFiresNothing(t *testing.T) {
	for _, a := range Actions(remote.ConversationContact) {
		t.Run(a.String(), func(t *testing.T) {
			m := &fakeMutator{flows: twoFlows}
			d := New(remote.ConversationContact, "3", m, nil, nil, nil)
			require.NoError(t, d.Open(context.Background(), a))
			d.Cancel()

			assert.Equal(t, StateNone, d.View().State)
			assert.False(t, d.CanConfirm())
			assert.ErrorIs(t, d.Confirm(context.Background()), ErrNotReady)
			assert.Empty(t, m.calls)
		})
	}
}

func TestFailureStillClosesDialog(t *testing.T) {
	boom := &remote.Error{Op: "clearMessages", Messages: []string{"Not allowed"}}
	m := &fakeMutator{err: boom}
	b := bus.New()
	fired, unsub := b.Subscribe(bus.KindMenuFired, 4)
	defer unsub()

	d := New(remote.ConversationContact, "3", m, nil, b, nil)
	require.NoError(t, d.Open(context.Background(), ActionClearConversation))
	err := d.Confirm(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateNone, d.View().State)
	select {
	case evt := <-fired:
		f := evt.Payload.(Fired)
		assert.Equal(t, ActionClearConversation, f.Action)
		assert.ErrorIs(t, f.Err, boom)
	case <-time.After(time.Second):
		t.Fatal("no fired event")
	}
}

func TestGroupMenuRejectsContactActions(t *testing.T) {
	d := New(remote.ConversationCollection, "g", &fakeMutator{}, nil, nil, nil)
	assert.ErrorIs(t, d.Open(context.Background(), ActionBlockContact), ErrUnavailable)
	assert.Equal(t, StateNone, d.View().State)
}

func TestFlowLoadFailure(t *testing.T) {
	m := &fakeMutator{flowsErr: errors.New("offline")}
	d := New(remote.ConversationContact, "3", m, nil, nil, nil)

	err := d.Open(context.Background(), ActionStartFlow)
	assert.ErrorContains(t, err, "offline")
	assert.Equal(t, StateNone, d.View().State)
}

func TestFlowCacheReusesLists(t *testing.T) {
	m := &fakeMutator{flows: twoFlows}
	cache := NewFlowCache(time.Minute)
	ctx := context.Background()

	for range 3 {
		d := New(remote.ConversationContact, "1", m, cache, nil, nil)
		require.NoError(t, d.Open(ctx, ActionStartFlow))
	}
	assert.Equal(t, 1, m.flowsCalls)

	g := New(remote.ConversationCollection, "g", m, cache, nil, nil)
	require.NoError(t, g.Open(ctx, ActionStartFlow))
	assert.Equal(t, 2, m.flowsCalls, "cached per conversation type")

	cache.Invalidate()
	flows, err := cache.Get(ctx, remote.ConversationContact, m)
	require.NoError(t, err)
	assert.Equal(t, twoFlows, flows)
	assert.Equal(t, 3, m.flowsCalls)
}

func TestFlowCacheExpires(t *testing.T) {
	m := &fakeMutator{flows: twoFlows}
	cache := NewFlowCache(20 * time.Millisecond)
	ctx := context.Background()

	_, err := cache.Get(ctx, remote.ConversationContact, m)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = cache.Get(ctx, remote.ConversationContact, m)
	require.NoError(t, err)
	assert.Equal(t, 2, m.flowsCalls)
}
