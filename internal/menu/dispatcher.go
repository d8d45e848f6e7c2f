// Package menu runs the conversation menu: pick an action, confirm it, fire
// its mutation.
package menu

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/tides/internal/bus"
	"github.com/matheus3301/tides/internal/logging"
	"github.com/matheus3301/tides/internal/remote"
	"go.uber.org/zap"
)

// State is the dialog the menu shows.
type State int

const (
	StateNone State = iota
	StateSelecting
	StateConfirming
)

func (s State) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StateConfirming:
		return "confirming"
	default:
		return "none"
	}
}

var (
	// ErrUnavailable is returned when an action is not offered for the
	// conversation type.
	ErrUnavailable = errors.New("action not available for this conversation")
	// ErrNotReady is returned by Confirm when no dialog is open or no flow is
	// selected.
	ErrNotReady = errors.New("nothing to confirm")
)

// Mutator fires the menu mutations.
type Mutator interface {
	FlowLister
	StartContactFlow(ctx context.Context, flowID, contactID string) error
	StartGroupFlow(ctx context.Context, flowID, groupID string) error
	TerminateFlows(ctx context.Context, contactID string) error
	ClearConversation(ctx context.Context, contactID string) error
	BlockContact(ctx context.Context, contactID string) error
}

// View is a copy of the dispatcher state for rendering.
type View struct {
	State    State
	Action   Action
	Flows    []remote.Flow
	Selected int
}

// Fired is the payload of a menu.fired event.
type Fired struct {
	Action Action
	Err    error
}

// Dispatcher drives the menu of one conversation.
type Dispatcher struct {
	conversationType string
	id               string
	m                Mutator
	flows            *FlowCache
	bus              *bus.Bus
	logger           *zap.Logger

	mu       sync.Mutex
	state    State
	action   Action
	flowList []remote.Flow
	selected int
}

// New creates the dispatcher for a conversation. A nil flow cache disables
// caching.
func New(conversationType, id string, m Mutator, flows *FlowCache, b *bus.Bus, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		conversationType: conversationType,
		id:               id,
		m:                m,
		flows:            flows,
		bus:              b,
		logger: logging.OrNop(logger).Named("menu").With(
			zap.String("conversation_type", conversationType),
			zap.String("conversation_id", id),
		),
	}
}

// Actions lists the actions offered for this conversation.
func (d *Dispatcher) Actions() []Action {
	return Actions(d.conversationType)
}

// Open starts the dialog for action. Starting a flow first loads the flow
// list and preselects its first entry; the other actions go straight to
// confirmation.
func (d *Dispatcher) Open(ctx context.Context, action Action) error {
	if !slices.Contains(d.Actions(), action) {
		return ErrUnavailable
	}
	if action != ActionStartFlow {
		d.set(StateConfirming, action, nil)
		return nil
	}

	flows, err := d.loadFlows(ctx)
	if err != nil {
		d.logger.Warn("load flows failed", zap.Error(err))
		d.set(StateNone, action, nil)
		return fmt.Errorf("load flows: %w", err)
	}
	d.set(StateSelecting, action, flows)
	return nil
}

func (d *Dispatcher) loadFlows(ctx context.Context) ([]remote.Flow, error) {
	if d.flows == nil {
		return d.m.Flows(ctx)
	}
	return d.flows.Get(ctx, d.conversationType, d.m)
}

// Select picks the flow at index i.
func (d *Dispatcher) Select(i int) error {
	d.mu.Lock()
	if d.state != StateSelecting || i < 0 || i >= len(d.flowList) {
		d.mu.Unlock()
		return fmt.Errorf("select flow %d: out of range", i)
	}
	d.selected = i
	d.mu.Unlock()
	d.bus.Emit(bus.KindMenuChanged, nil)
	return nil
}

// CanConfirm reports whether the affirmative button is enabled.
func (d *Dispatcher) CanConfirm() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canConfirmLocked()
}

func (d *Dispatcher) canConfirmLocked() bool {
	switch d.state {
	case StateConfirming:
		return true
	case StateSelecting:
		return d.selected >= 0 && d.selected < len(d.flowList)
	}
	return false
}

// Confirm fires the open action's mutation. The dialog closes whether the
// mutation succeeds or not.
func (d *Dispatcher) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if !d.canConfirmLocked() {
		d.mu.Unlock()
		return ErrNotReady
	}
	action := d.action
	var flowID string
	if action == ActionStartFlow {
		flowID = d.flowList[d.selected].ID
	}
	d.state = StateNone
	d.flowList = nil
	d.selected = 0
	d.mu.Unlock()
	d.bus.Emit(bus.KindMenuChanged, nil)

	err := d.fire(ctx, action, flowID)
	if err != nil {
		d.logger.Warn("menu action failed", zap.Stringer("action", action), zap.Error(err))
	} else {
		d.logger.Info("menu action done", zap.Stringer("action", action))
	}
	d.bus.Emit(bus.KindMenuFired, Fired{Action: action, Err: err})
	return err
}

func (d *Dispatcher) fire(ctx context.Context, action Action, flowID string) error {
	switch action {
	case ActionStartFlow:
		if d.conversationType == remote.ConversationContact {
			return d.m.StartContactFlow(ctx, flowID, d.id)
		}
		return d.m.StartGroupFlow(ctx, flowID, d.id)
	case ActionTerminateFlow:
		return d.m.TerminateFlows(ctx, d.id)
	case ActionClearConversation:
		return d.m.ClearConversation(ctx, d.id)
	case ActionBlockContact:
		return d.m.BlockContact(ctx, d.id)
	}
	return ErrUnavailable
}

// Cancel closes the dialog without firing anything.
func (d *Dispatcher) Cancel() {
	d.set(StateNone, d.action, nil)
}

// View returns a copy of the current state.
func (d *Dispatcher) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return View{
		State:    d.state,
		Action:   d.action,
		Flows:    slices.Clone(d.flowList),
		Selected: d.selected,
	}
}

func (d *Dispatcher) set(state State, action Action, flows []remote.Flow) {
	d.mu.Lock()
	d.state = state
	d.action = action
	d.flowList = flows
	d.selected = 0
	d.mu.Unlock()
	d.bus.Emit(bus.KindMenuChanged, nil)
}
