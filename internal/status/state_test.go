package status

import (
	"testing"

	"github.com/matheus3301/tides/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Booting {
		t.Errorf("initial state = %s, want BOOTING", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		path []State
	}{
		{[]State{Unconfigured}},
		{[]State{Unconfigured, AuthRequired, Connecting, Ready}},
		{[]State{AuthRequired, Connecting, Ready}},
		{[]State{Connecting, Ready, Degraded, Ready}},
		{[]State{Connecting, Degraded, Connecting, Ready}},
		{[]State{Connecting, Ready, AuthRequired}},
		{[]State{Connecting, Ready, Unconfigured}},
		{[]State{Error, Connecting}},
	}
	for _, tt := range tests {
		name := ""
		for _, s := range tt.path {
			name += string(s) + ">"
		}
		t.Run(name, func(t *testing.T) {
			m := NewMachine(nil)
			for _, s := range tt.path {
				if err := m.Transition(s); err != nil {
					t.Fatalf("Transition to %s: %v (current: %s)", s, err, m.Current())
				}
			}
			if want := tt.path[len(tt.path)-1]; m.Current() != want {
				t.Errorf("state = %s, want %s", m.Current(), want)
			}
		})
	}
}

func TestInvalidTransition(t *testing.T) {
	tests := []struct {
		name string
		path []State
		bad  State
	}{
		{"booting to ready", nil, Ready},
		{"unconfigured to ready", []State{Unconfigured}, Ready},
		{"auth to ready skips connecting", []State{AuthRequired}, Ready},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(nil)
			for _, s := range tt.path {
				if err := m.Transition(s); err != nil {
					t.Fatal(err)
				}
			}
			before := m.Current()
			if err := m.Transition(tt.bad); err == nil {
				t.Errorf("Transition(%s -> %s) should fail", before, tt.bad)
			}
			if m.Current() != before {
				t.Errorf("state changed to %s on invalid transition", m.Current())
			}
		})
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("session.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Ensure(Connecting); err != nil {
		t.Fatal(err)
	}
	if err := m.Ensure(Connecting); err != nil {
		t.Fatalf("second Ensure error = %v", err)
	}
	if len(ch) != 1 {
		t.Errorf("events = %d, want 1", len(ch))
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("session.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Unconfigured); err != nil {
		t.Fatal(err)
	}

	evt := <-ch
	if evt.Kind != bus.KindStatusChanged {
		t.Errorf("event kind = %q, want %s", evt.Kind, bus.KindStatusChanged)
	}
	change, ok := evt.Payload.(StatusChange)
	if !ok {
		t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
	}
	if change.From != Booting || change.To != Unconfigured {
		t.Errorf("change = %v -> %v, want BOOTING -> UNCONFIGURED", change.From, change.To)
	}
}
