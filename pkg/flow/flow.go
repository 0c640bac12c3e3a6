// Package flow is the client-side state machine for making one video:
// enhance an idea, pick a prompt, make sure the wallet covers it, generate,
// then poll until the provider is finished.
package flow

import (
	"fmt"
	"sync"
)

type State string

const (
	Idle       State = "idle"
	Enhancing  State = "enhancing"
	Reviewing  State = "reviewing"
	Paying     State = "paying"
	Generating State = "generating"
	Polling    State = "polling"
	Done       State = "done"
	Error      State = "error"
)

type Event string

const (
	// EventSubmitIdea sends the user's idea for enhancement.
	EventSubmitIdea Event = "submit_idea"
	// EventPromptsReady means the enhanced prompts came back.
	EventPromptsReady Event = "prompts_ready"
	// EventSelectPrompt picks a prompt and the wallet covers a video.
	EventSelectPrompt Event = "select_prompt"
	// EventInsufficientFunds is a wallet check (or a 402) that came up short.
	EventInsufficientFunds Event = "insufficient_funds"
	// EventPaymentConfirmed means the top-up was recorded.
	EventPaymentConfirmed Event = "payment_confirmed"
	// EventPaymentCanceled returns to the prompt list without paying.
	EventPaymentCanceled Event = "payment_canceled"
	// EventSubmitted means the provider accepted the prediction.
	EventSubmitted Event = "submitted"
	// EventStillRunning is a poll that saw a non-terminal status.
	EventStillRunning Event = "still_running"
	EventSucceeded    Event = "succeeded"
	EventFailed       Event = "failed"
	EventReset        Event = "reset"
)

// InvalidTransitionError is an event that the current state does not accept.
type InvalidTransitionError struct {
	From  State
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("flow: event %q not allowed in state %q", e.Event, e.From)
}

var transitions = map[State]map[Event]State{
	Idle: {
		EventSubmitIdea: Enhancing,
	},
	Enhancing: {
		EventPromptsReady: Reviewing,
	},
	Reviewing: {
		EventSelectPrompt:      Generating,
		EventInsufficientFunds: Paying,
		EventSubmitIdea:        Enhancing,
	},
	Paying: {
		EventPaymentConfirmed: Generating,
		EventPaymentCanceled:  Reviewing,
	},
	Generating: {
		EventSubmitted:         Polling,
		EventInsufficientFunds: Paying,
	},
	Polling: {
		EventStillRunning: Polling,
		EventSucceeded:    Done,
	},
}

// Transition returns the state that follows s on ev. EventFailed moves any
// active state to Error and EventReset always returns to Idle.
func Transition(s State, ev Event) (State, error) {
	switch ev {
	case EventReset:
		return Idle, nil
	case EventFailed:
		if s == Done || s == Idle {
			return s, &InvalidTransitionError{From: s, Event: ev}
		}
		return Error, nil
	}
	next, ok := transitions[s][ev]
	if !ok {
		return s, &InvalidTransitionError{From: s, Event: ev}
	}
	return next, nil
}

// Terminal reports whether s ends a run.
func Terminal(s State) bool {
	return s == Done || s == Error
}

// Machine holds a current state and applies events to it.
type Machine struct {
	mu       sync.Mutex
	state    State
	history  []State
	onChange func(from, to State, ev Event)
}

func New(onChange func(from, to State, ev Event)) *Machine {
	return &Machine{state: Idle, history: []State{Idle}, onChange: onChange}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Fire applies ev. On error the state is unchanged.
func (m *Machine) Fire(ev Event) (State, error) {
	m.mu.Lock()
	from := m.state
	next, err := Transition(from, ev)
	if err != nil {
		m.mu.Unlock()
		return from, err
	}
	m.state = next
	if next != from {
		m.history = append(m.history, next)
	}
	cb := m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb(from, next, ev)
	}
	return next, nil
}

// History lists the distinct states visited, oldest first.
func (m *Machine) History() []State {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]State, len(m.history))
	copy(out, m.history)
	return out
}
