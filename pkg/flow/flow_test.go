package flow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name string
		from State
		ev   Event
		want State
	}{
		{"idea submitted", Idle, EventSubmitIdea, Enhancing},
		{"prompts back", Enhancing, EventPromptsReady, Reviewing},
		{"funded pick", Reviewing, EventSelectPrompt, Generating},
		{"short pick", Reviewing, EventInsufficientFunds, Paying},
		{"new idea while reviewing", Reviewing, EventSubmitIdea, Enhancing},
		{"paid", Paying, EventPaymentConfirmed, Generating},
		{"gave up paying", Paying, EventPaymentCanceled, Reviewing},
		{"server said 402", Generating, EventInsufficientFunds, Paying},
		{"accepted", Generating, EventSubmitted, Polling},
		{"poll again", Polling, EventStillRunning, Polling},
		{"finished", Polling, EventSucceeded, Done},
		{"provider failed", Polling, EventFailed, Error},
		{"enhance failed", Enhancing, EventFailed, Error},
		{"reset from done", Done, EventReset, Idle},
		{"reset from error", Error, EventReset, Idle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransitionRejectsOutOfOrderEvents(t *testing.T) {
	for _, tc := range []struct {
		from State
		ev   Event
	}{
		{Idle, EventSelectPrompt},
		{Enhancing, EventSubmitted},
		{Reviewing, EventSucceeded},
		{Polling, EventSelectPrompt},
		{Done, EventFailed},
		{Done, EventSubmitIdea},
	} {
		got, err := Transition(tc.from, tc.ev)
		var terr *InvalidTransitionError
		require.True(t, errors.As(err, &terr), "%s/%s", tc.from, tc.ev)
		assert.Equal(t, tc.from, got)
		assert.Equal(t, tc.ev, terr.Event)
	}
}

func TestMachineRecordsHistory(t *testing.T) {
	var seen []State
	m := New(func(_, to State, _ Event) { seen = append(seen, to) })

	for _, ev := range []Event{
		EventSubmitIdea, EventPromptsReady, EventInsufficientFunds, EventPaymentConfirmed,
		EventSubmitted, EventStillRunning, EventStillRunning, EventSucceeded,
	} {
		_, err := m.Fire(ev)
		require.NoError(t, err, ev)
	}

	assert.Equal(t, Done, m.State())
	assert.True(t, Terminal(m.State()))
	assert.Equal(t, []State{Idle, Enhancing, Reviewing, Paying, Generating, Polling, Done}, m.History())
	assert.Len(t, seen, 8)

	_, err := m.Fire(EventSubmitIdea)
	assert.Error(t, err)
	assert.Equal(t, Done, m.State())
}
