package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to State
		allowed  bool
	}{
		{StateInitiated, StatePending, true},
		{StateInitiated, StateAwaitingGateway, true},
		{StateInitiated, StateApproved, false},
		{StateAwaitingGateway, StateApproved, true},
		{StateAwaitingGateway, StateFailed, true},
		{StateAwaitingGateway, StateRejected, false},
		{StateFailed, StateApproved, true},
		{StatePending, StateApproved, true},
		{StatePending, StateRejected, true},
		{StatePending, StateFailed, false},
		{StateApproved, StateApproved, false},
		{StateApproved, StateRejected, false},
		{StateRejected, StateApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestState_LedgerStatus(t *testing.T) {
	assert.Equal(t, StatusPending, StateInitiated.LedgerStatus())
	assert.Equal(t, StatusPending, StatePending.LedgerStatus())
	assert.Equal(t, StatusPending, StateAwaitingGateway.LedgerStatus())
	assert.Equal(t, StatusApproved, StateApproved.LedgerStatus())
	assert.Equal(t, StatusRejected, StateRejected.LedgerStatus())
	assert.Equal(t, StatusRejected, StateFailed.LedgerStatus())
}

func TestState_IsValid(t *testing.T) {
	assert.True(t, StateAwaitingGateway.IsValid())
	assert.False(t, State("settled").IsValid())
	assert.True(t, StateApproved.IsFinal())
	assert.False(t, StateFailed.IsFinal())
}
