package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSettlementStatus(t *testing.T) {
	tests := []struct {
		current string
		action  string
		next    string
		allowed bool
	}{
		{SettlementPending, SettlementActionApprove, SettlementApproved, true},
		{SettlementPending, SettlementActionCancel, SettlementCancelled, true},
		{SettlementPending, SettlementActionPay, "", false},
		{SettlementPending, SettlementActionMarkOverdue, "", false},

		{SettlementApproved, SettlementActionPay, SettlementPaid, true},
		{SettlementApproved, SettlementActionCancel, SettlementCancelled, true},
		{SettlementApproved, SettlementActionMarkOverdue, SettlementOverdue, true},
		{SettlementApproved, SettlementActionApprove, "", false},

		{SettlementOverdue, SettlementActionPay, SettlementPaid, true},
		{SettlementOverdue, SettlementActionCancel, SettlementCancelled, true},
		{SettlementOverdue, SettlementActionApprove, "", false},
		{SettlementOverdue, SettlementActionMarkOverdue, "", false},
	}

	for _, tt := range tests {
		next, ok := NextSettlementStatus(tt.current, tt.action)
		assert.Equal(t, tt.allowed, ok, "%s + %s", tt.current, tt.action)
		assert.Equal(t, tt.next, next, "%s + %s", tt.current, tt.action)
	}
}

func TestTerminalStatesAcceptNothing(t *testing.T) {
	for _, terminal := range []string{SettlementPaid, SettlementCancelled} {
		for _, action := range []string{SettlementActionApprove, SettlementActionPay, SettlementActionCancel, SettlementActionMarkOverdue} {
			_, ok := NextSettlementStatus(terminal, action)
			assert.False(t, ok, "%s must reject %s", terminal, action)
		}
	}
}

func TestUnknownStatusAndAction(t *testing.T) {
	_, ok := NextSettlementStatus("draft", SettlementActionApprove)
	assert.False(t, ok)

	_, ok = NextSettlementStatus(SettlementPending, "archive")
	assert.False(t, ok)
}

func TestSettlementActions(t *testing.T) {
	assert.Equal(t, []string{SettlementActionApprove, SettlementActionCancel}, SettlementActions(SettlementPending))
	assert.Equal(t, []string{SettlementActionPay, SettlementActionCancel, SettlementActionMarkOverdue}, SettlementActions(SettlementApproved))
	assert.Equal(t, []string{SettlementActionPay, SettlementActionCancel}, SettlementActions(SettlementOverdue))
	assert.Empty(t, SettlementActions(SettlementPaid))
	assert.Empty(t, SettlementActions(SettlementCancelled))
}

func TestEveryTransitionLandsOnKnownStatus(t *testing.T) {
	known := map[string]bool{
		SettlementPending:   true,
		SettlementApproved:  true,
		SettlementPaid:      true,
		SettlementCancelled: true,
		SettlementOverdue:   true,
	}
	for from, actions := range settlementTransitions {
		require.True(t, known[from], "unknown source status %q", from)
		for action, to := range actions {
			assert.True(t, known[to], "%s via %s lands on unknown status %q", from, action, to)
		}
	}
}
