package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderTransitionGuards(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"pending to accepted", OrderStatusPending, OrderStatusAccepted, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"pending to completed", OrderStatusPending, OrderStatusCompleted, false},
		{"accepted to in_progress", OrderStatusAccepted, OrderStatusInProgress, true},
		{"accepted to cancelled", OrderStatusAccepted, OrderStatusCancelled, true},
		{"in_progress to completed", OrderStatusInProgress, OrderStatusCompleted, true},
		{"in_progress to cancelled", OrderStatusInProgress, OrderStatusCancelled, false},
		{"completed is terminal", OrderStatusCompleted, OrderStatusPending, false},
		{"cancelled is terminal", OrderStatusCancelled, OrderStatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.from}
			err := o.Transition(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, o.Status)
			} else {
				require.Error(t, err)
				// Rejected transitions leave the order untouched.
				assert.Equal(t, tt.from, o.Status)
			}
		})
	}
}

func TestOrderCompletionTimestamp(t *testing.T) {
	o := &Order{Status: OrderStatusInProgress}
	require.NoError(t, o.Transition(OrderStatusCompleted))
	require.NotNil(t, o.CompletedAt)
}

func TestOrderStatusChoices(t *testing.T) {
	choices := OrderStatusChoices()
	assert.Len(t, choices, 5)
	assert.Equal(t, "pending", choices[0].Value)
	assert.Equal(t, "Pending", choices[0].Label)
	for _, c := range choices {
		assert.NotEmpty(t, c.Label)
	}
}
