// internal/domain/order/entity_test.go
package order

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusPaid))
	assert.True(t, StatusPending.CanTransitionTo(StatusFailed))
	assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))

	// A failed payment can be retried
	assert.True(t, StatusFailed.CanTransitionTo(StatusPaid))
	assert.True(t, StatusFailed.CanTransitionTo(StatusCancelled))

	// Paid is terminal
	assert.False(t, StatusPaid.CanTransitionTo(StatusPending))
	assert.False(t, StatusPaid.CanTransitionTo(StatusFailed))
	assert.False(t, StatusPaid.CanTransitionTo(StatusCancelled))

	assert.False(t, StatusCancelled.CanTransitionTo(StatusPaid))
	assert.False(t, StatusPending.CanTransitionTo(StatusPending))
}

func TestGenerateOrderNumber(t *testing.T) {
	n := GenerateOrderNumber()
	assert.True(t, strings.HasPrefix(n, "STK-"))
	assert.NotEqual(t, n, GenerateOrderNumber())
}
