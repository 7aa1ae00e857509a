package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(OrderStatusProcessing, OrderStatusExecuted))
	assert.True(t, CanTransition(OrderStatusProcessing, OrderStatusFailed))

	// Executed and failed are terminal.
	assert.False(t, CanTransition(OrderStatusExecuted, OrderStatusFailed))
	assert.False(t, CanTransition(OrderStatusExecuted, OrderStatusProcessing))
	assert.False(t, CanTransition(OrderStatusFailed, OrderStatusExecuted))
	assert.False(t, CanTransition(OrderStatusFailed, OrderStatusProcessing))

	// No self-loops.
	assert.False(t, CanTransition(OrderStatusProcessing, OrderStatusProcessing))
}

func TestMandateStatusToggle(t *testing.T) {
	assert.Equal(t, MandateStatusPaused, MandateStatusActive.Toggle())
	assert.Equal(t, MandateStatusActive, MandateStatusPaused.Toggle())
}
