package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, CanTransitionOrderStatus(OrderStatusPlaced, OrderStatusConfirmed))
	assert.True(t, CanTransitionOrderStatus(OrderStatusPlaced, OrderStatusCancelled))
	assert.True(t, CanTransitionOrderStatus(OrderStatusConfirmed, OrderStatusOutForDelivery)) // PACKED can be skipped
	assert.True(t, CanTransitionOrderStatus(OrderStatusOutForDelivery, OrderStatusDelivered))

	assert.False(t, CanTransitionOrderStatus(OrderStatusPlaced, OrderStatusDelivered))
	assert.False(t, CanTransitionOrderStatus(OrderStatusDelivered, OrderStatusCancelled))
	assert.False(t, CanTransitionOrderStatus(OrderStatusCancelled, OrderStatusPlaced))
}

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, CanTransitionPaymentStatus(PaymentStatusPending, PaymentStatusPaid))
	assert.True(t, CanTransitionPaymentStatus(PaymentStatusPaid, PaymentStatusRefunded))
	assert.True(t, CanTransitionPaymentStatus(PaymentStatusFailed, PaymentStatusPending)) // retry

	assert.False(t, CanTransitionPaymentStatus(PaymentStatusPaid, PaymentStatusPending))
	assert.False(t, CanTransitionPaymentStatus(PaymentStatusRefunded, PaymentStatusPaid))
}

func TestValidateOrderStatusTransitionError(t *testing.T) {
	err := ValidateOrderStatusTransition(OrderStatusDelivered, OrderStatusCancelled)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DELIVERED")
	assert.Contains(t, err.Error(), "CANCELLED")

	assert.NoError(t, ValidateOrderStatusTransition(OrderStatusPacked, OrderStatusOutForDelivery))
}

func TestComputeDiscount(t *testing.T) {
	forty := 40.0
	assert.Equal(t, 13, ComputeDiscount(35, &forty)) // 12.5% rounds up

	hundred := 100.0
	assert.Equal(t, 20, ComputeDiscount(80, &hundred))

	assert.Equal(t, 0, ComputeDiscount(50, nil))

	equal := 50.0
	assert.Equal(t, 0, ComputeDiscount(50, &equal))

	lower := 30.0
	assert.Equal(t, 0, ComputeDiscount(50, &lower))
}
