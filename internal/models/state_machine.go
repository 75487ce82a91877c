package models

import "fmt"

// ValidOrderTransitions defines valid state transitions for OrderStatus
// Flow: PLACED → CONFIRMED → PACKED → OUT_FOR_DELIVERY → DELIVERED
// CANCELLED can be reached from any non-terminal state
var ValidOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:         {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusPacked, OrderStatusOutForDelivery, OrderStatusCancelled}, // Can skip PACKED
	OrderStatusPacked:         {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:      {}, // Terminal state
	OrderStatusCancelled:      {}, // Terminal state
}

// ValidPaymentTransitions defines valid state transitions for PaymentStatus
var ValidPaymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:  {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPaid:     {PaymentStatusRefunded},
	PaymentStatusFailed:   {PaymentStatusPending}, // Allow retry
	PaymentStatusRefunded: {},                     // Terminal state
}

// CanTransitionOrderStatus checks if a transition from one order status to another is valid
func CanTransitionOrderStatus(from, to OrderStatus) bool {
	validTransitions, exists := ValidOrderTransitions[from]
	if !exists {
		return false
	}
	for _, validTo := range validTransitions {
		if validTo == to {
			return true
		}
	}
	return false
}

// CanTransitionPaymentStatus checks if a transition from one payment status to another is valid
func CanTransitionPaymentStatus(from, to PaymentStatus) bool {
	validTransitions, exists := ValidPaymentTransitions[from]
	if !exists {
		return false
	}
	for _, validTo := range validTransitions {
		if validTo == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError reports a disallowed lifecycle transition
type InvalidTransitionError struct {
	Kind string
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition from %s to %s", e.Kind, e.From, e.To)
}

// ValidateOrderStatusTransition returns an error if the transition is invalid
func ValidateOrderStatusTransition(from, to OrderStatus) error {
	if !CanTransitionOrderStatus(from, to) {
		return &InvalidTransitionError{Kind: "order status", From: string(from), To: string(to)}
	}
	return nil
}

// ValidatePaymentStatusTransition returns an error if the transition is invalid
func ValidatePaymentStatusTransition(from, to PaymentStatus) error {
	if !CanTransitionPaymentStatus(from, to) {
		return &InvalidTransitionError{Kind: "payment status", From: string(from), To: string(to)}
	}
	return nil
}
