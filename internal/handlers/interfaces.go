package handlers

import (
	"context"

	"storefront-service/internal/events"
)

// EventPublisher is the slice of the event publisher the handlers use.
// A nil *events.Publisher satisfies it and drops every event, so deployments
// without NATS run unchanged.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event events.OrderCreatedEvent)
	PublishOrderStatusChanged(ctx context.Context, event events.OrderStatusChangedEvent)
	PublishInventoryUploaded(ctx context.Context, event events.InventoryUploadedEvent)
	PublishInventoryRolledBack(ctx context.Context, event events.InventoryRolledBackEvent)
}
