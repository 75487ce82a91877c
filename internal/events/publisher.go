// Package events publishes storefront domain events to NATS JetStream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

const (
	SubjectOrderCreated        = "order.created"
	SubjectOrderStatusChanged  = "order.status_changed"
	SubjectInventoryUploaded   = "inventory.uploaded"
	SubjectInventoryRolledBack = "inventory.rolled_back"
)

// Publisher wraps a JetStream connection. A nil Publisher is valid and drops
// every event, so deployments without NATS run unchanged.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the streams exist. Returns nil
// without error when natsURL is empty.
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	if natsURL == "" {
		return nil, nil
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("storefront-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("Reconnected to NATS")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.WithError(err).Warn("Disconnected from NATS")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &Publisher{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "events"),
	}
	if err := p.ensureStreams(); err != nil {
		p.logger.WithError(err).Warn("Failed to ensure event streams exist")
	}
	return p, nil
}

func (p *Publisher) ensureStreams() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "ORDERS",
		Subjects:  []string{"order.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   jetstream.FileStorage,
	}); err != nil {
		return err
	}

	_, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "INVENTORY",
		Subjects:  []string{"inventory.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   jetstream.FileStorage,
	})
	return err
}

// publish marshals and publishes one event. Failures are logged, never
// surfaced: events are best-effort and must not fail the triggering request.
func (p *Publisher) publish(ctx context.Context, subject string, payload interface{}) {
	if p == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.WithError(err).WithField("subject", subject).Error("Failed to marshal event")
		return
	}
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Error("Failed to publish event")
		return
	}
	p.logger.WithField("subject", subject).Debug("Published event")
}

// OrderCreatedEvent is emitted after a successful checkout
type OrderCreatedEvent struct {
	OrderID       string    `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	Total         float64   `json:"total"`
	ItemCount     int       `json:"itemCount"`
	PaymentMethod string    `json:"paymentMethod"`
	Timestamp     time.Time `json:"timestamp"`
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) {
	event.Timestamp = time.Now()
	p.publish(ctx, SubjectOrderCreated, event)
}

// OrderStatusChangedEvent is emitted on every lifecycle transition
type OrderStatusChangedEvent struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Timestamp   time.Time `json:"timestamp"`
}

func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, event OrderStatusChangedEvent) {
	event.Timestamp = time.Now()
	p.publish(ctx, SubjectOrderStatusChanged, event)
}

// InventoryUploadedEvent is emitted after an inventory upload is applied
type InventoryUploadedEvent struct {
	Filename   string    `json:"filename"`
	Updated    int       `json:"updated"`
	Created    int       `json:"created"`
	ErrorCount int       `json:"errorCount"`
	SnapshotID string    `json:"snapshotId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func (p *Publisher) PublishInventoryUploaded(ctx context.Context, event InventoryUploadedEvent) {
	event.Timestamp = time.Now()
	p.publish(ctx, SubjectInventoryUploaded, event)
}

// InventoryRolledBackEvent is emitted after a snapshot rollback
type InventoryRolledBackEvent struct {
	SnapshotID string    `json:"snapshotId"`
	Restored   int       `json:"restored"`
	Created    int       `json:"created"`
	Timestamp  time.Time `json:"timestamp"`
}

func (p *Publisher) PublishInventoryRolledBack(ctx context.Context, event InventoryRolledBackEvent) {
	event.Timestamp = time.Now()
	p.publish(ctx, SubjectInventoryRolledBack, event)
}

// Close drains the NATS connection
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	p.nc.Close()
}
