// Package events defines the order events exchanged over the message broker
// and the consumer that reacts to them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"biterush/internal/models"
)

// Event types double as routing keys.
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderPaid          = "order.paid"
)

// OrderEvent is the message body published after an order write.
type OrderEvent struct {
	Type          string             `json:"type"`
	OrderID       string             `json:"orderId"`
	UserID        string             `json:"userId"`
	ActorID       string             `json:"actorId"`
	Status        models.OrderStatus `json:"status"`
	IsPaid        bool               `json:"isPaid"`
	TotalPrice    float64            `json:"totalPrice"`
	CustomerEmail string             `json:"customerEmail,omitempty"`
	OccurredAt    time.Time          `json:"occurredAt"`
}

// NewOrderEvent snapshots o as an event of the given type.
func NewOrderEvent(eventType string, o *models.Order, actor models.Principal, at time.Time) OrderEvent {
	return OrderEvent{
		Type:       eventType,
		OrderID:    o.ID,
		UserID:     o.UserID,
		ActorID:    actor.UserID,
		Status:     o.Status,
		IsPaid:     o.IsPaid,
		TotalPrice: o.TotalPrice,
		OccurredAt: at,
	}
}

// Broker is the transport an event is handed to. The broker owns the
// exchange; publishers only choose the routing key.
type Broker interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Publisher encodes order events and sends them through a Broker.
type Publisher struct {
	broker Broker
}

func NewPublisher(broker Broker) *Publisher {
	return &Publisher{broker: broker}
}

// PublishOrderEvent publishes e with its type as the routing key.
func (p *Publisher) PublishOrderEvent(ctx context.Context, e OrderEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", e.Type, err)
	}
	return p.broker.Publish(ctx, e.Type, body)
}
