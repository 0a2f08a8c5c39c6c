package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"biterush/internal/models"
	"biterush/internal/notifications"
	"biterush/internal/repositories"

	"go.uber.org/zap"
)

// Notifier sends a customer message.
type Notifier interface {
	Notify(ctx context.Context, msg notifications.Message) error
}

// UserLookup resolves the customer an event refers to.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Handler consumes order events: it appends an order log entry and mails the
// customer when the order is placed or its status changes.
type Handler struct {
	logs     repositories.OrderLogRepository
	users    UserLookup
	notifier Notifier
	logger   *zap.Logger
}

// NewHandler creates a new Handler. users may be nil, in which case events
// without a customer email are not mailed.
func NewHandler(logs repositories.OrderLogRepository, users UserLookup, notifier Notifier, logger *zap.Logger) *Handler {
	return &Handler{
		logs:     logs,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// Handle processes one message body. Undecodable messages are logged and
// dropped; a failed log write is returned so the broker redelivers it.
// Mail failures never fail the message.
func (h *Handler) Handle(ctx context.Context, body []byte) error {
	var e OrderEvent
	if err := json.Unmarshal(body, &e); err != nil {
		h.logger.Warn("dropping malformed order event", zap.Error(err), zap.ByteString("body", body))
		return nil
	}
	if e.OrderID == "" || e.Type == "" {
		h.logger.Warn("dropping incomplete order event", zap.ByteString("body", body))
		return nil
	}

	entry := &models.OrderLog{
		OrderID:    e.OrderID,
		UserID:     e.UserID,
		ActorID:    e.ActorID,
		ActionType: e.Type,
		Status:     e.Status,
		CreatedAt:  e.OccurredAt,
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := h.logs.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to record %s for order %s: %w", e.Type, e.OrderID, err)
	}

	msg, ok := h.compose(ctx, e)
	if !ok {
		return nil
	}
	if err := h.notifier.Notify(ctx, msg); err != nil {
		h.logger.Error("failed to notify customer", zap.String("order_id", e.OrderID), zap.Error(err))
	}
	return nil
}

func (h *Handler) compose(ctx context.Context, e OrderEvent) (notifications.Message, bool) {
	var subject, html string
	switch e.Type {
	case OrderCreated:
		subject = "Your order has been placed"
		html = fmt.Sprintf(
			"<strong>Thank you for your order!</strong><br><br>Order <strong>%s</strong> has been received.<br>Total: <strong>%.2f</strong><br>Payment: <strong>%s</strong>",
			e.OrderID, e.TotalPrice, paidLabel(e.IsPaid),
		)
	case OrderStatusChanged:
		subject = "Your order status has changed"
		html = fmt.Sprintf(
			"Order <strong>%s</strong> is now <strong>%s</strong>.",
			e.OrderID, e.Status,
		)
	default:
		return notifications.Message{}, false
	}

	to := e.CustomerEmail
	if to == "" && h.users != nil {
		user, err := h.users.GetByID(ctx, e.UserID)
		if err != nil {
			h.logger.Warn("no recipient for order event", zap.String("order_id", e.OrderID), zap.Error(err))
			return notifications.Message{}, false
		}
		to = user.Email
	}
	if to == "" {
		return notifications.Message{}, false
	}
	return notifications.Message{To: to, Subject: subject, HTMLBody: html}, true
}

func paidLabel(paid bool) string {
	if paid {
		return "paid"
	}
	return "due on delivery"
}
