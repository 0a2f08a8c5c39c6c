package services

import (
	"fmt"
	"time"

	"biterush/internal/models"
)

// planStatusChange builds the update that moves o to target. Delivery fields
// follow the status: entering delivered stamps deliveredAt once, and leaving
// delivered clears both fields.
func planStatusChange(o *models.Order, target models.OrderStatus, now time.Time, strict bool) (models.OrderUpdate, error) {
	if !target.Valid() {
		return models.OrderUpdate{}, newValidationError("status", fmt.Sprintf("has unsupported value %q", target))
	}
	if strict && o.Status.Terminal() && target != o.Status {
		return models.OrderUpdate{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
	}

	update := models.OrderUpdate{Status: &target}
	switch {
	case target == models.StatusDelivered && !o.IsDelivered:
		update.Delivery = &models.DeliveryState{IsDelivered: true, DeliveredAt: &now}
	case target != models.StatusDelivered && o.IsDelivered:
		update.Delivery = &models.DeliveryState{}
	}
	return update, nil
}

// planMarkPaid builds the update that marks o as paid. The second result is
// false when o is already paid and nothing needs to be written.
func planMarkPaid(o *models.Order, now time.Time) (models.OrderUpdate, bool) {
	if o.IsPaid {
		return models.OrderUpdate{}, false
	}
	return models.OrderUpdate{
		Payment: &models.PaymentState{IsPaid: true, PaidAt: &now},
	}, true
}
