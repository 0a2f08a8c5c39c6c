package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"biterush/internal/events"
	"biterush/internal/models"
	"biterush/internal/pricing"
	"biterush/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// DefaultTopCustomers is the size of the top customers report when no limit is given.
	DefaultTopCustomers = 3
)

// EventPublisher publishes order events after successful writes.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, e events.OrderEvent) error
}

// ShippingAddressInput is the delivery address submitted at checkout.
type ShippingAddressInput struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Area       string `json:"area" validate:"required"`
	Details    string `json:"details"`
}

// CreateOrderInput is the checkout request.
type CreateOrderInput struct {
	OrderItems      []OrderItemInput      `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddressInput  `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod  `json:"paymentMethod" validate:"required,enum"`
	DeliveryMethod  models.DeliveryMethod `json:"deliveryMethod" validate:"required,enum"`
	TipAmount       float64               `json:"tipAmount" validate:"gte=0"`
	VoucherCode     string                `json:"voucherCode" validate:"omitempty,max=64"`
}

// UpdateStatusInput is the admin status change request.
type UpdateStatusInput struct {
	Status models.OrderStatus `json:"status" validate:"required,enum"`
}

// OrderPage is one page of an order listing.
type OrderPage struct {
	Orders      []models.Order `json:"orders"`
	Page        int            `json:"page"`
	Pages       int            `json:"pages"`
	TotalOrders int64          `json:"totalOrders"`
}

// OrderServiceConfig tunes the order workflow.
type OrderServiceConfig struct {
	PageSize int
	// StrictTransitions rejects moving an order out of delivered or cancelled.
	StrictTransitions bool
	// OptimisticLocking makes updates fail with ErrVersionConflict when the
	// order changed between read and write.
	OptimisticLocking bool
	// Clock overrides time.Now.
	Clock func() time.Time
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo  repositories.OrderRepository
	items      *OrderValidator
	vouchers   *VoucherService
	calculator *pricing.Calculator
	publisher  EventPublisher
	validate   *validator.Validate
	logger     *zap.Logger
	cfg        OrderServiceConfig
	now        func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil, in which
// case events are not published.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	vouchers *VoucherService,
	calculator *pricing.Calculator,
	publisher EventPublisher,
	logger *zap.Logger,
	cfg OrderServiceConfig,
) *OrderService {
	if cfg.PageSize <= 0 || cfg.PageSize > MaxPageSize {
		cfg.PageSize = DefaultPageSize
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &OrderService{
		orderRepo:  orderRepo,
		items:      NewOrderValidator(productRepo),
		vouchers:   vouchers,
		calculator: calculator,
		publisher:  publisher,
		validate:   NewValidator(),
		logger:     logger,
		cfg:        cfg,
		now:        now,
	}
}

// CreateOrder validates the cart against the catalog, prices it and stores
// it as a pending order owned by the principal.
func (s *OrderService) CreateOrder(ctx context.Context, principal models.Principal, input CreateOrderInput) (*models.Order, error) {
	if principal.UserID == "" {
		return nil, ErrForbidden
	}
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	items, err := s.items.Validate(ctx, input.OrderItems)
	if err != nil {
		return nil, err
	}

	var discount *decimal.Decimal
	if input.VoucherCode != "" {
		v, err := s.vouchers.Validate(ctx, principal, input.VoucherCode)
		if err != nil {
			return nil, err
		}
		pct := decimal.NewFromFloat(v.DiscountPercent)
		discount = &pct
	}

	lines := make([]pricing.Line, len(items))
	for i, item := range items {
		lines[i] = pricing.Line{UnitPrice: decimal.NewFromFloat(item.Price), Quantity: item.Quantity}
	}
	breakdown, err := s.calculator.Compute(pricing.Input{
		Lines:           lines,
		DeliveryMethod:  input.DeliveryMethod,
		Tip:             decimal.NewFromFloat(input.TipAmount),
		DiscountPercent: discount,
	})
	if err != nil {
		return nil, pricingError(err)
	}

	now := s.now()
	order := &models.Order{
		UserID:     principal.UserID,
		OrderItems: items,
		ShippingAddress: models.ShippingAddress{
			Address:    input.ShippingAddress.Address,
			City:       input.ShippingAddress.City,
			PostalCode: input.ShippingAddress.PostalCode,
			Area:       input.ShippingAddress.Area,
			Details:    input.ShippingAddress.Details,
		},
		PaymentMethod:  input.PaymentMethod,
		DeliveryMethod: input.DeliveryMethod,
		VoucherCode:    input.VoucherCode,
		Status:         models.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	breakdown.Apply(order)
	if input.PaymentMethod.PaidUpfront() {
		order.IsPaid = true
		order.PaidAt = &now
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Float64("total", order.TotalPrice),
	)

	e := events.NewOrderEvent(events.OrderCreated, order, principal, now)
	e.CustomerEmail = principal.Email
	s.publish(ctx, e)

	return order, nil
}

// GetOrder returns an order visible to the principal: its owner or an admin.
func (s *OrderService) GetOrder(ctx context.Context, principal models.Principal, id string) (*models.Order, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.OwnedBy(principal.UserID) && !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListUserOrders returns the principal's own orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, principal models.Principal, page, limit int) (*OrderPage, error) {
	if principal.UserID == "" {
		return nil, ErrForbidden
	}
	p := s.page(page, limit)
	orders, total, err := s.orderRepo.ListByUser(ctx, principal.UserID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", principal.UserID, err)
	}
	return newOrderPage(orders, total, p), nil
}

// ListAllOrders returns every order, newest first. Admin only.
func (s *OrderService) ListAllOrders(ctx context.Context, principal models.Principal, page, limit int) (*OrderPage, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	p := s.page(page, limit)
	orders, total, err := s.orderRepo.List(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return newOrderPage(orders, total, p), nil
}

// TopCustomers ranks customers by the number of orders they placed. Admin only.
func (s *OrderService) TopCustomers(ctx context.Context, principal models.Principal, limit int) ([]models.CustomerOrderCount, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	switch {
	case limit <= 0:
		limit = DefaultTopCustomers
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	rows, err := s.orderRepo.TopCustomers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank customers: %w", err)
	}
	return rows, nil
}

// UpdateStatus sets the order status, keeping the delivery fields in step
// with it. Admin only.
func (s *OrderService) UpdateStatus(ctx context.Context, principal models.Principal, id string, input UpdateStatusInput) (*models.Order, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	update, err := planStatusChange(order, input.Status, now, s.cfg.StrictTransitions)
	if err != nil {
		return nil, err
	}
	updated, err := s.write(ctx, order, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.String("order_id", updated.ID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("actor_id", principal.UserID),
	)
	s.publish(ctx, events.NewOrderEvent(events.OrderStatusChanged, updated, principal, now))
	return updated, nil
}

// MarkPaid records payment for an order. Paying an already paid order
// returns it unchanged. Admin only.
func (s *OrderService) MarkPaid(ctx context.Context, principal models.Principal, id string) (*models.Order, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	update, changed := planMarkPaid(order, now)
	if !changed {
		return order, nil
	}
	updated, err := s.write(ctx, order, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order marked paid", zap.String("order_id", updated.ID), zap.String("actor_id", principal.UserID))
	s.publish(ctx, events.NewOrderEvent(events.OrderPaid, updated, principal, now))
	return updated, nil
}

func (s *OrderService) getOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return order, nil
}

func (s *OrderService) write(ctx context.Context, current *models.Order, update models.OrderUpdate) (*models.Order, error) {
	if s.cfg.OptimisticLocking {
		v := current.Version
		update.ExpectedVersion = &v
	}
	updated, err := s.orderRepo.UpdateFields(ctx, current.ID, update)
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, repositories.ErrNotFound):
		return nil, ErrOrderNotFound
	case errors.Is(err, repositories.ErrVersionConflict):
		return nil, ErrVersionConflict
	default:
		return nil, fmt.Errorf("failed to update order %s: %w", current.ID, err)
	}
}

func (s *OrderService) publish(ctx context.Context, e events.OrderEvent) {
	if s.publisher == nil {
		s.logger.Debug("event publisher not configured, skipping", zap.String("type", e.Type), zap.String("order_id", e.OrderID))
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, e); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("type", e.Type),
			zap.String("order_id", e.OrderID),
			zap.Error(err),
		)
	}
}

func (s *OrderService) page(number, size int) repositories.Page {
	if number < 1 {
		number = 1
	}
	switch {
	case size <= 0:
		size = s.cfg.PageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return repositories.Page{Number: number, Size: size}
}

func newOrderPage(orders []models.Order, total int64, p repositories.Page) *OrderPage {
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderPage{
		Orders:      orders,
		Page:        p.Number,
		Pages:       int(math.Ceil(float64(total) / float64(p.Size))),
		TotalOrders: total,
	}
}

// pricingError maps calculator failures to input validation errors.
func pricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrUnknownDeliveryMethod):
		return newValidationError("deliveryMethod", err.Error())
	case errors.Is(err, pricing.ErrNegativeTip):
		return newValidationError("tipAmount", err.Error())
	case errors.Is(err, pricing.ErrInvalidLine):
		return newValidationError("orderItems", err.Error())
	case errors.Is(err, pricing.ErrInvalidDiscount):
		return newValidationError("voucherCode", err.Error())
	default:
		return fmt.Errorf("failed to price order: %w", err)
	}
}
