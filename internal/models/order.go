package models

import "time"

// OrderStatus is the lifecycle stage of an order.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusProcessing     OrderStatus = "processing"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle progress is expected from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "Cash on Delivery"
	PaymentBkash          PaymentMethod = "Bkash"
	PaymentCard           PaymentMethod = "Card or Debit Card"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCashOnDelivery, PaymentBkash, PaymentCard:
		return true
	}
	return false
}

// PaidUpfront reports whether orders using p are considered paid at checkout.
func (p PaymentMethod) PaidUpfront() bool {
	return p != PaymentCashOnDelivery
}

// DeliveryMethod selects the delivery tier and therefore the shipping fee.
type DeliveryMethod string

const (
	DeliverySaver    DeliveryMethod = "Saver"
	DeliveryStandard DeliveryMethod = "Standard"
	DeliveryPriority DeliveryMethod = "Priority"
)

func (d DeliveryMethod) Valid() bool {
	switch d {
	case DeliverySaver, DeliveryStandard, DeliveryPriority:
		return true
	}
	return false
}

// OrderItem is a snapshot of a product taken when the order was placed.
type OrderItem struct {
	Product  string  `json:"product" bson:"product"`
	Name     string  `json:"name" bson:"name"`
	Quantity int     `json:"quantity" bson:"quantity"`
	Image    string  `json:"image" bson:"image"`
	Price    float64 `json:"price" bson:"price"` // Unit price at the time of order
}

// ShippingAddress is where the order is delivered.
type ShippingAddress struct {
	Address    string `json:"address" bson:"address"`
	City       string `json:"city" bson:"city"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	Area       string `json:"area" bson:"area"`
	Details    string `json:"details,omitempty" bson:"details,omitempty"`
}

// Order represents a customer order.
type Order struct {
	ID              string          `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user" bson:"user" gorm:"index;type:varchar(36);not null"`
	OrderItems      []OrderItem     `json:"orderItems" bson:"orderItems" gorm:"serializer:json;type:text;not null"`
	ShippingAddress ShippingAddress `json:"shippingAddress" bson:"shippingAddress" gorm:"serializer:json;type:text;not null"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" bson:"paymentMethod" gorm:"type:varchar(32);not null"`
	DeliveryMethod  DeliveryMethod  `json:"deliveryMethod" bson:"deliveryMethod" gorm:"type:varchar(16);not null"`
	ItemsPrice      float64         `json:"itemsPrice" bson:"itemsPrice"`
	TaxPrice        float64         `json:"taxPrice" bson:"taxPrice"`
	ShippingPrice   float64         `json:"shippingPrice" bson:"shippingPrice"`
	TipAmount       float64         `json:"tipAmount" bson:"tipAmount"`
	DiscountAmount  float64         `json:"discountAmount" bson:"discountAmount"`
	TotalPrice      float64         `json:"totalPrice" bson:"totalPrice"`
	VoucherCode     string          `json:"voucherCode,omitempty" bson:"voucherCode,omitempty" gorm:"type:varchar(64)"`
	IsPaid          bool            `json:"isPaid" bson:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	IsDelivered     bool            `json:"isDelivered" bson:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	Status          OrderStatus     `json:"status" bson:"status" gorm:"type:varchar(32);index;not null"`
	Rider           *string         `json:"rider,omitempty" bson:"rider,omitempty" gorm:"type:varchar(36)"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt" gorm:"index"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
	Version         int             `json:"__v" bson:"__v" gorm:"not null;default:0"`
}

// CustomerOrderCount is one row of the top customers report.
type CustomerOrderCount struct {
	UserID     string  `json:"user" bson:"_id" gorm:"column:user_id"`
	OrderCount int64   `json:"orderCount" bson:"orderCount" gorm:"column:order_count"`
	TotalSpent float64 `json:"totalSpent" bson:"totalSpent" gorm:"column:total_spent"`
}

// OwnedBy reports whether the order was placed by userID.
func (o *Order) OwnedBy(userID string) bool {
	return o.UserID == userID
}

// PaymentState is the isPaid/paidAt pair. The two fields are always written together.
type PaymentState struct {
	IsPaid bool
	PaidAt *time.Time
}

// DeliveryState is the isDelivered/deliveredAt pair. The two fields are always written together.
type DeliveryState struct {
	IsDelivered bool
	DeliveredAt *time.Time
}

// OrderUpdate is a partial update applied atomically to a single order.
// Nil fields are left untouched.
type OrderUpdate struct {
	Status   *OrderStatus
	Payment  *PaymentState
	Delivery *DeliveryState
	// ExpectedVersion, when set, makes the update fail unless the stored
	// document still carries this version.
	ExpectedVersion *int
}

// Empty reports whether the update would change nothing.
func (u OrderUpdate) Empty() bool {
	return u.Status == nil && u.Payment == nil && u.Delivery == nil
}

// Apply writes the update onto o in memory. It does not touch Version or UpdatedAt.
func (u OrderUpdate) Apply(o *Order) {
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.Payment != nil {
		o.IsPaid = u.Payment.IsPaid
		o.PaidAt = u.Payment.PaidAt
	}
	if u.Delivery != nil {
		o.IsDelivered = u.Delivery.IsDelivered
		o.DeliveredAt = u.Delivery.DeliveredAt
	}
}
