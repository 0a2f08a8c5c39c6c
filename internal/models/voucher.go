package models

import (
	"slices"
	"time"
)

// Voucher is a percentage discount code, optionally restricted to a set of emails.
type Voucher struct {
	ID             string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Code           string    `json:"code" gorm:"uniqueIndex;type:varchar(64);not null"`
	Description    string    `json:"description" gorm:"not null"`
	DiscountAmount float64   `json:"discountAmount"` // Percentage of itemsPrice
	IsSpecial      bool      `json:"isSpecial"`
	AllowedEmails  []string  `json:"allowedEmails" gorm:"serializer:json;type:text"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Allows reports whether email may redeem the voucher.
func (v *Voucher) Allows(email string) bool {
	if !v.IsSpecial {
		return true
	}
	return slices.Contains(v.AllowedEmails, email)
}
