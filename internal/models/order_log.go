package models

import "time"

// OrderLog is one entry of the append-only order activity log.
type OrderLog struct {
	ID         uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID    string      `json:"orderId" gorm:"index;type:varchar(36)"`
	UserID     string      `json:"userId" gorm:"type:varchar(36)"`
	ActorID    string      `json:"actorId" gorm:"type:varchar(36)"`
	ActionType string      `json:"actionType" gorm:"type:varchar(32);not null"`
	Status     OrderStatus `json:"status" gorm:"type:varchar(32)"`
	CreatedAt  time.Time   `json:"createdAt"`
}
