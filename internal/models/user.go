package models

import "time"

// Role controls access to the admin back-office.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a customer or staff account.
type User struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(100)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	Role      Role      `json:"role" gorm:"type:varchar(16);not null;default:user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserFilter narrows an admin user listing. Search matches name or email,
// ignoring case.
type UserFilter struct {
	Search string
	Role   Role
}

// Principal is the authenticated account acting on a request.
type Principal struct {
	UserID string
	Role   Role
	Email  string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
