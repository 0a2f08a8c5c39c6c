package repositories

import (
	"context"

	"biterush/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// List returns one page of the users matching filter, newest first.
	List(ctx context.Context, filter models.UserFilter, page Page) ([]models.User, int64, error)
	// Update writes the user's name, role and password hash.
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}
