package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"biterush/internal/models"
	"biterush/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CreateUserInput is an account created from the back-office.
type CreateUserInput struct {
	Name     string      `json:"name" validate:"required,min=2,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role" validate:"required,enum"`
}

// UpdateUserInput changes an account from the back-office. Nil fields are left as they are.
type UpdateUserInput struct {
	Name     *string      `json:"name" validate:"omitempty,min=2,max=100"`
	Role     *models.Role `json:"role" validate:"omitempty,enum"`
	Password *string      `json:"password" validate:"omitempty,min=6"`
}

// UpdateProfileInput is what a user may change about themselves.
type UpdateProfileInput struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// ChangePasswordInput replaces the caller's password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// UserPage is one page of an admin user listing.
type UserPage struct {
	Users []models.User `json:"users"`
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
	Total int64         `json:"total"`
}

// UserService manages accounts: the caller's own profile and, for admins,
// every user.
type UserService struct {
	users    repositories.UserRepository
	validate *validator.Validate
	logger   *zap.Logger
}

func NewUserService(users repositories.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		users:    users,
		validate: NewValidator(),
		logger:   logger,
	}
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, principal models.Principal) (*models.User, error) {
	if principal.UserID == "" {
		return nil, ErrForbidden
	}
	return s.getUser(ctx, principal.UserID)
}

// UpdateProfile renames the caller's account.
func (s *UserService) UpdateProfile(ctx context.Context, principal models.Principal, input UpdateProfileInput) (*models.User, error) {
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}
	user, err := s.Profile(ctx, principal)
	if err != nil {
		return nil, err
	}
	user.Name = input.Name
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, principal models.Principal, input ChangePasswordInput) error {
	if err := validateStruct(s.validate, input); err != nil {
		return err
	}
	user, err := s.Profile(ctx, principal)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)); err != nil {
		return newValidationError("currentPassword", "is incorrect")
	}

	hashed, err := hashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	return s.save(ctx, user)
}

// List pages through users, newest first. Admin only.
func (s *UserService) List(ctx context.Context, principal models.Principal, filter models.UserFilter, page, limit int) (*UserPage, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, newValidationError("role", fmt.Sprintf("has unsupported value %q", filter.Role))
	}

	if page < 1 {
		page = 1
	}
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	p := repositories.Page{Number: page, Size: limit}

	users, total, err := s.users.List(ctx, filter, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return &UserPage{
		Users: users,
		Page:  p.Number,
		Pages: int(math.Ceil(float64(total) / float64(p.Size))),
		Total: total,
	}, nil
}

// Get returns any account. Admin only.
func (s *UserService) Get(ctx context.Context, principal models.Principal, id string) (*models.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.getUser(ctx, id)
}

// Create adds an account with the given role. Admin only.
func (s *UserService) Create(ctx context.Context, principal models.Principal, input CreateUserInput) (*models.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	user, err := createAccount(ctx, s.users, input.Name, input.Email, input.Password, input.Role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created by admin",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("admin_id", principal.UserID),
	)
	return user, nil
}

// Update changes the name, role or password of an account. Admins cannot
// demote themselves. Admin only.
func (s *UserService) Update(ctx context.Context, principal models.Principal, id string, input UpdateUserInput) (*models.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}
	if id == principal.UserID && input.Role != nil && *input.Role != models.RoleAdmin {
		return nil, ErrSelfModification
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Password != nil {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes an account. Admins cannot delete themselves. Orders placed
// by the user are kept. Admin only.
func (s *UserService) Delete(ctx context.Context, principal models.Principal, id string) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}
	if id == principal.UserID {
		return ErrSelfModification
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	s.logger.Info("user deleted by admin", zap.String("user_id", id), zap.String("admin_id", principal.UserID))
	return nil
}

func (s *UserService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}

func (s *UserService) save(ctx context.Context, user *models.User) error {
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return nil
}
