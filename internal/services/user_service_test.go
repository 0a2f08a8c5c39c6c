package services_test

import (
	"context"
	"errors"
	"testing"

	"biterush/internal/models"
	"biterush/internal/repositories"
	"biterush/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(repo *MockUserRepository) *services.UserService {
	return services.NewUserService(repo, zap.NewNop())
}

func TestUserService_Profile(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1", Name: "Jane"}, nil).Once()
	user, err := svc.Profile(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, "Jane", user.Name)

	_, err = svc.Profile(ctx, models.Principal{})
	assert.ErrorIs(t, err, services.ErrForbidden)

	repo.On("GetByID", ctx, "ghost").Return(nil, notFound("ghost")).Once()
	_, err = svc.Profile(ctx, models.Principal{UserID: "ghost"})
	assert.ErrorIs(t, err, services.ErrUserNotFound)
	repo.AssertExpectations(t)
}

func TestUserService_UpdateProfile(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1", Name: "Jane", Role: models.RoleUser}, nil).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == "user-1" && u.Name == "Jane Doe" && u.Role == models.RoleUser
	})).Return(nil).Once()

	user, err := svc.UpdateProfile(ctx, customer, services.UpdateProfileInput{Name: "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.Name)

	_, err = svc.UpdateProfile(ctx, customer, services.UpdateProfileInput{Name: ""})
	assert.ErrorIs(t, err, services.ErrValidation)
	repo.AssertExpectations(t)
}

func TestUserService_ChangePassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := func() *models.User {
		return &models.User{ID: "user-1", Password: string(hashed), Role: models.RoleUser}
	}

	repo.On("GetByID", ctx, "user-1").Return(stored(), nil).Once()
	err = svc.ChangePassword(ctx, customer, services.ChangePasswordInput{CurrentPassword: "nope", NewPassword: "new-password"})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "currentPassword")
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

	repo.On("GetByID", ctx, "user-1").Return(stored(), nil).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool {
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("new-password")) == nil
	})).Return(nil).Once()
	require.NoError(t, svc.ChangePassword(ctx, customer, services.ChangePasswordInput{CurrentPassword: "old-password", NewPassword: "new-password"}))

	err = svc.ChangePassword(ctx, customer, services.ChangePasswordInput{CurrentPassword: "old-password", NewPassword: "123"})
	assert.ErrorIs(t, err, services.ErrValidation)
	repo.AssertExpectations(t)
}

func TestUserService_List(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	filter := models.UserFilter{Search: "jane", Role: models.RoleUser}
	repo.On("List", ctx, filter, repositories.Page{Number: 1, Size: services.DefaultPageSize}).
		Return([]models.User{{ID: "user-1"}}, int64(11), nil).Once()

	page, err := svc.List(ctx, admin, filter, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, int64(11), page.Total)
	assert.Len(t, page.Users, 1)

	repo.On("List", ctx, models.UserFilter{}, repositories.Page{Number: 3, Size: services.MaxPageSize}).
		Return(nil, int64(0), nil).Once()
	page, err = svc.List(ctx, admin, models.UserFilter{}, 3, 1000)
	require.NoError(t, err)
	assert.NotNil(t, page.Users)
	assert.Zero(t, page.Pages)

	_, err = svc.List(ctx, customer, filter, 1, 10)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = svc.List(ctx, admin, models.UserFilter{Role: "rider"}, 1, 10)
	assert.ErrorIs(t, err, services.ErrValidation)
	repo.AssertExpectations(t)
}

func TestUserService_Create(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "chef@example.com").Return(nil, notFound("chef")).Once()
	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := svc.Create(ctx, admin, services.CreateUserInput{
		Name: "Head Chef", Email: " Chef@Example.com", Password: "password123", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "chef@example.com", user.Email)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = svc.Create(ctx, admin, services.CreateUserInput{
		Name: "Rider", Email: "rider@example.com", Password: "password123", Role: "rider",
	})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "role")

	_, err = svc.Create(ctx, customer, services.CreateUserInput{})
	assert.ErrorIs(t, err, services.ErrForbidden)
	repo.AssertExpectations(t)
}

func TestUserService_Update(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	role := models.RoleAdmin
	name := "Samuel"
	repo.On("GetByID", ctx, "user-2").Return(&models.User{ID: "user-2", Name: "Sam", Role: models.RoleUser, Password: "hash"}, nil).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Name == "Samuel" && u.Role == models.RoleAdmin && u.Password == "hash"
	})).Return(nil).Once()

	user, err := svc.Update(ctx, admin, "user-2", services.UpdateUserInput{Name: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	demote := models.RoleUser
	_, err = svc.Update(ctx, admin, admin.UserID, services.UpdateUserInput{Role: &demote})
	assert.ErrorIs(t, err, services.ErrSelfModification)

	bad := models.Role("rider")
	_, err = svc.Update(ctx, admin, "user-2", services.UpdateUserInput{Role: &bad})
	assert.ErrorIs(t, err, services.ErrValidation)

	repo.On("GetByID", ctx, "ghost").Return(nil, notFound("ghost")).Once()
	_, err = svc.Update(ctx, admin, "ghost", services.UpdateUserInput{Name: &name})
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	_, err = svc.Update(ctx, customer, "user-2", services.UpdateUserInput{Name: &name})
	assert.ErrorIs(t, err, services.ErrForbidden)
	repo.AssertExpectations(t)
}

func TestUserService_Delete(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newUserService(repo)
	ctx := context.Background()

	repo.On("Delete", ctx, "user-2").Return(nil).Once()
	require.NoError(t, svc.Delete(ctx, admin, "user-2"))

	repo.On("Delete", ctx, "ghost").Return(notFound("ghost")).Once()
	assert.ErrorIs(t, svc.Delete(ctx, admin, "ghost"), services.ErrUserNotFound)

	repo.On("Delete", ctx, "user-3").Return(errors.New("database is locked")).Once()
	err := svc.Delete(ctx, admin, "user-3")
	assert.ErrorContains(t, err, "database is locked")

	assert.ErrorIs(t, svc.Delete(ctx, admin, admin.UserID), services.ErrSelfModification)
	assert.ErrorIs(t, svc.Delete(ctx, customer, "user-2"), services.ErrForbidden)
	repo.AssertExpectations(t)
}
