package service

import (
	"context"
	"testing"

	"perfume-pos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateUser(t *testing.T) {
	users := newMemUsers()
	svc := NewUserService(users, zap.NewNop())
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserRequest{Email: "amina@shop.test", Password: "secret1", FullName: "Amina", Role: model.RoleCashier}, "owner-id")
	require.NoError(t, err)
	assert.True(t, u.IsActive)
	assert.Equal(t, "owner-id", u.CreatedBy)
	assert.True(t, u.CheckPassword("secret1"))

	_, err = svc.CreateUser(ctx, CreateUserRequest{Email: "amina@shop.test", Password: "secret2", FullName: "Other", Role: model.RoleCashier}, "owner-id")
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.ErrorIs(t, err, ErrStateConflict)

	_, err = svc.CreateUser(ctx, CreateUserRequest{Email: "x@shop.test", Password: "123", FullName: "X", Role: model.RoleCashier}, "owner-id")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateUser(ctx, CreateUserRequest{Email: "y@shop.test", Password: "secret1", FullName: "Y", Role: "ADMIN"}, "owner-id")
	assert.ErrorIs(t, err, ErrValidation)

	all, err := svc.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.ElementsMatch(t, model.RolePrivileges[model.RoleCashier], all[0].Privileges)
}

func TestUpdateUser(t *testing.T) {
	users := newMemUsers()
	svc := NewUserService(users, zap.NewNop())
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, CreateUserRequest{Email: "amina@shop.test", Password: "secret1", FullName: "Amina", Role: model.RoleCashier}, "owner-id")
	require.NoError(t, err)

	inactive := false
	newPassword := "changed1"
	got, err := svc.UpdateUser(ctx, u.ID, UpdateUserRequest{FullName: "Amina B", Role: model.RoleCashier, IsActive: &inactive, Password: &newPassword}, "owner-id")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	stored, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amina B", stored.FullName)
	assert.False(t, stored.IsActive)
	assert.True(t, stored.CheckPassword("changed1"))

	_, err = svc.UpdateUser(ctx, u.ID, UpdateUserRequest{FullName: "Amina", Role: model.RoleCashier, IsActive: &inactive}, u.ID.String())
	assert.ErrorIs(t, err, ErrSelfDeactivation)

	_, err = svc.UpdateUser(ctx, uuid.New(), UpdateUserRequest{FullName: "Nobody", Role: model.RoleCashier}, "owner-id")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
