package impl

import (
	"context"
	"testing"

	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/errors"
	"fireworks/internal/infra/auth"
	"fireworks/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUserService(t *testing.T) (*testStore, usecase.UserUsecase) {
	store := newTestStore(t)

	return store, NewUserService(UserServiceParams{
		TxManager: store.txManager,
		UserRepo:  store.users,
		Hasher:    auth.NewBcryptHasherWithCost(4),
		Logger:    newDiscardLogger(),
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	store, srv := createTestUserService(t)
	ctx := context.Background()
	user := store.seedUser(t, func(u *entity.User) { u.LastName = "Sidorov" })

	firstName := "  Anna "
	phone := "+79991112233"
	updated, err := srv.UpdateProfile(ctx, user.ID, usecase.UpdateProfileInput{FirstName: &firstName, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.FirstName)
	assert.Equal(t, "Sidorov", updated.LastName, "omitted fields stay untouched")
	assert.Equal(t, phone, updated.Phone)

	profile, err := srv.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", profile.FirstName)
}

func TestUserService_EnsureTelegramUser(t *testing.T) {
	_, srv := createTestUserService(t)
	ctx := context.Background()

	created, err := srv.EnsureTelegramUser(ctx, &entity.TelegramProfile{TelegramID: 777, Username: "old", FirstName: "Oleg"})
	require.NoError(t, err)

	again, err := srv.EnsureTelegramUser(ctx, &entity.TelegramProfile{TelegramID: 777, Username: "new", FirstName: "Ignored"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "new", again.Username)
	assert.Equal(t, "Oleg", again.FirstName)

	_, err = srv.EnsureTelegramUser(ctx, &entity.TelegramProfile{})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestUserService_SetVerification(t *testing.T) {
	store, srv := createTestUserService(t)
	ctx := context.Background()
	user := store.seedUser(t, nil)

	yes := true
	updated, err := srv.SetVerification(ctx, user.ID, usecase.SetVerificationInput{AgeVerified: &yes})
	require.NoError(t, err)
	assert.True(t, updated.AgeVerified)
	assert.False(t, updated.IsVerified)

	list, err := srv.ListUsers(ctx, usecase.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
}

func TestUserService_CreateStaff(t *testing.T) {
	store, srv := createTestUserService(t)
	ctx := context.Background()

	staff, err := srv.CreateStaff(ctx, usecase.CreateStaffInput{Email: "Boss@Example.com", Password: "pa55word"})
	require.NoError(t, err)
	assert.True(t, staff.IsAdmin)
	assert.False(t, staff.IsSuperuser)
	require.NotNil(t, staff.Email)
	assert.Equal(t, "boss@example.com", *staff.Email)

	promoted, err := srv.CreateStaff(ctx, usecase.CreateStaffInput{Email: "boss@example.com", Password: "new-pass", Superuser: true})
	require.NoError(t, err)
	assert.Equal(t, staff.ID, promoted.ID)
	assert.True(t, promoted.IsSuperuser)

	stored, err := store.users.FindByEmail(ctx, "boss@example.com")
	require.NoError(t, err)
	assert.True(t, auth.NewBcryptHasherWithCost(4).Check("new-pass", stored.PasswordHash))

	_, err = srv.CreateStaff(ctx, usecase.CreateStaffInput{Email: "", Password: "x"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}
