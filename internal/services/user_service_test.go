package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/database/testutil"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/models"
	apperrors "github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/errors"
)

func newUserService(t *testing.T, db *gorm.DB) *UserService {
	t.Helper()
	svc, err := NewUserService(db)
	require.NoError(t, err)
	return svc
}

func TestRegisterAndAuthenticate(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newUserService(t, db)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name:     "Asha",
		Email:    "Asha@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", user.Email)
	require.Equal(t, models.AccountTypeFarmer, user.AccountType)
	require.NotEqual(t, "correct-horse", user.Password)

	authed, err := svc.Authenticate(ctx, "asha@example.com", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, user.ID, authed.ID)
	require.NotNil(t, authed.LastLoginAt)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newUserService(t, db)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "short",
	})
	require.Error(t, err)
}

func TestRegisterRejectsUnknownAccountType(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newUserService(t, db)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "correct-horse",
		AccountType: "wholesaler",
	})
	require.Error(t, err)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "correct-horse",
		AccountType: models.AccountTypeAgroBusiness,
	})
	require.NoError(t, err)
	require.Equal(t, models.AccountTypeAgroBusiness, user.AccountType)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newUserService(t, db)
	ctx := context.Background()

	input := RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "correct-horse"}
	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	_, err = svc.Register(ctx, input)
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newUserService(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "asha@example.com", "wrong-horse")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct-horse")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newUserService(t, db)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err = svc.Authenticate(ctx, "asha@example.com", "correct-horse")
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUserGet(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newUserService(t, db)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)

	_, err = svc.Get(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
