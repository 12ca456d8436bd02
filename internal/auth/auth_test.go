package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/auth"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/tests/testutil"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := auth.NewService(s, bcrypt.MinCost)
	ctx := context.Background()

	u, err := svc.Register(ctx, model.NewUser{Handle: "admin", Role: model.RoleAdmin}, "admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", u.CredentialHash)

	got, err := svc.Authenticate(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "admin", "wrong-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "admin123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestShortSecretRejected(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := auth.NewService(s, bcrypt.MinCost)

	_, err := svc.Register(context.Background(), model.NewUser{Handle: "x"}, "123")
	var ve *store.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)
}

func TestUserWithoutSecretCannotLogIn(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := auth.NewService(s, bcrypt.MinCost)
	ctx := context.Background()

	u := testutil.MustUser(t, s, "operator")
	_, err := svc.Authenticate(ctx, "operator", "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, svc.SetSecret(ctx, u.ID, "s3cret!"))
	_, err = svc.Authenticate(ctx, "operator", "s3cret!")
	assert.NoError(t, err)
}
