package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/storyverse/internal/domain/auth"
	"github.com/rpggio/storyverse/internal/persist"
	"github.com/rpggio/storyverse/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthService_LoginSynthesizesUser(t *testing.T) {
	svc := auth.NewService(nil, nil, nil)
	require.False(t, svc.IsAuthenticated())

	user, err := svc.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "ada", user.Username)
	require.True(t, svc.IsAuthenticated())

	current, ok := svc.CurrentUser()
	require.True(t, ok)
	require.Equal(t, user, current)
}

func TestAuthService_InvalidCredentials(t *testing.T) {
	svc := auth.NewService(nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Login(ctx, "not-an-email", "secret")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "a@b.c", "")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Signup(ctx, auth.SignupRequest{Email: "a@b.c", Password: "x"})
	require.ErrorIs(t, err, auth.ErrInvalidInput)
}

func TestAuthService_SessionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	adapter := persist.New(persist.NewMemoryBackend(), nil)

	svc := auth.NewService(nil, adapter, nil)
	user, err := svc.Signup(ctx, auth.SignupRequest{
		Email: "kai@example.com", Password: "pw", Username: "kai", IsCreator: true,
	})
	require.NoError(t, err)
	require.Equal(t, "kai", user.DisplayName)

	bio := "worldbuilder"
	_, err = svc.UpdateProfile(ctx, auth.Patch{Bio: &bio})
	require.NoError(t, err)

	restored := auth.NewService(nil, adapter, nil)
	got, ok := restored.CurrentUser()
	require.True(t, ok)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, "worldbuilder", got.Bio)
	require.True(t, got.IsCreator)

	require.NoError(t, restored.Logout(ctx))
	require.False(t, auth.NewService(nil, adapter, nil).IsAuthenticated())
}

func TestAuthService_UpdateProfileRequiresLogin(t *testing.T) {
	svc := auth.NewService(nil, nil, nil)
	_, err := svc.UpdateProfile(context.Background(), auth.Patch{})
	require.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestAuthService_GatewayFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	gw := &mocks.Gateway{}
	gw.On("Call", mock.Anything, "auth.login").Return(nil)
	gw.On("Call", mock.Anything, "auth.logout").Return(errors.New("offline"))

	svc := auth.NewService(gw, nil, nil)
	_, err := svc.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)

	require.ErrorContains(t, svc.Logout(ctx), "offline")
	require.True(t, svc.IsAuthenticated())
	require.False(t, svc.IsLoading())
}
