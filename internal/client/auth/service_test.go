package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpClient "github.com/iudanet/deltasync/internal/client/api"
	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/client/storage/boltdb"
	"github.com/iudanet/deltasync/internal/crypto"
	"github.com/iudanet/deltasync/pkg/api"
)

func newTestService(t *testing.T, apiMock *httpClient.ClientAPIMock) (*Service, storage.AuthStorage) {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "auth_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(apiMock, store, logger), store
}

func TestRegister(t *testing.T) {
	apiMock := &httpClient.ClientAPIMock{
		RegisterFunc: func(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
			return &api.RegisterResponse{UserID: "user-123", Message: "ok"}, nil
		},
	}
	svc, _ := newTestService(t, apiMock)

	res, err := svc.Register(context.Background(), "alice", "correct-horse-battery")
	require.NoError(t, err)

	assert.Equal(t, "user-123", res.UserID)
	assert.Equal(t, "alice", res.Username)
	assert.NotEmpty(t, res.PublicSalt)

	// Серверу ушел хеш производного ключа, не пароль
	calls := apiMock.RegisterCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "alice", calls[0].Req.Username)
	assert.NotContains(t, calls[0].Req.AuthKeyHash, "correct-horse")
	assert.Len(t, calls[0].Req.AuthKeyHash, 64) // sha256 hex

	// Хеш воспроизводим из пароля и соли
	authKey, err := crypto.DeriveAuthKeyFromBase64Salt("correct-horse-battery", "alice", res.PublicSalt)
	require.NoError(t, err)
	wantHash, err := crypto.HashAuthKey(authKey)
	require.NoError(t, err)
	assert.Equal(t, wantHash, calls[0].Req.AuthKeyHash)
}

func TestRegisterValidation(t *testing.T) {
	apiMock := &httpClient.ClientAPIMock{}
	svc, _ := newTestService(t, apiMock)

	_, err := svc.Register(context.Background(), "a!", "correct-horse-battery")
	assert.Error(t, err)

	_, err = svc.Register(context.Background(), "alice", "short")
	assert.Error(t, err)

	// До API дело не дошло
	assert.Empty(t, apiMock.RegisterCalls())
}

func TestLoginSavesSession(t *testing.T) {
	salt, err := crypto.GenerateSaltBase64()
	require.NoError(t, err)

	apiMock := &httpClient.ClientAPIMock{
		GetSaltFunc: func(ctx context.Context, username string) (*api.SaltResponse, error) {
			return &api.SaltResponse{PublicSalt: salt}, nil
		},
		LoginFunc: func(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
			return &api.TokenResponse{
				AccessToken:  "access-1",
				RefreshToken: "refresh-1",
				ExpiresIn:    3600,
				UserID:       "user-123",
			}, nil
		},
	}
	svc, store := newTestService(t, apiMock)

	auth, err := svc.Login(context.Background(), "alice", "correct-horse-battery")
	require.NoError(t, err)

	assert.Equal(t, "alice", auth.Username)
	assert.Equal(t, "user-123", auth.UserID)
	assert.NotEmpty(t, auth.NodeID)
	assert.Equal(t, salt, auth.PublicSalt)
	assert.Greater(t, auth.ExpiresAt, time.Now().Unix())

	saved, err := store.GetAuth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, auth.AccessToken, saved.AccessToken)
	assert.Equal(t, auth.NodeID, saved.NodeID)

	ok, err := svc.IsAuthenticated(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginKeepsNodeID(t *testing.T) {
	salt, err := crypto.GenerateSaltBase64()
	require.NoError(t, err)

	apiMock := &httpClient.ClientAPIMock{
		GetSaltFunc: func(ctx context.Context, username string) (*api.SaltResponse, error) {
			return &api.SaltResponse{PublicSalt: salt}, nil
		},
		LoginFunc: func(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
			return &api.TokenResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 3600}, nil
		},
	}
	svc, _ := newTestService(t, apiMock)

	first, err := svc.Login(context.Background(), "alice", "correct-horse-battery")
	require.NoError(t, err)

	// Повторный login на том же устройстве сохраняет node id
	second, err := svc.Login(context.Background(), "alice", "correct-horse-battery")
	require.NoError(t, err)
	assert.Equal(t, first.NodeID, second.NodeID)
}

func TestLoginAPIError(t *testing.T) {
	salt, err := crypto.GenerateSaltBase64()
	require.NoError(t, err)

	apiMock := &httpClient.ClientAPIMock{
		GetSaltFunc: func(ctx context.Context, username string) (*api.SaltResponse, error) {
			return &api.SaltResponse{PublicSalt: salt}, nil
		},
		LoginFunc: func(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
			return nil, errors.New("invalid credentials")
		},
	}
	svc, store := newTestService(t, apiMock)

	_, err = svc.Login(context.Background(), "alice", "correct-horse-battery")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")

	_, err = store.GetAuth(context.Background())
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)
}

func TestRefreshRotatesTokens(t *testing.T) {
	apiMock := &httpClient.ClientAPIMock{
		RefreshFunc: func(ctx context.Context, req api.RefreshRequest) (*api.TokenResponse, error) {
			assert.Equal(t, "refresh-old", req.RefreshToken)
			return &api.TokenResponse{
				AccessToken:  "access-new",
				RefreshToken: "refresh-new",
				ExpiresIn:    3600,
			}, nil
		},
	}
	svc, store := newTestService(t, apiMock)

	require.NoError(t, store.SaveAuth(context.Background(), &storage.AuthData{
		Username:     "alice",
		UserID:       "user-123",
		NodeID:       "node-1",
		AccessToken:  "access-old",
		RefreshToken: "refresh-old",
		ExpiresAt:    time.Now().Unix() - 10,
	}))

	auth, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-new", auth.AccessToken)
	assert.Equal(t, "refresh-new", auth.RefreshToken)
	assert.Equal(t, "user-123", auth.UserID)

	saved, err := store.GetAuth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-new", saved.AccessToken)
	assert.Equal(t, "node-1", saved.NodeID)
}

func TestRefreshNoSession(t *testing.T) {
	svc, _ := newTestService(t, &httpClient.ClientAPIMock{})

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLogout(t *testing.T) {
	svc, store := newTestService(t, &httpClient.ClientAPIMock{})

	require.NoError(t, store.SaveAuth(context.Background(), &storage.AuthData{
		Username:    "alice",
		AccessToken: "access-1",
		ExpiresAt:   time.Now().Unix() + 3600,
	}))

	require.NoError(t, svc.Logout(context.Background()))

	ok, err := svc.IsAuthenticated(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
