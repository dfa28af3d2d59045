package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/deltasync/internal/server/jwt"
	"github.com/iudanet/deltasync/internal/server/storage/sqlite"
	"github.com/iudanet/deltasync/pkg/api"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()

	s, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func newAuthHandler(t *testing.T) (*AuthHandler, *sqlite.Storage) {
	t.Helper()

	s := setupTestStorage(t)
	jwtService := jwt.NewService("test-secret", 15*time.Minute, 24*time.Hour)
	return NewAuthHandler(discardLogger(), s, s, jwtService), s
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func registerTestUser(t *testing.T, h *AuthHandler, username string) string {
	t.Helper()

	rec := doJSON(t, h.Register, http.MethodPost, "/api/v1/auth/register", api.RegisterRequest{
		Username:    username,
		AuthKeyHash: "a1b2c3",
		PublicSalt:  "c2FsdA==",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp api.RegisterResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.UserID
}

func TestRegister(t *testing.T) {
	h, _ := newAuthHandler(t)

	userID := registerTestUser(t, h, "alice")
	assert.NotEmpty(t, userID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	h, _ := newAuthHandler(t)

	registerTestUser(t, h, "alice")
	rec := doJSON(t, h.Register, http.MethodPost, "/api/v1/auth/register", api.RegisterRequest{
		Username:    "alice",
		AuthKeyHash: "other",
		PublicSalt:  "c2FsdA==",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	h, _ := newAuthHandler(t)

	tests := []struct {
		name string
		req  api.RegisterRequest
	}{
		{"short username", api.RegisterRequest{Username: "ab", AuthKeyHash: "h", PublicSalt: "s"}},
		{"bad characters", api.RegisterRequest{Username: "has spaces!", AuthKeyHash: "h", PublicSalt: "s"}},
		{"missing hash", api.RegisterRequest{Username: "alice", PublicSalt: "s"}},
		{"missing salt", api.RegisterRequest{Username: "alice", AuthKeyHash: "h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h.Register, http.MethodPost, "/api/v1/auth/register", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetSalt(t *testing.T) {
	h, _ := newAuthHandler(t)
	registerTestUser(t, h, "alice")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/salt/alice", nil)
	req.SetPathValue("username", "alice")
	rec := httptest.NewRecorder()
	h.GetSalt(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.SaltResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "c2FsdA==", resp.PublicSalt)
}

func TestGetSaltUnknownUser(t *testing.T) {
	h, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/salt/ghost", nil)
	req.SetPathValue("username", "ghost")
	rec := httptest.NewRecorder()
	h.GetSalt(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogin(t *testing.T) {
	h, s := newAuthHandler(t)
	userID := registerTestUser(t, h, "alice")

	rec := doJSON(t, h.Login, http.MethodPost, "/api/v1/auth/login", api.LoginRequest{
		Username:    "alice",
		AuthKeyHash: "a1b2c3",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, userID, resp.UserID)
	assert.Positive(t, resp.ExpiresIn)

	// refresh-токен должен быть сохранен на сервере
	stored, err := s.GetRefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, stored.UserID)

	// логин фиксирует время последнего входа
	user, err := s.GetUserByID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)
}

func TestLoginWrongAuthKey(t *testing.T) {
	h, _ := newAuthHandler(t)
	registerTestUser(t, h, "alice")

	rec := doJSON(t, h.Login, http.MethodPost, "/api/v1/auth/login", api.LoginRequest{
		Username:    "alice",
		AuthKeyHash: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := doJSON(t, h.Login, http.MethodPost, "/api/v1/auth/login", api.LoginRequest{
		Username:    "ghost",
		AuthKeyHash: "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh(t *testing.T) {
	h, s := newAuthHandler(t)
	registerTestUser(t, h, "alice")

	login := doJSON(t, h.Login, http.MethodPost, "/api/v1/auth/login", api.LoginRequest{
		Username:    "alice",
		AuthKeyHash: "a1b2c3",
	})
	require.Equal(t, http.StatusOK, login.Code)
	var tokens api.TokenResponse
	require.NoError(t, json.NewDecoder(login.Body).Decode(&tokens))

	rec := doJSON(t, h.Refresh, http.MethodPost, "/api/v1/auth/refresh", api.RefreshRequest{
		RefreshToken: tokens.RefreshToken,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed api.TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)

	// старый refresh-токен отозван
	_, err := s.GetRefreshToken(context.Background(), tokens.RefreshToken)
	assert.Error(t, err)

	// повторное использование старого токена отклоняется
	replay := doJSON(t, h.Refresh, http.MethodPost, "/api/v1/auth/refresh", api.RefreshRequest{
		RefreshToken: tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
}

func TestRefreshUnknownToken(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := doJSON(t, h.Refresh, http.MethodPost, "/api/v1/auth/refresh", api.RefreshRequest{
		RefreshToken: "no-such-token",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshMissingToken(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := doJSON(t, h.Refresh, http.MethodPost, "/api/v1/auth/refresh", api.RefreshRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterInvalidBody(t *testing.T) {
	h, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, http.StatusText(http.StatusBadRequest), resp.Error)
	assert.NotEmpty(t, resp.Message)
}
