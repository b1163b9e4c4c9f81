package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartcooking/api/internal/application/auth"
	"github.com/smartcooking/api/internal/domain/user"
	"github.com/smartcooking/api/internal/infrastructure/config"
	"github.com/smartcooking/api/internal/infrastructure/monitoring"
	"github.com/smartcooking/api/internal/infrastructure/security"
)

// Shared collector; registering prometheus metrics twice panics.
var testMetrics = monitoring.NewMetricsCollector()

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*user.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email() == u.Email() {
			return user.ErrEmailTaken
		}
	}
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email() == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int) ([]*user.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	return all, int64(len(all)), nil
}

func newAuthHandlers(t *testing.T) (*AuthHandlers, *fakeUserRepo) {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Name = "smart-cooking-test"
	cfg.Auth.JWTSecret = "handler-test-secret"
	cfg.Auth.AccessExpiration = 24 * time.Hour
	cfg.Auth.RefreshExpiration = 168 * time.Hour
	cfg.Auth.BCryptCost = bcrypt.MinCost

	repo := newFakeUserRepo()
	tokens := security.NewTokenService(cfg, security.NewMemoryRevocationStore(), zap.NewNop())
	service := auth.NewService(cfg, repo, tokens, testMetrics, zap.NewNop())
	return NewAuthHandlers(service, zap.NewNop()), repo
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegister_ReturnsSession(t *testing.T) {
	h, _ := newAuthHandlers(t)

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email":    "mai@example.com",
		"fullName": "Mai Nguyen",
		"password": "secret123",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.EqualValues(t, 86400, resp.ExpiresIn)
	require.NotNil(t, resp.User)
	assert.Equal(t, "mai@example.com", resp.User.Email)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	h, _ := newAuthHandlers(t)

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email":    "mai@example.com",
		"fullName": "Mai Nguyen",
		"password": "abc",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_WrongPassword_Returns400WithMessage(t *testing.T) {
	h, _ := newAuthHandlers(t)
	postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email":    "mai@example.com",
		"fullName": "Mai Nguyen",
		"password": "secret123",
	})

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email":    "mai@example.com",
		"password": "wrong-password",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid password", resp.Message)
}

func TestLogin_UnknownEmail_Returns404(t *testing.T) {
	h, _ := newAuthHandlers(t)

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefresh_InvalidToken_Returns401(t *testing.T) {
	h, _ := newAuthHandlers(t)

	rec := postJSON(t, h.Refresh, "/api/auth/refresh", map[string]string{
		"refreshToken": "not-a-token",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_RotatesSession(t *testing.T) {
	h, _ := newAuthHandlers(t)
	reg := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email":    "mai@example.com",
		"fullName": "Mai Nguyen",
		"password": "secret123",
	})
	var session AuthResponse
	require.NoError(t, json.Unmarshal(reg.Body.Bytes(), &session))

	rec := postJSON(t, h.Refresh, "/api/auth/refresh", map[string]string{
		"refreshToken": session.RefreshToken,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.True(t, refreshed.Success)
	assert.NotEmpty(t, refreshed.AccessToken)

	// The old refresh token was revoked on rotation.
	replay := postJSON(t, h.Refresh, "/api/auth/refresh", map[string]string{
		"refreshToken": session.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
}

func TestVerify_ValidToken(t *testing.T) {
	h, _ := newAuthHandlers(t)
	reg := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email":    "mai@example.com",
		"fullName": "Mai Nguyen",
		"password": "secret123",
	})
	var session AuthResponse
	require.NoError(t, json.Unmarshal(reg.Body.Bytes(), &session))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Valid bool `json:"valid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Valid)
}

func TestVerify_MissingToken_Still200(t *testing.T) {
	h, _ := newAuthHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Valid bool `json:"valid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Valid)
}

func TestLogout_RevokesAccessToken(t *testing.T) {
	h, _ := newAuthHandlers(t)
	reg := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email":    "mai@example.com",
		"fullName": "Mai Nguyen",
		"password": "secret123",
	})
	var session AuthResponse
	require.NoError(t, json.Unmarshal(reg.Body.Bytes(), &session))

	logout := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	logout.Header.Set("Authorization", "Bearer "+session.AccessToken)
	rec := httptest.NewRecorder()
	h.Logout(rec, logout)
	require.Equal(t, http.StatusOK, rec.Code)

	verify := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	verify.Header.Set("Authorization", "Bearer "+session.AccessToken)
	rec = httptest.NewRecorder()
	h.Verify(rec, verify)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Valid bool `json:"valid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Valid, "revoked token should no longer verify")
}
