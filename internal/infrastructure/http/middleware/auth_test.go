package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/domain/user"
	"github.com/smartcooking/api/internal/infrastructure/config"
	"github.com/smartcooking/api/internal/infrastructure/security"
)

// stubUserRepository satisfies outbound.UserRepository with an
// in-memory map keyed by email.
type stubUserRepository struct {
	byEmail map[string]*user.User
}

func (s *stubUserRepository) Create(ctx context.Context, u *user.User) error {
	s.byEmail[u.Email()] = u
	return nil
}

func (s *stubUserRepository) Update(ctx context.Context, u *user.User) error {
	s.byEmail[u.Email()] = u
	return nil
}

func (s *stubUserRepository) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range s.byEmail {
		if u.ID() == id {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *stubUserRepository) List(ctx context.Context, offset, limit int) ([]*user.User, int64, error) {
	return nil, 0, nil
}

type authFixture struct {
	tokens *security.TokenService
	users  *stubUserRepository
	policy *security.Policy
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Name: "smartcooking-test"},
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret-key-only-for-unit-tests",
			AccessExpiration:  time.Hour,
			RefreshExpiration: 24 * time.Hour,
		},
	}
	return &authFixture{
		tokens: security.NewTokenService(cfg, security.NewMemoryRevocationStore(), zap.NewNop()),
		users:  &stubUserRepository{byEmail: map[string]*user.User{}},
		policy: security.NewPolicy(),
	}
}

func (f *authFixture) addUser(t *testing.T, email string, role user.Role) *user.User {
	t.Helper()
	u, err := user.NewUser(email, "Test User", "secret123", 0)
	require.NoError(t, err)
	if role != user.RoleUser {
		u.PromoteTo(role)
	}
	f.users.byEmail[email] = u
	return u
}

// capture records what the downstream handler saw.
type capture struct {
	called    bool
	principal *Principal
	hasUser   bool
}

func (f *authFixture) serve(t *testing.T, method, path, authHeader string) (*httptest.ResponseRecorder, *capture) {
	t.Helper()
	cap := &capture{}
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cap.called = true
		cap.principal, cap.hasUser = CurrentUser(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := Authenticate(f.tokens, f.users, zap.NewNop())(
		Authorize(f.policy)(final),
	)

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, cap
}

func TestAuthenticate_ValidTokenAttachesPrincipal(t *testing.T) {
	f := newAuthFixture(t)
	u := f.addUser(t, "chef@example.com", user.RoleChef)

	token, err := f.tokens.IssueAccessToken(u)
	require.NoError(t, err)

	rec, cap := f.serve(t, http.MethodPost, "/api/recipes", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, cap.hasUser)
	assert.Equal(t, "chef@example.com", cap.principal.User.Email())
	assert.Equal(t, user.RoleChef, cap.principal.User.Role())
}

func TestAuthenticate_InvalidTokenProceedsAnonymously(t *testing.T) {
	f := newAuthFixture(t)

	// Public route still works with a garbage token.
	rec, cap := f.serve(t, http.MethodGet, "/api/recipes", "Bearer garbage")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, cap.called)
	assert.False(t, cap.hasUser)
}

func TestAuthenticate_MissingHeaderProceedsAnonymously(t *testing.T) {
	f := newAuthFixture(t)

	rec, cap := f.serve(t, http.MethodGet, "/api/recipes", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, cap.hasUser)
}

func TestAuthenticate_MalformedHeaderProceedsAnonymously(t *testing.T) {
	f := newAuthFixture(t)

	rec, cap := f.serve(t, http.MethodGet, "/api/recipes", "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, cap.hasUser)
}

func TestAuthenticate_RevokedTokenProceedsAnonymously(t *testing.T) {
	f := newAuthFixture(t)
	u := f.addUser(t, "user@example.com", user.RoleUser)

	token, err := f.tokens.IssueAccessToken(u)
	require.NoError(t, err)
	require.NoError(t, f.tokens.Revoke(context.Background(), token))

	_, cap := f.serve(t, http.MethodGet, "/api/recipes", "Bearer "+token)
	assert.False(t, cap.hasUser)
}

func TestAuthenticate_DeactivatedUserProceedsAnonymously(t *testing.T) {
	f := newAuthFixture(t)
	u := f.addUser(t, "user@example.com", user.RoleUser)

	token, err := f.tokens.IssueAccessToken(u)
	require.NoError(t, err)

	u.Deactivate()

	_, cap := f.serve(t, http.MethodGet, "/api/recipes", "Bearer "+token)
	assert.False(t, cap.hasUser)
}

func TestAuthenticate_RoleRefetchedFromDatabase(t *testing.T) {
	f := newAuthFixture(t)
	u := f.addUser(t, "user@example.com", user.RoleUser)

	// Token carries USER; promotion afterwards should show through
	// immediately.
	token, err := f.tokens.IssueAccessToken(u)
	require.NoError(t, err)

	u.PromoteTo(user.RoleChef)

	rec, cap := f.serve(t, http.MethodPost, "/api/recipes", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, cap.hasUser)
	assert.Equal(t, user.RoleChef, cap.principal.User.Role())
}

func TestAuthenticate_GarbageTokenOnAuthRouteStillServes(t *testing.T) {
	f := newAuthFixture(t)

	rec, cap := f.serve(t, http.MethodPost, "/api/auth/login", "Bearer total-garbage")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, cap.called)
	assert.False(t, cap.hasUser)
}

func TestAuthenticate_PrincipalAttachedOnAuthRoutes(t *testing.T) {
	f := newAuthFixture(t)
	u := f.addUser(t, "user@example.com", user.RoleUser)

	token, err := f.tokens.IssueAccessToken(u)
	require.NoError(t, err)

	// /api/auth/me is exempt from authorization but the handler still
	// needs to know who is calling.
	rec, cap := f.serve(t, http.MethodGet, "/api/auth/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, cap.hasUser)
	assert.Equal(t, "user@example.com", cap.principal.User.Email())

	rec, cap = f.serve(t, http.MethodGet, "/api/test/echo", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, cap.hasUser)
}

func TestAuthorize_AnonymousOnProtectedRoute(t *testing.T) {
	f := newAuthFixture(t)

	rec, cap := f.serve(t, http.MethodPost, "/api/ai/chat", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, cap.called)
	assert.JSONEq(t, `{"success":false,"message":"Authentication required"}`, rec.Body.String())
}

func TestAuthorize_InsufficientRole(t *testing.T) {
	f := newAuthFixture(t)
	u := f.addUser(t, "user@example.com", user.RoleUser)

	token, err := f.tokens.IssueAccessToken(u)
	require.NoError(t, err)

	rec, cap := f.serve(t, http.MethodPost, "/api/recipes", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, cap.called)
	assert.JSONEq(t, `{"success":false,"message":"Insufficient permissions"}`, rec.Body.String())
}

func TestAuthorize_ExpiredTokenOnProtectedRouteIsUnauthorized(t *testing.T) {
	f := newAuthFixture(t)
	cfg := &config.Config{
		App: config.AppConfig{Name: "smartcooking-test"},
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret-key-only-for-unit-tests",
			AccessExpiration: -time.Minute,
		},
	}
	expiredIssuer := security.NewTokenService(cfg, security.NewMemoryRevocationStore(), zap.NewNop())

	u := f.addUser(t, "user@example.com", user.RoleUser)
	token, err := expiredIssuer.IssueAccessToken(u)
	require.NoError(t, err)

	rec, _ := f.serve(t, http.MethodPost, "/api/ai/chat", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
