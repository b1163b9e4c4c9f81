package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartcooking/api/internal/domain/user"
	"github.com/smartcooking/api/internal/infrastructure/config"
	"github.com/smartcooking/api/internal/infrastructure/monitoring"
	"github.com/smartcooking/api/internal/infrastructure/security"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]*user.User{}}
}

func (r *memoryUserRepo) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email()]; ok {
		return user.ErrEmailTaken
	}
	r.users[u.Email()] = u
	return nil
}

func (r *memoryUserRepo) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.Email()] = u
	return nil
}

func (r *memoryUserRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *memoryUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID() == id {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *memoryUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[email]
	return ok, nil
}

func (r *memoryUserRepo) List(ctx context.Context, offset, limit int) ([]*user.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	return all, int64(len(all)), nil
}

var testMetrics = monitoring.NewMetricsCollector()

func newTestService(t *testing.T) (*Service, *memoryUserRepo) {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Name: "smartcooking-test"},
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret-key-only-for-unit-tests",
			AccessExpiration:  24 * time.Hour,
			RefreshExpiration: 7 * 24 * time.Hour,
			BCryptCost:        bcrypt.MinCost,
		},
	}
	repo := newMemoryUserRepo()
	tokens := security.NewTokenService(cfg, security.NewMemoryRevocationStore(), zap.NewNop())
	return NewService(cfg, repo, tokens, testMetrics, zap.NewNop()), repo
}

func TestRegister_OpensSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterCommand{
		Email:    "new@example.com",
		FullName: "Người Mới",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", session.User.Email)
	assert.Equal(t, "USER", session.User.Role)
	assert.Equal(t, "LOCAL", session.User.Provider)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, int64(86400), session.ExpiresIn)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cmd := RegisterCommand{Email: "dup@example.com", FullName: "Một", Password: "secret123"}
	_, err := svc.Register(ctx, cmd)
	require.NoError(t, err)

	_, err = svc.Register(ctx, cmd)
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterCommand{
		Email: "a@example.com", FullName: "Anna Tran", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginCommand{Email: "a@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, user.ErrWrongPassword)
	assert.EqualError(t, err, "Invalid password")
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Login(context.Background(), LoginCommand{Email: "ghost@example.com", Password: "x"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterCommand{
		Email: "a@example.com", FullName: "Anna Tran", Password: "secret123",
	})
	require.NoError(t, err)

	u, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	u.Deactivate()

	_, err = svc.Login(ctx, LoginCommand{Email: "a@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, user.ErrUserDisabled)
}

func TestLogin_RecordsLastLogin(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterCommand{
		Email: "a@example.com", FullName: "Anna Tran", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginCommand{Email: "a@example.com", Password: "secret123"})
	require.NoError(t, err)

	u, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, u.LastLoginAt())
	assert.WithinDuration(t, time.Now(), *u.LastLoginAt(), time.Minute)
}

func TestGoogleLogin_CreatesAndLinksAccount(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	session, err := svc.GoogleLogin(ctx, GoogleLoginCommand{
		Email:      "g@example.com",
		FullName:   "Google User",
		AvatarURL:  "https://example.com/a.png",
		ProviderID: "google-sub-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "GOOGLE", session.User.Provider)
	assert.True(t, session.User.EmailVerified)

	// A second login reuses the same account.
	again, err := svc.GoogleLogin(ctx, GoogleLoginCommand{
		Email:      "g@example.com",
		FullName:   "Google User",
		ProviderID: "google-sub-1",
	})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, again.User.ID)

	// Existing local account gets linked instead of duplicated.
	_, err = svc.Register(ctx, RegisterCommand{
		Email: "local@example.com", FullName: "Local", Password: "secret123",
	})
	require.NoError(t, err)

	linked, err := svc.GoogleLogin(ctx, GoogleLoginCommand{
		Email:      "local@example.com",
		FullName:   "Local",
		ProviderID: "google-sub-2",
	})
	require.NoError(t, err)

	u, err := repo.FindByEmail(ctx, "local@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID(), linked.User.ID)
	assert.Equal(t, "google-sub-2", u.ProviderID())
}

func TestRefresh_RotatesTokens(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterCommand{
		Email: "a@example.com", FullName: "Anna Tran", Password: "secret123",
	})
	require.NoError(t, err)

	renewed, err := svc.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renewed.AccessToken)
	assert.Equal(t, session.User.ID, renewed.User.ID)

	// The spent refresh token cannot be replayed.
	_, err = svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, security.ErrTokenRevoked)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterCommand{
		Email: "a@example.com", FullName: "Anna Tran", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, session.AccessToken)
	assert.ErrorIs(t, err, security.ErrWrongTokenType)
}

func TestLogout_RevokesAccessToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterCommand{
		Email: "a@example.com", FullName: "Anna Tran", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, session.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.AccessToken))

	_, err = svc.Verify(ctx, session.AccessToken)
	assert.ErrorIs(t, err, security.ErrTokenRevoked)
}

func TestSetRole_Promotion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterCommand{
		Email: "a@example.com", FullName: "Anna Tran", Password: "secret123",
	})
	require.NoError(t, err)

	dto, err := svc.SetRole(ctx, session.User.ID, "CHEF")
	require.NoError(t, err)
	assert.Equal(t, "CHEF", dto.Role)

	_, err = svc.SetRole(ctx, session.User.ID, "SUPERHERO")
	assert.Error(t, err)
}

func TestRegister_HashesWithConfiguredCost(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterCommand{
		Email: "a@example.com", FullName: "Anna Tran", Password: "secret123",
	})
	require.NoError(t, err)

	u, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(u.PasswordHash()))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}
