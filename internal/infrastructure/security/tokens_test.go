package security

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/domain/user"
	"github.com/smartcooking/api/internal/infrastructure/config"
)

func newTestTokenService(t *testing.T, accessTTL time.Duration) *TokenService {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Name: "smartcooking-test"},
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret-key-only-for-unit-tests",
			AccessExpiration:  accessTTL,
			RefreshExpiration: 7 * 24 * time.Hour,
		},
	}
	return NewTokenService(cfg, NewMemoryRevocationStore(), zap.NewNop())
}

func newTestUser(t *testing.T) *user.User {
	t.Helper()
	u, err := user.NewUser("chef@example.com", "Nguyen Van A", "secret123", 0)
	require.NoError(t, err)
	return u
}

func TestIssueAccessToken_Claims(t *testing.T) {
	svc := newTestTokenService(t, 24*time.Hour)
	u := newTestUser(t)

	token, err := svc.IssueAccessToken(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ParseClaims(token)
	require.NoError(t, err)

	assert.Equal(t, u.ID().String(), claims.UserID)
	assert.Equal(t, "chef@example.com", claims.Email)
	assert.Equal(t, "chef@example.com", claims.Subject)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, "Nguyen Van A", claims.DisplayName)
	assert.Equal(t, "LOCAL", claims.Provider)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, "ACCESS", string(claims.TokenType))
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestIssueRefreshToken_Type(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	u := newTestUser(t)

	token, err := svc.IssueRefreshToken(u)
	require.NoError(t, err)

	claims, err := svc.ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, RefreshToken, claims.TokenType)
	assert.Equal(t, "REFRESH", string(claims.TokenType))
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidate_RejectsTamperedToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	u := newTestUser(t)

	token, err := svc.IssueAccessToken(u)
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	assert.False(t, svc.Validate(context.Background(), tampered))

	_, err = svc.ParseClaims(tampered)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestValidate_RejectsWrongSecret(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	other := newTestTokenService(t, time.Hour)
	other.secret = []byte("a-completely-different-secret")

	token, err := other.IssueAccessToken(newTestUser(t))
	require.NoError(t, err)

	assert.False(t, svc.Validate(context.Background(), token))
}

func TestValidate_RejectsMalformedToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	_, err := svc.ParseClaims("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = svc.ParseClaims("")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestValidate_RejectsExpiredToken(t *testing.T) {
	svc := newTestTokenService(t, -time.Minute)
	token, err := svc.IssueAccessToken(newTestUser(t))
	require.NoError(t, err)

	_, err = svc.ParseClaims(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.True(t, svc.IsExpired(token))
}

func TestValidate_RejectsUnsignedAlgorithm(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"email": "chef@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.False(t, svc.Validate(context.Background(), token))
}

func TestRevoke_BlacklistsToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	u := newTestUser(t)
	ctx := context.Background()

	token, err := svc.IssueAccessToken(u)
	require.NoError(t, err)
	require.True(t, svc.Validate(ctx, token))

	require.NoError(t, svc.Revoke(ctx, token))

	assert.False(t, svc.Validate(ctx, token))
	revoked, err := svc.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Parsing stays revocation-blind so callers can still read the
	// claims of a blacklisted token.
	claims, err := svc.ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "chef@example.com", claims.Email)

	// A fresh token for the same user remains valid.
	second, err := svc.IssueAccessToken(u)
	require.NoError(t, err)
	assert.True(t, svc.Validate(ctx, second))
}

func TestExtractEmail_WorksForExpiredToken(t *testing.T) {
	svc := newTestTokenService(t, -time.Minute)
	token, err := svc.IssueAccessToken(newTestUser(t))
	require.NoError(t, err)

	email, err := svc.ExtractEmail(token)
	require.NoError(t, err)
	assert.Equal(t, "chef@example.com", email)
}

func TestMemoryRevocationStore_EntriesExpire(t *testing.T) {
	store := NewMemoryRevocationStore()
	current := time.Now()
	store.now = func() time.Time { return current }
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "token-a", time.Minute))

	revoked, err := store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	current = current.Add(2 * time.Minute)

	revoked, err = store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, 0, store.Len())
}
