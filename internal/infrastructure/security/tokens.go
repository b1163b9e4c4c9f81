// Package security provides token issuing, validation and
// authorization policy for the API.
package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/domain/user"
	"github.com/smartcooking/api/internal/infrastructure/config"
)

// TokenType represents different types of JWT tokens
type TokenType string

// The uppercase values are part of the wire contract: existing
// clients decode the tokenType claim and compare against these.
const (
	AccessToken  TokenType = "ACCESS"
	RefreshToken TokenType = "REFRESH"
)

// Token validation errors.
var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenMalformed   = errors.New("token is malformed")
	ErrTokenSignature   = errors.New("token signature is invalid")
	ErrTokenUnsupported = errors.New("token algorithm is not supported")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrInvalidToken     = errors.New("token is invalid")
	ErrWrongTokenType   = errors.New("unexpected token type")
)

// Claims represents JWT claims structure. The claim names match the
// wire contract expected by existing clients.
type Claims struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	DisplayName string    `json:"name"`
	Provider    string    `json:"provider"`
	TokenType   TokenType `json:"tokenType"`
	jwt.RegisteredClaims
}

// RevocationStore tracks revoked tokens until they would have
// expired on their own.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// TokenService issues and validates HMAC-signed JWTs.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	revoked    RevocationStore
	logger     *zap.Logger
}

// NewTokenService creates a token service from configuration.
func NewTokenService(cfg *config.Config, revoked RevocationStore, logger *zap.Logger) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.Auth.JWTSecret),
		accessTTL:  cfg.Auth.AccessExpiration,
		refreshTTL: cfg.Auth.RefreshExpiration,
		issuer:     cfg.App.Name,
		revoked:    revoked,
		logger:     logger,
	}
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *TokenService) AccessTokenTTL() time.Duration {
	return s.accessTTL
}

// IssueAccessToken creates a signed access token for the user.
func (s *TokenService) IssueAccessToken(u *user.User) (string, error) {
	return s.issue(u, AccessToken, s.accessTTL)
}

// IssueRefreshToken creates a signed refresh token for the user.
func (s *TokenService) IssueRefreshToken(u *user.User) (string, error) {
	return s.issue(u, RefreshToken, s.refreshTTL)
}

func (s *TokenService) issue(u *user.User, tokenType TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      u.ID().String(),
		Email:       u.Email(),
		Role:        string(u.Role()),
		DisplayName: u.FullName(),
		Provider:    string(u.Provider()),
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   u.Email(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseClaims parses and verifies a token, returning its claims. It
// does not consult the revocation store; callers that must honor
// revocation call Validate or IsRevoked alongside.
func (s *TokenService) ParseClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenUnsupported
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}
	return claims, nil
}

// IsRevoked reports whether the token is on the revocation blacklist.
func (s *TokenService) IsRevoked(ctx context.Context, tokenString string) (bool, error) {
	return s.revoked.IsRevoked(ctx, tokenString)
}

// Validate reports whether the token is well formed, correctly
// signed, unexpired and not revoked.
func (s *TokenService) Validate(ctx context.Context, tokenString string) bool {
	if _, err := s.ParseClaims(tokenString); err != nil {
		return false
	}
	revoked, err := s.revoked.IsRevoked(ctx, tokenString)
	return err == nil && !revoked
}

// IsExpired reports whether the token is past its expiry. A token
// that cannot be parsed at all is treated as expired.
func (s *TokenService) IsExpired(tokenString string) bool {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenUnsupported
		}
		return s.secret, nil
	})
	if err != nil {
		return true
	}
	return false
}

// ExtractEmail returns the subject email without requiring the token
// to be unexpired. Used when refreshing sessions.
func (s *TokenService) ExtractEmail(tokenString string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenUnsupported
		}
		return s.secret, nil
	})
	if err != nil && !errors.Is(err, jwt.ErrTokenExpired) {
		return "", classifyParseError(err)
	}
	if claims.Email == "" {
		return claims.Subject, nil
	}
	return claims.Email, nil
}

// Revoke blacklists a token for the remainder of its lifetime so it
// can no longer be used. Tokens that fail to parse are blacklisted
// for the full access lifetime as a precaution.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	ttl := s.accessTTL
	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err == nil && claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}

	if err := s.revoked.Revoke(ctx, tokenString, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Debug("token revoked", zap.Duration("ttl", ttl))
	return nil
}

// classifyParseError maps jwt library errors onto our sentinel errors.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenUnverifiable), errors.Is(err, ErrTokenUnsupported):
		return ErrTokenUnsupported
	default:
		return ErrInvalidToken
	}
}
