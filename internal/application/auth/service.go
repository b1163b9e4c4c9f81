// Package auth provides the application layer for authentication
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/domain/user"
	"github.com/smartcooking/api/internal/infrastructure/config"
	"github.com/smartcooking/api/internal/infrastructure/monitoring"
	"github.com/smartcooking/api/internal/infrastructure/security"
	"github.com/smartcooking/api/internal/ports/outbound"
)

// Service implements authentication use cases
type Service struct {
	users      outbound.UserRepository
	tokens     *security.TokenService
	metrics    *monitoring.MetricsCollector
	bcryptCost int
	logger     *zap.Logger
}

// NewService creates a new authentication service
func NewService(
	cfg *config.Config,
	users outbound.UserRepository,
	tokens *security.TokenService,
	metrics *monitoring.MetricsCollector,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		metrics:    metrics,
		bcryptCost: cfg.Auth.BCryptCost,
		logger:     logger.Named("auth-service"),
	}
}

// RegisterCommand contains user registration data
type RegisterCommand struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginCommand contains user login data
type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginCommand contains a verified Google profile. Token
// verification against Google happens upstream of this service.
type GoogleLoginCommand struct {
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"name" validate:"required"`
	AvatarURL  string `json:"picture"`
	ProviderID string `json:"sub" validate:"required"`
}

// UserDTO represents user data returned to clients
type UserDTO struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	FullName           string    `json:"fullName"`
	AvatarURL          string    `json:"avatarUrl,omitempty"`
	Role               string    `json:"role"`
	Provider           string    `json:"provider"`
	LanguagePreference string    `json:"languagePreference"`
	EmailVerified      bool      `json:"emailVerified"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Session contains the tokens issued after authentication
type Session struct {
	User         UserDTO
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Register creates a new user account and opens a session
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*Session, error) {
	taken, err := s.users.ExistsByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, user.ErrEmailTaken
	}

	newUser, err := user.NewUser(cmd.Email, cmd.FullName, cmd.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, newUser); err != nil {
		return nil, err
	}

	s.metrics.RecordUserRegistered()
	s.logger.Info("User registered",
		zap.String("user_id", newUser.ID().String()),
		zap.String("email", newUser.Email()),
	)

	return s.openSession(newUser)
}

// Login authenticates a user with email and password
func (s *Service) Login(ctx context.Context, cmd LoginCommand) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, cmd.Email)
	if err != nil {
		s.metrics.RecordLogin(false)
		return nil, err
	}

	if err := u.VerifyPassword(cmd.Password); err != nil {
		s.metrics.RecordLogin(false)
		s.logger.Warn("Invalid password attempt", zap.String("email", cmd.Email))
		return nil, err
	}

	if !u.IsActive() {
		s.metrics.RecordLogin(false)
		return nil, user.ErrUserDisabled
	}

	u.RecordLogin()
	if err := s.users.Update(ctx, u); err != nil {
		s.logger.Error("Failed to update last login", zap.Error(err))
	}

	s.metrics.RecordLogin(true)
	s.logger.Info("User logged in",
		zap.String("user_id", u.ID().String()),
		zap.String("email", u.Email()),
	)

	return s.openSession(u)
}

// GoogleLogin signs a user in with a verified Google profile,
// creating or linking the account as needed.
func (s *Service) GoogleLogin(ctx context.Context, cmd GoogleLoginCommand) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, cmd.Email)
	switch {
	case err == nil:
		if !u.IsActive() {
			return nil, user.ErrUserDisabled
		}
		if u.LinkGoogle(cmd.FullName, cmd.AvatarURL, cmd.ProviderID) {
			if err := s.users.Update(ctx, u); err != nil {
				return nil, fmt.Errorf("failed to link google account: %w", err)
			}
		}
	case errors.Is(err, user.ErrUserNotFound):
		u, err = user.NewGoogleUser(cmd.Email, cmd.FullName, cmd.AvatarURL, cmd.ProviderID)
		if err != nil {
			return nil, err
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, err
		}
		s.metrics.RecordUserRegistered()
	default:
		return nil, err
	}

	u.RecordLogin()
	if err := s.users.Update(ctx, u); err != nil {
		s.logger.Error("Failed to update last login", zap.Error(err))
	}

	s.metrics.RecordLogin(true)
	return s.openSession(u)
}

// Refresh exchanges a valid refresh token for a fresh session. The
// old refresh token is revoked so it cannot be replayed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.tokens.ParseClaims(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != security.RefreshToken {
		return nil, security.ErrWrongTokenType
	}
	revoked, err := s.tokens.IsRevoked(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, security.ErrTokenRevoked
	}

	u, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if !u.IsActive() {
		return nil, user.ErrUserDisabled
	}

	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		s.logger.Error("Failed to revoke refresh token", zap.Error(err))
	} else {
		s.metrics.RecordTokenRevoked()
	}

	return s.openSession(u)
}

// Logout revokes the presented access token.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	if err := s.tokens.Revoke(ctx, accessToken); err != nil {
		return err
	}
	s.metrics.RecordTokenRevoked()
	return nil
}

// Verify reports whether the token grants a live session and returns
// the associated user.
func (s *Service) Verify(ctx context.Context, token string) (*UserDTO, error) {
	claims, err := s.tokens.ParseClaims(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.tokens.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, security.ErrTokenRevoked
	}

	u, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if !u.IsActive() {
		return nil, user.ErrUserDisabled
	}

	dto := toDTO(u)
	return &dto, nil
}

// GetProfile returns the profile of the given user.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(u)
	return &dto, nil
}

// UpdatePreferences stores cooking preferences for the user.
func (s *Service) UpdatePreferences(ctx context.Context, id uuid.UUID, restrictions []string, cuisines []string, spice string) (*UserDTO, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dietary := make([]user.DietaryRestriction, 0, len(restrictions))
	for _, r := range restrictions {
		dietary = append(dietary, user.DietaryRestriction(r))
	}
	u.UpdatePreferences(dietary, cuisines, user.SpiceLevel(spice))

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	dto := toDTO(u)
	return &dto, nil
}

// ListUsers returns a page of accounts, for administrators.
func (s *Service) ListUsers(ctx context.Context, offset, limit int) ([]UserDTO, int64, error) {
	users, total, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toDTO(u))
	}
	return dtos, total, nil
}

// SetRole changes a user's role, for administrators.
func (s *Service) SetRole(ctx context.Context, id uuid.UUID, role string) (*UserDTO, error) {
	parsed := user.Role(role)
	switch parsed {
	case user.RoleUser, user.RoleChef, user.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.PromoteTo(parsed)

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("User role changed",
		zap.String("user_id", id.String()),
		zap.String("role", role),
	)
	dto := toDTO(u)
	return &dto, nil
}

// DeactivateUser disables an account, for administrators.
func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	u.Deactivate()
	return s.users.Update(ctx, u)
}

// AccessTokenTTLSeconds exposes the access token lifetime for
// response payloads.
func (s *Service) AccessTokenTTLSeconds() int64 {
	return int64(s.tokens.AccessTokenTTL().Seconds())
}

func (s *Service) openSession(u *user.User) (*Session, error) {
	accessToken, err := s.tokens.IssueAccessToken(u)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := s.tokens.IssueRefreshToken(u)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &Session{
		User:         toDTO(u),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.AccessTokenTTLSeconds(),
	}, nil
}

func toDTO(u *user.User) UserDTO {
	return UserDTO{
		ID:                 u.ID(),
		Email:              u.Email(),
		FullName:           u.FullName(),
		AvatarURL:          u.AvatarURL(),
		Role:               string(u.Role()),
		Provider:           string(u.Provider()),
		LanguagePreference: u.LanguagePreference(),
		EmailVerified:      u.EmailVerified(),
		CreatedAt:          u.CreatedAt(),
	}
}
