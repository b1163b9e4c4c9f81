package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/application/auth"
)

// AuthHandlers exposes the authentication endpoints.
type AuthHandlers struct {
	auth   *auth.Service
	logger *zap.Logger
}

// NewAuthHandlers creates authentication handlers.
func NewAuthHandlers(authService *auth.Service, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{auth: authService, logger: logger.Named("auth-api")}
}

// AuthResponse is the session envelope returned by login, register,
// Google login and refresh.
type AuthResponse struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	AccessToken  string        `json:"accessToken,omitempty"`
	RefreshToken string        `json:"refreshToken,omitempty"`
	User         *auth.UserDTO `json:"user,omitempty"`
	ExpiresIn    int64         `json:"expiresIn,omitempty"`
}

func (h *AuthHandlers) writeSession(w http.ResponseWriter, message string, session *auth.Session) {
	writeJSON(h.logger, w, http.StatusOK, AuthResponse{
		Success:      true,
		Message:      message,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		User:         &session.User,
		ExpiresIn:    session.ExpiresIn,
	})
}

// Register handles POST /api/auth/register
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var cmd auth.RegisterCommand
	if !decodeAndValidate(h.logger, w, r, &cmd) {
		return
	}

	session, err := h.auth.Register(r.Context(), cmd)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	h.writeSession(w, "Registration successful", session)
}

// Login handles POST /api/auth/login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var cmd auth.LoginCommand
	if !decodeAndValidate(h.logger, w, r, &cmd) {
		return
	}

	session, err := h.auth.Login(r.Context(), cmd)
	if err != nil {
		h.logger.Debug("Login failed", zap.String("email", cmd.Email), zap.Error(err))
		writeDomainError(h.logger, w, err)
		return
	}
	h.writeSession(w, "Login successful", session)
}

// GoogleLogin handles POST /api/auth/google-login
func (h *AuthHandlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var cmd auth.GoogleLoginCommand
	if !decodeAndValidate(h.logger, w, r, &cmd) {
		return
	}

	session, err := h.auth.GoogleLogin(r.Context(), cmd)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	h.writeSession(w, "Login successful", session)
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	if !decodeAndValidate(h.logger, w, r, &body) {
		return
	}

	session, err := h.auth.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		writeError(h.logger, w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	h.writeSession(w, "Token refreshed", session)
}

// Logout handles POST /api/auth/logout. The access token to revoke is
// taken from the Authorization header.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(h.logger, w, http.StatusBadRequest, "Missing bearer token")
		return
	}

	if err := h.auth.Logout(r.Context(), token); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Logged out"})
}

// Verify handles GET /api/auth/verify. It always answers 200 and
// reports whether the bearer token is currently valid, so clients can
// poll it without treating a stale session as a request failure.
func (h *AuthHandlers) Verify(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(h.logger, w, http.StatusOK, APIResponse{
			Success: true,
			Data:    map[string]interface{}{"valid": false},
		})
		return
	}

	dto, err := h.auth.Verify(r.Context(), token)
	if err != nil {
		writeJSON(h.logger, w, http.StatusOK, APIResponse{
			Success: true,
			Data:    map[string]interface{}{"valid": false},
		})
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"valid": true, "user": dto},
	})
}

// Me handles GET /api/auth/me for the authenticated user.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	dto, err := h.auth.GetProfile(r.Context(), principal.User.ID())
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Data: dto})
}

// UpdatePreferences handles PUT /api/auth/me/preferences.
func (h *AuthHandlers) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	var body struct {
		DietaryRestrictions []string `json:"dietaryRestrictions"`
		FavoriteCuisines    []string `json:"favoriteCuisines"`
		SpiceTolerance      string   `json:"spiceTolerance"`
	}
	if !decodeAndValidate(h.logger, w, r, &body) {
		return
	}

	dto, err := h.auth.UpdatePreferences(r.Context(), principal.User.ID(),
		body.DietaryRestrictions, body.FavoriteCuisines, body.SpiceTolerance)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Preferences updated", Data: dto})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
