package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/application/auth"
	"github.com/smartcooking/api/internal/domain/user"
)

// UserHandlers exposes administrative account management. The route
// policy restricts every endpoint here to administrators.
type UserHandlers struct {
	auth   *auth.Service
	logger *zap.Logger
}

// NewUserHandlers creates admin user handlers.
func NewUserHandlers(authService *auth.Service, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{auth: authService, logger: logger.Named("user-api")}
}

// List handles GET /api/users
func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	page, size := pagination(r)

	users, total, err := h.auth.ListUsers(r.Context(), (page-1)*size, size)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{
		Success: true,
		Data:    PageResponse{Items: users, Total: total, Page: page, PageSize: size},
	})
}

// Get handles GET /api/users/{id}
func (h *UserHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid user id")
		return
	}

	dto, err := h.auth.GetProfile(r.Context(), id)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Data: dto})
}

// SetRole handles PUT /api/users/{id}/role
func (h *UserHandlers) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var body struct {
		Role string `json:"role" validate:"required"`
	}
	if !decodeAndValidate(h.logger, w, r, &body) {
		return
	}

	dto, err := h.auth.SetRole(r.Context(), id, body.Role)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			writeDomainError(h.logger, w, err)
			return
		}
		writeError(h.logger, w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Info("User role changed",
		zap.String("user_id", id.String()), zap.String("role", body.Role))
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Role updated", Data: dto})
}

// Deactivate handles DELETE /api/users/{id}. Accounts are disabled
// rather than removed so their recipes keep a valid author.
func (h *UserHandlers) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.auth.DeactivateUser(r.Context(), id); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "User deactivated"})
}
