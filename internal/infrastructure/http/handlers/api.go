// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smartcooking/api/internal/domain/recipe"
	"github.com/smartcooking/api/internal/domain/user"
	"github.com/smartcooking/api/internal/infrastructure/http/middleware"
	apperrors "github.com/smartcooking/api/pkg/errors"
)

// validate is shared across handlers; the validator is safe for
// concurrent use.
var validate = validator.New()

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse wraps a paged collection.
type PageResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// writeJSON writes a JSON response
func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeError writes a failure envelope with the given status.
func writeError(logger *zap.Logger, w http.ResponseWriter, status int, message string) {
	writeJSON(logger, w, status, APIResponse{Success: false, Message: message})
}

// writeDomainError maps domain and application errors onto HTTP
// responses.
func writeDomainError(logger *zap.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrWrongPassword),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrInvalidName),
		errors.Is(err, user.ErrInvalidPassword),
		errors.Is(err, recipe.ErrEmptyTitle):
		writeError(logger, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, recipe.ErrRecipeNotFound):
		writeError(logger, w, http.StatusNotFound, err.Error())
	case errors.Is(err, user.ErrEmailTaken):
		writeError(logger, w, http.StatusConflict, err.Error())
	case errors.Is(err, user.ErrUserDisabled):
		writeError(logger, w, http.StatusForbidden, err.Error())
	case errors.Is(err, recipe.ErrNotOwner):
		writeError(logger, w, http.StatusForbidden, err.Error())
	default:
		var app *apperrors.AppError
		if errors.As(err, &app) {
			writeError(logger, w, apperrors.HTTPStatus(app), app.Message)
			return
		}
		logger.Error("Unhandled error", zap.Error(err))
		writeError(logger, w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeAndValidate parses a JSON body into dst and runs struct
// validation. A false return means the error response was already
// written.
func decodeAndValidate(logger *zap.Logger, w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(logger, w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(logger, w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// urlUUID parses a UUID path parameter.
func urlUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// pagination reads page and pageSize query parameters.
func pagination(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

// mustPrincipal returns the authenticated user or writes a 401. The
// authorization middleware normally guarantees presence; this is the
// backstop for handlers mounted outside a policy rule.
func mustPrincipal(logger *zap.Logger, w http.ResponseWriter, r *http.Request) (*middleware.Principal, bool) {
	p, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(logger, w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return p, true
}

// HealthHandler reports process and database liveness.
type HealthHandler struct {
	db      *gorm.DB
	version string
	logger  *zap.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(db *gorm.DB, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, version: version, logger: logger}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	dbStatus := "up"
	code := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(r.Context()) != nil {
		status = "degraded"
		dbStatus = "down"
		code = http.StatusServiceUnavailable
	}

	writeJSON(h.logger, w, code, APIResponse{
		Success: code == http.StatusOK,
		Data: map[string]interface{}{
			"status":    status,
			"database":  dbStatus,
			"version":   h.version,
			"timestamp": time.Now().Unix(),
		},
	})
}
