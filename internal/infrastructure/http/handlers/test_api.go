package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/infrastructure/http/middleware"
)

// TestHandlers serves the unauthenticated smoke endpoints under
// /api/test used by deployment checks.
type TestHandlers struct {
	logger *zap.Logger
}

// NewTestHandlers creates smoke test handlers.
func NewTestHandlers(logger *zap.Logger) *TestHandlers {
	return &TestHandlers{logger: logger}
}

// Ping handles GET /api/test/ping
func (h *TestHandlers) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.logger, w, http.StatusOK, APIResponse{
		Success: true,
		Message: "pong",
		Data:    map[string]interface{}{"timestamp": time.Now().Unix()},
	})
}

// Echo handles GET /api/test/echo. It reports whether the caller was
// recognized, which makes the optional authentication path easy to
// probe from a shell.
func (h *TestHandlers) Echo(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{"authenticated": false}
	if principal, ok := middleware.CurrentUser(r.Context()); ok {
		data["authenticated"] = true
		data["email"] = principal.User.Email()
		data["role"] = string(principal.User.Role())
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Data: data})
}
