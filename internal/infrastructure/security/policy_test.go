package security

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartcooking/api/internal/domain/user"
)

func TestPolicy_Bypass(t *testing.T) {
	p := NewPolicy()

	assert.True(t, p.IsBypassed("/api/auth/login"))
	assert.True(t, p.IsBypassed("/api/test/ping"))
	assert.True(t, p.IsBypassed("/health"))
	assert.True(t, p.IsBypassed("/metrics"))

	assert.False(t, p.IsBypassed("/api/recipes"))
	assert.False(t, p.IsBypassed("/api/ai/chat"))
}

func TestPolicy_Evaluate(t *testing.T) {
	p := NewPolicy()

	tests := []struct {
		name   string
		method string
		path   string
		auth   bool
		role   user.Role
		want   Decision
	}{
		{"public recipe read", http.MethodGet, "/api/recipes", false, "", DecisionAllow},
		{"public recipe detail", http.MethodGet, "/api/recipes/123", false, "", DecisionAllow},
		{"anonymous recipe write", http.MethodPost, "/api/recipes", false, "", DecisionAuthenticate},
		{"user recipe write", http.MethodPost, "/api/recipes", true, user.RoleUser, DecisionForbid},
		{"chef recipe write", http.MethodPost, "/api/recipes", true, user.RoleChef, DecisionAllow},
		{"admin recipe delete", http.MethodDelete, "/api/recipes/123", true, user.RoleAdmin, DecisionAllow},

		{"public category read", http.MethodGet, "/api/categories", false, "", DecisionAllow},
		{"chef category write", http.MethodPost, "/api/categories", true, user.RoleChef, DecisionForbid},
		{"admin category write", http.MethodPost, "/api/categories", true, user.RoleAdmin, DecisionAllow},

		{"user admin area", http.MethodGet, "/api/users", true, user.RoleUser, DecisionForbid},
		{"admin user list", http.MethodGet, "/api/users", true, user.RoleAdmin, DecisionAllow},

		{"anonymous learning read", http.MethodGet, "/api/learning/paths", false, "", DecisionAuthenticate},
		{"user learning read", http.MethodGet, "/api/learning/paths", true, user.RoleUser, DecisionAllow},
		{"user learning write", http.MethodPost, "/api/learning/paths", true, user.RoleUser, DecisionForbid},
		{"chef learning write", http.MethodPost, "/api/learning/paths", true, user.RoleChef, DecisionAllow},
		{"chef learning delete", http.MethodDelete, "/api/learning/paths/1", true, user.RoleChef, DecisionForbid},
		{"admin learning delete", http.MethodDelete, "/api/learning/paths/1", true, user.RoleAdmin, DecisionAllow},

		{"user enrolls in path", http.MethodPost, "/api/learning/paths/1/enroll", true, user.RoleUser, DecisionAllow},
		{"user completes dish", http.MethodPost, "/api/learning/paths/1/complete", true, user.RoleUser, DecisionAllow},
		{"anonymous enroll", http.MethodPost, "/api/learning/paths/1/enroll", false, "", DecisionAuthenticate},

		{"user saves generated recipe", http.MethodPost, "/api/recipes/save-generated", true, user.RoleUser, DecisionAllow},

		{"anonymous ai", http.MethodPost, "/api/ai/chat", false, "", DecisionAuthenticate},
		{"user ai", http.MethodPost, "/api/ai/chat", true, user.RoleUser, DecisionAllow},

		{"anonymous meal plan", http.MethodGet, "/api/meal-plans", false, "", DecisionAuthenticate},
		{"user shopping list", http.MethodPost, "/api/shopping-lists", true, user.RoleUser, DecisionAllow},

		{"anonymous unlisted route needs session", http.MethodGet, "/api/unknown", false, "", DecisionAuthenticate},
		{"authenticated unlisted route", http.MethodGet, "/api/unknown", true, user.RoleUser, DecisionAllow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Evaluate(tt.method, tt.path, tt.auth, tt.role)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicy_FirstMatchWins(t *testing.T) {
	p := &Policy{
		rules: []Rule{
			{Methods: []string{http.MethodGet}, PathPrefix: "/api/things", Roles: nil},
			{Methods: nil, PathPrefix: "/api/things", Roles: adminOnly},
		},
	}

	assert.Equal(t, DecisionAllow, p.Evaluate(http.MethodGet, "/api/things/1", false, ""))
	assert.Equal(t, DecisionForbid, p.Evaluate(http.MethodPut, "/api/things/1", true, user.RoleUser))
}
