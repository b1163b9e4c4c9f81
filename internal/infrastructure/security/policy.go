package security

import (
	"net/http"
	"strings"

	"github.com/smartcooking/api/internal/domain/user"
)

// Role sets used by the policy table.
var (
	anyAuthenticated = []user.Role{user.RoleUser, user.RoleChef, user.RoleAdmin}
	chefAndAdmin     = []user.Role{user.RoleChef, user.RoleAdmin}
	adminOnly        = []user.Role{user.RoleAdmin}
)

// Rule matches a request by method, path prefix and optional path
// suffix. Methods empty means any method. Roles empty means the route
// is public. The first matching rule wins.
type Rule struct {
	Methods    []string
	PathPrefix string
	PathSuffix string
	Roles      []user.Role
}

// Decision is the outcome of evaluating the policy for a request.
type Decision int

const (
	// DecisionAllow grants access.
	DecisionAllow Decision = iota
	// DecisionAuthenticate means the route needs a logged-in user.
	DecisionAuthenticate
	// DecisionForbid means the user's role is insufficient.
	DecisionForbid
)

// Policy evaluates an ordered rule table against requests.
type Policy struct {
	bypass []string
	rules  []Rule
}

// DefaultBypassPrefixes are paths exempt from route authorization.
// Token resolution still runs there so handlers can identify callers.
var DefaultBypassPrefixes = []string{
	"/api/auth/",
	"/api/test/",
	"/health",
	"/metrics",
}

// NewPolicy builds the route authorization table. Rules are ordered
// from most to least specific.
func NewPolicy() *Policy {
	return &Policy{
		bypass: DefaultBypassPrefixes,
		rules: []Rule{
			// Recipe catalog is readable by anyone, writable by chefs.
			// Saving an AI-generated recipe is open to every member.
			{Methods: []string{http.MethodPost}, PathPrefix: "/api/recipes/save-generated", Roles: anyAuthenticated},
			{Methods: []string{http.MethodGet}, PathPrefix: "/api/recipes", Roles: nil},
			{Methods: nil, PathPrefix: "/api/recipes", Roles: chefAndAdmin},

			// Category reads are public, management is admin only.
			{Methods: []string{http.MethodGet}, PathPrefix: "/api/categories", Roles: nil},
			{Methods: nil, PathPrefix: "/api/categories", Roles: adminOnly},

			// User administration.
			{Methods: nil, PathPrefix: "/api/users", Roles: adminOnly},

			// Learning paths: browse, enroll and track progress for
			// members, author for chefs, remove for admins.
			{Methods: []string{http.MethodPost}, PathPrefix: "/api/learning/paths/", PathSuffix: "/enroll", Roles: anyAuthenticated},
			{Methods: []string{http.MethodPost}, PathPrefix: "/api/learning/paths/", PathSuffix: "/complete", Roles: anyAuthenticated},
			{Methods: []string{http.MethodDelete}, PathPrefix: "/api/learning", Roles: adminOnly},
			{Methods: []string{http.MethodGet}, PathPrefix: "/api/learning", Roles: anyAuthenticated},
			{Methods: nil, PathPrefix: "/api/learning", Roles: chefAndAdmin},

			// AI features and personal planners need a session.
			{Methods: nil, PathPrefix: "/api/ai", Roles: anyAuthenticated},
			{Methods: nil, PathPrefix: "/api/meal-plans", Roles: anyAuthenticated},
			{Methods: nil, PathPrefix: "/api/shopping-lists", Roles: anyAuthenticated},
			{Methods: nil, PathPrefix: "/api/favorites", Roles: anyAuthenticated},
		},
	}
}

// IsBypassed reports whether authentication is skipped for the path.
func (p *Policy) IsBypassed(path string) bool {
	for _, prefix := range p.bypass {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Evaluate decides whether a request with the given role may proceed.
// authenticated is false for anonymous requests; role is ignored then.
func (p *Policy) Evaluate(method, path string, authenticated bool, role user.Role) Decision {
	for _, rule := range p.rules {
		if !rule.matches(method, path) {
			continue
		}
		if len(rule.Roles) == 0 {
			return DecisionAllow
		}
		if !authenticated {
			return DecisionAuthenticate
		}
		for _, allowed := range rule.Roles {
			if role == allowed {
				return DecisionAllow
			}
		}
		return DecisionForbid
	}
	// Routes outside the table require a session.
	if authenticated {
		return DecisionAllow
	}
	return DecisionAuthenticate
}

func (r Rule) matches(method, path string) bool {
	if !strings.HasPrefix(path, r.PathPrefix) {
		return false
	}
	if r.PathSuffix != "" && !strings.HasSuffix(path, r.PathSuffix) {
		return false
	}
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if m == method {
			return true
		}
	}
	return false
}
