// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/infrastructure/config"
	"github.com/smartcooking/api/internal/infrastructure/http/handlers"
	"github.com/smartcooking/api/internal/infrastructure/http/middleware"
	"github.com/smartcooking/api/internal/infrastructure/monitoring"
	"github.com/smartcooking/api/internal/infrastructure/security"
	"github.com/smartcooking/api/internal/ports/outbound"
)

// Handlers groups every handler the server mounts.
type Handlers struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandlers
	Users      *handlers.UserHandlers
	Recipes    *handlers.RecipeHandlers
	Categories *handlers.CategoryHandlers
	Learning   *handlers.LearningHandlers
	Planner    *handlers.PlannerHandlers
	AI         *handlers.AIHandlers
	Test       *handlers.TestHandlers
}

// Server is the JSON API HTTP server.
type Server struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
	router *chi.Mux
}

// NewServer wires the router and the underlying http.Server. Request
// authentication never rejects by itself; the route policy decides
// per endpoint whether an anonymous or underprivileged caller gets
// through.
func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	tokens *security.TokenService,
	policy *security.Policy,
	users outbound.UserRepository,
	metrics *monitoring.MetricsCollector,
	h Handlers,
) *Server {
	s := &Server{config: cfg, logger: log}

	s.router = s.setupRoutes(tokens, policy, users, metrics, h)
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes(
	tokens *security.TokenService,
	policy *security.Policy,
	users outbound.UserRepository,
	metrics *monitoring.MetricsCollector,
	h Handlers,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(chimiddleware.Compress(5))
	r.Use(metrics.Middleware())
	if s.config.RateLimit.Enable {
		r.Use(middleware.RateLimit(s.config.RateLimit.RequestsPerSec, s.config.RateLimit.BurstSize))
	}
	r.Use(middleware.Authenticate(tokens, users, s.logger))
	r.Use(middleware.Authorize(policy))

	r.Get("/health", h.Health.Check)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.JSONContentType())

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/google-login", h.Auth.GoogleLogin)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/verify", h.Auth.Verify)
			r.Post("/verify", h.Auth.Verify)
			r.Get("/me", h.Auth.Me)
			r.Put("/me/preferences", h.Auth.UpdatePreferences)
		})

		r.Route("/test", func(r chi.Router) {
			r.Get("/ping", h.Test.Ping)
			r.Get("/echo", h.Test.Echo)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.Recipes.List)
			r.Get("/mine", h.Recipes.Mine)
			r.Get("/author/{id}", h.Recipes.ByAuthor)
			r.Get("/{id}", h.Recipes.Get)
			r.Post("/", h.Recipes.Create)
			r.Post("/save-generated", h.Recipes.SaveGenerated)
			r.Put("/{id}", h.Recipes.Update)
			r.Delete("/{id}", h.Recipes.Delete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Categories.List)
			r.Get("/{id}", h.Categories.Get)
			r.Post("/", h.Categories.Create)
			r.Put("/{id}", h.Categories.Update)
			r.Delete("/{id}", h.Categories.Delete)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", h.Recipes.Favorites)
			r.Post("/{id}", h.Recipes.Favorite)
			r.Delete("/{id}", h.Recipes.Unfavorite)
		})

		r.Route("/learning", func(r chi.Router) {
			r.Get("/paths", h.Learning.ListPaths)
			r.Get("/paths/{id}", h.Learning.GetPath)
			r.Post("/paths", h.Learning.CreatePath)
			r.Put("/paths/{id}", h.Learning.UpdatePath)
			r.Delete("/paths/{id}", h.Learning.DeletePath)
			r.Get("/progress", h.Learning.MyProgress)
			r.Post("/paths/{id}/enroll", h.Learning.Enroll)
			r.Post("/paths/{id}/complete", h.Learning.CompleteRecipe)
		})

		r.Route("/meal-plans", func(r chi.Router) {
			r.Get("/", h.Planner.ListMealPlans)
			r.Get("/{id}", h.Planner.GetMealPlan)
			r.Post("/", h.Planner.CreateMealPlan)
			r.Put("/{id}", h.Planner.UpdateMealPlan)
			r.Delete("/{id}", h.Planner.DeleteMealPlan)
		})

		r.Route("/shopping-lists", func(r chi.Router) {
			r.Get("/", h.Planner.ListShoppingLists)
			r.Get("/{id}", h.Planner.GetShoppingList)
			r.Post("/", h.Planner.CreateShoppingList)
			r.Post("/generate", h.Planner.GenerateFromMealPlan)
			r.Put("/{id}", h.Planner.UpdateShoppingList)
			r.Delete("/{id}", h.Planner.DeleteShoppingList)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Get("/health", h.AI.Health)
			r.Post("/chat", h.AI.Chat)
			r.Post("/generate-recipe", h.AI.GenerateRecipe)
			r.Post("/ingredient-suggestions", h.AI.IngredientSuggestions)
			r.Post("/learning-path", h.AI.LearningPath)
			r.Post("/nutrition-analysis", h.AI.Nutrition)
			r.Post("/vision", h.AI.Vision)
			r.Post("/voice", h.AI.Voice)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.Users.List)
			r.Get("/{id}", h.Users.Get)
			r.Put("/{id}/role", h.Users.SetRole)
			r.Delete("/{id}", h.Users.Deactivate)
		})
	})

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("Starting API server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)
	return s.server.ListenAndServe()
}

// Router exposes the chi mux, mainly for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.server.Shutdown(ctx)
}
