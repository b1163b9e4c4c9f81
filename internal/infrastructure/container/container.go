// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/smartcooking/api/internal/application/auth"
	recipeapp "github.com/smartcooking/api/internal/application/recipe"
	"github.com/smartcooking/api/internal/infrastructure/aiproxy"
	"github.com/smartcooking/api/internal/infrastructure/config"
	"github.com/smartcooking/api/internal/infrastructure/http/apiserver"
	"github.com/smartcooking/api/internal/infrastructure/http/handlers"
	"github.com/smartcooking/api/internal/infrastructure/monitoring"
	gormRepo "github.com/smartcooking/api/internal/infrastructure/persistence/gorm"
	"github.com/smartcooking/api/internal/infrastructure/persistence/postgres"
	redisStore "github.com/smartcooking/api/internal/infrastructure/persistence/redis"
	"github.com/smartcooking/api/internal/infrastructure/persistence/sqlite"
	"github.com/smartcooking/api/internal/infrastructure/security"
	"github.com/smartcooking/api/pkg/logger"
)

// Module wires the full application graph.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	SecurityModule,
	RepositoryModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule opens the configured database. SQLite is the
// development default and gets seeded with demo data; postgres is
// used in deployed environments.
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		if cfg.Database.Driver == "postgres" {
			return postgres.Connect(cfg, log)
		}

		dbPath := ":memory:"
		if cfg.Database.Database != "" {
			dbPath = cfg.Database.Database + ".db"
		}
		logLevel := gormLogger.Silent
		if cfg.App.Debug {
			logLevel = gormLogger.Info
		}

		db, err := sqlite.SetupDatabase(dbPath, logLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		if cfg.Database.SeedDemoData {
			if err := sqlite.SeedDatabase(db); err != nil {
				log.Warn("Failed to seed database", zap.Error(err))
			}
		}

		log.Info("Connected to SQLite database",
			zap.String("path", dbPath),
			zap.Bool("in_memory", dbPath == ":memory:"),
		)
		return db, nil
	},
)

// SecurityModule provides token issuance, revocation and the route
// policy. Redis backs the revocation blacklist when enabled so
// revoked tokens survive restarts; otherwise an in-process store is
// used.
var SecurityModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (security.RevocationStore, error) {
		if !cfg.Redis.Enabled {
			log.Info("Using in-memory token revocation store")
			return security.NewMemoryRevocationStore(), nil
		}
		client, err := redisStore.Connect(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisStore.NewRevocationStore(client), nil
	},
	security.NewTokenService,
	security.NewPolicy,
	monitoring.NewMetricsCollector,
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewUserRepository,
	gormRepo.NewRecipeRepository,
	gormRepo.NewCategoryRepository,
	gormRepo.NewLearningRepository,
	gormRepo.NewPlannerRepository,
	gormRepo.NewFavoriteRepository,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	auth.NewService,
	recipeapp.NewService,
	aiproxy.NewClient,
)

// HTTPModule provides the API server and its handlers
var HTTPModule = fx.Provide(
	handlers.NewAuthHandlers,
	handlers.NewUserHandlers,
	handlers.NewRecipeHandlers,
	handlers.NewCategoryHandlers,
	handlers.NewLearningHandlers,
	handlers.NewPlannerHandlers,
	handlers.NewAIHandlers,
	handlers.NewTestHandlers,
	func(db *gorm.DB, cfg *config.Config, log *zap.Logger) *handlers.HealthHandler {
		return handlers.NewHealthHandler(db, cfg.App.Version, log)
	},
	func(
		health *handlers.HealthHandler,
		authH *handlers.AuthHandlers,
		users *handlers.UserHandlers,
		recipes *handlers.RecipeHandlers,
		categories *handlers.CategoryHandlers,
		learning *handlers.LearningHandlers,
		planner *handlers.PlannerHandlers,
		ai *handlers.AIHandlers,
		test *handlers.TestHandlers,
	) apiserver.Handlers {
		return apiserver.Handlers{
			Health:     health,
			Auth:       authH,
			Users:      users,
			Recipes:    recipes,
			Categories: categories,
			Learning:   learning,
			Planner:    planner,
			AI:         ai,
			Test:       test,
		}
	},
	apiserver.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks starts the HTTP server on application start
// and closes it with the database on stop.
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	server *apiserver.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Smart Cooking API",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("Failed to start HTTP server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Smart Cooking API")

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			sqlDB, err := db.DB()
			if err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("Failed to close database connection", zap.Error(err))
				}
			}

			_ = log.Sync()
			return nil
		},
	})
}
