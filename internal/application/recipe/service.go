// Package recipe provides the application layer for the recipe catalog
package recipe

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/domain/recipe"
	"github.com/smartcooking/api/internal/domain/user"
	"github.com/smartcooking/api/internal/infrastructure/monitoring"
	"github.com/smartcooking/api/internal/ports/outbound"
)

// Service implements recipe catalog use cases
type Service struct {
	recipes    outbound.RecipeRepository
	categories outbound.CategoryRepository
	favorites  outbound.FavoriteRepository
	metrics    *monitoring.MetricsCollector
	logger     *zap.Logger
}

// NewService creates a new recipe service
func NewService(
	recipes outbound.RecipeRepository,
	categories outbound.CategoryRepository,
	favorites outbound.FavoriteRepository,
	metrics *monitoring.MetricsCollector,
	logger *zap.Logger,
) *Service {
	return &Service{
		recipes:    recipes,
		categories: categories,
		favorites:  favorites,
		metrics:    metrics,
		logger:     logger.Named("recipe-service"),
	}
}

// CreateCommand contains the fields accepted when creating or
// updating a recipe.
type CreateCommand struct {
	Title           string              `json:"title" validate:"required,min=3,max=255"`
	Description     string              `json:"description"`
	CategoryID      *uuid.UUID          `json:"categoryId"`
	Ingredients     []recipe.Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	Instructions    []string            `json:"instructions" validate:"required,min=1"`
	PrepTimeMinutes int                 `json:"prepTimeMinutes" validate:"gte=0"`
	CookTimeMinutes int                 `json:"cookTimeMinutes" validate:"gte=0"`
	Servings        int                 `json:"servings" validate:"gte=1"`
	Calories        int                 `json:"calories" validate:"gte=0"`
	Difficulty      string              `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Region          string              `json:"region"`
	ImageURL        string              `json:"imageUrl"`
}

// SearchQuery narrows the catalog listing.
type SearchQuery struct {
	Query      string
	CategoryID *uuid.UUID
	Difficulty string
	Region     string
	MaxMinutes int
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
}

// Create adds a recipe authored by the given user.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, cmd CreateCommand) (*recipe.Recipe, error) {
	rec, err := recipe.NewRecipe(cmd.Title, cmd.Description, authorID)
	if err != nil {
		return nil, err
	}
	if err := s.applyCommand(ctx, rec, cmd); err != nil {
		return nil, err
	}

	if err := s.recipes.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.metrics.RecordRecipeCreated()
	s.logger.Info("Recipe created",
		zap.String("recipe_id", rec.ID().String()),
		zap.String("author_id", authorID.String()),
	)
	return rec, nil
}

// Update edits an existing recipe. Only the author or an
// administrator may change it.
func (s *Service) Update(ctx context.Context, actor *user.User, id uuid.UUID, cmd CreateCommand) (*recipe.Recipe, error) {
	rec, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsOwnedBy(actor.ID()) && actor.Role() != user.RoleAdmin {
		return nil, recipe.ErrNotOwner
	}

	if err := s.applyCommand(ctx, rec, cmd); err != nil {
		return nil, err
	}
	if err := s.recipes.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a recipe. Only the author or an administrator may
// delete it.
func (s *Service) Delete(ctx context.Context, actor *user.User, id uuid.UUID) error {
	rec, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !rec.IsOwnedBy(actor.ID()) && actor.Role() != user.RoleAdmin {
		return recipe.ErrNotOwner
	}
	return s.recipes.Delete(ctx, id)
}

// Get returns a recipe and counts the view.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	rec, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.recipes.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("Failed to count view", zap.Error(err))
	}
	return rec, nil
}

// Search lists public recipes matching the query.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]*recipe.Recipe, int64, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 || size > 100 {
		size = 20
	}

	return s.recipes.Search(ctx, outbound.SearchCriteria{
		Query:      q.Query,
		CategoryID: q.CategoryID,
		Difficulty: q.Difficulty,
		Region:     q.Region,
		MaxMinutes: q.MaxMinutes,
		OnlyPublic: true,
		Offset:     (page - 1) * size,
		Limit:      size,
		OrderBy:    q.OrderBy,
		OrderDir:   q.OrderDir,
	})
}

// ByAuthor lists recipes created by the given user.
func (s *Service) ByAuthor(ctx context.Context, authorID uuid.UUID, page, size int) ([]*recipe.Recipe, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.recipes.FindByAuthor(ctx, authorID, (page-1)*size, size)
}

// SaveAIGenerated stores a recipe produced by the AI service under
// the requesting user's account.
func (s *Service) SaveAIGenerated(ctx context.Context, authorID uuid.UUID, cmd CreateCommand, model string) (*recipe.Recipe, error) {
	rec, err := s.Create(ctx, authorID, cmd)
	if err != nil {
		return nil, err
	}
	rec.MarkAIGenerated(model)
	if err := s.recipes.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Favorite marks a recipe as saved by the user.
func (s *Service) Favorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.recipes.FindByID(ctx, recipeID); err != nil {
		return err
	}
	return s.favorites.Add(ctx, userID, recipeID)
}

// Unfavorite removes a saved recipe.
func (s *Service) Unfavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.favorites.Remove(ctx, userID, recipeID)
}

// Favorites lists the user's saved recipes.
func (s *Service) Favorites(ctx context.Context, userID uuid.UUID, page, size int) ([]*recipe.Recipe, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.favorites.ListByUser(ctx, userID, (page-1)*size, size)
}

func (s *Service) applyCommand(ctx context.Context, rec *recipe.Recipe, cmd CreateCommand) error {
	difficulty := recipe.Difficulty(cmd.Difficulty)
	if cmd.Difficulty == "" {
		difficulty = recipe.DifficultyMedium
	}

	err := rec.Update(cmd.Title, cmd.Description, cmd.Ingredients, cmd.Instructions,
		cmd.PrepTimeMinutes, cmd.CookTimeMinutes, cmd.Servings, cmd.Calories,
		difficulty, cmd.Region)
	if err != nil {
		return err
	}

	if cmd.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *cmd.CategoryID); err != nil {
			return fmt.Errorf("invalid category: %w", err)
		}
		rec.AssignCategory(*cmd.CategoryID)
	}
	if cmd.ImageURL != "" {
		rec.SetImage(cmd.ImageURL)
	}
	return nil
}
