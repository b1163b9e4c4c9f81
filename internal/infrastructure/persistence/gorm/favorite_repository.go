package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartcooking/api/internal/domain/recipe"
	"github.com/smartcooking/api/internal/ports/outbound"
)

// FavoriteRepository implements outbound.FavoriteRepository using GORM
type FavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new GORM favorite repository
func NewFavoriteRepository(db *gorm.DB) outbound.FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Add(ctx context.Context, userID, recipeID uuid.UUID) error {
	model := &FavoriteModel{UserID: userID, RecipeID: recipeID, CreatedAt: time.Now()}
	err := r.db.WithContext(ctx).Create(model).Error
	if err != nil && !isUniqueViolation(err) {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Delete(&FavoriteModel{}, "user_id = ? AND recipe_id = ?", userID, recipeID).Error
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) IsFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var model FavoriteModel
	err := r.db.WithContext(ctx).
		First(&model, "user_id = ? AND recipe_id = ?", userID, recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return true, nil
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int64, error) {
	base := r.db.WithContext(ctx).Model(&FavoriteModel{}).Where("user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count favorites: %w", err)
	}

	var models []RecipeModel
	err := r.db.WithContext(ctx).Model(&RecipeModel{}).
		Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list favorites: %w", err)
	}

	recipes := make([]*recipe.Recipe, 0, len(models))
	for i := range models {
		rec, err := recipeFromModel(&models[i])
		if err != nil {
			return nil, 0, err
		}
		recipes = append(recipes, rec)
	}
	return recipes, total, nil
}
