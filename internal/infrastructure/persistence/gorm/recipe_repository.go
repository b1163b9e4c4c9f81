package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartcooking/api/internal/domain/recipe"
	"github.com/smartcooking/api/internal/ports/outbound"
)

// RecipeRepository implements outbound.RecipeRepository using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new GORM recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	model, err := recipeToModel(rec)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	model, err := recipeToModel(rec)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&RecipeModel{}).Where("id = ?", model.ID).Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update recipe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return recipe.ErrRecipeNotFound
	}
	return r.db.WithContext(ctx).Model(&RecipeModel{}).Where("id = ?", model.ID).
		UpdateColumn("is_public", model.IsPublic).Error
}

func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&RecipeModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}

func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	var model RecipeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}
	return recipeFromModel(&model)
}

func (r *RecipeRepository) FindByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int64, error) {
	query := r.db.WithContext(ctx).Model(&RecipeModel{}).Where("author_id = ?", authorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var models []RecipeModel
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return r.collect(models, total)
}

func (r *RecipeRepository) Search(ctx context.Context, criteria outbound.SearchCriteria) ([]*recipe.Recipe, int64, error) {
	query := r.db.WithContext(ctx).Model(&RecipeModel{})

	if criteria.OnlyPublic {
		query = query.Where("is_public = ?", true)
	}
	if criteria.Query != "" {
		pattern := "%" + criteria.Query + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if criteria.CategoryID != nil {
		query = query.Where("category_id = ?", *criteria.CategoryID)
	}
	if criteria.Difficulty != "" {
		query = query.Where("difficulty = ?", criteria.Difficulty)
	}
	if criteria.Region != "" {
		query = query.Where("region = ?", criteria.Region)
	}
	if criteria.MaxMinutes > 0 {
		query = query.Where("prep_time_minutes + cook_time_minutes <= ?", criteria.MaxMinutes)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	orderBy := "created_at"
	switch criteria.OrderBy {
	case "rating":
		orderBy = "average_rating"
	case "views":
		orderBy = "view_count"
	case "title":
		orderBy = "title"
	}
	dir := "DESC"
	if criteria.OrderDir == "asc" {
		dir = "ASC"
	}

	limit := criteria.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var models []RecipeModel
	err := query.Order(orderBy + " " + dir).Offset(criteria.Offset).Limit(limit).Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search recipes: %w", err)
	}
	return r.collect(models, total)
}

func (r *RecipeRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&RecipeModel{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *RecipeRepository) collect(models []RecipeModel, total int64) ([]*recipe.Recipe, int64, error) {
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
