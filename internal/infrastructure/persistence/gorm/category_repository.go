package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartcooking/api/internal/ports/outbound"
	apperrors "github.com/smartcooking/api/pkg/errors"
)

// CategoryRepository implements outbound.CategoryRepository using GORM
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new GORM category repository
func NewCategoryRepository(db *gorm.DB) outbound.CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *outbound.Category) error {
	model := categoryToModel(c)
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.New(apperrors.CodeConflict, "category name already exists")
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	c.ID = model.ID
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *outbound.Category) error {
	result := r.db.WithContext(ctx).Model(&CategoryModel{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":        c.Name,
			"description": c.Description,
			"image_url":   c.ImageURL,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return apperrors.New(apperrors.CodeConflict, "category name already exists")
		}
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "category not found")
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Recipes keep existing but lose the category link.
		if err := tx.Model(&RecipeModel{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&CategoryModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.New(apperrors.CodeNotFound, "category not found")
		}
		return nil
	})
	if err != nil {
		var app *apperrors.AppError
		if errors.As(err, &app) {
			return err
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*outbound.Category, error) {
	var model CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "category not found")
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	count, err := r.recipeCount(ctx, id)
	if err != nil {
		return nil, err
	}
	return categoryFromModel(&model, count), nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*outbound.Category, error) {
	var model CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "category not found")
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	count, err := r.recipeCount(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	return categoryFromModel(&model, count), nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*outbound.Category, error) {
	var models []CategoryModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]*outbound.Category, 0, len(models))
	for i := range models {
		count, err := r.recipeCount(ctx, models[i].ID)
		if err != nil {
			return nil, err
		}
		categories = append(categories, categoryFromModel(&models[i], count))
	}
	return categories, nil
}

func (r *CategoryRepository) recipeCount(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&RecipeModel{}).
		Where("category_id = ?", categoryID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count category recipes: %w", err)
	}
	return count, nil
}
