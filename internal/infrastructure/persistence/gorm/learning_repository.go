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

// LearningRepository implements outbound.LearningRepository using GORM
type LearningRepository struct {
	db *gorm.DB
}

// NewLearningRepository creates a new GORM learning repository
func NewLearningRepository(db *gorm.DB) outbound.LearningRepository {
	return &LearningRepository{db: db}
}

func (r *LearningRepository) CreatePath(ctx context.Context, p *outbound.LearningPath) error {
	model := pathToModel(p)
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create learning path: %w", err)
	}
	p.ID = model.ID
	return nil
}

func (r *LearningRepository) UpdatePath(ctx context.Context, p *outbound.LearningPath) error {
	model := pathToModel(p)
	result := r.db.WithContext(ctx).Model(&LearningPathModel{}).
		Where("id = ?", model.ID).Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update learning path: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "learning path not found")
	}
	return nil
}

func (r *LearningRepository) DeletePath(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&LearningProgressModel{}, "path_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&LearningPathModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.New(apperrors.CodeNotFound, "learning path not found")
		}
		return nil
	})
	if err != nil {
		var app *apperrors.AppError
		if errors.As(err, &app) {
			return err
		}
		return fmt.Errorf("failed to delete learning path: %w", err)
	}
	return nil
}

func (r *LearningRepository) FindPathByID(ctx context.Context, id uuid.UUID) (*outbound.LearningPath, error) {
	var model LearningPathModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "learning path not found")
		}
		return nil, fmt.Errorf("failed to find learning path: %w", err)
	}
	return pathFromModel(&model), nil
}

func (r *LearningRepository) ListPaths(ctx context.Context) ([]*outbound.LearningPath, error) {
	var models []LearningPathModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list learning paths: %w", err)
	}
	paths := make([]*outbound.LearningPath, 0, len(models))
	for i := range models {
		paths = append(paths, pathFromModel(&models[i]))
	}
	return paths, nil
}

func (r *LearningRepository) FindProgress(ctx context.Context, userID, pathID uuid.UUID) (*outbound.LearningProgress, error) {
	var model LearningProgressModel
	err := r.db.WithContext(ctx).
		First(&model, "user_id = ? AND path_id = ?", userID, pathID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "no progress recorded")
		}
		return nil, fmt.Errorf("failed to find progress: %w", err)
	}
	return progressFromModel(&model), nil
}

func (r *LearningRepository) SaveProgress(ctx context.Context, p *outbound.LearningProgress) error {
	model := progressToModel(p)
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND path_id = ?", model.UserID, model.PathID).
		Assign(map[string]interface{}{
			"completed_recipes": model.CompletedRecipes,
			"percent_complete":  model.PercentComplete,
		}).
		FirstOrCreate(model).Error
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	p.ID = model.ID
	return nil
}

func (r *LearningRepository) ListProgressByUser(ctx context.Context, userID uuid.UUID) ([]*outbound.LearningProgress, error) {
	var models []LearningProgressModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	progress := make([]*outbound.LearningProgress, 0, len(models))
	for i := range models {
		progress = append(progress, progressFromModel(&models[i]))
	}
	return progress, nil
}

func pathToModel(p *outbound.LearningPath) *LearningPathModel {
	return &LearningPathModel{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Level:         p.Level,
		DurationWeeks: p.DurationWeeks,
		TotalDishes:   p.TotalDishes,
		RecipeIDs:     uuidsToStrings(p.RecipeIDs),
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func pathFromModel(m *LearningPathModel) *outbound.LearningPath {
	return &outbound.LearningPath{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Level:         m.Level,
		DurationWeeks: m.DurationWeeks,
		TotalDishes:   m.TotalDishes,
		RecipeIDs:     stringsToUUIDs(m.RecipeIDs),
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func progressToModel(p *outbound.LearningProgress) *LearningProgressModel {
	return &LearningProgressModel{
		ID:               p.ID,
		UserID:           p.UserID,
		PathID:           p.PathID,
		CompletedRecipes: uuidsToStrings(p.CompletedRecipes),
		PercentComplete:  p.PercentComplete,
		StartedAt:        p.StartedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func progressFromModel(m *LearningProgressModel) *outbound.LearningProgress {
	return &outbound.LearningProgress{
		ID:               m.ID,
		UserID:           m.UserID,
		PathID:           m.PathID,
		CompletedRecipes: stringsToUUIDs(m.CompletedRecipes),
		PercentComplete:  m.PercentComplete,
		StartedAt:        m.StartedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
