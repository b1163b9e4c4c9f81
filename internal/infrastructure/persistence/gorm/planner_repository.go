package gorm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartcooking/api/internal/ports/outbound"
	apperrors "github.com/smartcooking/api/pkg/errors"
)

// PlannerRepository implements outbound.PlannerRepository using GORM
type PlannerRepository struct {
	db *gorm.DB
}

// NewPlannerRepository creates a new GORM planner repository
func NewPlannerRepository(db *gorm.DB) outbound.PlannerRepository {
	return &PlannerRepository{db: db}
}

func (r *PlannerRepository) CreateMealPlan(ctx context.Context, p *outbound.MealPlan) error {
	model, err := mealPlanToModel(p)
	if err != nil {
		return err
	}
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create meal plan: %w", err)
	}
	p.ID = model.ID
	return nil
}

func (r *PlannerRepository) UpdateMealPlan(ctx context.Context, p *outbound.MealPlan) error {
	model, err := mealPlanToModel(p)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&MealPlanModel{}).
		Where("id = ?", model.ID).Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update meal plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "meal plan not found")
	}
	return nil
}

func (r *PlannerRepository) DeleteMealPlan(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&MealPlanModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete meal plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "meal plan not found")
	}
	return nil
}

func (r *PlannerRepository) FindMealPlanByID(ctx context.Context, id uuid.UUID) (*outbound.MealPlan, error) {
	var model MealPlanModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "meal plan not found")
		}
		return nil, fmt.Errorf("failed to find meal plan: %w", err)
	}
	return mealPlanFromModel(&model)
}

func (r *PlannerRepository) ListMealPlansByUser(ctx context.Context, userID uuid.UUID) ([]*outbound.MealPlan, error) {
	var models []MealPlanModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("week_start DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}
	plans := make([]*outbound.MealPlan, 0, len(models))
	for i := range models {
		plan, err := mealPlanFromModel(&models[i])
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (r *PlannerRepository) CreateShoppingList(ctx context.Context, l *outbound.ShoppingList) error {
	model, err := shoppingListToModel(l)
	if err != nil {
		return err
	}
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create shopping list: %w", err)
	}
	l.ID = model.ID
	return nil
}

func (r *PlannerRepository) UpdateShoppingList(ctx context.Context, l *outbound.ShoppingList) error {
	model, err := shoppingListToModel(l)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&ShoppingListModel{}).
		Where("id = ?", model.ID).Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update shopping list: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "shopping list not found")
	}
	return nil
}

func (r *PlannerRepository) DeleteShoppingList(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&ShoppingListModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete shopping list: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "shopping list not found")
	}
	return nil
}

func (r *PlannerRepository) FindShoppingListByID(ctx context.Context, id uuid.UUID) (*outbound.ShoppingList, error) {
	var model ShoppingListModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "shopping list not found")
		}
		return nil, fmt.Errorf("failed to find shopping list: %w", err)
	}
	return shoppingListFromModel(&model)
}

func (r *PlannerRepository) ListShoppingListsByUser(ctx context.Context, userID uuid.UUID) ([]*outbound.ShoppingList, error) {
	var models []ShoppingListModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping lists: %w", err)
	}
	lists := make([]*outbound.ShoppingList, 0, len(models))
	for i := range models {
		list, err := shoppingListFromModel(&models[i])
		if err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	return lists, nil
}

func mealPlanToModel(p *outbound.MealPlan) (*MealPlanModel, error) {
	entries, err := json.Marshal(p.Entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode meal plan entries: %w", err)
	}
	return &MealPlanModel{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		WeekStart: p.WeekStart,
		Entries:   JSONText(entries),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func mealPlanFromModel(m *MealPlanModel) (*outbound.MealPlan, error) {
	var entries []outbound.MealPlanEntry
	if len(m.Entries) > 0 {
		if err := json.Unmarshal(m.Entries, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode meal plan entries: %w", err)
		}
	}
	return &outbound.MealPlan{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		WeekStart: m.WeekStart,
		Entries:   entries,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func shoppingListToModel(l *outbound.ShoppingList) (*ShoppingListModel, error) {
	items, err := json.Marshal(l.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode shopping items: %w", err)
	}
	return &ShoppingListModel{
		ID:         l.ID,
		UserID:     l.UserID,
		Name:       l.Name,
		MealPlanID: l.MealPlanID,
		Items:      JSONText(items),
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}, nil
}

func shoppingListFromModel(m *ShoppingListModel) (*outbound.ShoppingList, error) {
	var items []outbound.ShoppingItem
	if len(m.Items) > 0 {
		if err := json.Unmarshal(m.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to decode shopping items: %w", err)
		}
	}
	return &outbound.ShoppingList{
		ID:         m.ID,
		UserID:     m.UserID,
		Name:       m.Name,
		MealPlanID: m.MealPlanID,
		Items:      items,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}
