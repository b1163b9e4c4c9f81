// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smartcooking/api/internal/domain/recipe"
	"github.com/smartcooking/api/internal/domain/user"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	Update(ctx context.Context, u *user.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*user.User, int64, error)
}

// RecipeRepository defines the interface for recipe persistence
// This follows the Repository pattern for data access abstraction
type RecipeRepository interface {
	Create(ctx context.Context, r *recipe.Recipe) error
	Update(ctx context.Context, r *recipe.Recipe) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)

	FindByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int64, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]*recipe.Recipe, int64, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

// SearchCriteria defines search parameters for recipes
type SearchCriteria struct {
	Query      string
	CategoryID *uuid.UUID
	Difficulty string
	Region     string
	MaxMinutes int
	OnlyPublic bool
	Offset     int
	Limit      int
	OrderBy    string
	OrderDir   string
}

// Category is a recipe category managed by administrators.
type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	ImageURL    string
	RecipeCount int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
}

// LearningPath is a structured cooking course.
type LearningPath struct {
	ID            uuid.UUID
	Title         string
	Description   string
	Level         string
	DurationWeeks int
	TotalDishes   int
	RecipeIDs     []uuid.UUID
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LearningProgress tracks a user's position within a path.
type LearningProgress struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	PathID           uuid.UUID
	CompletedRecipes []uuid.UUID
	PercentComplete  float64
	StartedAt        time.Time
	UpdatedAt        time.Time
}

// LearningRepository defines the interface for learning path persistence
type LearningRepository interface {
	CreatePath(ctx context.Context, p *LearningPath) error
	UpdatePath(ctx context.Context, p *LearningPath) error
	DeletePath(ctx context.Context, id uuid.UUID) error
	FindPathByID(ctx context.Context, id uuid.UUID) (*LearningPath, error)
	ListPaths(ctx context.Context) ([]*LearningPath, error)

	FindProgress(ctx context.Context, userID, pathID uuid.UUID) (*LearningProgress, error)
	SaveProgress(ctx context.Context, p *LearningProgress) error
	ListProgressByUser(ctx context.Context, userID uuid.UUID) ([]*LearningProgress, error)
}

// MealPlanEntry assigns a recipe to a day and meal slot.
type MealPlanEntry struct {
	Day      string    `json:"day"`
	Meal     string    `json:"meal"`
	RecipeID uuid.UUID `json:"recipe_id"`
}

// MealPlan is a weekly plan of recipes for a user.
type MealPlan struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	WeekStart time.Time
	Entries   []MealPlanEntry
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShoppingItem is one line of a shopping list.
type ShoppingItem struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Unit     string `json:"unit"`
	Checked  bool   `json:"checked"`
	Category string `json:"category"`
}

// ShoppingList is a user's list of groceries, optionally derived
// from a meal plan.
type ShoppingList struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	MealPlanID *uuid.UUID
	Items      []ShoppingItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PlannerRepository defines the interface for meal plan and shopping
// list persistence
type PlannerRepository interface {
	CreateMealPlan(ctx context.Context, p *MealPlan) error
	UpdateMealPlan(ctx context.Context, p *MealPlan) error
	DeleteMealPlan(ctx context.Context, id uuid.UUID) error
	FindMealPlanByID(ctx context.Context, id uuid.UUID) (*MealPlan, error)
	ListMealPlansByUser(ctx context.Context, userID uuid.UUID) ([]*MealPlan, error)

	CreateShoppingList(ctx context.Context, l *ShoppingList) error
	UpdateShoppingList(ctx context.Context, l *ShoppingList) error
	DeleteShoppingList(ctx context.Context, id uuid.UUID) error
	FindShoppingListByID(ctx context.Context, id uuid.UUID) (*ShoppingList, error)
	ListShoppingListsByUser(ctx context.Context, userID uuid.UUID) ([]*ShoppingList, error)
}

// FavoriteRepository tracks which recipes a user has saved.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, recipeID uuid.UUID) error
	Remove(ctx context.Context, userID, recipeID uuid.UUID) error
	IsFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int64, error)
}
