// Package gorm provides GORM model definitions for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID                  uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Email               string      `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName            string      `gorm:"type:varchar(255);not null"`
	PasswordHash        string      `gorm:"type:varchar(255)"`
	AvatarURL           string      `gorm:"type:text"`
	Role                string      `gorm:"type:varchar(20);default:'USER';index"`
	Provider            string      `gorm:"type:varchar(20);default:'LOCAL'"`
	ProviderID          string      `gorm:"type:varchar(255);index"`
	LanguagePreference  string      `gorm:"type:varchar(10);default:'vi'"`
	DietaryRestrictions StringSlice `gorm:"type:json"`
	CuisinePreferences  StringSlice `gorm:"type:json"`
	SpiceLevel          string      `gorm:"type:varchar(20);default:'medium'"`
	IsActive            bool        `gorm:"default:true"`
	EmailVerified       bool        `gorm:"default:false"`
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Recipes []RecipeModel `gorm:"foreignKey:AuthorID"`
}

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	ID          uuid.UUID  `gorm:"type:char(36);primaryKey"`
	Title       string     `gorm:"type:varchar(255);not null;index"`
	Description string     `gorm:"type:text"`
	AuthorID    uuid.UUID  `gorm:"type:char(36);not null;index"`
	CategoryID  *uuid.UUID `gorm:"type:char(36);index"`

	Ingredients  JSONText `gorm:"type:json"`
	Instructions JSONText `gorm:"type:json"`

	PrepTimeMinutes int    `gorm:"column:prep_time_minutes;default:0"`
	CookTimeMinutes int    `gorm:"column:cook_time_minutes;default:0"`
	Servings        int    `gorm:"default:1"`
	Calories        int    `gorm:"default:0"`
	Difficulty      string `gorm:"type:varchar(20);index"`
	Region          string `gorm:"type:varchar(50);index"`
	ImageURL        string `gorm:"type:text"`

	IsPublic    bool   `gorm:"default:true;index"`
	AIGenerated bool   `gorm:"default:false"`
	AIModel     string `gorm:"type:varchar(100)"`

	AverageRating float64 `gorm:"column:average_rating;default:0;index"`
	ViewCount     int     `gorm:"column:view_count;default:0"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Author   UserModel      `gorm:"foreignKey:AuthorID"`
	Category *CategoryModel `gorm:"foreignKey:CategoryID"`
}

// CategoryModel represents the GORM model for recipe categories
type CategoryModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `gorm:"type:text"`
	ImageURL    string    `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Recipes []RecipeModel `gorm:"foreignKey:CategoryID"`
}

// LearningPathModel represents the GORM model for learning paths
type LearningPathModel struct {
	ID            uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Title         string      `gorm:"type:varchar(255);not null"`
	Description   string      `gorm:"type:text"`
	Level         string      `gorm:"type:varchar(20);index"`
	DurationWeeks int         `gorm:"default:8"`
	TotalDishes   int         `gorm:"default:0"`
	RecipeIDs     StringSlice `gorm:"type:json"`
	CreatedBy     uuid.UUID   `gorm:"type:char(36);index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LearningProgressModel tracks a user's progress on a path
type LearningProgressModel struct {
	ID               uuid.UUID   `gorm:"type:char(36);primaryKey"`
	UserID           uuid.UUID   `gorm:"type:char(36);not null;uniqueIndex:idx_user_path"`
	PathID           uuid.UUID   `gorm:"type:char(36);not null;uniqueIndex:idx_user_path"`
	CompletedRecipes StringSlice `gorm:"type:json"`
	PercentComplete  float64     `gorm:"default:0"`
	StartedAt        time.Time
	UpdatedAt        time.Time
}

// MealPlanModel represents the GORM model for weekly meal plans
type MealPlanModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index"`
	Name      string    `gorm:"type:varchar(255);not null"`
	WeekStart time.Time `gorm:"index"`
	Entries   JSONText  `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShoppingListModel represents the GORM model for shopping lists
type ShoppingListModel struct {
	ID         uuid.UUID  `gorm:"type:char(36);primaryKey"`
	UserID     uuid.UUID  `gorm:"type:char(36);not null;index"`
	Name       string     `gorm:"type:varchar(255);not null"`
	MealPlanID *uuid.UUID `gorm:"type:char(36);index"`
	Items      JSONText   `gorm:"type:json"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FavoriteModel represents the GORM model for saved recipes
type FavoriteModel struct {
	UserID    uuid.UUID `gorm:"type:char(36);primaryKey"`
	RecipeID  uuid.UUID `gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	User   UserModel   `gorm:"foreignKey:UserID"`
	Recipe RecipeModel `gorm:"foreignKey:RecipeID"`
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// JSONText stores an arbitrary JSON document as raw bytes.
type JSONText []byte

// Scan implements the sql.Scanner interface
func (j *JSONText) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[:0], v...)
		return nil
	case string:
		*j = JSONText(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into JSONText", value)
	}
}

// Value implements the driver.Valuer interface
func (j JSONText) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "null", nil
	}
	return string(j), nil
}

// BeforeCreate hook for UserModel
func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for RecipeModel
func (r *RecipeModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for CategoryModel
func (c *CategoryModel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for LearningPathModel
func (l *LearningPathModel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for LearningProgressModel
func (l *LearningProgressModel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for MealPlanModel
func (m *MealPlanModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for ShoppingListModel
func (s *ShoppingListModel) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (UserModel) TableName() string {
	return "users"
}

func (RecipeModel) TableName() string {
	return "recipes"
}

func (CategoryModel) TableName() string {
	return "categories"
}

func (LearningPathModel) TableName() string {
	return "learning_paths"
}

func (LearningProgressModel) TableName() string {
	return "learning_progress"
}

func (MealPlanModel) TableName() string {
	return "meal_plans"
}

func (ShoppingListModel) TableName() string {
	return "shopping_lists"
}

func (FavoriteModel) TableName() string {
	return "favorites"
}

// AllModels lists every model for auto migration.
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&CategoryModel{},
		&RecipeModel{},
		&LearningPathModel{},
		&LearningProgressModel{},
		&MealPlanModel{},
		&ShoppingListModel{},
		&FavoriteModel{},
	}
}
