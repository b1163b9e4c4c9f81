// Package recipe defines the recipe domain entity
package recipe

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Recipe represents a cooking recipe
type Recipe struct {
	id              uuid.UUID
	title           string
	description     string
	authorID        uuid.UUID
	categoryID      *uuid.UUID
	ingredients     []Ingredient
	instructions    []string
	prepTimeMinutes int
	cookTimeMinutes int
	servings        int
	calories        int
	difficulty      Difficulty
	region          string
	imageURL        string
	isPublic        bool
	aiGenerated     bool
	aiModel         string
	averageRating   float64
	viewCount       int
	createdAt       time.Time
	updatedAt       time.Time
}

// Ingredient is a single recipe ingredient with quantity
type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Difficulty represents the recipe difficulty level
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// NewRecipe creates a new recipe draft owned by the given author
func NewRecipe(title, description string, authorID uuid.UUID) (*Recipe, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	now := time.Now()
	return &Recipe{
		id:          uuid.New(),
		title:       title,
		description: description,
		authorID:    authorID,
		difficulty:  DifficultyMedium,
		servings:    1,
		isPublic:    true,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a recipe from persisted state. Used by repositories.
func Reconstruct(
	id uuid.UUID,
	title, description string,
	authorID uuid.UUID,
	categoryID *uuid.UUID,
	ingredients []Ingredient,
	instructions []string,
	prepTime, cookTime, servings, calories int,
	difficulty Difficulty,
	region, imageURL string,
	isPublic, aiGenerated bool,
	aiModel string,
	averageRating float64,
	viewCount int,
	createdAt, updatedAt time.Time,
) *Recipe {
	return &Recipe{
		id:              id,
		title:           title,
		description:     description,
		authorID:        authorID,
		categoryID:      categoryID,
		ingredients:     ingredients,
		instructions:    instructions,
		prepTimeMinutes: prepTime,
		cookTimeMinutes: cookTime,
		servings:        servings,
		calories:        calories,
		difficulty:      difficulty,
		region:          region,
		imageURL:        imageURL,
		isPublic:        isPublic,
		aiGenerated:     aiGenerated,
		aiModel:         aiModel,
		averageRating:   averageRating,
		viewCount:       viewCount,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// Update applies caller-editable fields
func (r *Recipe) Update(title, description string, ingredients []Ingredient, instructions []string, prepTime, cookTime, servings, calories int, difficulty Difficulty, region string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	r.title = title
	r.description = description
	r.ingredients = ingredients
	r.instructions = instructions
	r.prepTimeMinutes = prepTime
	r.cookTimeMinutes = cookTime
	if servings > 0 {
		r.servings = servings
	}
	r.calories = calories
	if difficulty != "" {
		r.difficulty = difficulty
	}
	r.region = region
	r.updatedAt = time.Now()
	return nil
}

// MarkAIGenerated tags the recipe as machine-created by the given model
func (r *Recipe) MarkAIGenerated(model string) {
	r.aiGenerated = true
	r.aiModel = model
	r.updatedAt = time.Now()
}

// AssignCategory places the recipe in a category
func (r *Recipe) AssignCategory(categoryID uuid.UUID) {
	r.categoryID = &categoryID
	r.updatedAt = time.Now()
}

// SetImage sets the recipe's cover image URL
func (r *Recipe) SetImage(url string) {
	r.imageURL = url
	r.updatedAt = time.Now()
}

// RecordView increments the view counter
func (r *Recipe) RecordView() {
	r.viewCount++
}

// IsOwnedBy reports whether the given user authored this recipe
func (r *Recipe) IsOwnedBy(userID uuid.UUID) bool {
	return r.authorID == userID
}

// Accessors

func (r *Recipe) ID() uuid.UUID             { return r.id }
func (r *Recipe) Title() string             { return r.title }
func (r *Recipe) Description() string       { return r.description }
func (r *Recipe) AuthorID() uuid.UUID       { return r.authorID }
func (r *Recipe) CategoryID() *uuid.UUID    { return r.categoryID }
func (r *Recipe) Ingredients() []Ingredient { return r.ingredients }
func (r *Recipe) Instructions() []string    { return r.instructions }
func (r *Recipe) PrepTimeMinutes() int      { return r.prepTimeMinutes }
func (r *Recipe) CookTimeMinutes() int      { return r.cookTimeMinutes }
func (r *Recipe) Servings() int             { return r.servings }
func (r *Recipe) Calories() int             { return r.calories }
func (r *Recipe) Difficulty() Difficulty    { return r.difficulty }
func (r *Recipe) Region() string            { return r.region }
func (r *Recipe) ImageURL() string          { return r.imageURL }
func (r *Recipe) IsPublic() bool            { return r.isPublic }
func (r *Recipe) AIGenerated() bool         { return r.aiGenerated }
func (r *Recipe) AIModel() string           { return r.aiModel }
func (r *Recipe) AverageRating() float64    { return r.averageRating }
func (r *Recipe) ViewCount() int            { return r.viewCount }
func (r *Recipe) CreatedAt() time.Time      { return r.createdAt }
func (r *Recipe) UpdatedAt() time.Time      { return r.updatedAt }
