package gorm

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/smartcooking/api/internal/domain/recipe"
	"github.com/smartcooking/api/internal/domain/user"
	"github.com/smartcooking/api/internal/ports/outbound"
)

// userToModel maps a domain user onto its persistence model.
func userToModel(u *user.User) *UserModel {
	restrictions := make(StringSlice, 0, len(u.DietaryRestrictions()))
	for _, r := range u.DietaryRestrictions() {
		restrictions = append(restrictions, string(r))
	}

	return &UserModel{
		ID:                  u.ID(),
		Email:               u.Email(),
		FullName:            u.FullName(),
		PasswordHash:        u.PasswordHash(),
		AvatarURL:           u.AvatarURL(),
		Role:                string(u.Role()),
		Provider:            string(u.Provider()),
		ProviderID:          u.ProviderID(),
		LanguagePreference:  u.LanguagePreference(),
		DietaryRestrictions: restrictions,
		CuisinePreferences:  StringSlice(u.CuisinePreferences()),
		SpiceLevel:          string(u.SpiceLevel()),
		IsActive:            u.IsActive(),
		EmailVerified:       u.EmailVerified(),
		LastLoginAt:         u.LastLoginAt(),
		CreatedAt:           u.CreatedAt(),
		UpdatedAt:           u.UpdatedAt(),
	}
}

// userFromModel rebuilds a domain user from its persistence model.
func userFromModel(m *UserModel) *user.User {
	restrictions := make([]user.DietaryRestriction, 0, len(m.DietaryRestrictions))
	for _, r := range m.DietaryRestrictions {
		restrictions = append(restrictions, user.DietaryRestriction(r))
	}

	return user.Reconstruct(
		m.ID,
		m.Email, m.FullName, m.PasswordHash, m.AvatarURL,
		user.Role(m.Role),
		user.AuthProvider(m.Provider),
		m.ProviderID, m.LanguagePreference,
		restrictions,
		[]string(m.CuisinePreferences),
		user.SpiceLevel(m.SpiceLevel),
		m.IsActive, m.EmailVerified,
		m.LastLoginAt,
		m.CreatedAt, m.UpdatedAt,
	)
}

// recipeToModel maps a domain recipe onto its persistence model.
func recipeToModel(r *recipe.Recipe) (*RecipeModel, error) {
	ingredients, err := json.Marshal(r.Ingredients())
	if err != nil {
		return nil, fmt.Errorf("failed to encode ingredients: %w", err)
	}
	instructions, err := json.Marshal(r.Instructions())
	if err != nil {
		return nil, fmt.Errorf("failed to encode instructions: %w", err)
	}

	return &RecipeModel{
		ID:              r.ID(),
		Title:           r.Title(),
		Description:     r.Description(),
		AuthorID:        r.AuthorID(),
		CategoryID:      r.CategoryID(),
		Ingredients:     JSONText(ingredients),
		Instructions:    JSONText(instructions),
		PrepTimeMinutes: r.PrepTimeMinutes(),
		CookTimeMinutes: r.CookTimeMinutes(),
		Servings:        r.Servings(),
		Calories:        r.Calories(),
		Difficulty:      string(r.Difficulty()),
		Region:          r.Region(),
		ImageURL:        r.ImageURL(),
		IsPublic:        r.IsPublic(),
		AIGenerated:     r.AIGenerated(),
		AIModel:         r.AIModel(),
		AverageRating:   r.AverageRating(),
		ViewCount:       r.ViewCount(),
		CreatedAt:       r.CreatedAt(),
		UpdatedAt:       r.UpdatedAt(),
	}, nil
}

// recipeFromModel rebuilds a domain recipe from its persistence model.
func recipeFromModel(m *RecipeModel) (*recipe.Recipe, error) {
	var ingredients []recipe.Ingredient
	if len(m.Ingredients) > 0 {
		if err := json.Unmarshal(m.Ingredients, &ingredients); err != nil {
			return nil, fmt.Errorf("failed to decode ingredients: %w", err)
		}
	}
	var instructions []string
	if len(m.Instructions) > 0 {
		if err := json.Unmarshal(m.Instructions, &instructions); err != nil {
			return nil, fmt.Errorf("failed to decode instructions: %w", err)
		}
	}

	return recipe.Reconstruct(
		m.ID,
		m.Title, m.Description,
		m.AuthorID,
		m.CategoryID,
		ingredients,
		instructions,
		m.PrepTimeMinutes, m.CookTimeMinutes, m.Servings, m.Calories,
		recipe.Difficulty(m.Difficulty),
		m.Region, m.ImageURL,
		m.IsPublic, m.AIGenerated,
		m.AIModel,
		m.AverageRating,
		m.ViewCount,
		m.CreatedAt, m.UpdatedAt,
	), nil
}

// categoryToModel maps a category onto its persistence model.
func categoryToModel(c *outbound.Category) *CategoryModel {
	return &CategoryModel{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func categoryFromModel(m *CategoryModel, recipeCount int64) *outbound.Category {
	return &outbound.Category{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		RecipeCount: recipeCount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func uuidsToStrings(ids []uuid.UUID) StringSlice {
	out := make(StringSlice, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func stringsToUUIDs(values StringSlice) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}
