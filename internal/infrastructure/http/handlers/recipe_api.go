package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	recipeapp "github.com/smartcooking/api/internal/application/recipe"
	"github.com/smartcooking/api/internal/domain/recipe"
)

// RecipeHandlers exposes the recipe catalog endpoints.
type RecipeHandlers struct {
	recipes *recipeapp.Service
	logger  *zap.Logger
}

// NewRecipeHandlers creates recipe handlers.
func NewRecipeHandlers(recipes *recipeapp.Service, logger *zap.Logger) *RecipeHandlers {
	return &RecipeHandlers{recipes: recipes, logger: logger.Named("recipe-api")}
}

// RecipeDTO is the recipe representation returned to clients.
type RecipeDTO struct {
	ID              uuid.UUID           `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	AuthorID        uuid.UUID           `json:"authorId"`
	CategoryID      *uuid.UUID          `json:"categoryId,omitempty"`
	Ingredients     []recipe.Ingredient `json:"ingredients"`
	Instructions    []string            `json:"instructions"`
	PrepTimeMinutes int                 `json:"prepTimeMinutes"`
	CookTimeMinutes int                 `json:"cookTimeMinutes"`
	Servings        int                 `json:"servings"`
	Calories        int                 `json:"calories"`
	Difficulty      string              `json:"difficulty"`
	Region          string              `json:"region,omitempty"`
	ImageURL        string              `json:"imageUrl,omitempty"`
	AIGenerated     bool                `json:"aiGenerated"`
	AverageRating   float64             `json:"averageRating"`
	ViewCount       int                 `json:"viewCount"`
	CreatedAt       string              `json:"createdAt"`
}

func recipeDTO(rec *recipe.Recipe) RecipeDTO {
	return RecipeDTO{
		ID:              rec.ID(),
		Title:           rec.Title(),
		Description:     rec.Description(),
		AuthorID:        rec.AuthorID(),
		CategoryID:      rec.CategoryID(),
		Ingredients:     rec.Ingredients(),
		Instructions:    rec.Instructions(),
		PrepTimeMinutes: rec.PrepTimeMinutes(),
		CookTimeMinutes: rec.CookTimeMinutes(),
		Servings:        rec.Servings(),
		Calories:        rec.Calories(),
		Difficulty:      string(rec.Difficulty()),
		Region:          rec.Region(),
		ImageURL:        rec.ImageURL(),
		AIGenerated:     rec.AIGenerated(),
		AverageRating:   rec.AverageRating(),
		ViewCount:       rec.ViewCount(),
		CreatedAt:       rec.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func recipeDTOs(recs []*recipe.Recipe) []RecipeDTO {
	out := make([]RecipeDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recipeDTO(rec))
	}
	return out
}

// List handles GET /api/recipes with optional search filters.
func (h *RecipeHandlers) List(w http.ResponseWriter, r *http.Request) {
	page, size := pagination(r)
	q := r.URL.Query()

	query := recipeapp.SearchQuery{
		Query:      q.Get("q"),
		Difficulty: q.Get("difficulty"),
		Region:     q.Get("region"),
		Page:       page,
		PageSize:   size,
		OrderBy:    q.Get("orderBy"),
		OrderDir:   q.Get("orderDir"),
	}
	if raw := q.Get("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(h.logger, w, http.StatusBadRequest, "Invalid category id")
			return
		}
		query.CategoryID = &id
	}
	if raw := q.Get("maxMinutes"); raw != "" {
		query.MaxMinutes, _ = strconv.Atoi(raw)
	}

	recs, total, err := h.recipes.Search(r.Context(), query)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{
		Success: true,
		Data:    PageResponse{Items: recipeDTOs(recs), Total: total, Page: page, PageSize: size},
	})
}

// Get handles GET /api/recipes/{id}
func (h *RecipeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid recipe id")
		return
	}

	rec, err := h.recipes.Get(r.Context(), id)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Data: recipeDTO(rec)})
}

// Create handles POST /api/recipes
func (h *RecipeHandlers) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	var cmd recipeapp.CreateCommand
	if !decodeAndValidate(h.logger, w, r, &cmd) {
		return
	}

	rec, err := h.recipes.Create(r.Context(), principal.User.ID(), cmd)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusCreated, APIResponse{
		Success: true,
		Message: "Recipe created",
		Data:    recipeDTO(rec),
	})
}

// Update handles PUT /api/recipes/{id}
func (h *RecipeHandlers) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid recipe id")
		return
	}

	var cmd recipeapp.CreateCommand
	if !decodeAndValidate(h.logger, w, r, &cmd) {
		return
	}

	rec, err := h.recipes.Update(r.Context(), principal.User, id, cmd)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Recipe updated", Data: recipeDTO(rec)})
}

// Delete handles DELETE /api/recipes/{id}
func (h *RecipeHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid recipe id")
		return
	}

	if err := h.recipes.Delete(r.Context(), principal.User, id); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Recipe deleted"})
}

// Mine handles GET /api/recipes/mine for the authenticated author.
func (h *RecipeHandlers) Mine(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}
	page, size := pagination(r)

	recs, total, err := h.recipes.ByAuthor(r.Context(), principal.User.ID(), page, size)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{
		Success: true,
		Data:    PageResponse{Items: recipeDTOs(recs), Total: total, Page: page, PageSize: size},
	})
}

// ByAuthor handles GET /api/recipes/author/{id}
func (h *RecipeHandlers) ByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid author id")
		return
	}
	page, size := pagination(r)

	recs, total, err := h.recipes.ByAuthor(r.Context(), authorID, page, size)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{
		Success: true,
		Data:    PageResponse{Items: recipeDTOs(recs), Total: total, Page: page, PageSize: size},
	})
}

// SaveGenerated handles POST /api/recipes/save-generated. It persists
// a recipe produced by the AI service under the caller's account.
func (h *RecipeHandlers) SaveGenerated(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	var body struct {
		recipeapp.CreateCommand
		Model string `json:"model"`
	}
	if !decodeAndValidate(h.logger, w, r, &body) {
		return
	}

	rec, err := h.recipes.SaveAIGenerated(r.Context(), principal.User.ID(), body.CreateCommand, body.Model)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusCreated, APIResponse{
		Success: true,
		Message: "Recipe saved",
		Data:    recipeDTO(rec),
	})
}

// Favorite handles POST /api/favorites/{id}
func (h *RecipeHandlers) Favorite(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid recipe id")
		return
	}

	if err := h.recipes.Favorite(r.Context(), principal.User.ID(), id); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Recipe favorited"})
}

// Unfavorite handles DELETE /api/favorites/{id}
func (h *RecipeHandlers) Unfavorite(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid recipe id")
		return
	}

	if err := h.recipes.Unfavorite(r.Context(), principal.User.ID(), id); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Recipe unfavorited"})
}

// Favorites handles GET /api/favorites
func (h *RecipeHandlers) Favorites(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}
	page, size := pagination(r)

	recs, total, err := h.recipes.Favorites(r.Context(), principal.User.ID(), page, size)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{
		Success: true,
		Data:    PageResponse{Items: recipeDTOs(recs), Total: total, Page: page, PageSize: size},
	})
}
