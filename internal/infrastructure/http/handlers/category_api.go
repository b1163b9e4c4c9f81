package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/ports/outbound"
)

// CategoryHandlers exposes category management. Listing is public,
// mutation is restricted to administrators by the route policy.
type CategoryHandlers struct {
	categories outbound.CategoryRepository
	logger     *zap.Logger
}

// NewCategoryHandlers creates category handlers.
func NewCategoryHandlers(categories outbound.CategoryRepository, logger *zap.Logger) *CategoryHandlers {
	return &CategoryHandlers{categories: categories, logger: logger.Named("category-api")}
}

// CategoryDTO is the category representation returned to clients.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	RecipeCount int64     `json:"recipeCount"`
}

type categoryCommand struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

func categoryDTO(c *outbound.Category) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		RecipeCount: c.RecipeCount,
	}
}

// List handles GET /api/categories
func (h *CategoryHandlers) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}

	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, categoryDTO(c))
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Data: dtos})
}

// Get handles GET /api/categories/{id}
func (h *CategoryHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid category id")
		return
	}

	category, err := h.categories.FindByID(r.Context(), id)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Data: categoryDTO(category)})
}

// Create handles POST /api/categories
func (h *CategoryHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var cmd categoryCommand
	if !decodeAndValidate(h.logger, w, r, &cmd) {
		return
	}

	category := &outbound.Category{
		Name:        cmd.Name,
		Description: cmd.Description,
		ImageURL:    cmd.ImageURL,
	}
	if err := h.categories.Create(r.Context(), category); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusCreated, APIResponse{
		Success: true,
		Message: "Category created",
		Data:    categoryDTO(category),
	})
}

// Update handles PUT /api/categories/{id}
func (h *CategoryHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid category id")
		return
	}

	var cmd categoryCommand
	if !decodeAndValidate(h.logger, w, r, &cmd) {
		return
	}

	category, err := h.categories.FindByID(r.Context(), id)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	category.Name = cmd.Name
	category.Description = cmd.Description
	category.ImageURL = cmd.ImageURL

	if err := h.categories.Update(r.Context(), category); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Category updated",
		Data:    categoryDTO(category),
	})
}

// Delete handles DELETE /api/categories/{id}
func (h *CategoryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid category id")
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Category deleted"})
}
