package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/ports/outbound"
)

// LearningHandlers exposes cooking course paths and per user
// progress tracking.
type LearningHandlers struct {
	learning outbound.LearningRepository
	logger   *zap.Logger
}

// NewLearningHandlers creates learning path handlers.
func NewLearningHandlers(learning outbound.LearningRepository, logger *zap.Logger) *LearningHandlers {
	return &LearningHandlers{learning: learning, logger: logger.Named("learning-api")}
}

type learningPathCommand struct {
	Title         string      `json:"title" validate:"required,min=3,max=255"`
	Description   string      `json:"description"`
	Level         string      `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	DurationWeeks int         `json:"durationWeeks" validate:"gte=1,lte=52"`
	RecipeIDs     []uuid.UUID `json:"recipeIds" validate:"required,min=1"`
}

// ListPaths handles GET /api/learning/paths
func (h *LearningHandlers) ListPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := h.learning.ListPaths(r.Context())
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Data: paths})
}

// GetPath handles GET /api/learning/paths/{id}
func (h *LearningHandlers) GetPath(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid path id")
		return
	}

	path, err := h.learning.FindPathByID(r.Context(), id)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Data: path})
}

// CreatePath handles POST /api/learning/paths
func (h *LearningHandlers) CreatePath(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	var cmd learningPathCommand
	if !decodeAndValidate(h.logger, w, r, &cmd) {
		return
	}

	path := &outbound.LearningPath{
		Title:         cmd.Title,
		Description:   cmd.Description,
		Level:         cmd.Level,
		DurationWeeks: cmd.DurationWeeks,
		TotalDishes:   len(cmd.RecipeIDs),
		RecipeIDs:     cmd.RecipeIDs,
		CreatedBy:     principal.User.ID(),
	}
	if err := h.learning.CreatePath(r.Context(), path); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusCreated, APIResponse{Success: true, Message: "Learning path created", Data: path})
}

// UpdatePath handles PUT /api/learning/paths/{id}
func (h *LearningHandlers) UpdatePath(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid path id")
		return
	}

	var cmd learningPathCommand
	if !decodeAndValidate(h.logger, w, r, &cmd) {
		return
	}

	path, err := h.learning.FindPathByID(r.Context(), id)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	path.Title = cmd.Title
	path.Description = cmd.Description
	path.Level = cmd.Level
	path.DurationWeeks = cmd.DurationWeeks
	path.RecipeIDs = cmd.RecipeIDs
	path.TotalDishes = len(cmd.RecipeIDs)

	if err := h.learning.UpdatePath(r.Context(), path); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Learning path updated", Data: path})
}

// DeletePath handles DELETE /api/learning/paths/{id}
func (h *LearningHandlers) DeletePath(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid path id")
		return
	}

	if err := h.learning.DeletePath(r.Context(), id); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Learning path deleted"})
}

// MyProgress handles GET /api/learning/progress for the caller.
func (h *LearningHandlers) MyProgress(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	progress, err := h.learning.ListProgressByUser(r.Context(), principal.User.ID())
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Data: progress})
}

// Enroll handles POST /api/learning/paths/{id}/enroll. Enrolling
// twice is a no-op that returns the existing progress.
func (h *LearningHandlers) Enroll(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}
	pathID, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid path id")
		return
	}

	if _, err := h.learning.FindPathByID(r.Context(), pathID); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}

	if progress, err := h.learning.FindProgress(r.Context(), principal.User.ID(), pathID); err == nil {
		writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Already enrolled", Data: progress})
		return
	}

	progress := &outbound.LearningProgress{
		UserID:    principal.User.ID(),
		PathID:    pathID,
		StartedAt: time.Now(),
	}
	if err := h.learning.SaveProgress(r.Context(), progress); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusCreated, APIResponse{Success: true, Message: "Enrolled", Data: progress})
}

// CompleteRecipe handles POST /api/learning/paths/{id}/complete. It
// records a finished dish and recomputes the completion percentage.
func (h *LearningHandlers) CompleteRecipe(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}
	pathID, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid path id")
		return
	}

	var body struct {
		RecipeID uuid.UUID `json:"recipeId" validate:"required"`
	}
	if !decodeAndValidate(h.logger, w, r, &body) {
		return
	}

	path, err := h.learning.FindPathByID(r.Context(), pathID)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	if !containsUUID(path.RecipeIDs, body.RecipeID) {
		writeError(h.logger, w, http.StatusBadRequest, "Recipe is not part of this path")
		return
	}

	progress, err := h.learning.FindProgress(r.Context(), principal.User.ID(), pathID)
	if err != nil {
		progress = &outbound.LearningProgress{
			UserID:    principal.User.ID(),
			PathID:    pathID,
			StartedAt: time.Now(),
		}
	}
	if !containsUUID(progress.CompletedRecipes, body.RecipeID) {
		progress.CompletedRecipes = append(progress.CompletedRecipes, body.RecipeID)
	}
	if len(path.RecipeIDs) > 0 {
		progress.PercentComplete = float64(len(progress.CompletedRecipes)) / float64(len(path.RecipeIDs)) * 100
	}

	if err := h.learning.SaveProgress(r.Context(), progress); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Progress recorded", Data: progress})
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
