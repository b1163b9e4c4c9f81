package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/ports/outbound"
)

// PlannerHandlers exposes weekly meal plans and shopping lists. All
// resources are owned by the authenticated user.
type PlannerHandlers struct {
	planner outbound.PlannerRepository
	recipes outbound.RecipeRepository
	logger  *zap.Logger
}

// NewPlannerHandlers creates meal plan and shopping list handlers.
func NewPlannerHandlers(planner outbound.PlannerRepository, recipes outbound.RecipeRepository, logger *zap.Logger) *PlannerHandlers {
	return &PlannerHandlers{planner: planner, recipes: recipes, logger: logger.Named("planner-api")}
}

type mealPlanCommand struct {
	Name      string                   `json:"name" validate:"required,min=2,max=255"`
	WeekStart time.Time                `json:"weekStart" validate:"required"`
	Entries   []outbound.MealPlanEntry `json:"entries"`
}

type shoppingListCommand struct {
	Name  string                  `json:"name" validate:"required,min=2,max=255"`
	Items []outbound.ShoppingItem `json:"items"`
}

// ListMealPlans handles GET /api/meal-plans
func (h *PlannerHandlers) ListMealPlans(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	plans, err := h.planner.ListMealPlansByUser(r.Context(), principal.User.ID())
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Data: plans})
}

// GetMealPlan handles GET /api/meal-plans/{id}
func (h *PlannerHandlers) GetMealPlan(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	plan, ok := h.ownedMealPlan(w, r, principal.User.ID())
	if !ok {
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Data: plan})
}

// CreateMealPlan handles POST /api/meal-plans
func (h *PlannerHandlers) CreateMealPlan(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	var cmd mealPlanCommand
	if !decodeAndValidate(h.logger, w, r, &cmd) {
		return
	}

	plan := &outbound.MealPlan{
		UserID:    principal.User.ID(),
		Name:      cmd.Name,
		WeekStart: cmd.WeekStart,
		Entries:   cmd.Entries,
	}
	if err := h.planner.CreateMealPlan(r.Context(), plan); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusCreated, APIResponse{Success: true, Message: "Meal plan created", Data: plan})
}

// UpdateMealPlan handles PUT /api/meal-plans/{id}
func (h *PlannerHandlers) UpdateMealPlan(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	plan, ok := h.ownedMealPlan(w, r, principal.User.ID())
	if !ok {
		return
	}

	var cmd mealPlanCommand
	if !decodeAndValidate(h.logger, w, r, &cmd) {
		return
	}
	plan.Name = cmd.Name
	plan.WeekStart = cmd.WeekStart
	plan.Entries = cmd.Entries

	if err := h.planner.UpdateMealPlan(r.Context(), plan); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Meal plan updated", Data: plan})
}

// DeleteMealPlan handles DELETE /api/meal-plans/{id}
func (h *PlannerHandlers) DeleteMealPlan(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	plan, ok := h.ownedMealPlan(w, r, principal.User.ID())
	if !ok {
		return
	}

	if err := h.planner.DeleteMealPlan(r.Context(), plan.ID); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Meal plan deleted"})
}

// ListShoppingLists handles GET /api/shopping-lists
func (h *PlannerHandlers) ListShoppingLists(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	lists, err := h.planner.ListShoppingListsByUser(r.Context(), principal.User.ID())
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Data: lists})
}

// GetShoppingList handles GET /api/shopping-lists/{id}
func (h *PlannerHandlers) GetShoppingList(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	list, ok := h.ownedShoppingList(w, r, principal.User.ID())
	if !ok {
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Data: list})
}

// CreateShoppingList handles POST /api/shopping-lists
func (h *PlannerHandlers) CreateShoppingList(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	var cmd shoppingListCommand
	if !decodeAndValidate(h.logger, w, r, &cmd) {
		return
	}

	list := &outbound.ShoppingList{
		UserID: principal.User.ID(),
		Name:   cmd.Name,
		Items:  cmd.Items,
	}
	if err := h.planner.CreateShoppingList(r.Context(), list); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusCreated, APIResponse{Success: true, Message: "Shopping list created", Data: list})
}

// UpdateShoppingList handles PUT /api/shopping-lists/{id}
func (h *PlannerHandlers) UpdateShoppingList(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	list, ok := h.ownedShoppingList(w, r, principal.User.ID())
	if !ok {
		return
	}

	var cmd shoppingListCommand
	if !decodeAndValidate(h.logger, w, r, &cmd) {
		return
	}
	list.Name = cmd.Name
	list.Items = cmd.Items

	if err := h.planner.UpdateShoppingList(r.Context(), list); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Shopping list updated", Data: list})
}

// DeleteShoppingList handles DELETE /api/shopping-lists/{id}
func (h *PlannerHandlers) DeleteShoppingList(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	list, ok := h.ownedShoppingList(w, r, principal.User.ID())
	if !ok {
		return
	}

	if err := h.planner.DeleteShoppingList(r.Context(), list.ID); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, APIResponse{Success: true, Message: "Shopping list deleted"})
}

// GenerateFromMealPlan handles POST /api/shopping-lists/generate. It
// collects the ingredients of every recipe in a meal plan into a new
// shopping list, merging duplicate ingredient names.
func (h *PlannerHandlers) GenerateFromMealPlan(w http.ResponseWriter, r *http.Request) {
	principal, ok := mustPrincipal(h.logger, w, r)
	if !ok {
		return
	}

	var body struct {
		MealPlanID uuid.UUID `json:"mealPlanId" validate:"required"`
		Name       string    `json:"name"`
	}
	if !decodeAndValidate(h.logger, w, r, &body) {
		return
	}

	plan, err := h.planner.FindMealPlanByID(r.Context(), body.MealPlanID)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	if plan.UserID != principal.User.ID() {
		writeError(h.logger, w, http.StatusForbidden, "Meal plan does not belong to this user")
		return
	}

	// Merge duplicate ingredients across dishes, summing amounts when
	// the unit matches.
	seen := make(map[string]int)
	amounts := make(map[string]float64)
	var items []outbound.ShoppingItem
	for _, entry := range plan.Entries {
		rec, err := h.recipes.FindByID(r.Context(), entry.RecipeID)
		if err != nil {
			h.logger.Warn("Skipping missing recipe in meal plan",
				zap.String("recipe_id", entry.RecipeID.String()), zap.Error(err))
			continue
		}
		for _, ing := range rec.Ingredients() {
			key := ing.Name + "/" + ing.Unit
			if idx, dup := seen[key]; dup {
				amounts[key] += ing.Amount
				items[idx].Amount = strconv.FormatFloat(amounts[key], 'f', -1, 64)
				continue
			}
			seen[key] = len(items)
			amounts[key] = ing.Amount
			items = append(items, outbound.ShoppingItem{
				Name:   ing.Name,
				Amount: strconv.FormatFloat(ing.Amount, 'f', -1, 64),
				Unit:   ing.Unit,
			})
		}
	}

	name := body.Name
	if name == "" {
		name = "Shopping list for " + plan.Name
	}
	list := &outbound.ShoppingList{
		UserID:     principal.User.ID(),
		Name:       name,
		MealPlanID: &plan.ID,
		Items:      items,
	}
	if err := h.planner.CreateShoppingList(r.Context(), list); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusCreated, APIResponse{Success: true, Message: "Shopping list generated", Data: list})
}

func (h *PlannerHandlers) ownedMealPlan(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*outbound.MealPlan, bool) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid meal plan id")
		return nil, false
	}
	plan, err := h.planner.FindMealPlanByID(r.Context(), id)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return nil, false
	}
	if plan.UserID != userID {
		writeError(h.logger, w, http.StatusForbidden, "Meal plan does not belong to this user")
		return nil, false
	}
	return plan, true
}

func (h *PlannerHandlers) ownedShoppingList(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*outbound.ShoppingList, bool) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid shopping list id")
		return nil, false
	}
	list, err := h.planner.FindShoppingListByID(r.Context(), id)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return nil, false
	}
	if list.UserID != userID {
		writeError(h.logger, w, http.StatusForbidden, "Shopping list does not belong to this user")
		return nil, false
	}
	return list, true
}
