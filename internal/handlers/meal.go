package handlers

import (
	"net/http"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/middleware"
	"food-network-backend/internal/models"
	"food-network-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MealHandler handles meal-related HTTP requests
type MealHandler struct {
	mealService *services.MealService
}

// NewMealHandler creates a new meal handler
func NewMealHandler(mealService *services.MealService) *MealHandler {
	return &MealHandler{mealService: mealService}
}

// CreateMealRequest creates a meal either from new food specs or from existing food ids
type CreateMealRequest struct {
	MealTime string        `json:"meal_time"`
	Date     string        `json:"date"`
	Foods    []FoodRequest `json:"foods"`
	FoodIDs  []string      `json:"food_ids"`
}

// AddFoodRequest represents the request body for adding a food to a meal
type AddFoodRequest struct {
	FoodID string `json:"food_id"`
}

// CreateMeal handles POST /api/v1/meals
func (h *MealHandler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateMealRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date == "" {
		respondServiceError(w, r, apperr.Invalid("date", "is required"), "create meal")
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		respondServiceError(w, r, err, "create meal")
		return
	}

	if len(req.Foods) > 0 {
		specs := make([]services.FoodSpec, 0, len(req.Foods))
		for _, f := range req.Foods {
			spec, err := f.spec()
			if err != nil {
				respondServiceError(w, r, err, "create meal")
				return
			}
			specs = append(specs, spec)
		}

		res, err := h.mealService.CreateMealWithFoods(ctx, userID, req.MealTime, date, specs)
		if err != nil {
			respondServiceError(w, r, err, "create meal")
			return
		}

		log.Info().
			Str("user_id", userID).
			Str("meal_id", res.Meal.ID).
			Int("foods", len(res.FoodIDs)).
			Msg("Meal created")

		respondJSON(w, http.StatusCreated, res)
		return
	}

	if req.FoodIDs == nil {
		respondServiceError(w, r, apperr.Invalid("foods", "or food_ids is required"), "create meal")
		return
	}

	meal, err := h.mealService.CreateMeal(ctx, userID, req.MealTime, date, req.FoodIDs)
	if err != nil {
		respondServiceError(w, r, err, "create meal")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("meal_id", meal.ID).
		Int("foods", len(meal.Foods)).
		Msg("Meal created")

	respondJSON(w, http.StatusCreated, meal)
}

// ListMeals handles GET /api/v1/users/{user_id}/meals
func (h *MealHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRangeFromQuery(r)
	if err != nil {
		respondServiceError(w, r, err, "list meals")
		return
	}
	filter := models.MealFilter{
		From:     from,
		To:       to,
		MealTime: models.MealTime(r.URL.Query().Get("meal_time")),
	}

	meals, err := h.mealService.ListMealsForUser(r.Context(), chi.URLParam(r, "user_id"), filter)
	if err != nil {
		respondServiceError(w, r, err, "list meals")
		return
	}
	respondJSON(w, http.StatusOK, meals)
}

// GetMeal handles GET /api/v1/meals/{meal_id}
func (h *MealHandler) GetMeal(w http.ResponseWriter, r *http.Request) {
	meal, err := h.mealService.GetMeal(r.Context(), chi.URLParam(r, "meal_id"))
	if err != nil {
		respondServiceError(w, r, err, "get meal")
		return
	}
	respondJSON(w, http.StatusOK, meal)
}

// AddFood handles POST /api/v1/meals/{meal_id}/foods
func (h *MealHandler) AddFood(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req AddFoodRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	meal, err := h.mealService.AddFoodToMeal(ctx, userID, chi.URLParam(r, "meal_id"), req.FoodID)
	if err != nil {
		respondServiceError(w, r, err, "add food to meal")
		return
	}
	respondJSON(w, http.StatusOK, meal)
}

// DeleteMeal handles DELETE /api/v1/meals/{meal_id}
func (h *MealHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	mealID := chi.URLParam(r, "meal_id")

	if err := h.mealService.DeleteMeal(ctx, userID, mealID); err != nil {
		respondServiceError(w, r, err, "delete meal")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("meal_id", mealID).
		Msg("Meal deleted")

	w.WriteHeader(http.StatusNoContent)
}
