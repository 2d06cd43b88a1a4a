package handlers

import (
	"net/http"
	"time"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/middleware"
	"food-network-backend/internal/models"
	"food-network-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FoodHandler handles food-related HTTP requests
type FoodHandler struct {
	foodService *services.FoodService
}

// NewFoodHandler creates a new food handler
func NewFoodHandler(foodService *services.FoodService) *FoodHandler {
	return &FoodHandler{foodService: foodService}
}

// FoodRequest is a food spec whose date may be given as YYYY-MM-DD
type FoodRequest struct {
	services.FoodSpec
	Date string `json:"date"`
}

func (req FoodRequest) spec() (services.FoodSpec, error) {
	spec := req.FoodSpec
	spec.Date = nil
	if req.Date != "" {
		d, err := parseDate("date", req.Date)
		if err != nil {
			return spec, err
		}
		spec.Date = &d
	}
	return spec, nil
}

// CreateFood handles POST /api/v1/foods
func (h *FoodHandler) CreateFood(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req FoodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	spec, err := req.spec()
	if err != nil {
		respondServiceError(w, r, err, "create food")
		return
	}

	food, err := h.foodService.CreateFood(ctx, userID, spec)
	if err != nil {
		respondServiceError(w, r, err, "create food")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("food_id", food.ID).
		Msg("Food created")

	respondJSON(w, http.StatusCreated, food)
}

// ListFoods handles GET /api/v1/users/{user_id}/foods
func (h *FoodHandler) ListFoods(w http.ResponseWriter, r *http.Request) {
	filter, err := foodFilterFromQuery(r)
	if err != nil {
		respondServiceError(w, r, err, "list foods")
		return
	}

	foods, err := h.foodService.ListFoodsForUser(r.Context(), chi.URLParam(r, "user_id"), filter)
	if err != nil {
		respondServiceError(w, r, err, "list foods")
		return
	}
	respondJSON(w, http.StatusOK, foods)
}

// GetFood handles GET /api/v1/foods/{food_id}
func (h *FoodHandler) GetFood(w http.ResponseWriter, r *http.Request) {
	food, err := h.foodService.GetFood(r.Context(), chi.URLParam(r, "food_id"))
	if err != nil {
		respondServiceError(w, r, err, "get food")
		return
	}
	respondJSON(w, http.StatusOK, food)
}

// UpdateFood handles PATCH /api/v1/foods/{food_id}
func (h *FoodHandler) UpdateFood(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var upd models.FoodUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}

	food, err := h.foodService.UpdateFood(ctx, userID, chi.URLParam(r, "food_id"), upd)
	if err != nil {
		respondServiceError(w, r, err, "update food")
		return
	}
	respondJSON(w, http.StatusOK, food)
}

// DeleteFood handles DELETE /api/v1/foods/{food_id}
func (h *FoodHandler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	foodID := chi.URLParam(r, "food_id")

	if err := h.foodService.DeleteFood(ctx, userID, foodID); err != nil {
		respondServiceError(w, r, err, "delete food")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("food_id", foodID).
		Msg("Food deleted")

	w.WriteHeader(http.StatusNoContent)
}

// foodFilterFromQuery reads from, to, date and meal_time. date selects a single day.
func foodFilterFromQuery(r *http.Request) (models.FoodFilter, error) {
	from, to, err := dateRangeFromQuery(r)
	if err != nil {
		return models.FoodFilter{}, err
	}
	return models.FoodFilter{
		From:     from,
		To:       to,
		MealTime: models.MealTime(r.URL.Query().Get("meal_time")),
	}, nil
}

func dateRangeFromQuery(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	var from, to time.Time

	if day := q.Get("date"); day != "" {
		d, err := parseDate("date", day)
		if err != nil {
			return from, to, err
		}
		return d, d.AddDate(0, 0, 1), nil
	}
	if raw := q.Get("from"); raw != "" {
		d, err := parseDate("from", raw)
		if err != nil {
			return from, to, err
		}
		from = d
	}
	if raw := q.Get("to"); raw != "" {
		d, err := parseDate("to", raw)
		if err != nil {
			return from, to, err
		}
		to = d
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return from, to, apperr.Invalid("to", "must be after from")
	}
	return from, to, nil
}
