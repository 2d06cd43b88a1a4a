package services

import (
	"context"
	"strings"
	"time"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"

	"github.com/google/uuid"
)

// FoodStore persists foods
type FoodStore interface {
	Create(ctx context.Context, food *models.Food) error
	GetByID(ctx context.Context, id string) (*models.Food, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Food, error)
	ListByUser(ctx context.Context, userID string, filter models.FoodFilter) ([]*models.Food, error)
	Update(ctx context.Context, id string, upd models.FoodUpdate) (*models.Food, error)
	Delete(ctx context.Context, id string) error
	AssignMeal(ctx context.Context, mealID string, foodIDs []string) error
}

// FoodSpec describes a food to record. Macros are pointers so a missing value can be
// told apart from zero.
type FoodSpec struct {
	FoodName    string     `json:"food_name"`
	Calories    *float64   `json:"calories"`
	Protein     *float64   `json:"protein"`
	Carbs       *float64   `json:"carbs"`
	Fats        *float64   `json:"fats"`
	PortionSize string     `json:"portion_size"`
	MealTime    string     `json:"meal_time"`
	Date        *time.Time `json:"date"`
}

// FoodService handles food-related business logic
type FoodService struct {
	foods FoodStore
	now   func() time.Time
}

// NewFoodService creates a new food service
func NewFoodService(foods FoodStore) *FoodService {
	return &FoodService{foods: foods, now: time.Now}
}

type macro struct {
	field string
	value *float64
}

func macros(calories, protein, carbs, fats *float64) []macro {
	return []macro{{"calories", calories}, {"protein", protein}, {"carbs", carbs}, {"fats", fats}}
}

// buildFood validates spec and turns it into a record owned by userID. Meal time and
// macros are all required; there is no breakfast default.
func buildFood(userID string, spec FoodSpec, now time.Time) (*models.Food, error) {
	if err := requireText("food_name", spec.FoodName); err != nil {
		return nil, err
	}
	for _, m := range macros(spec.Calories, spec.Protein, spec.Carbs, spec.Fats) {
		if err := requireMacro(m.field, m.value); err != nil {
			return nil, err
		}
	}
	mealTime, err := parseMealTime("meal_time", spec.MealTime)
	if err != nil {
		return nil, err
	}

	date := now
	if spec.Date != nil && !spec.Date.IsZero() {
		date = *spec.Date
	}

	return &models.Food{
		ID:          uuid.New().String(),
		UserID:      userID,
		FoodName:    strings.TrimSpace(spec.FoodName),
		Calories:    *spec.Calories,
		Protein:     *spec.Protein,
		Carbs:       *spec.Carbs,
		Fats:        *spec.Fats,
		PortionSize: strings.TrimSpace(spec.PortionSize),
		MealTime:    mealTime,
		Date:        date,
		CreatedAt:   now,
	}, nil
}

// CreateFood records a food for userID
func (s *FoodService) CreateFood(ctx context.Context, userID string, spec FoodSpec) (*models.Food, error) {
	if err := validateID("user_id", userID); err != nil {
		return nil, err
	}
	food, err := buildFood(userID, spec, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.foods.Create(ctx, food); err != nil {
		return nil, err
	}
	return food, nil
}

// ListFoodsForUser returns a user's foods, most recently created first
func (s *FoodService) ListFoodsForUser(ctx context.Context, userID string, filter models.FoodFilter) ([]*models.Food, error) {
	if err := validateID("user_id", userID); err != nil {
		return nil, err
	}
	mt, err := optionalMealTime("meal_time", filter.MealTime)
	if err != nil {
		return nil, err
	}
	filter.MealTime = mt
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return nil, apperr.Invalid("to", "must be after from")
	}
	return s.foods.ListByUser(ctx, userID, filter)
}

// GetFood retrieves a food by ID
func (s *FoodService) GetFood(ctx context.Context, id string) (*models.Food, error) {
	if err := validateID("food_id", id); err != nil {
		return nil, err
	}
	return s.foods.GetByID(ctx, id)
}

// UpdateFood replaces the provided fields of a food owned by actorID
func (s *FoodService) UpdateFood(ctx context.Context, actorID, id string, upd models.FoodUpdate) (*models.Food, error) {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return nil, err
	}
	if upd.FoodName != nil {
		if err := requireText("food_name", *upd.FoodName); err != nil {
			return nil, err
		}
	}
	for _, m := range macros(upd.Calories, upd.Protein, upd.Carbs, upd.Fats) {
		if m.value != nil && *m.value < 0 {
			return nil, apperr.Invalid(m.field, "must not be negative")
		}
	}
	if upd.MealTime != nil {
		mt, err := parseMealTime("meal_time", string(*upd.MealTime))
		if err != nil {
			return nil, err
		}
		upd.MealTime = &mt
	}
	return s.foods.Update(ctx, id, upd)
}

// DeleteFood deletes a food owned by actorID
func (s *FoodService) DeleteFood(ctx context.Context, actorID, id string) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	return s.foods.Delete(ctx, id)
}

func (s *FoodService) owned(ctx context.Context, actorID, id string) (*models.Food, error) {
	food, err := s.GetFood(ctx, id)
	if err != nil {
		return nil, err
	}
	if food.UserID != actorID {
		return nil, apperr.ErrForbidden
	}
	return food, nil
}
