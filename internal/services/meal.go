package services

import (
	"context"
	"fmt"
	"time"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MealStore persists meals
type MealStore interface {
	Create(ctx context.Context, meal *models.Meal) error
	CreateWithFoods(ctx context.Context, meal *models.Meal, foods []*models.Food) error
	GetByID(ctx context.Context, id string) (*models.Meal, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Meal, error)
	ListByUser(ctx context.Context, userID string, filter models.MealFilter) ([]*models.Meal, error)
	AppendFood(ctx context.Context, mealID, foodID string) error
	Delete(ctx context.Context, id string) error
}

// MealService handles meal-related business logic
type MealService struct {
	meals MealStore
	foods FoodStore
	users UserStore
	now   func() time.Time
}

// NewMealService creates a new meal service
func NewMealService(meals MealStore, foods FoodStore, users UserStore) *MealService {
	return &MealService{meals: meals, foods: foods, users: users, now: time.Now}
}

// CreateMealResult reports a meal built from freshly entered foods. Warnings lists the
// bookkeeping steps that did not complete; the meal and its foods are valid regardless.
type CreateMealResult struct {
	Meal     *models.PopulatedMeal `json:"meal"`
	FoodIDs  []string              `json:"food_ids"`
	Warnings []string              `json:"warnings,omitempty"`
}

// CreateMealWithFoods assembles a meal from food specs.
//
//  1. every spec is validated; nothing is written if any is malformed
//  2. the foods and the meal referencing them are inserted in one transaction (required)
//  3. each food's meal reference is back-filled and the meal id is appended to the
//     user's meal list (best-effort, failures become warnings)
//
// A spec without a meal time inherits the meal's; a spec with a different one is rejected.
func (s *MealService) CreateMealWithFoods(ctx context.Context, userID, mealTime string, date time.Time, specs []FoodSpec) (*CreateMealResult, error) {
	if err := validateID("user_id", userID); err != nil {
		return nil, err
	}
	mt, err := parseMealTime("meal_time", mealTime)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, apperr.Invalid("date", "is required")
	}
	if len(specs) == 0 {
		return nil, apperr.Invalid("foods", "must contain at least one food")
	}

	now := s.now()
	foods := make([]*models.Food, 0, len(specs))
	foodIDs := make([]string, 0, len(specs))
	for i, spec := range specs {
		if spec.MealTime == "" {
			spec.MealTime = string(mt)
		}
		if spec.Date == nil {
			spec.Date = &date
		}
		food, err := buildFood(userID, spec, now.Add(time.Duration(i)*time.Microsecond))
		if err != nil {
			return nil, fmt.Errorf("foods[%d]: %w", i, err)
		}
		if food.MealTime != mt {
			return nil, fmt.Errorf("foods[%d]: %w", i, apperr.Invalid("meal_time", "must match the meal's meal time"))
		}
		foods = append(foods, food)
		foodIDs = append(foodIDs, food.ID)
	}

	meal := &models.Meal{
		ID:        uuid.New().String(),
		UserID:    userID,
		MealTime:  mt,
		Date:      date,
		Foods:     foodIDs,
		CreatedAt: now,
	}
	if err := s.meals.CreateWithFoods(ctx, meal, foods); err != nil {
		return nil, err
	}

	result := &CreateMealResult{FoodIDs: foodIDs}

	if err := s.foods.AssignMeal(ctx, meal.ID, foodIDs); err != nil {
		log.Warn().Err(err).Str("meal_id", meal.ID).Msg("Failed to back-fill meal on foods")
		result.Warnings = append(result.Warnings, "foods were not linked back to the meal")
	} else {
		for _, f := range foods {
			f.MealID = &meal.ID
		}
	}
	if err := s.users.AppendMeal(ctx, userID, meal.ID); err != nil {
		log.Warn().Err(err).Str("meal_id", meal.ID).Str("user_id", userID).Msg("Failed to append meal to user")
		result.Warnings = append(result.Warnings, "meal was not added to the user's meal list")
	}

	result.Meal = &models.PopulatedMeal{Meal: *meal, Items: foods}
	return result, nil
}

// CreateMeal creates a meal from foods that already exist. Every food must belong to userID.
func (s *MealService) CreateMeal(ctx context.Context, userID, mealTime string, date time.Time, foodIDs []string) (*models.PopulatedMeal, error) {
	if err := validateID("user_id", userID); err != nil {
		return nil, err
	}
	mt, err := parseMealTime("meal_time", mealTime)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, apperr.Invalid("date", "is required")
	}
	if foodIDs == nil {
		foodIDs = []string{}
	}
	for i, id := range foodIDs {
		if err := validateID(fmt.Sprintf("food_ids[%d]", i), id); err != nil {
			return nil, err
		}
	}

	foods, err := s.foods.GetByIDs(ctx, foodIDs)
	if err != nil {
		return nil, err
	}
	if len(foods) != len(foodIDs) {
		return nil, apperr.NotFound("food")
	}
	for _, f := range foods {
		if f.UserID != userID {
			return nil, fmt.Errorf("food %s: %w", f.ID, apperr.ErrForbidden)
		}
	}

	meal := &models.Meal{
		ID:        uuid.New().String(),
		UserID:    userID,
		MealTime:  mt,
		Date:      date,
		Foods:     foodIDs,
		CreatedAt: s.now(),
	}
	if err := s.meals.Create(ctx, meal); err != nil {
		return nil, err
	}

	if err := s.foods.AssignMeal(ctx, meal.ID, foodIDs); err != nil {
		log.Warn().Err(err).Str("meal_id", meal.ID).Msg("Failed to back-fill meal on foods")
	}
	if err := s.users.AppendMeal(ctx, userID, meal.ID); err != nil {
		log.Warn().Err(err).Str("meal_id", meal.ID).Str("user_id", userID).Msg("Failed to append meal to user")
	}

	return &models.PopulatedMeal{Meal: *meal, Items: foods}, nil
}

// GetMeal retrieves a meal with its foods in stored order
func (s *MealService) GetMeal(ctx context.Context, id string) (*models.PopulatedMeal, error) {
	if err := validateID("meal_id", id); err != nil {
		return nil, err
	}
	meal, err := s.meals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.foods.GetByIDs(ctx, meal.Foods)
	if err != nil {
		return nil, err
	}
	return &models.PopulatedMeal{Meal: *meal, Items: items}, nil
}

// ListMealsForUser retrieves a user's meals, latest first, with foods populated
func (s *MealService) ListMealsForUser(ctx context.Context, userID string, filter models.MealFilter) ([]*models.PopulatedMeal, error) {
	if err := validateID("user_id", userID); err != nil {
		return nil, err
	}
	mt, err := optionalMealTime("meal_time", filter.MealTime)
	if err != nil {
		return nil, err
	}
	filter.MealTime = mt

	meals, err := s.meals.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return populateMeals(ctx, s.foods, meals)
}

// populateMeals expands the food references of meals with one batched lookup. Items keep
// the order of each meal's food list.
func populateMeals(ctx context.Context, foods FoodStore, meals []*models.Meal) ([]*models.PopulatedMeal, error) {
	var ids []string
	for _, m := range meals {
		ids = append(ids, m.Foods...)
	}
	found, err := foods.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Food, len(found))
	for _, f := range found {
		byID[f.ID] = f
	}

	populated := make([]*models.PopulatedMeal, 0, len(meals))
	for _, m := range meals {
		items := make([]*models.Food, 0, len(m.Foods))
		for _, id := range m.Foods {
			if f, ok := byID[id]; ok {
				items = append(items, f)
			}
		}
		populated = append(populated, &models.PopulatedMeal{Meal: *m, Items: items})
	}
	return populated, nil
}

// AddFoodToMeal appends an existing food to a meal. Both must belong to actorID. A
// differing meal time is allowed but logged.
func (s *MealService) AddFoodToMeal(ctx context.Context, actorID, mealID, foodID string) (*models.PopulatedMeal, error) {
	if err := validateID("meal_id", mealID); err != nil {
		return nil, err
	}
	if err := validateID("food_id", foodID); err != nil {
		return nil, err
	}
	meal, err := s.meals.GetByID(ctx, mealID)
	if err != nil {
		return nil, err
	}
	food, err := s.foods.GetByID(ctx, foodID)
	if err != nil {
		return nil, err
	}
	if meal.UserID != actorID || food.UserID != actorID {
		return nil, apperr.ErrForbidden
	}
	for _, id := range meal.Foods {
		if id == foodID {
			return nil, fmt.Errorf("%w: food is already part of this meal", apperr.ErrConflict)
		}
	}
	if food.MealTime != meal.MealTime {
		log.Warn().
			Str("meal_id", mealID).
			Str("food_id", foodID).
			Str("meal_time", string(meal.MealTime)).
			Str("food_meal_time", string(food.MealTime)).
			Msg("Food meal time differs from meal")
	}

	if err := s.meals.AppendFood(ctx, mealID, foodID); err != nil {
		return nil, err
	}
	if err := s.foods.AssignMeal(ctx, mealID, []string{foodID}); err != nil {
		log.Warn().Err(err).Str("meal_id", mealID).Str("food_id", foodID).Msg("Failed to back-fill meal on food")
	}
	return s.GetMeal(ctx, mealID)
}

// DeleteMeal deletes a meal owned by actorID. Its foods remain as standalone records.
func (s *MealService) DeleteMeal(ctx context.Context, actorID, mealID string) error {
	if err := validateID("meal_id", mealID); err != nil {
		return err
	}
	meal, err := s.meals.GetByID(ctx, mealID)
	if err != nil {
		return err
	}
	if meal.UserID != actorID {
		return apperr.ErrForbidden
	}
	if err := s.meals.Delete(ctx, mealID); err != nil {
		return err
	}
	if err := s.users.RemoveMeal(ctx, actorID, mealID); err != nil {
		log.Warn().Err(err).Str("meal_id", mealID).Str("user_id", actorID).Msg("Failed to remove meal from user")
	}
	return nil
}
