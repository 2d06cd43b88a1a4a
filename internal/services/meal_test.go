package services

import (
	"context"
	"testing"
	"time"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"
	"food-network-backend/internal/services/servicestest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mealFixture struct {
	svc   *MealService
	store *servicestest.Store
	users *servicestest.Users
	foods *servicestest.Foods
	meals *servicestest.Meals
	owner *models.User
}

func newMealFixture() *mealFixture {
	store := servicestest.New()
	return &mealFixture{
		svc:   NewMealService(store.Meals, store.Foods, store.Users),
		store: store,
		users: store.Users,
		foods: store.Foods,
		meals: store.Meals,
		owner: store.Users.Add("Ada", "A", "a@x.edu"),
	}
}

func namedSpec(name string) FoodSpec {
	spec := appleSpec()
	spec.FoodName = name
	spec.MealTime = ""
	return spec
}

var lunchDay = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func TestCreateMealWithFoodsKeepsOrder(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()

	res, err := fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "lunch", lunchDay, []FoodSpec{namedSpec("f1"), namedSpec("f2")})
	require.NoError(t, err)
	require.Len(t, res.FoodIDs, 2)
	assert.Empty(t, res.Warnings)

	meal, err := fx.svc.GetMeal(ctx, res.Meal.ID)
	require.NoError(t, err)
	assert.Equal(t, res.FoodIDs, meal.Foods)
	require.Len(t, meal.Items, 2)
	assert.Equal(t, "f1", meal.Items[0].FoodName)
	assert.Equal(t, "f2", meal.Items[1].FoodName)

	for _, item := range meal.Items {
		assert.Equal(t, models.Lunch, item.MealTime, "foods inherit the meal time")
		require.NotNil(t, item.MealID)
		assert.Equal(t, meal.ID, *item.MealID)
		assert.Equal(t, lunchDay, item.Date)
	}

	user, err := fx.users.GetByID(ctx, fx.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{meal.ID}, user.Meals)
}

func TestCreateMealWithFoodsListsNewestFoodFirst(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	fx.svc.now = func() time.Time { return fixed }

	res, err := fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "lunch", lunchDay,
		[]FoodSpec{namedSpec("f1"), namedSpec("f2"), namedSpec("f3")})
	require.NoError(t, err)
	items := res.Meal.Items
	require.Len(t, items, 3)
	assert.True(t, items[0].CreatedAt.Before(items[1].CreatedAt))
	assert.True(t, items[1].CreatedAt.Before(items[2].CreatedAt))

	foods, err := NewFoodService(fx.foods).ListFoodsForUser(ctx, fx.owner.ID, models.FoodFilter{})
	require.NoError(t, err)
	require.Len(t, foods, 3)
	assert.Equal(t, "f3", foods[0].FoodName)
	assert.Equal(t, "f2", foods[1].FoodName)
	assert.Equal(t, "f1", foods[2].FoodName)
}

func TestListMealsNormalizesMealTimeFilter(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()
	_, err := fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "lunch", lunchDay, []FoodSpec{namedSpec("soup")})
	require.NoError(t, err)
	_, err = fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "dinner", lunchDay, []FoodSpec{namedSpec("stew")})
	require.NoError(t, err)

	meals, err := fx.svc.ListMealsForUser(ctx, fx.owner.ID, models.MealFilter{MealTime: "Lunch"})
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, models.Lunch, meals[0].MealTime)

	_, err = fx.svc.ListMealsForUser(ctx, fx.owner.ID, models.MealFilter{MealTime: "brunch"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateMealWithFoodsRejectsBadSpecBeforeWriting(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()

	bad := namedSpec("broken")
	bad.Calories = nil
	_, err := fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "lunch", lunchDay, []FoodSpec{namedSpec("ok"), bad})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "foods[1]")

	assert.Zero(t, fx.foods.Count())
	assert.Zero(t, fx.meals.Count())
}

func TestCreateMealWithFoodsMealTimeMismatch(t *testing.T) {
	fx := newMealFixture()

	spec := namedSpec("toast")
	spec.MealTime = "breakfast"
	_, err := fx.svc.CreateMealWithFoods(context.Background(), fx.owner.ID, "dinner", lunchDay, []FoodSpec{spec})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Zero(t, fx.foods.Count())
}

func TestCreateMealWithFoodsRequiredFields(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()
	specs := []FoodSpec{namedSpec("f1")}

	_, err := fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "", lunchDay, specs)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "lunch", time.Time{}, specs)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "lunch", lunchDay, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateMealWithFoodsTransactionFailure(t *testing.T) {
	fx := newMealFixture()
	fx.meals.TxErr = apperr.Unavailable(errStore)

	_, err := fx.svc.CreateMealWithFoods(context.Background(), fx.owner.ID, "lunch", lunchDay, []FoodSpec{namedSpec("f1")})
	assert.ErrorIs(t, err, apperr.ErrUnavailable)

	user, err := fx.users.GetByID(context.Background(), fx.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, user.Meals)
}

func TestCreateMealWithFoodsBookkeepingIsBestEffort(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()
	fx.foods.AssignErr = errStore
	fx.users.AppendErr = errStore

	res, err := fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "lunch", lunchDay, []FoodSpec{namedSpec("f1"), namedSpec("f2")})
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 2)

	meal, err := fx.svc.GetMeal(ctx, res.Meal.ID)
	require.NoError(t, err)
	assert.Equal(t, res.FoodIDs, meal.Foods)
	for _, item := range meal.Items {
		assert.Nil(t, item.MealID)
	}

	foods, err := fx.foods.ListByUser(ctx, fx.owner.ID, models.FoodFilter{})
	require.NoError(t, err)
	assert.Len(t, foods, 2)
}

func TestCreateMealFromExistingFoods(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()
	foodSvc := NewFoodService(fx.foods)

	f1, err := foodSvc.CreateFood(ctx, fx.owner.ID, appleSpec())
	require.NoError(t, err)
	f2, err := foodSvc.CreateFood(ctx, fx.owner.ID, appleSpec())
	require.NoError(t, err)

	meal, err := fx.svc.CreateMeal(ctx, fx.owner.ID, "snack", lunchDay, []string{f2.ID, f1.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{f2.ID, f1.ID}, meal.Foods)

	stored, err := fx.foods.GetByID(ctx, f1.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.MealID)
	assert.Equal(t, meal.ID, *stored.MealID)
}

func TestCreateMealRejectsForeignOrMissingFoods(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()
	other := fx.users.Add("Bo", "B", "b@x.edu")

	theirs, err := NewFoodService(fx.foods).CreateFood(ctx, other.ID, appleSpec())
	require.NoError(t, err)

	_, err = fx.svc.CreateMeal(ctx, fx.owner.ID, "snack", lunchDay, []string{theirs.ID})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = fx.svc.CreateMeal(ctx, fx.owner.ID, "snack", lunchDay, []string{uuid.New().String()})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Zero(t, fx.meals.Count())
}

func TestListMealsPopulatesFoods(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()

	first, err := fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "breakfast", lunchDay, []FoodSpec{namedSpec("eggs")})
	require.NoError(t, err)
	second, err := fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "lunch", lunchDay, []FoodSpec{namedSpec("soup"), namedSpec("bread")})
	require.NoError(t, err)

	meals, err := fx.svc.ListMealsForUser(ctx, fx.owner.ID, models.MealFilter{From: lunchDay, To: lunchDay.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, second.Meal.ID, meals[0].ID)
	assert.Equal(t, first.Meal.ID, meals[1].ID)
	require.Len(t, meals[0].Items, 2)
	assert.Equal(t, "soup", meals[0].Items[0].FoodName)
	assert.Equal(t, "bread", meals[0].Items[1].FoodName)

	none, err := fx.svc.ListMealsForUser(ctx, fx.owner.ID, models.MealFilter{From: lunchDay.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAddFoodToMeal(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()
	res, err := fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "lunch", lunchDay, []FoodSpec{namedSpec("soup")})
	require.NoError(t, err)

	extra, err := NewFoodService(fx.foods).CreateFood(ctx, fx.owner.ID, appleSpec())
	require.NoError(t, err)

	meal, err := fx.svc.AddFoodToMeal(ctx, fx.owner.ID, res.Meal.ID, extra.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{res.FoodIDs[0], extra.ID}, meal.Foods)
	require.Len(t, meal.Items, 2)
	require.NotNil(t, meal.Items[1].MealID)

	_, err = fx.svc.AddFoodToMeal(ctx, fx.owner.ID, res.Meal.ID, extra.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	other := fx.users.Add("Bo", "B", "b@x.edu")
	_, err = fx.svc.AddFoodToMeal(ctx, other.ID, res.Meal.ID, extra.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDeleteMeal(t *testing.T) {
	ctx := context.Background()
	fx := newMealFixture()
	res, err := fx.svc.CreateMealWithFoods(ctx, fx.owner.ID, "lunch", lunchDay, []FoodSpec{namedSpec("soup")})
	require.NoError(t, err)

	assert.ErrorIs(t, fx.svc.DeleteMeal(ctx, uuid.New().String(), res.Meal.ID), apperr.ErrForbidden)
	require.NoError(t, fx.svc.DeleteMeal(ctx, fx.owner.ID, res.Meal.ID))

	_, err = fx.svc.GetMeal(ctx, res.Meal.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 1, fx.foods.Count(), "foods outlive their meal")

	user, err := fx.users.GetByID(ctx, fx.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, user.Meals)
}
