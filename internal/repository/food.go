package repository

import (
	"context"
	"fmt"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var foodColumns = []string{
	"id", "user_id", "food_name", "calories", "protein", "carbs", "fats",
	"portion_size", "meal_time", "meal_id", "date", "created_at",
}

// FoodRepository handles database operations for foods
type FoodRepository struct {
	db DB
}

// NewFoodRepository creates a new food repository
func NewFoodRepository(db DB) *FoodRepository {
	return &FoodRepository{db: db}
}

func scanFood(row pgx.Row) (*models.Food, error) {
	var food models.Food
	err := row.Scan(
		&food.ID, &food.UserID, &food.FoodName, &food.Calories, &food.Protein, &food.Carbs,
		&food.Fats, &food.PortionSize, &food.MealTime, &food.MealID, &food.Date, &food.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &food, nil
}

func insertFood(ctx context.Context, db DB, food *models.Food) error {
	query := `
		INSERT INTO foods (id, user_id, food_name, calories, protein, carbs, fats, portion_size, meal_time, meal_id, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := db.Exec(ctx, query,
		food.ID, food.UserID, food.FoodName, food.Calories, food.Protein, food.Carbs, food.Fats,
		food.PortionSize, string(food.MealTime), food.MealID, food.Date, food.CreatedAt,
	)
	return err
}

// Create creates a new food
func (r *FoodRepository) Create(ctx context.Context, food *models.Food) error {
	if err := insertFood(ctx, r.db, food); err != nil {
		return fmt.Errorf("failed to create food: %w", translate(err, "food"))
	}
	return nil
}

// GetByID retrieves a food by ID
func (r *FoodRepository) GetByID(ctx context.Context, id string) (*models.Food, error) {
	query, args, err := psql.Select(foodColumns...).From("foods").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build food query: %w", err)
	}
	food, err := scanFood(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to get food: %w", translate(err, "food"))
	}
	return food, nil
}

// GetByIDs retrieves foods by ID in the order the ids are given. Unknown ids are skipped.
func (r *FoodRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Food, error) {
	if len(ids) == 0 {
		return []*models.Food{}, nil
	}
	query, args, err := psql.Select(foodColumns...).From("foods").Where("id = ANY(?::uuid[])", ids).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build food query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get foods: %w", translate(err, "food"))
	}
	foods, err := collect(rows, scanFood)
	if err != nil {
		return nil, fmt.Errorf("failed to scan foods: %w", translate(err, "food"))
	}

	byID := make(map[string]*models.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}
	ordered := make([]*models.Food, 0, len(ids))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			ordered = append(ordered, f)
		}
	}
	return ordered, nil
}

// ListByUser retrieves a user's foods, most recently created first
func (r *FoodRepository) ListByUser(ctx context.Context, userID string, filter models.FoodFilter) ([]*models.Food, error) {
	builder := psql.Select(foodColumns...).From("foods").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if !filter.From.IsZero() {
		builder = builder.Where(sq.GtOrEq{"date": filter.From})
	}
	if !filter.To.IsZero() {
		builder = builder.Where(sq.Lt{"date": filter.To})
	}
	if filter.MealTime != "" {
		builder = builder.Where(sq.Eq{"meal_time": string(filter.MealTime)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build food list query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", translate(err, "food"))
	}
	foods, err := collect(rows, scanFood)
	if err != nil {
		return nil, fmt.Errorf("failed to scan foods: %w", translate(err, "food"))
	}
	return foods, nil
}

// Update replaces the provided fields and returns the updated food
func (r *FoodRepository) Update(ctx context.Context, id string, upd models.FoodUpdate) (*models.Food, error) {
	set := map[string]any{}
	if upd.FoodName != nil {
		set["food_name"] = *upd.FoodName
	}
	if upd.Calories != nil {
		set["calories"] = *upd.Calories
	}
	if upd.Protein != nil {
		set["protein"] = *upd.Protein
	}
	if upd.Carbs != nil {
		set["carbs"] = *upd.Carbs
	}
	if upd.Fats != nil {
		set["fats"] = *upd.Fats
	}
	if upd.PortionSize != nil {
		set["portion_size"] = *upd.PortionSize
	}
	if upd.MealTime != nil {
		set["meal_time"] = string(*upd.MealTime)
	}
	if upd.Date != nil {
		set["date"] = *upd.Date
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	query, args, err := psql.Update("foods").SetMap(set).Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, user_id, food_name, calories, protein, carbs, fats, portion_size, meal_time, meal_id, date, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build food update: %w", err)
	}
	food, err := scanFood(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update food: %w", translate(err, "food"))
	}
	return food, nil
}

// Delete deletes a food by ID
func (r *FoodRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM foods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete food: %w", translate(err, "food"))
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("food")
	}
	return nil
}

// AssignMeal back-fills the meal reference on each of the given foods
func (r *FoodRepository) AssignMeal(ctx context.Context, mealID string, foodIDs []string) error {
	if len(foodIDs) == 0 {
		return nil
	}
	query := `UPDATE foods SET meal_id = $1 WHERE id = ANY($2::uuid[])`
	if _, err := r.db.Exec(ctx, query, mealID, foodIDs); err != nil {
		return fmt.Errorf("failed to assign meal to foods: %w", translate(err, "food"))
	}
	return nil
}
