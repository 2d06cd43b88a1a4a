package repository

import (
	"context"
	"fmt"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var mealColumns = []string{"id", "user_id", "meal_time", "date", "food_ids::text[]", "created_at"}

// MealRepository handles database operations for meals
type MealRepository struct {
	db DB
}

// NewMealRepository creates a new meal repository
func NewMealRepository(db DB) *MealRepository {
	return &MealRepository{db: db}
}

func scanMeal(row pgx.Row) (*models.Meal, error) {
	var meal models.Meal
	err := row.Scan(&meal.ID, &meal.UserID, &meal.MealTime, &meal.Date, &meal.Foods, &meal.CreatedAt)
	if err != nil {
		return nil, err
	}
	if meal.Foods == nil {
		meal.Foods = []string{}
	}
	return &meal, nil
}

func insertMeal(ctx context.Context, db DB, meal *models.Meal) error {
	query := `
		INSERT INTO meals (id, user_id, meal_time, date, food_ids, created_at)
		VALUES ($1, $2, $3, $4, $5::uuid[], $6)
	`
	_, err := db.Exec(ctx, query,
		meal.ID, meal.UserID, string(meal.MealTime), meal.Date, meal.Foods, meal.CreatedAt,
	)
	return err
}

// Create creates a meal whose foods already exist
func (r *MealRepository) Create(ctx context.Context, meal *models.Meal) error {
	if err := insertMeal(ctx, r.db, meal); err != nil {
		return fmt.Errorf("failed to create meal: %w", translate(err, "meal"))
	}
	return nil
}

// CreateWithFoods inserts the foods and then the meal referencing them in one transaction.
// Either every row is written or none is.
func (r *MealRepository) CreateWithFoods(ctx context.Context, meal *models.Meal, foods []*models.Food) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", translate(err, "meal"))
	}

	for _, food := range foods {
		if err := insertFood(ctx, tx, food); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("failed to create food %q: %w", food.FoodName, translate(err, "food"))
		}
	}
	if err := insertMeal(ctx, tx, meal); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to create meal: %w", translate(err, "meal"))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit meal: %w", translate(err, "meal"))
	}
	return nil
}

// GetByID retrieves a meal by ID
func (r *MealRepository) GetByID(ctx context.Context, id string) (*models.Meal, error) {
	query, args, err := psql.Select(mealColumns...).From("meals").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build meal query: %w", err)
	}
	meal, err := scanMeal(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to get meal: %w", translate(err, "meal"))
	}
	return meal, nil
}

// GetByIDs retrieves meals by ID. Unknown ids are skipped and order is not preserved.
func (r *MealRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Meal, error) {
	if len(ids) == 0 {
		return []*models.Meal{}, nil
	}
	query, args, err := psql.Select(mealColumns...).From("meals").Where("id = ANY(?::uuid[])", ids).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build meal query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get meals: %w", translate(err, "meal"))
	}
	meals, err := collect(rows, scanMeal)
	if err != nil {
		return nil, fmt.Errorf("failed to scan meals: %w", translate(err, "meal"))
	}
	return meals, nil
}

// ListByUser retrieves a user's meals, latest date first
func (r *MealRepository) ListByUser(ctx context.Context, userID string, filter models.MealFilter) ([]*models.Meal, error) {
	builder := psql.Select(mealColumns...).From("meals").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("date DESC", "created_at DESC")
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
		return nil, fmt.Errorf("failed to build meal list query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", translate(err, "meal"))
	}
	meals, err := collect(rows, scanMeal)
	if err != nil {
		return nil, fmt.Errorf("failed to scan meals: %w", translate(err, "meal"))
	}
	return meals, nil
}

// AppendFood adds a food reference to the end of the meal's food list
func (r *MealRepository) AppendFood(ctx context.Context, mealID, foodID string) error {
	query := `UPDATE meals SET food_ids = array_append(food_ids, $1::uuid) WHERE id = $2`
	result, err := r.db.Exec(ctx, query, foodID, mealID)
	if err != nil {
		return fmt.Errorf("failed to append food to meal: %w", translate(err, "meal"))
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("meal")
	}
	return nil
}

// Delete deletes a meal by ID. Foods keep existing with their meal reference cleared.
func (r *MealRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM meals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", translate(err, "meal"))
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("meal")
	}
	return nil
}
