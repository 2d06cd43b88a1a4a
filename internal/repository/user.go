package repository

import (
	"context"
	"fmt"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, first_name, last_name, email, password_hash, profile_pic, bio, push_token, meal_ids::text[], created_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash,
		&user.ProfilePic, &user.Bio, &user.PushToken, &user.Meals, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if user.Meals == nil {
		user.Meals = []string{}
	}
	return &user, nil
}

// Create creates a new user. A duplicate email is rejected by the users_email_key index.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, email, password_hash, profile_pic, bio, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash,
		user.ProfilePic, user.Bio, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err, "user"))
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translate(err, "user"))
	}
	return user, nil
}

// GetByEmail retrieves a user by email, ignoring case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", translate(err, "user"))
	}
	return user, nil
}

// List retrieves every user, oldest first
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", translate(err, "user"))
	}
	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", translate(err, "user"))
	}
	return users, nil
}

// UpdateProfile replaces the provided profile fields and returns the updated user
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	builder := psql.Update("users").Where("id = ?", id).Suffix("RETURNING " + userColumns)
	changed := false
	if upd.FirstName != nil {
		builder = builder.Set("first_name", *upd.FirstName)
		changed = true
	}
	if upd.LastName != nil {
		builder = builder.Set("last_name", *upd.LastName)
		changed = true
	}
	if upd.Bio != nil {
		builder = builder.Set("bio", *upd.Bio)
		changed = true
	}
	if !changed {
		return r.GetByID(ctx, id)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile update: %w", err)
	}
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", translate(err, "user"))
	}
	return user, nil
}

// SetProfilePic stores or, with nil, clears the profile picture URL
func (r *UserRepository) SetProfilePic(ctx context.Context, id string, url *string) error {
	query := `UPDATE users SET profile_pic = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, url, id)
	if err != nil {
		return fmt.Errorf("failed to update profile picture: %w", translate(err, "user"))
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, id string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, pushToken, id)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", translate(err, "user"))
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

// RemoveMeal drops a meal id from the user's meal list
func (r *UserRepository) RemoveMeal(ctx context.Context, userID, mealID string) error {
	query := `UPDATE users SET meal_ids = array_remove(meal_ids, $1::uuid) WHERE id = $2`
	result, err := r.db.Exec(ctx, query, mealID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove meal from user: %w", translate(err, "user"))
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

// AppendMeal pushes a meal id onto the user's meal list
func (r *UserRepository) AppendMeal(ctx context.Context, userID, mealID string) error {
	query := `UPDATE users SET meal_ids = array_append(meal_ids, $1::uuid) WHERE id = $2`
	result, err := r.db.Exec(ctx, query, mealID, userID)
	if err != nil {
		return fmt.Errorf("failed to append meal to user: %w", translate(err, "user"))
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}
