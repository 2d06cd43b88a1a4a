package repository

import (
	"context"
	"testing"
	"time"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{
	"id", "first_name", "last_name", "email", "password_hash", "profile_pic", "bio", "push_token", "meal_ids", "created_at",
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", "", "", "a@x.edu", "", (*string)(nil), (*string)(nil), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraintUserEmail})

	err := repo.Create(context.Background(), &models.User{ID: "u1", Email: "a@x.edu"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()
	bio := "Math Student!"

	mock.ExpectQuery(`FROM users WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("John.Doe@ucf.edu").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow("u1", "John", "Doe", "john.doe@ucf.edu", "hash", nil, &bio, nil, []string{"m1"}, now))

	user, err := repo.GetByEmail(context.Background(), "John.Doe@ucf.edu")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, []string{"m1"}, user.Meals)
	require.NotNil(t, user.Bio)
	assert.Equal(t, bio, *user.Bio)
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("FROM users WHERE id").WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()
	bio := "Nutrition major"

	mock.ExpectQuery(`UPDATE users SET bio = \$1 WHERE id = \$2 RETURNING`).
		WithArgs(bio, "u1").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow("u1", "John", "Doe", "john.doe@ucf.edu", "hash", nil, &bio, nil, []string{}, now))

	user, err := repo.UpdateProfile(context.Background(), "u1", models.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, *user.Bio)
}

func TestUserRepository_SetProfilePicAndAppendMeal(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	url := "https://cdn.example.com/profile-pictures/u1.jpg"

	mock.ExpectExec("UPDATE users SET profile_pic").WithArgs(&url, "u1").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.SetProfilePic(context.Background(), "u1", &url))

	mock.ExpectExec("UPDATE users SET meal_ids = array_append").WithArgs("m1", "u1").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.AppendMeal(context.Background(), "u1", "m1"), apperr.ErrNotFound)
}

func TestUserRepository_RemoveMeal(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET meal_ids = array_remove\(meal_ids, \$1::uuid\)`).
		WithArgs("m1", "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.RemoveMeal(context.Background(), "u1", "m1"))

	mock.ExpectExec("UPDATE users SET meal_ids = array_remove").
		WithArgs("m1", "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.RemoveMeal(context.Background(), "ghost", "m1"), apperr.ErrNotFound)
}
