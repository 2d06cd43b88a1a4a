package repository

import (
	"context"
	"testing"
	"time"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postRowColumns = []string{
	"id", "user_id", "image_url", "description", "meal_id", "date",
	"id", "first_name", "last_name", "email", "profile_pic",
}

func TestPostRepository_CreateMissingMeal(t *testing.T) {
	mock := newMock(t)
	repo := NewPostRepository(mock)

	mock.ExpectExec("INSERT INTO posts").
		WithArgs("p1", "u1", (*string)(nil), (*string)(nil), "m404", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "posts_meal_id_fkey"})

	err := repo.Create(context.Background(), &models.Post{ID: "p1", UserID: "u1", MealID: "m404"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, err.Error(), "meal not found")
}

func TestPostRepository_Feed(t *testing.T) {
	mock := newMock(t)
	repo := NewPostRepository(mock)
	now := time.Now()
	desc := "Lunch!"

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts p WHERE p.user_id IN \(SELECT following_id FROM network WHERE follower_id = \$1\)`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM posts p JOIN users u ON u.id = p.user_id WHERE p.user_id IN (.+) ORDER BY p.date DESC LIMIT 10 OFFSET 0`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(postRowColumns).
			AddRow("p1", "u2", nil, &desc, "m1", now, "u2", "Jane", "Smith", "jane.smith@ucf.edu", nil))

	posts, total, err := repo.Feed(context.Background(), "u1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, "Jane", posts[0].Author.FirstName)
	assert.Equal(t, desc, *posts[0].Description)
}
