package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelHierarchy(t *testing.T) {
	assert.ErrorIs(t, ErrSelfFollow, ErrValidation)
	assert.ErrorIs(t, ErrDuplicateFollow, ErrConflict)
	assert.ErrorIs(t, ErrDuplicateEmail, ErrConflict)
	assert.NotErrorIs(t, ErrDuplicateFollow, ErrValidation)
}

func TestHelpers(t *testing.T) {
	err := Invalid("meal_time", "must be one of breakfast, lunch, dinner, snack")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "meal_time")

	err = fmt.Errorf("failed to get meal: %w", NotFound("meal"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "failed to get meal: meal not found", err.Error())

	err = Unavailable(context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
}
