package services

import (
	"net/mail"
	"strings"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

func validateID(field, id string) error {
	if id == "" {
		return apperr.Invalid(field, "is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Invalid(field, "is not a valid id")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperr.Invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.Invalid("email", "is not a valid address")
	}
	return nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Invalid(field, "is required")
	}
	return nil
}

func parseMealTime(field, value string) (models.MealTime, error) {
	if value == "" {
		return "", apperr.Invalid(field, "is required")
	}
	m, ok := models.ParseMealTime(value)
	if !ok {
		return "", apperr.Invalid(field, "must be one of breakfast, lunch, dinner, snack")
	}
	return m, nil
}

// optionalMealTime normalizes a meal time filter or patch value. Empty means unset.
func optionalMealTime(field string, value models.MealTime) (models.MealTime, error) {
	if value == "" {
		return "", nil
	}
	return parseMealTime(field, string(value))
}

func requireMacro(field string, value *float64) error {
	if value == nil {
		return apperr.Invalid(field, "is required")
	}
	if *value < 0 {
		return apperr.Invalid(field, "must not be negative")
	}
	return nil
}

// clampPage applies the listing defaults: limit in 1..100 (50 when unset), offset >= 0
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
