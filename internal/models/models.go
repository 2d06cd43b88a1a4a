package models

import (
	"strings"
	"time"
)

// MealTime classifies when a food or meal was eaten
type MealTime string

const (
	Breakfast MealTime = "breakfast"
	Lunch     MealTime = "lunch"
	Dinner    MealTime = "dinner"
	Snack     MealTime = "snack"
)

// MealTimes lists every accepted meal time in display order
var MealTimes = []MealTime{Breakfast, Lunch, Dinner, Snack}

// Valid reports whether m is one of the four enumerated values
func (m MealTime) Valid() bool {
	switch m {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

// ParseMealTime normalizes case and surrounding space before validating
func ParseMealTime(s string) (MealTime, bool) {
	m := MealTime(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Valid()
}

// User represents a registered user
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProfilePic   *string   `json:"profile_pic,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	PushToken    *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Meals        []string  `json:"meals"`
}

// Public returns the fields other users are allowed to see
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
	}
}

// PublicProfile is the projection used when expanding follow edges and post authors
type PublicProfile struct {
	ID         string  `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	ProfilePic *string `json:"profile_pic,omitempty"`
}

// UserSummary is returned by a successful login
type UserSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProfileUpdate carries the profile fields a user may replace. Nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
}

// Food is a single consumed item
type Food struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user"`
	FoodName    string    `json:"food_name"`
	Calories    float64   `json:"calories"`
	Protein     float64   `json:"protein"`
	Carbs       float64   `json:"carbs"`
	Fats        float64   `json:"fats"`
	PortionSize string    `json:"portion_size"`
	MealTime    MealTime  `json:"meal_time"`
	MealID      *string   `json:"meal,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// FoodUpdate carries the food fields a user may replace. Nil fields are left unchanged.
type FoodUpdate struct {
	FoodName    *string    `json:"food_name"`
	Calories    *float64   `json:"calories"`
	Protein     *float64   `json:"protein"`
	Carbs       *float64   `json:"carbs"`
	Fats        *float64   `json:"fats"`
	PortionSize *string    `json:"portion_size"`
	MealTime    *MealTime  `json:"meal_time"`
	Date        *time.Time `json:"date"`
}

// FoodFilter narrows a food listing. Zero values mean no constraint.
type FoodFilter struct {
	From     time.Time
	To       time.Time
	MealTime MealTime
}

// Meal groups foods eaten together. Foods keeps the supplied order.
type Meal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	MealTime  MealTime  `json:"meal_time"`
	Date      time.Time `json:"date"`
	Foods     []string  `json:"foods"`
	CreatedAt time.Time `json:"created_at"`
}

// PopulatedMeal is a meal whose food references are expanded to full records
type PopulatedMeal struct {
	Meal
	Items []*Food `json:"items"`
}

// MealFilter narrows a meal listing. Zero values mean no constraint.
type MealFilter struct {
	From     time.Time
	To       time.Time
	MealTime MealTime
}

// FollowEdge is a directed follow relationship
type FollowEdge struct {
	ID          string    `json:"id"`
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowEntry is an edge expanded with the profile of the other endpoint
type FollowEntry struct {
	FollowEdge
	User PublicProfile `json:"user"`
}

// FollowCounts holds the sizes of a user's follower and following lists
type FollowCounts struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}

// Post is a shareable wrapper around a meal
type Post struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user"`
	ImageURL    *string        `json:"image_url,omitempty"`
	Description *string        `json:"description,omitempty"`
	MealID      string         `json:"meal"`
	Date        time.Time      `json:"date"`
	Author      *PublicProfile `json:"author,omitempty"`
	Meal        *PopulatedMeal `json:"meal_detail,omitempty"`
}
