// Package seed fills an empty deployment with sample users, meals and a follow network.
// Everything goes through the services so seeded rows obey the same rules as API writes.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"
	"food-network-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// Password is shared by every sample account
const Password = "password123"

// UserLookup finds an existing account by email
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Seeder writes the sample data set
type Seeder struct {
	users   *services.UserService
	lookup  UserLookup
	meals   *services.MealService
	network *services.NetworkService
	posts   *services.PostService
}

// NewSeeder creates a seeder over the given services
func NewSeeder(users *services.UserService, lookup UserLookup, meals *services.MealService, network *services.NetworkService, posts *services.PostService) *Seeder {
	return &Seeder{users: users, lookup: lookup, meals: meals, network: network, posts: posts}
}

// Summary counts what a run created
type Summary struct {
	UsersCreated int
	UsersReused  int
	Meals        int
	Follows      int
	Posts        int
}

type sampleMeal struct {
	mealTime    string
	description string
	imageURL    string
	foods       []services.FoodSpec
}

func strPtr(s string) *string { return &s }

func food(name string, calories, protein, carbs, fats float64, portion string) services.FoodSpec {
	return services.FoodSpec{
		FoodName:    name,
		Calories:    &calories,
		Protein:     &protein,
		Carbs:       &carbs,
		Fats:        &fats,
		PortionSize: portion,
	}
}

var sampleUsers = []services.RegisterRequest{
	{FirstName: "John", LastName: "Doe", Email: "john.doe@ucf.edu", Password: Password, Bio: strPtr("Math Student!")},
	{FirstName: "Jane", LastName: "Smith", Email: "jane.smith@ucf.edu", Password: Password, Bio: strPtr("Biology student.")},
	{FirstName: "Mike", LastName: "Johnson", Email: "mike.johnson@ucf.edu", Password: Password, Bio: strPtr("Engineering student")},
	{FirstName: "Sarah", LastName: "Wilson", Email: "sarah.wilson@ucf.edu", Password: Password, Bio: strPtr("Psychology student")},
}

var sampleDate = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

var sampleMeals = []sampleMeal{
	{
		mealTime:    "breakfast",
		description: "Starting the day right with some Greek yogurt! #breakfast #protein",
		foods: []services.FoodSpec{
			food("Greek Yogurt", 130, 22, 9, 0.5, "1 cup"),
			food("Banana", 105, 1.3, 27, 0.4, "1 medium"),
			food("Granola", 120, 3, 18, 4, "1/4 cup"),
		},
	},
	{
		mealTime:    "lunch",
		description: "Perfect protein-packed lunch! #healthy #mealprep",
		imageURL:    "https://res.cloudinary.com/example/image/upload/v1234567890/meals/lunch_chicken_rice.jpg",
		foods: []services.FoodSpec{
			food("Grilled Chicken Breast", 165, 31, 0, 3.6, "1 breast (174g)"),
			food("Brown Rice", 216, 4.5, 45, 1.8, "1 cup cooked"),
			food("Broccoli", 55, 3.7, 11.2, 0.6, "1 cup chopped"),
		},
	},
	{
		mealTime:    "dinner",
		description: "Salmon night",
		foods: []services.FoodSpec{
			food("Salmon Fillet", 208, 25, 0, 12, "1 fillet (154g)"),
			food("Quinoa", 222, 8.1, 39.4, 3.6, "1 cup cooked"),
			food("Asparagus", 27, 3, 5, 0.2, "1 cup"),
		},
	},
	{
		mealTime:    "snack",
		description: "Afternoon fuel",
		foods: []services.FoodSpec{
			food("Mixed Nuts", 180, 6, 5, 16, "1 oz"),
			food("Apple", 95, 0.5, 25, 0.3, "1 medium"),
		},
	},
}

// Run seeds the data set. Existing users are reused and meals are only added for an owner
// with none, so running it twice leaves the same data behind.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{}

	users := make([]*models.User, 0, len(sampleUsers))
	for _, req := range sampleUsers {
		user, created, err := s.ensureUser(ctx, req)
		if err != nil {
			return sum, err
		}
		if created {
			sum.UsersCreated++
		} else {
			sum.UsersReused++
		}
		users = append(users, user)
	}

	for _, follower := range users {
		for _, following := range users {
			if follower.ID == following.ID {
				continue
			}
			_, err := s.network.Follow(ctx, follower.ID, following.ID)
			switch {
			case err == nil:
				sum.Follows++
			case errors.Is(err, apperr.ErrDuplicateFollow):
			default:
				return sum, fmt.Errorf("failed to seed follow %s -> %s: %w", follower.Email, following.Email, err)
			}
		}
	}

	owner := users[0]
	existing, err := s.meals.ListMealsForUser(ctx, owner.ID, models.MealFilter{})
	if err != nil {
		return sum, fmt.Errorf("failed to list seeded meals: %w", err)
	}
	if len(existing) > 0 {
		log.Info().Str("user_id", owner.ID).Int("meals", len(existing)).Msg("Meals already seeded")
		return sum, nil
	}

	for _, sm := range sampleMeals {
		res, err := s.meals.CreateMealWithFoods(ctx, owner.ID, sm.mealTime, sampleDate, sm.foods)
		if err != nil {
			return sum, fmt.Errorf("failed to seed %s meal: %w", sm.mealTime, err)
		}
		sum.Meals++

		req := services.CreatePostRequest{MealID: res.Meal.ID, Description: strPtr(sm.description)}
		if sm.imageURL != "" {
			req.ImageURL = strPtr(sm.imageURL)
		}
		if _, err := s.posts.CreatePost(ctx, owner.ID, req); err != nil {
			return sum, fmt.Errorf("failed to seed %s post: %w", sm.mealTime, err)
		}
		sum.Posts++
	}

	log.Info().
		Int("users_created", sum.UsersCreated).
		Int("users_reused", sum.UsersReused).
		Int("follows", sum.Follows).
		Int("meals", sum.Meals).
		Int("posts", sum.Posts).
		Msg("Seed completed")
	return sum, nil
}

func (s *Seeder) ensureUser(ctx context.Context, req services.RegisterRequest) (*models.User, bool, error) {
	user, err := s.users.Register(ctx, req)
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, apperr.ErrDuplicateEmail) {
		return nil, false, fmt.Errorf("failed to seed user %s: %w", req.Email, err)
	}

	user, err = s.lookup.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load existing user %s: %w", req.Email, err)
	}
	return user, false, nil
}
