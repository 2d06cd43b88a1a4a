package handlers

import (
	"net/http"
	"time"

	"food-network-backend/internal/metrics"
	"food-network-backend/internal/middleware"
	"food-network-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries everything the HTTP API is built from
type RouterConfig struct {
	Users          *services.UserService
	Foods          *services.FoodService
	Meals          *services.MealService
	Network        *services.NetworkService
	Posts          *services.PostService
	Hub            *services.WSHub
	Metrics        *metrics.Registry
	LoginLimiter   *middleware.RateLimiter
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

// NewRouter assembles the chi router with middleware and all routes
func NewRouter(cfg RouterConfig) http.Handler {
	userHandler := NewUserHandler(cfg.Users, cfg.Network, cfg.MaxUploadBytes)
	foodHandler := NewFoodHandler(cfg.Foods)
	mealHandler := NewMealHandler(cfg.Meals)
	networkHandler := NewNetworkHandler(cfg.Network, cfg.Metrics)
	postHandler := NewPostHandler(cfg.Posts)
	wsHandler := NewWebSocketHandler(cfg.Hub, cfg.Users, cfg.Metrics)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chiMiddleware.Timeout(cfg.RequestTimeout))
		}

		// Public routes
		r.Post("/users", userHandler.CreateUser)
		if cfg.LoginLimiter != nil {
			r.With(cfg.LoginLimiter.Middleware).Post("/login", userHandler.Login)
		} else {
			r.Post("/login", userHandler.Login)
		}

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Users))

			r.Get("/users", userHandler.ListUsers)
			r.Get("/users/me", userHandler.GetMe)
			r.Patch("/users/me", userHandler.UpdateMe)
			r.Put("/users/me/push-token", userHandler.UpdatePushToken)
			r.Post("/users/me/profile-picture", userHandler.UploadProfilePicture)
			r.Delete("/users/me/profile-picture", userHandler.DeleteProfilePicture)
			r.Get("/users/{user_id}", userHandler.GetUser)
			r.Get("/users/{user_id}/foods", foodHandler.ListFoods)
			r.Get("/users/{user_id}/meals", mealHandler.ListMeals)
			r.Get("/users/{user_id}/followers", networkHandler.ListFollowers)
			r.Get("/users/{user_id}/following", networkHandler.ListFollowing)
			r.Get("/users/{user_id}/posts", postHandler.ListPosts)

			r.Post("/foods", foodHandler.CreateFood)
			r.Get("/foods/{food_id}", foodHandler.GetFood)
			r.Patch("/foods/{food_id}", foodHandler.UpdateFood)
			r.Delete("/foods/{food_id}", foodHandler.DeleteFood)

			r.Post("/meals", mealHandler.CreateMeal)
			r.Get("/meals/{meal_id}", mealHandler.GetMeal)
			r.Delete("/meals/{meal_id}", mealHandler.DeleteMeal)
			r.Post("/meals/{meal_id}/foods", mealHandler.AddFood)

			r.Post("/follow", networkHandler.Follow)
			r.Delete("/follow", networkHandler.Unfollow)

			r.Post("/posts", postHandler.CreatePost)
			r.Get("/posts/{post_id}", postHandler.GetPost)
			r.Delete("/posts/{post_id}", postHandler.DeletePost)
			r.Get("/feed", postHandler.GetFeed)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
