package handlers

import (
	"errors"
	"io"
	"net/http"

	"food-network-backend/internal/middleware"
	"food-network-backend/internal/models"
	"food-network-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService    *services.UserService
	networkService *services.NetworkService
	maxUploadBytes int64
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, networkService *services.NetworkService, maxUploadBytes int64) *UserHandler {
	return &UserHandler{
		userService:    userService,
		networkService: networkService,
		maxUploadBytes: maxUploadBytes,
	}
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is a user with follow counts
type UserResponse struct {
	*models.User
	Followers int `json:"followers"`
	Following int `json:"following"`
}

// PushTokenRequest represents the request body for registering a device
type PushTokenRequest struct {
	Token string `json:"token"`
}

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "create user")
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("User created")

	respondJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/v1/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	res, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err, "log in")
		return
	}

	log.Info().Str("user_id", res.ID).Msg("User logged in")
	respondJSON(w, http.StatusOK, res)
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/v1/users/{user_id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	h.respondUser(w, r, chi.URLParam(r, "user_id"))
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	h.respondUser(w, r, middleware.GetUserID(r.Context()))
}

func (h *UserHandler) respondUser(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	user, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, "get user")
		return
	}
	counts, err := h.networkService.Counts(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, "count follows")
		return
	}

	respondJSON(w, http.StatusOK, UserResponse{User: user, Followers: counts.Followers, Following: counts.Following})
}

// UpdateMe handles PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var upd models.ProfileUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}

	user, err := h.userService.UpdateProfile(ctx, userID, upd)
	if err != nil {
		respondServiceError(w, r, err, "update profile")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdatePushToken handles PUT /api/v1/users/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PushTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.userService.UpdatePushToken(ctx, userID, req.Token); err != nil {
		respondServiceError(w, r, err, "update push token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadProfilePicture handles POST /api/v1/users/me/profile-picture
func (h *UserHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UploadProfilePicture(ctx, userID, header.Header.Get("Content-Type"), data)
	if err != nil {
		respondServiceError(w, r, err, "upload profile picture")
		return
	}

	log.Info().
		Str("user_id", userID).
		Int("size", len(data)).
		Msg("Profile picture uploaded")

	respondJSON(w, http.StatusOK, user)
}

// DeleteProfilePicture handles DELETE /api/v1/users/me/profile-picture
func (h *UserHandler) DeleteProfilePicture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.userService.DeleteProfilePicture(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, "delete profile picture")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
