package handlers

import (
	"net/http"

	"food-network-backend/internal/metrics"
	"food-network-backend/internal/middleware"
	"food-network-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// NetworkHandler handles follow graph HTTP requests
type NetworkHandler struct {
	networkService *services.NetworkService
	metrics        *metrics.Registry
}

// NewNetworkHandler creates a new network handler. m may be nil.
func NewNetworkHandler(networkService *services.NetworkService, m *metrics.Registry) *NetworkHandler {
	return &NetworkHandler{networkService: networkService, metrics: m}
}

// FollowRequest names the user to follow or unfollow. The follower is the caller.
type FollowRequest struct {
	FollowingID string `json:"following_id"`
}

// Follow handles POST /api/v1/follow
func (h *NetworkHandler) Follow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req FollowRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	edge, err := h.networkService.Follow(ctx, userID, req.FollowingID)
	h.record("follow", err)
	if err != nil {
		respondServiceError(w, r, err, "follow user")
		return
	}

	log.Info().
		Str("follower_id", userID).
		Str("following_id", req.FollowingID).
		Msg("User followed")

	respondJSON(w, http.StatusCreated, edge)
}

// Unfollow handles DELETE /api/v1/follow
func (h *NetworkHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req FollowRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.networkService.Unfollow(ctx, userID, req.FollowingID)
	h.record("unfollow", err)
	if err != nil {
		respondServiceError(w, r, err, "unfollow user")
		return
	}

	log.Info().
		Str("follower_id", userID).
		Str("following_id", req.FollowingID).
		Msg("User unfollowed")

	respondJSON(w, http.StatusOK, map[string]string{"message": "Unfollowed"})
}

// ListFollowers handles GET /api/v1/users/{user_id}/followers
func (h *NetworkHandler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	entries, err := h.networkService.ListFollowers(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		respondServiceError(w, r, err, "list followers")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// ListFollowing handles GET /api/v1/users/{user_id}/following
func (h *NetworkHandler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	entries, err := h.networkService.ListFollowing(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		respondServiceError(w, r, err, "list following")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *NetworkHandler) record(op string, err error) {
	if h.metrics != nil {
		h.metrics.RecordFollow(op, err)
	}
}
