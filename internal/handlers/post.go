package handlers

import (
	"net/http"

	"food-network-backend/internal/middleware"
	"food-network-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePost handles POST /api/v1/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.CreatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.postService.CreatePost(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, "create post")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("post_id", post.ID).
		Str("meal_id", post.MealID).
		Msg("Post created")

	respondJSON(w, http.StatusCreated, post)
}

// ListPosts handles GET /api/v1/users/{user_id}/posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListPostsForUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		respondServiceError(w, r, err, "list posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// GetFeed handles GET /api/v1/feed
func (h *PostHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondServiceError(w, r, err, "get feed")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		respondServiceError(w, r, err, "get feed")
		return
	}

	page, err := h.postService.Feed(ctx, userID, limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "get feed")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// GetPost handles GET /api/v1/posts/{post_id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.GetPost(r.Context(), chi.URLParam(r, "post_id"))
	if err != nil {
		respondServiceError(w, r, err, "get post")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/v1/posts/{post_id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "post_id")

	if err := h.postService.DeletePost(ctx, userID, postID); err != nil {
		respondServiceError(w, r, err, "delete post")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("post_id", postID).
		Msg("Post deleted")

	w.WriteHeader(http.StatusNoContent)
}
