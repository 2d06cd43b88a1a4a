package services

import (
	"context"
	"strings"
	"time"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"

	"github.com/google/uuid"
)

// PostStore persists posts
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Post, error)
	Feed(ctx context.Context, followerID string, limit, offset int) ([]*models.Post, int, error)
	Delete(ctx context.Context, id string) error
}

// PostService handles post-related business logic. Every post it returns carries its
// meal with the foods populated.
type PostService struct {
	posts PostStore
	meals MealStore
	foods FoodStore
	now   func() time.Time
}

// NewPostService creates a new post service
func NewPostService(posts PostStore, meals MealStore, foods FoodStore) *PostService {
	return &PostService{posts: posts, meals: meals, foods: foods, now: time.Now}
}

// CreatePostRequest represents a new post
type CreatePostRequest struct {
	MealID      string     `json:"meal"`
	ImageURL    *string    `json:"image_url"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
}

// FeedPage is one page of a user's feed
type FeedPage struct {
	Posts  []*models.Post `json:"posts"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// CreatePost shares a meal. The meal must exist and belong to userID.
func (s *PostService) CreatePost(ctx context.Context, userID string, req CreatePostRequest) (*models.Post, error) {
	if err := validateID("meal", req.MealID); err != nil {
		return nil, err
	}
	meal, err := s.meals.GetByID(ctx, req.MealID)
	if err != nil {
		return nil, err
	}
	if meal.UserID != userID {
		return nil, apperr.ErrForbidden
	}

	post := &models.Post{
		ID:          uuid.New().String(),
		UserID:      userID,
		ImageURL:    trimmed(req.ImageURL),
		Description: trimmed(req.Description),
		MealID:      meal.ID,
		Date:        s.now(),
	}
	if req.Date != nil && !req.Date.IsZero() {
		post.Date = *req.Date
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, post.ID)
}

// GetPost retrieves a post by ID
func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if err := validateID("post_id", id); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachMeals(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPostsForUser retrieves a user's posts, newest first
func (s *PostService) ListPostsForUser(ctx context.Context, userID string) ([]*models.Post, error) {
	if err := validateID("user_id", userID); err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachMeals(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Feed returns posts by the users userID follows, newest first
func (s *PostService) Feed(ctx context.Context, userID string, limit, offset int) (*FeedPage, error) {
	limit, offset = clampPage(limit, offset)
	posts, total, err := s.posts.Feed(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.attachMeals(ctx, posts); err != nil {
		return nil, err
	}
	return &FeedPage{Posts: posts, Total: total, Limit: limit, Offset: offset}, nil
}

// DeletePost deletes a post owned by actorID
func (s *PostService) DeletePost(ctx context.Context, actorID, id string) error {
	if err := validateID("post_id", id); err != nil {
		return err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return apperr.ErrForbidden
	}
	return s.posts.Delete(ctx, id)
}

// attachMeals loads the meals behind posts and their foods with one lookup each
func (s *PostService) attachMeals(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.MealID)
	}
	meals, err := s.meals.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	populated, err := populateMeals(ctx, s.foods, meals)
	if err != nil {
		return err
	}

	byID := make(map[string]*models.PopulatedMeal, len(populated))
	for _, m := range populated {
		byID[m.ID] = m
	}
	for _, p := range posts {
		p.Meal = byID[p.MealID]
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
