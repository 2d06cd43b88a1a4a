package services

import (
	"context"
	"time"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"

	"github.com/google/uuid"
)

// NetworkStore persists follow edges. Create must reject a duplicate pair with
// apperr.ErrDuplicateFollow atomically.
type NetworkStore interface {
	Create(ctx context.Context, edge *models.FollowEdge) error
	Delete(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowers(ctx context.Context, userID string) ([]*models.FollowEntry, error)
	ListFollowing(ctx context.Context, userID string) ([]*models.FollowEntry, error)
	Counts(ctx context.Context, userID string) (models.FollowCounts, error)
}

// FollowNotifier is told about graph changes after they are stored
type FollowNotifier interface {
	FollowCreated(ctx context.Context, edge *models.FollowEdge)
	FollowRemoved(ctx context.Context, followerID, followingID string)
}

// NetworkService handles follow graph operations
type NetworkService struct {
	network  NetworkStore
	notifier FollowNotifier
	now      func() time.Time
}

// NewNetworkService creates a new network service. notifier may be nil.
func NewNetworkService(network NetworkStore, notifier FollowNotifier) *NetworkService {
	return &NetworkService{network: network, notifier: notifier, now: time.Now}
}

// Follow creates the edge follower -> following
func (s *NetworkService) Follow(ctx context.Context, followerID, followingID string) (*models.FollowEdge, error) {
	if err := validateID("follower_id", followerID); err != nil {
		return nil, err
	}
	if err := validateID("following_id", followingID); err != nil {
		return nil, err
	}
	if followerID == followingID {
		return nil, apperr.ErrSelfFollow
	}

	edge := &models.FollowEdge{
		ID:          uuid.New().String(),
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   s.now(),
	}
	if err := s.network.Create(ctx, edge); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.FollowCreated(ctx, edge)
	}
	return edge, nil
}

// Unfollow removes the edge follower -> following. Removing a missing edge is not an error.
func (s *NetworkService) Unfollow(ctx context.Context, followerID, followingID string) error {
	if err := validateID("follower_id", followerID); err != nil {
		return err
	}
	if err := validateID("following_id", followingID); err != nil {
		return err
	}
	removed, err := s.network.Delete(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if removed && s.notifier != nil {
		s.notifier.FollowRemoved(ctx, followerID, followingID)
	}
	return nil
}

// ListFollowers returns the users following userID, newest edge first
func (s *NetworkService) ListFollowers(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	if err := validateID("user_id", userID); err != nil {
		return nil, err
	}
	return s.network.ListFollowers(ctx, userID)
}

// ListFollowing returns the users userID follows, newest edge first
func (s *NetworkService) ListFollowing(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	if err := validateID("user_id", userID); err != nil {
		return nil, err
	}
	return s.network.ListFollowing(ctx, userID)
}

// Counts returns the follower and following counts for userID
func (s *NetworkService) Counts(ctx context.Context, userID string) (models.FollowCounts, error) {
	if err := validateID("user_id", userID); err != nil {
		return models.FollowCounts{}, err
	}
	return s.network.Counts(ctx, userID)
}
