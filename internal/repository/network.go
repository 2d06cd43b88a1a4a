package repository

import (
	"context"
	"fmt"

	"food-network-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// NetworkRepository handles database operations for follow edges. The (follower, following)
// pair is unique at the store level, so concurrent follows cannot create duplicates.
type NetworkRepository struct {
	db DB
}

// NewNetworkRepository creates a new network repository
func NewNetworkRepository(db DB) *NetworkRepository {
	return &NetworkRepository{db: db}
}

// Create inserts a follow edge. A second edge for the same pair fails with
// apperr.ErrDuplicateFollow and a self edge with apperr.ErrSelfFollow.
func (r *NetworkRepository) Create(ctx context.Context, edge *models.FollowEdge) error {
	query := `
		INSERT INTO network (id, follower_id, following_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, edge.ID, edge.FollowerID, edge.FollowingID, edge.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create follow: %w", translate(err, "follow"))
	}
	return nil
}

// Delete removes the edge for the pair and reports whether one existed
func (r *NetworkRepository) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	query := `DELETE FROM network WHERE follower_id = $1 AND following_id = $2`
	result, err := r.db.Exec(ctx, query, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", translate(err, "follow"))
	}
	return result.RowsAffected() > 0, nil
}

// ListFollowers retrieves edges pointing at userID, each expanded with the follower's profile
func (r *NetworkRepository) ListFollowers(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	query := `
		SELECT n.id, n.follower_id, n.following_id, n.created_at,
		       u.id, u.first_name, u.last_name, u.email, u.profile_pic
		FROM network n
		JOIN users u ON u.id = n.follower_id
		WHERE n.following_id = $1
		ORDER BY n.created_at DESC
	`
	return r.listEntries(ctx, query, userID, "followers")
}

// ListFollowing retrieves edges leaving userID, each expanded with the followed user's profile
func (r *NetworkRepository) ListFollowing(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	query := `
		SELECT n.id, n.follower_id, n.following_id, n.created_at,
		       u.id, u.first_name, u.last_name, u.email, u.profile_pic
		FROM network n
		JOIN users u ON u.id = n.following_id
		WHERE n.follower_id = $1
		ORDER BY n.created_at DESC
	`
	return r.listEntries(ctx, query, userID, "following")
}

func (r *NetworkRepository) listEntries(ctx context.Context, query, userID, what string) ([]*models.FollowEntry, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, translate(err, "follow"))
	}
	entries, err := collect(rows, scanFollowEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", what, translate(err, "follow"))
	}
	return entries, nil
}

func scanFollowEntry(row pgx.Row) (*models.FollowEntry, error) {
	var e models.FollowEntry
	err := row.Scan(
		&e.ID, &e.FollowerID, &e.FollowingID, &e.CreatedAt,
		&e.User.ID, &e.User.FirstName, &e.User.LastName, &e.User.Email, &e.User.ProfilePic,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Counts returns how many users follow userID and how many userID follows
func (r *NetworkRepository) Counts(ctx context.Context, userID string) (models.FollowCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM network WHERE following_id = $1),
			(SELECT COUNT(*) FROM network WHERE follower_id = $1)
	`
	var counts models.FollowCounts
	if err := r.db.QueryRow(ctx, query, userID).Scan(&counts.Followers, &counts.Following); err != nil {
		return models.FollowCounts{}, fmt.Errorf("failed to count follows: %w", translate(err, "follow"))
	}
	return counts, nil
}
