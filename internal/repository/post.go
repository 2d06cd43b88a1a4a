package repository

import (
	"context"
	"fmt"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var postColumns = []string{
	"p.id", "p.user_id", "p.image_url", "p.description", "p.meal_id", "p.date",
	"u.id", "u.first_name", "u.last_name", "u.email", "u.profile_pic",
}

// PostRepository handles database operations for posts
type PostRepository struct {
	db DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db DB) *PostRepository {
	return &PostRepository{db: db}
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	var author models.PublicProfile
	err := row.Scan(
		&post.ID, &post.UserID, &post.ImageURL, &post.Description, &post.MealID, &post.Date,
		&author.ID, &author.FirstName, &author.LastName, &author.Email, &author.ProfilePic,
	)
	if err != nil {
		return nil, err
	}
	post.Author = &author
	return &post, nil
}

func selectPosts() sq.SelectBuilder {
	return psql.Select(postColumns...).From("posts p").Join("users u ON u.id = p.user_id")
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, user_id, image_url, description, meal_id, date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		post.ID, post.UserID, post.ImageURL, post.Description, post.MealID, post.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", translate(err, "post"))
	}
	return nil
}

// GetByID retrieves a post and its author by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query, args, err := selectPosts().Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build post query: %w", err)
	}
	post, err := scanPost(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", translate(err, "post"))
	}
	return post, nil
}

// ListByUser retrieves a user's posts, newest first
func (r *PostRepository) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	query, args, err := selectPosts().Where(sq.Eq{"p.user_id": userID}).OrderBy("p.date DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build post list query: %w", err)
	}
	return r.list(ctx, query, args)
}

// Feed retrieves posts authored by the users followerID follows, newest first, with the total count
func (r *PostRepository) Feed(ctx context.Context, followerID string, limit, offset int) ([]*models.Post, int, error) {
	followed := sq.Expr("p.user_id IN (SELECT following_id FROM network WHERE follower_id = ?)", followerID)

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("posts p").Where(followed).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build feed count query: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count feed posts: %w", translate(err, "post"))
	}

	query, args, err := selectPosts().Where(followed).
		OrderBy("p.date DESC").
		Limit(uint64(limit)).Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build feed query: %w", err)
	}
	posts, err := r.list(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *PostRepository) list(ctx context.Context, query string, args []any) ([]*models.Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", translate(err, "post"))
	}
	posts, err := collect(rows, scanPost)
	if err != nil {
		return nil, fmt.Errorf("failed to scan posts: %w", translate(err, "post"))
	}
	return posts, nil
}

// Delete deletes a post by ID
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", translate(err, "post"))
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("post")
	}
	return nil
}
