package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"food-network-backend/internal/apperr"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgx shared by *pgxpool.Pool, pgx.Tx and test mocks
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

//go:embed schema.sql
var schema string

// psql builds statements with PostgreSQL placeholders
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Constraint names referenced by error translation
const (
	constraintUserEmail       = "users_email_key"
	constraintFollowUnique    = "network_follower_following_key"
	constraintNoSelfFollow    = "network_no_self_follow"
	pgUniqueViolation         = "23505"
	pgForeignKeyViolation     = "23503"
	pgCheckViolation          = "23514"
	pgNotNullViolation        = "23502"
	pgInvalidTextRepresention = "22P02"
)

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", translate(err, "schema"))
	}
	return nil
}

// translate maps driver errors onto the apperr taxonomy. entity names the record the
// statement was about and is used for not-found messages.
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(entity)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			switch pgErr.ConstraintName {
			case constraintFollowUnique:
				return apperr.ErrDuplicateFollow
			case constraintUserEmail:
				return apperr.ErrDuplicateEmail
			}
			return fmt.Errorf("%w: %s", apperr.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return apperr.NotFound(referencedEntity(pgErr.ConstraintName))
		case pgCheckViolation:
			if pgErr.ConstraintName == constraintNoSelfFollow {
				return apperr.ErrSelfFollow
			}
			return apperr.Invalid(entity, "violates "+pgErr.ConstraintName)
		case pgNotNullViolation:
			return apperr.Invalid(pgErr.ColumnName, "is required")
		case pgInvalidTextRepresention:
			return apperr.Invalid("id", "is malformed")
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return apperr.Unavailable(err)
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return apperr.Unavailable(err)
	}
	return err
}

func referencedEntity(constraint string) string {
	switch constraint {
	case "foods_meal_id_fkey", "posts_meal_id_fkey":
		return "meal"
	default:
		return "user"
	}
}

// collect scans every row with scan and closes rows
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()

	items := make([]*T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
