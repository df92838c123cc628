package repository

import (
	"context"
	"strings"

	"sharemarket-backend/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UsernameHistoryRepository is the append-mostly log of retired usernames.
// The username column is the primary key, so the non-reassignment invariant
// is backed by the database's uniqueness constraint, not just the service
// check above it.
type UsernameHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewUsernameHistoryRepository(pool *pgxpool.Pool) *UsernameHistoryRepository {
	return &UsernameHistoryRepository{pool: pool}
}

func (r *UsernameHistoryRepository) Insert(ctx context.Context, username, userID, reason string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO username_history (username, user_id, reason)
		VALUES ($1, $2, $3)
	`, strings.ToLower(username), userID, reason)
	return err
}

func (r *UsernameHistoryRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM username_history WHERE username = $1
	`, strings.ToLower(username)).Scan(&count)
	return count > 0, err
}

func (r *UsernameHistoryRepository) ListByUser(ctx context.Context, userID string) ([]model.UsernameHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT username, user_id, reason, changed_at
		FROM username_history
		WHERE user_id = $1
		ORDER BY changed_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.UsernameHistory
	for rows.Next() {
		var e model.UsernameHistory
		if err := rows.Scan(&e.Username, &e.UserID, &e.Reason, &e.ChangedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
