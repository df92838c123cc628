package repository

import (
	"context"

	"sharemarket-backend/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FeeRepository struct {
	pool *pgxpool.Pool
}

func NewFeeRepository(pool *pgxpool.Pool) *FeeRepository {
	return &FeeRepository{pool: pool}
}

func (r *FeeRepository) Create(ctx context.Context, f *model.FeeTransaction) (*model.FeeTransaction, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO fee_transactions (id, user_id, listing_id, kind, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, f.ID, f.UserID, f.ListingID, f.Kind, f.Amount).Scan(&f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *FeeRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.FeeTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, listing_id, kind, amount, created_at
		FROM fee_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fees []model.FeeTransaction
	for rows.Next() {
		var f model.FeeTransaction
		if err := rows.Scan(&f.ID, &f.UserID, &f.ListingID, &f.Kind, &f.Amount, &f.CreatedAt); err != nil {
			return nil, err
		}
		fees = append(fees, f)
	}
	return fees, nil
}

func (r *FeeRepository) TotalCollected(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM fee_transactions`).Scan(&total)
	return total, err
}
