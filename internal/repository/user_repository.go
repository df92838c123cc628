package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"sharemarket-backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, full_name, previous_usernames,
	       referral_code, referred_by, is_banned, last_login_at, created_at, updated_at`

func (r *UserRepository) scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	var prevRaw []byte
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &prevRaw,
		&u.ReferralCode, &u.ReferredBy, &u.IsBanned, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(prevRaw) > 0 {
		if err := json.Unmarshal(prevRaw, &u.PreviousUsernames); err != nil {
			return nil, fmt.Errorf("decode previous usernames for %s: %w", u.ID, err)
		}
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, full_name, referral_code, referred_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING
		RETURNING created_at, updated_at
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.FullName, u.ReferralCode, u.ReferredBy,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("duplicate key")
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)
	`, username))
}

func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*model.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE referral_code = $1
	`, code))
}

func (r *UserRepository) GetProfile(ctx context.Context, id string) (*model.UserProfile, error) {
	p := &model.UserProfile{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, full_name, created_at FROM users WHERE id = $1
	`, id).Scan(&p.ID, &p.Username, &p.FullName, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *UserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE LOWER(username) = LOWER($1)
	`, username).Scan(&count)
	return count > 0, err
}

// UpdateUsername swaps the active username and appends the old one to the
// user's previous-usernames log in a single statement.
func (r *UserRepository) UpdateUsername(ctx context.Context, id, oldUsername, newUsername string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET
			username = $2,
			previous_usernames = COALESCE(previous_usernames, '[]'::jsonb) || to_jsonb($3::text),
			updated_at = NOW()
		WHERE id = $1
	`, id, newUsername, oldUsername)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *UserRepository) UpdateLoginTime(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *UserRepository) CountTotal(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
