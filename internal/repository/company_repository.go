package repository

import (
	"context"
	"fmt"
	"strings"

	"sharemarket-backend/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CompanyRepository struct {
	pool *pgxpool.Pool
}

func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

func (r *CompanyRepository) Create(ctx context.Context, c *model.Company) (*model.Company, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO companies (id, name, sector, description, logo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.Sector, c.Description, c.LogoURL).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*model.Company, error) {
	c := &model.Company{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, sector, description, logo_url, listing_count, created_at, updated_at
		FROM companies WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Sector, &c.Description, &c.LogoURL, &c.ListingCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CompanyRepository) List(ctx context.Context, search string, limit, offset int) ([]model.Company, int, error) {
	where := "TRUE"
	var args []interface{}
	if search != "" {
		where = "LOWER(name) LIKE $1"
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM companies WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, name, sector, description, logo_url, listing_count, created_at, updated_at
		FROM companies
		WHERE %s
		ORDER BY name ASC
		LIMIT %d OFFSET %d
	`, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Sector, &c.Description, &c.LogoURL, &c.ListingCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		companies = append(companies, c)
	}

	if companies == nil {
		companies = []model.Company{}
	}

	return companies, total, nil
}

func (r *CompanyRepository) IncrementListingCount(ctx context.Context, id string, delta int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE companies SET listing_count = GREATEST(listing_count + $2, 0), updated_at = NOW()
		WHERE id = $1
	`, id, delta)
	return err
}
