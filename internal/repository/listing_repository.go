package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sharemarket-backend/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrVersionMismatch is returned when a versioned update finds the listing
// row changed underneath it. Callers treat it as a concurrent-edit conflict.
var ErrVersionMismatch = fmt.Errorf("listing version mismatch")

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

const listingColumns = `id, owner_id, owner_username, type, company_id, company_name,
	       price, quantity, min_lot, description, status, is_boosted, boost_expires_at,
	       expires_at, bids, offers, version, created_at, updated_at`

func (r *ListingRepository) scanListing(row interface{ Scan(...any) error }) (*model.Listing, error) {
	l := &model.Listing{}
	var bidsRaw, offersRaw []byte
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.OwnerUsername, &l.Type, &l.CompanyID, &l.CompanyName,
		&l.Price, &l.Quantity, &l.MinLot, &l.Description, &l.Status, &l.IsBoosted, &l.BoostExpiresAt,
		&l.ExpiresAt, &bidsRaw, &offersRaw, &l.Version, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(bidsRaw) > 0 {
		if err := json.Unmarshal(bidsRaw, &l.Bids); err != nil {
			return nil, fmt.Errorf("decode bids for listing %s: %w", l.ID, err)
		}
	}
	if len(offersRaw) > 0 {
		if err := json.Unmarshal(offersRaw, &l.Offers); err != nil {
			return nil, fmt.Errorf("decode offers for listing %s: %w", l.ID, err)
		}
	}
	if l.Bids == nil {
		l.Bids = []model.Bid{}
	}
	if l.Offers == nil {
		l.Offers = []model.Bid{}
	}
	return l, nil
}

func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) (*model.Listing, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO listings (
			id, owner_id, owner_username, type, company_id, company_name,
			price, quantity, min_lot, description, status, expires_at, bids, offers, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'active', $11, '[]', '[]', 1)
		RETURNING created_at, updated_at
	`,
		l.ID, l.OwnerID, l.OwnerUsername, l.Type, l.CompanyID, l.CompanyName,
		l.Price, l.Quantity, l.MinLot, l.Description, l.ExpiresAt,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Status = model.ListingStatusActive
	l.Version = 1
	l.Bids = []model.Bid{}
	l.Offers = []model.Bid{}
	return l, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	return r.scanListing(r.pool.QueryRow(ctx, `
		SELECT `+listingColumns+`
		FROM listings WHERE id = $1
	`, id))
}

// Update writes back the whole listing document, guarded by the version the
// caller read. The version is incremented on success; RowsAffected()==0
// means another writer won the race.
func (r *ListingRepository) Update(ctx context.Context, l *model.Listing) error {
	bidsRaw, err := json.Marshal(l.Bids)
	if err != nil {
		return fmt.Errorf("encode bids: %w", err)
	}
	offersRaw, err := json.Marshal(l.Offers)
	if err != nil {
		return fmt.Errorf("encode offers: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE listings SET
			price = $3, quantity = $4, min_lot = $5, description = $6, status = $7,
			is_boosted = $8, boost_expires_at = $9, expires_at = $10,
			bids = $11, offers = $12, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`,
		l.ID, l.Version,
		l.Price, l.Quantity, l.MinLot, l.Description, l.Status,
		l.IsBoosted, l.BoostExpiresAt, l.ExpiresAt,
		bidsRaw, offersRaw,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionMismatch
	}
	l.Version++
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing not found")
	}
	return nil
}

// Search returns active, unexpired listings. Boosted listings (with a live
// boost window) sort first; the requested sort breaks ties.
func (r *ListingRepository) Search(ctx context.Context, req *model.SearchListingsRequest) ([]model.Listing, int, error) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	conditions = append(conditions, "status = 'active'", "expires_at > NOW()")

	if req.Type == model.ListingTypeSell || req.Type == model.ListingTypeBuy {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, req.Type)
		argIdx++
	}

	if req.CompanyID != "" {
		conditions = append(conditions, fmt.Sprintf("company_id = $%d", argIdx))
		args = append(args, req.CompanyID)
		argIdx++
	}

	if req.SearchText != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(company_name) LIKE $%d", argIdx))
		args = append(args, "%"+strings.ToLower(req.SearchText)+"%")
		argIdx++
	}

	if req.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argIdx))
		args = append(args, *req.MinPrice)
		argIdx++
	}

	if req.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argIdx))
		args = append(args, *req.MaxPrice)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM listings WHERE "+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	orderBy := "created_at DESC"
	switch req.SortBy {
	case "price_asc":
		orderBy = "price ASC"
	case "price_desc":
		orderBy = "price DESC"
	case "newest":
		orderBy = "created_at DESC"
	case "oldest":
		orderBy = "created_at ASC"
	case "quantity":
		orderBy = "quantity DESC"
	}
	orderBy = "(is_boosted AND boost_expires_at > NOW()) DESC, " + orderBy

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT `+listingColumns+`
		FROM listings
		WHERE %s
		ORDER BY %s
		LIMIT %d OFFSET %d
	`, where, orderBy, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := r.scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		listings = append(listings, *l)
	}

	if listings == nil {
		listings = []model.Listing{}
	}

	return listings, total, nil
}

func (r *ListingRepository) GetByOwnerID(ctx context.Context, ownerID string, status string) ([]model.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{ownerID}

	if status != "" && status != "all" {
		query = `
			SELECT ` + listingColumns + `
			FROM listings
			WHERE owner_id = $1 AND status = $2
			ORDER BY created_at DESC
		`
		args = append(args, status)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := r.scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}

	if listings == nil {
		listings = []model.Listing{}
	}

	return listings, nil
}

// MarkExpired flips stored status on listings whose window has passed.
// Read paths already treat those as inactive; this keeps owner dashboards
// honest without a scheduler dependency.
func (r *ListingRepository) MarkExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE listings SET status = 'expired', version = version + 1, updated_at = NOW()
		WHERE status = 'active' AND expires_at < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
