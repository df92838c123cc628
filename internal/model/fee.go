package model

import "time"

// Fee transaction kinds
const (
	FeeKindListing = "listing"
	FeeKindBoost   = "boost"
)

// FeeTransaction records a platform fee charged against a user, keyed to
// the listing that triggered it.
type FeeTransaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ListingID string    `json:"listing_id"`
	Kind      string    `json:"kind"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
