package model

import "time"

// Listing types
const (
	ListingTypeSell = "sell"
	ListingTypeBuy  = "buy"
)

// Listing statuses
const (
	ListingStatusActive    = "active"
	ListingStatusSold      = "sold"
	ListingStatusExpired   = "expired"
	ListingStatusCancelled = "cancelled"
)

const ListingDuration = 30 * 24 * time.Hour

// Listing is one marketplace posting. Bids (on sell listings) and Offers
// (on buy listings) are embedded documents stored as JSONB on the listing
// row, so every negotiation mutation is a single-row update. Version is an
// optimistic concurrency token bumped on every mutating write.
type Listing struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	OwnerUsername  string     `json:"owner_username"`
	Type           string     `json:"type"`
	CompanyID      string     `json:"company_id"`
	CompanyName    string     `json:"company_name"`
	Price          int64      `json:"price"`
	Quantity       int        `json:"quantity"`
	MinLot         int        `json:"min_lot"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	IsBoosted      bool       `json:"is_boosted"`
	BoostExpiresAt *time.Time `json:"boost_expires_at,omitempty"`
	ExpiresAt      time.Time  `json:"expires_at"`
	Bids           []Bid      `json:"bids"`
	Offers         []Bid      `json:"offers"`
	Version        int64      `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsActive reports whether the listing can accept negotiation activity.
// A listing past its expiry is inactive no matter what status is stored.
func (l *Listing) IsActive(now time.Time) bool {
	return l.Status == ListingStatusActive && now.Before(l.ExpiresAt)
}

// Proposals returns the negotiation array that matches the listing type:
// bids for sell listings, offers for buy listings. The other array stays
// empty over the listing's life.
func (l *Listing) Proposals() *[]Bid {
	if l.Type == ListingTypeBuy {
		return &l.Offers
	}
	return &l.Bids
}

// FindBid looks a bid up by id in the type-appropriate array.
func (l *Listing) FindBid(bidID string) *Bid {
	props := *l.Proposals()
	for i := range props {
		if props[i].ID == bidID {
			return &props[i]
		}
	}
	return nil
}

// HasAcceptedBid reports whether any bid or offer has been accepted.
// Deletion is blocked while one exists.
func (l *Listing) HasAcceptedBid() bool {
	for i := range l.Bids {
		if l.Bids[i].Status == BidStatusAccepted {
			return true
		}
	}
	for i := range l.Offers {
		if l.Offers[i].Status == BidStatusAccepted {
			return true
		}
	}
	return false
}

// BidderIDs returns the distinct ids of everyone who placed a bid or offer.
func (l *Listing) BidderIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, arr := range [][]Bid{l.Bids, l.Offers} {
		for i := range arr {
			if !seen[arr[i].BidderID] {
				seen[arr[i].BidderID] = true
				ids = append(ids, arr[i].BidderID)
			}
		}
	}
	return ids
}

type CreateListingRequest struct {
	Type        string `json:"type"`
	CompanyID   string `json:"company_id"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	MinLot      int    `json:"min_lot"`
	Description string `json:"description"`
}

type UpdateListingRequest struct {
	Price    *int64 `json:"price,omitempty"`
	Quantity *int   `json:"quantity,omitempty"`
	MinLot   *int   `json:"min_lot,omitempty"`
}

type SearchListingsRequest struct {
	Type       string `json:"type"`
	CompanyID  string `json:"company_id"`
	SearchText string `json:"search_text"`
	MinPrice   *int64 `json:"min_price,omitempty"`
	MaxPrice   *int64 `json:"max_price,omitempty"`
	SortBy     string `json:"sort_by"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}
