package model

import (
	"encoding/json"
	"time"
)

// Notification types
const (
	NotifNewBid           = "new_bid"
	NotifNewOffer         = "new_offer"
	NotifBidAccepted      = "bid_accepted"
	NotifOfferAccepted    = "offer_accepted"
	NotifBidRejected      = "bid_rejected"
	NotifOfferRejected    = "offer_rejected"
	NotifCounterOffer     = "counter_offer"
	NotifListingExpired   = "listing_expired"
	NotifBoostActivated   = "boost_activated"
	NotifReferralEarning  = "referral_earning"
	NotifListingCancelled = "listing_cancelled"
)

type Notification struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
}

// NotificationData is the structured payload carried alongside a
// notification so clients can deep-link without parsing the message text.
type NotificationData struct {
	ListingID   string `json:"listing_id,omitempty"`
	BidID       string `json:"bid_id,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Amount      int64  `json:"amount,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	Round       int    `json:"round,omitempty"`
	Username    string `json:"username,omitempty"`
}
