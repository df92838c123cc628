package model

import "time"

// Bid statuses. The same structure backs both bids on sell listings and
// offers on buy listings; only notification wording differs.
const (
	BidStatusPending   = "pending"
	BidStatusAccepted  = "accepted"
	BidStatusRejected  = "rejected"
	BidStatusCountered = "countered"
	BidStatusExpired   = "expired"
)

// Counter sides
const (
	CounterBySeller = "seller"
	CounterByBuyer  = "buyer"
)

type Bid struct {
	ID             string         `json:"id"`
	BidderID       string         `json:"bidder_id"`
	BidderUsername string         `json:"bidder_username"`
	Price          int64          `json:"price"`
	Quantity       int            `json:"quantity"`
	Message        string         `json:"message,omitempty"`
	Status         string         `json:"status"`
	CounterHistory []CounterEntry `json:"counter_history,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// CounterEntry records one negotiation round. Rounds are 1-based and
// gapless within a bid's counter history.
type CounterEntry struct {
	Round     int       `json:"round"`
	By        string    `json:"by"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsFinal reports whether the bid reached a terminal state. Accepted and
// rejected bids admit no further transition.
func (b *Bid) IsFinal() bool {
	return b.Status == BidStatusAccepted || b.Status == BidStatusRejected
}

// ApplyCounter appends the next counter round and moves the bid's current
// terms to the countered values. Quantity is carried over when the counter
// leaves it nil. Returns the new round number.
func (b *Bid) ApplyCounter(by string, price int64, quantity *int, message string, now time.Time) int {
	round := len(b.CounterHistory) + 1
	qty := b.Quantity
	if quantity != nil {
		qty = *quantity
	}
	b.CounterHistory = append(b.CounterHistory, CounterEntry{
		Round:     round,
		By:        by,
		Price:     price,
		Quantity:  qty,
		Message:   message,
		CreatedAt: now,
	})
	b.Price = price
	b.Quantity = qty
	b.Status = BidStatusCountered
	b.UpdatedAt = now
	return round
}

type PlaceBidRequest struct {
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Message  string `json:"message"`
}

type CounterBidRequest struct {
	Price    int64  `json:"price"`
	Quantity *int   `json:"quantity,omitempty"`
	Message  string `json:"message"`
}
