package model

import (
	"testing"
	"time"
)

func TestIsActive(t *testing.T) {
	now := time.Now()
	l := &Listing{Status: ListingStatusActive, ExpiresAt: now.Add(time.Hour)}
	if !l.IsActive(now) {
		t.Error("listing inside its window should be active")
	}

	l.ExpiresAt = now.Add(-time.Minute)
	if l.IsActive(now) {
		t.Error("listing past expiry should be inactive regardless of status")
	}

	l.ExpiresAt = now.Add(time.Hour)
	l.Status = ListingStatusCancelled
	if l.IsActive(now) {
		t.Error("cancelled listing should be inactive")
	}
}

func TestProposalsSelectsArrayByType(t *testing.T) {
	sell := &Listing{Type: ListingTypeSell}
	*sell.Proposals() = append(*sell.Proposals(), Bid{ID: "b1"})
	if len(sell.Bids) != 1 || len(sell.Offers) != 0 {
		t.Errorf("sell listing proposals should land in Bids, got bids=%d offers=%d", len(sell.Bids), len(sell.Offers))
	}

	buy := &Listing{Type: ListingTypeBuy}
	*buy.Proposals() = append(*buy.Proposals(), Bid{ID: "o1"})
	if len(buy.Offers) != 1 || len(buy.Bids) != 0 {
		t.Errorf("buy listing proposals should land in Offers, got bids=%d offers=%d", len(buy.Bids), len(buy.Offers))
	}
}

func TestFindBidReturnsMutablePointer(t *testing.T) {
	l := &Listing{
		Type: ListingTypeSell,
		Bids: []Bid{{ID: "b1"}, {ID: "b2"}},
	}

	b := l.FindBid("b2")
	if b == nil {
		t.Fatal("expected to find b2")
	}
	b.Status = BidStatusAccepted
	if l.Bids[1].Status != BidStatusAccepted {
		t.Error("FindBid must return a pointer into the listing's own array")
	}

	if l.FindBid("missing") != nil {
		t.Error("unknown id should return nil")
	}
}

func TestHasAcceptedBid(t *testing.T) {
	l := &Listing{
		Bids:   []Bid{{ID: "b1", Status: BidStatusPending}},
		Offers: []Bid{{ID: "o1", Status: BidStatusRejected}},
	}
	if l.HasAcceptedBid() {
		t.Error("no accepted bid yet")
	}

	l.Offers[0].Status = BidStatusAccepted
	if !l.HasAcceptedBid() {
		t.Error("accepted offer should count")
	}
}

func TestBidderIDsDeduplicates(t *testing.T) {
	l := &Listing{
		Bids: []Bid{
			{ID: "b1", BidderID: "u1"},
			{ID: "b2", BidderID: "u2"},
			{ID: "b3", BidderID: "u1"},
		},
	}

	ids := l.BidderIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 distinct bidders, got %v", ids)
	}
	if ids[0] != "u1" || ids[1] != "u2" {
		t.Errorf("expected first-seen order, got %v", ids)
	}
}

func TestApplyCounterRoundsAreGapless(t *testing.T) {
	now := time.Now()
	b := &Bid{Price: 90, Quantity: 50, Status: BidStatusPending}

	round := b.ApplyCounter(CounterBySeller, 95, nil, "meet me here", now)
	if round != 1 {
		t.Fatalf("first counter round = %d, want 1", round)
	}
	if b.Price != 95 || b.Quantity != 50 {
		t.Errorf("terms after counter = %d x %d, want 95 x 50", b.Price, b.Quantity)
	}
	if b.Status != BidStatusCountered {
		t.Errorf("status = %q, want countered", b.Status)
	}

	qty := 40
	round = b.ApplyCounter(CounterByBuyer, 92, &qty, "", now)
	if round != 2 {
		t.Fatalf("second counter round = %d, want 2", round)
	}
	if b.Quantity != 40 {
		t.Errorf("quantity = %d, want 40", b.Quantity)
	}
	for i, e := range b.CounterHistory {
		if e.Round != i+1 {
			t.Errorf("history[%d].Round = %d, want %d", i, e.Round, i+1)
		}
	}
}

func TestIsFinal(t *testing.T) {
	cases := map[string]bool{
		BidStatusPending:   false,
		BidStatusCountered: false,
		BidStatusAccepted:  true,
		BidStatusRejected:  true,
	}
	for status, want := range cases {
		b := &Bid{Status: status}
		if b.IsFinal() != want {
			t.Errorf("IsFinal(%q) = %v, want %v", status, !want, want)
		}
	}
}
