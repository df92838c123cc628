package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"sharemarket-backend/internal/model"
)

func newListingEnv(t *testing.T) (*ListingService, *fakeListingStore, *fakeCompanyStore, *fakeFeeStore, *fakeNotifier) {
	t.Helper()
	store := newFakeListingStore()
	companies := newFakeCompanyStore(&model.Company{ID: "c1", Name: "Acme Robotics"})
	fees := &fakeFeeStore{}
	notifier := &fakeNotifier{}
	svc := NewListingService(store, companies, fees, notifier)
	return svc, store, companies, fees, notifier
}

func TestCreateListing(t *testing.T) {
	svc, _, companies, fees, _ := newListingEnv(t)

	before := time.Now()
	l, err := svc.CreateListing(context.Background(), "owner-1", "owner", &model.CreateListingRequest{
		Type:      model.ListingTypeSell,
		CompanyID: "c1",
		Price:     100,
		Quantity:  50,
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	if l.CompanyName != "Acme Robotics" {
		t.Errorf("company name snapshot = %q, want Acme Robotics", l.CompanyName)
	}
	if l.Status != model.ListingStatusActive {
		t.Errorf("status = %s, want active", l.Status)
	}
	if l.MinLot != 1 {
		t.Errorf("min lot = %d, want default 1", l.MinLot)
	}

	wantExpiry := before.Add(model.ListingDuration)
	if l.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || l.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expiresAt = %v, want ~%v", l.ExpiresAt, wantExpiry)
	}

	if companies.companies["c1"].ListingCount != 1 {
		t.Errorf("company listing count = %d, want 1", companies.companies["c1"].ListingCount)
	}

	if len(fees.fees) != 1 || fees.fees[0].Kind != model.FeeKindListing {
		t.Fatalf("expected one listing fee, got %v", fees.fees)
	}
	// 0.5% of 100*50
	if fees.fees[0].Amount != 25 {
		t.Errorf("listing fee = %d, want 25", fees.fees[0].Amount)
	}
}

func TestCreateListingUnknownCompany(t *testing.T) {
	svc, _, _, _, _ := newListingEnv(t)

	_, err := svc.CreateListing(context.Background(), "owner-1", "owner", &model.CreateListingRequest{
		Type:      model.ListingTypeSell,
		CompanyID: "ghost",
		Price:     100,
		Quantity:  50,
	})
	if !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("err = %v, want ErrCompanyNotFound", err)
	}
}

func TestCreateListingValidation(t *testing.T) {
	svc, _, _, _, _ := newListingEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  model.CreateListingRequest
		want error
	}{
		{"bad type", model.CreateListingRequest{Type: "swap", CompanyID: "c1", Price: 1, Quantity: 1}, ErrInvalidType},
		{"zero price", model.CreateListingRequest{Type: "sell", CompanyID: "c1", Price: 0, Quantity: 1}, ErrInvalidPrice},
		{"zero quantity", model.CreateListingRequest{Type: "buy", CompanyID: "c1", Price: 1, Quantity: 0}, ErrInvalidQuantity},
		{"negative min lot", model.CreateListingRequest{Type: "sell", CompanyID: "c1", Price: 1, Quantity: 1, MinLot: -2}, ErrInvalidMinLot},
	}
	for _, tc := range cases {
		if _, err := svc.CreateListing(ctx, "o", "o", &tc.req); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestUpdateListing(t *testing.T) {
	svc, store, _, _, _ := newListingEnv(t)

	l, _ := svc.CreateListing(context.Background(), "owner-1", "owner", &model.CreateListingRequest{
		Type: model.ListingTypeSell, CompanyID: "c1", Price: 100, Quantity: 50,
	})

	newPrice := int64(120)
	updated, err := svc.UpdateListing(context.Background(), l.ID, "owner-1", &model.UpdateListingRequest{Price: &newPrice})
	if err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
	if updated.Price != 120 {
		t.Errorf("price = %d, want 120", updated.Price)
	}

	stored, _ := store.GetByID(context.Background(), l.ID)
	if stored.Price != 120 {
		t.Errorf("stored price = %d, want 120", stored.Price)
	}
}

func TestUpdateListingRequiresOwner(t *testing.T) {
	svc, _, _, _, _ := newListingEnv(t)

	l, _ := svc.CreateListing(context.Background(), "owner-1", "owner", &model.CreateListingRequest{
		Type: model.ListingTypeSell, CompanyID: "c1", Price: 100, Quantity: 50,
	})

	p := int64(1)
	if _, err := svc.UpdateListing(context.Background(), l.ID, "stranger", &model.UpdateListingRequest{Price: &p}); !errors.Is(err, ErrNotListingOwner) {
		t.Fatalf("err = %v, want ErrNotListingOwner", err)
	}
}

func TestUpdateListingRejectsExpired(t *testing.T) {
	svc, store, _, _, _ := newListingEnv(t)

	l, _ := svc.CreateListing(context.Background(), "owner-1", "owner", &model.CreateListingRequest{
		Type: model.ListingTypeSell, CompanyID: "c1", Price: 100, Quantity: 50,
	})
	store.listings[l.ID].ExpiresAt = time.Now().Add(-time.Minute)

	p := int64(120)
	if _, err := svc.UpdateListing(context.Background(), l.ID, "owner-1", &model.UpdateListingRequest{Price: &p}); !errors.Is(err, ErrListingNotActive) {
		t.Fatalf("err = %v, want ErrListingNotActive", err)
	}
}

func TestBoostRefreshesWindow(t *testing.T) {
	svc, _, _, fees, notifier := newListingEnv(t)

	l, _ := svc.CreateListing(context.Background(), "owner-1", "owner", &model.CreateListingRequest{
		Type: model.ListingTypeSell, CompanyID: "c1", Price: 100, Quantity: 50,
	})

	first, err := svc.BoostListing(context.Background(), l.ID, "owner-1")
	if err != nil {
		t.Fatalf("first boost: %v", err)
	}
	if !first.IsBoosted || first.BoostExpiresAt == nil {
		t.Fatal("boost did not set the window")
	}
	firstExpiry := *first.BoostExpiresAt

	second, err := svc.BoostListing(context.Background(), l.ID, "owner-1")
	if err != nil {
		t.Fatalf("second boost: %v", err)
	}

	// The window resets to now+24h; it never stacks past that.
	if second.BoostExpiresAt.Before(firstExpiry) {
		t.Errorf("second boost window %v ended before first %v", second.BoostExpiresAt, firstExpiry)
	}
	if second.BoostExpiresAt.After(time.Now().Add(24*time.Hour + time.Minute)) {
		t.Errorf("boost window %v stacked beyond 24h", second.BoostExpiresAt)
	}

	boostFees := 0
	for _, f := range fees.fees {
		if f.Kind == model.FeeKindBoost {
			boostFees++
		}
	}
	if boostFees != 2 {
		t.Errorf("boost fee records = %d, want 2", boostFees)
	}
	if got := notifier.byType(model.NotifBoostActivated); len(got) != 2 {
		t.Errorf("boost notifications = %d, want 2", len(got))
	}
}

func TestBoostRequiresOwner(t *testing.T) {
	svc, _, _, _, _ := newListingEnv(t)

	l, _ := svc.CreateListing(context.Background(), "owner-1", "owner", &model.CreateListingRequest{
		Type: model.ListingTypeSell, CompanyID: "c1", Price: 100, Quantity: 50,
	})

	if _, err := svc.BoostListing(context.Background(), l.ID, "stranger"); !errors.Is(err, ErrNotListingOwner) {
		t.Fatalf("err = %v, want ErrNotListingOwner", err)
	}
}

func TestDeleteListingBlockedByAcceptedBid(t *testing.T) {
	svc, store, _, _, notifier := newListingEnv(t)

	l, _ := svc.CreateListing(context.Background(), "owner-1", "owner", &model.CreateListingRequest{
		Type: model.ListingTypeSell, CompanyID: "c1", Price: 100, Quantity: 50,
	})
	store.listings[l.ID].Bids = []model.Bid{
		{ID: "b1", BidderID: "bidder-1", Price: 90, Quantity: 50, Status: model.BidStatusAccepted},
	}

	err := svc.DeleteListing(context.Background(), l.ID, "owner-1")
	if !errors.Is(err, ErrAcceptedBidExists) {
		t.Fatalf("err = %v, want ErrAcceptedBidExists", err)
	}

	if _, ok := store.listings[l.ID]; !ok {
		t.Error("blocked delete must leave the listing in place")
	}
	if len(notifier.sent) != 0 {
		t.Errorf("blocked delete must not notify, got %d", len(notifier.sent))
	}
}

func TestDeleteListingNotifiesDistinctBidders(t *testing.T) {
	svc, store, companies, _, notifier := newListingEnv(t)

	l, _ := svc.CreateListing(context.Background(), "owner-1", "owner", &model.CreateListingRequest{
		Type: model.ListingTypeSell, CompanyID: "c1", Price: 100, Quantity: 50,
	})
	store.listings[l.ID].Bids = []model.Bid{
		{ID: "b1", BidderID: "bidder-1", Price: 90, Quantity: 50, Status: model.BidStatusPending},
		{ID: "b2", BidderID: "bidder-1", Price: 92, Quantity: 25, Status: model.BidStatusRejected},
		{ID: "b3", BidderID: "bidder-2", Price: 95, Quantity: 10, Status: model.BidStatusCountered},
	}

	if err := svc.DeleteListing(context.Background(), l.ID, "owner-1"); err != nil {
		t.Fatalf("DeleteListing: %v", err)
	}

	if _, ok := store.listings[l.ID]; ok {
		t.Error("listing still present after delete")
	}

	cancelled := notifier.byType(model.NotifListingCancelled)
	if len(cancelled) != 2 {
		t.Fatalf("listing_cancelled notifications = %d, want 2 (distinct bidders)", len(cancelled))
	}

	if companies.companies["c1"].ListingCount != 0 {
		t.Errorf("company listing count = %d, want 0 after delete", companies.companies["c1"].ListingCount)
	}
}

func TestGetListingAppliesReadTimeExpiry(t *testing.T) {
	svc, store, _, _, _ := newListingEnv(t)

	l, _ := svc.CreateListing(context.Background(), "owner-1", "owner", &model.CreateListingRequest{
		Type: model.ListingTypeSell, CompanyID: "c1", Price: 100, Quantity: 50,
	})
	store.listings[l.ID].ExpiresAt = time.Now().Add(-time.Minute)

	got, err := svc.GetListing(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if got.Status != model.ListingStatusExpired {
		t.Errorf("status = %s, want expired at read time", got.Status)
	}

	// Stored status is untouched; expiry is a read predicate, not a write.
	if store.listings[l.ID].Status != model.ListingStatusActive {
		t.Errorf("stored status mutated to %s", store.listings[l.ID].Status)
	}
}
