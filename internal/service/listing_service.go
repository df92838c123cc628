package service

import (
	"context"
	"errors"
	"log"
	"time"

	"sharemarket-backend/internal/model"
	"sharemarket-backend/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrListingNotFound   = errors.New("listing not found")
	ErrListingNotActive  = errors.New("listing is not active")
	ErrNotListingOwner   = errors.New("not the listing owner")
	ErrCompanyNotFound   = errors.New("company not found")
	ErrInvalidPrice      = errors.New("price must be greater than 0")
	ErrInvalidQuantity   = errors.New("quantity must be greater than 0")
	ErrInvalidMinLot     = errors.New("min lot must be at least 1")
	ErrInvalidType       = errors.New("type must be sell or buy")
	ErrAcceptedBidExists = errors.New("listing has an accepted bid, contact support")
)

const (
	listingFeeBps = 50 // 0.5% of listing value
	boostFee      = 999
	boostDuration = 24 * time.Hour
)

// ListingService manages the listing lifecycle: creation, edits, boosting,
// deletion and the read-time expiry predicate.
type ListingService struct {
	listings  listingStore
	companies companyStore
	fees      feeStore
	notifier  notifier
}

func NewListingService(listings listingStore, companies companyStore, fees feeStore, notifier notifier) *ListingService {
	return &ListingService{listings: listings, companies: companies, fees: fees, notifier: notifier}
}

func (s *ListingService) CreateListing(ctx context.Context, ownerID, ownerUsername string, req *model.CreateListingRequest) (*model.Listing, error) {
	if req.Type != model.ListingTypeSell && req.Type != model.ListingTypeBuy {
		return nil, ErrInvalidType
	}
	if req.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	minLot := req.MinLot
	if minLot == 0 {
		minLot = 1
	}
	if minLot < 1 {
		return nil, ErrInvalidMinLot
	}

	company, err := s.companies.GetByID(ctx, req.CompanyID)
	if err != nil {
		return nil, ErrCompanyNotFound
	}

	listing := &model.Listing{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		OwnerUsername: ownerUsername,
		Type:          req.Type,
		CompanyID:     company.ID,
		CompanyName:   company.Name,
		Price:         req.Price,
		Quantity:      req.Quantity,
		MinLot:        minLot,
		Description:   req.Description,
		ExpiresAt:     time.Now().Add(model.ListingDuration),
	}

	listing, err = s.listings.Create(ctx, listing)
	if err != nil {
		return nil, err
	}

	if err := s.companies.IncrementListingCount(ctx, company.ID, 1); err != nil {
		log.Printf("[MARKET] listing count increment failed for %s: %v", company.ID, err)
	}

	fee := listing.Price * int64(listing.Quantity) * listingFeeBps / 10000
	if fee < 1 {
		fee = 1
	}
	s.recordFee(ctx, ownerID, listing.ID, model.FeeKindListing, fee)

	return listing, nil
}

// UpdateListing applies an owner's price/quantity/minLot patch. Only active,
// unexpired listings may be edited.
func (s *ListingService) UpdateListing(ctx context.Context, listingID, actorID string, req *model.UpdateListingRequest) (*model.Listing, error) {
	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, ErrListingNotFound
	}
	if l.OwnerID != actorID {
		return nil, ErrNotListingOwner
	}
	if !l.IsActive(time.Now()) {
		return nil, ErrListingNotActive
	}

	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, ErrInvalidPrice
		}
		l.Price = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		l.Quantity = *req.Quantity
	}
	if req.MinLot != nil {
		if *req.MinLot < 1 {
			return nil, ErrInvalidMinLot
		}
		l.MinLot = *req.MinLot
	}

	if err := s.saveListing(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// BoostListing opens (or refreshes) a 24h promotion window. Calling it again
// resets the window to now+24h; boosts do not stack.
func (s *ListingService) BoostListing(ctx context.Context, listingID, actorID string) (*model.Listing, error) {
	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, ErrListingNotFound
	}
	if l.OwnerID != actorID {
		return nil, ErrNotListingOwner
	}

	expires := time.Now().Add(boostDuration)
	l.IsBoosted = true
	l.BoostExpiresAt = &expires

	if err := s.saveListing(ctx, l); err != nil {
		return nil, err
	}

	s.recordFee(ctx, actorID, l.ID, model.FeeKindBoost, boostFee)
	s.notifier.Dispatch(boostNotification(l))
	return l, nil
}

// DeleteListing removes an owner's listing. Deletion is blocked while any
// bid or offer stands accepted; every distinct bidder is notified before the
// listing disappears.
func (s *ListingService) DeleteListing(ctx context.Context, listingID, actorID string) error {
	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return ErrListingNotFound
	}
	if l.OwnerID != actorID {
		return ErrNotListingOwner
	}
	if l.HasAcceptedBid() {
		return ErrAcceptedBidExists
	}

	for _, bidderID := range l.BidderIDs() {
		s.notifier.Dispatch(listingCancelledNotification(l, bidderID))
	}

	if err := s.listings.Delete(ctx, l.ID); err != nil {
		return err
	}

	if err := s.companies.IncrementListingCount(ctx, l.CompanyID, -1); err != nil {
		log.Printf("[MARKET] listing count decrement failed for %s: %v", l.CompanyID, err)
	}
	return nil
}

func (s *ListingService) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, ErrListingNotFound
	}
	applyExpiry(l, time.Now())
	return l, nil
}

func (s *ListingService) SearchListings(ctx context.Context, req *model.SearchListingsRequest) ([]model.Listing, int, error) {
	return s.listings.Search(ctx, req)
}

func (s *ListingService) GetMyListings(ctx context.Context, ownerID string, status string) ([]model.Listing, error) {
	listings, err := s.listings.GetByOwnerID(ctx, ownerID, status)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range listings {
		applyExpiry(&listings[i], now)
	}
	return listings, nil
}

func (s *ListingService) saveListing(ctx context.Context, l *model.Listing) error {
	if err := s.listings.Update(ctx, l); err != nil {
		if errors.Is(err, repository.ErrVersionMismatch) {
			return ErrConcurrentUpdate
		}
		return err
	}
	return nil
}

func (s *ListingService) recordFee(ctx context.Context, userID, listingID, kind string, amount int64) {
	_, err := s.fees.Create(ctx, &model.FeeTransaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		ListingID: listingID,
		Kind:      kind,
		Amount:    amount,
	})
	if err != nil {
		log.Printf("[MARKET] %s fee record failed for listing %s: %v", kind, listingID, err)
	}
}

// applyExpiry enforces expiry at read time: a listing past its window reads
// as expired regardless of the stored status.
func applyExpiry(l *model.Listing, now time.Time) {
	if l.Status == model.ListingStatusActive && !now.Before(l.ExpiresAt) {
		l.Status = model.ListingStatusExpired
	}
	if l.IsBoosted && l.BoostExpiresAt != nil && !now.Before(*l.BoostExpiresAt) {
		l.IsBoosted = false
	}
}
