package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sharemarket-backend/internal/model"
	"sharemarket-backend/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrSelfBid          = errors.New("cannot bid on your own listing")
	ErrBidNotFound      = errors.New("bid not found")
	ErrBidFinalized     = errors.New("bid already accepted or rejected")
	ErrConcurrentUpdate = errors.New("listing was modified concurrently, retry")
)

// NegotiationService owns every transition on a listing's bid collection.
// Sell listings negotiate through bids, buy listings through offers; the
// mechanics are identical, only the notification wording differs.
type NegotiationService struct {
	listings listingStore
	notifier notifier
}

func NewNegotiationService(listings listingStore, notifier notifier) *NegotiationService {
	return &NegotiationService{listings: listings, notifier: notifier}
}

func (s *NegotiationService) getListing(ctx context.Context, listingID string) (*model.Listing, error) {
	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, ErrListingNotFound
	}
	return l, nil
}

func (s *NegotiationService) save(ctx context.Context, l *model.Listing) error {
	if err := s.listings.Update(ctx, l); err != nil {
		if errors.Is(err, repository.ErrVersionMismatch) {
			return ErrConcurrentUpdate
		}
		return fmt.Errorf("update listing %s: %w", l.ID, err)
	}
	return nil
}

// PlaceBid appends a pending bid (or offer, on buy listings) and notifies
// the listing owner. The bidder must not be the owner and the listing must
// still be within its active window.
func (s *NegotiationService) PlaceBid(ctx context.Context, listingID, bidderID, bidderUsername string, req *model.PlaceBidRequest) (*model.Bid, error) {
	if req.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	l, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.OwnerID == bidderID {
		return nil, ErrSelfBid
	}
	if !l.IsActive(time.Now()) {
		return nil, ErrListingNotActive
	}

	now := time.Now()
	bid := model.Bid{
		ID:             uuid.NewString(),
		BidderID:       bidderID,
		BidderUsername: bidderUsername,
		Price:          req.Price,
		Quantity:       req.Quantity,
		Message:        req.Message,
		Status:         model.BidStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	props := l.Proposals()
	*props = append(*props, bid)

	if err := s.save(ctx, l); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(newBidNotification(l, &bid))
	return &bid, nil
}

// AcceptBid marks the addressed bid accepted. Sibling bids and the listing
// itself stay untouched; closing the listing is a separate lifecycle action.
func (s *NegotiationService) AcceptBid(ctx context.Context, listingID, bidID, actorID string) (*model.Bid, error) {
	return s.decide(ctx, listingID, bidID, actorID, model.BidStatusAccepted)
}

// RejectBid marks the addressed bid rejected and notifies the bidder.
func (s *NegotiationService) RejectBid(ctx context.Context, listingID, bidID, actorID string) (*model.Bid, error) {
	return s.decide(ctx, listingID, bidID, actorID, model.BidStatusRejected)
}

func (s *NegotiationService) decide(ctx context.Context, listingID, bidID, actorID, status string) (*model.Bid, error) {
	l, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != actorID {
		return nil, ErrNotListingOwner
	}

	bid := l.FindBid(bidID)
	if bid == nil {
		return nil, ErrBidNotFound
	}
	if bid.IsFinal() {
		return nil, ErrBidFinalized
	}

	bid.Status = status
	bid.UpdatedAt = time.Now()

	if err := s.save(ctx, l); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(bidDecisionNotification(l, bid, status == model.BidStatusAccepted))
	return bid, nil
}

// CounterBid records the owner's revised terms as the next counter round,
// moves the bid's current price (and quantity, when supplied) to the
// countered values and notifies the bidder. Countering is owner-only: the
// listing owner is always the countering side.
func (s *NegotiationService) CounterBid(ctx context.Context, listingID, bidID, actorID string, req *model.CounterBidRequest) (int, error) {
	if req.Price <= 0 {
		return 0, ErrInvalidPrice
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return 0, ErrInvalidQuantity
	}

	l, err := s.getListing(ctx, listingID)
	if err != nil {
		return 0, err
	}
	if l.OwnerID != actorID {
		return 0, ErrNotListingOwner
	}

	bid := l.FindBid(bidID)
	if bid == nil {
		return 0, ErrBidNotFound
	}
	if bid.IsFinal() {
		return 0, ErrBidFinalized
	}

	round := bid.ApplyCounter(model.CounterBySeller, req.Price, req.Quantity, req.Message, time.Now())

	if err := s.save(ctx, l); err != nil {
		return 0, err
	}

	s.notifier.Dispatch(counterNotification(l, bid, round))
	return round, nil
}
