package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"sharemarket-backend/internal/model"

	"github.com/google/uuid"
)

// Dispatcher creates notification records as a fire-and-forget side effect
// of state transitions. Enqueue never blocks and delivery is at most once:
// a failed insert is logged and dropped, never surfaced to the transition
// that produced it. Stored notifications are also pushed to the recipient's
// live WebSocket connections.
type Dispatcher struct {
	notifs notificationStore
	hub    *WSHub
	queue  chan *model.Notification
	done   chan struct{}
}

func NewDispatcher(notifs notificationStore, hub *WSHub) *Dispatcher {
	return &Dispatcher{
		notifs: notifs,
		hub:    hub,
		queue:  make(chan *model.Notification, 256),
		done:   make(chan struct{}),
	}
}

// Dispatch enqueues a notification. On a full queue the notification is
// dropped; notifications are best-effort UX, not a correctness requirement.
func (d *Dispatcher) Dispatch(n *model.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	select {
	case d.queue <- n:
	default:
		log.Printf("[NOTIFY] queue full, dropped %s for user %s", n.Type, n.UserID)
	}
}

func (d *Dispatcher) Run() {
	for {
		select {
		case n := <-d.queue:
			d.deliver(n)
		case <-d.done:
			return
		}
	}
}

func (d *Dispatcher) Shutdown() {
	close(d.done)
}

func (d *Dispatcher) deliver(n *model.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := d.notifs.Create(ctx, n); err != nil {
		log.Printf("[NOTIFY] store %s for user %s failed: %v", n.Type, n.UserID, err)
		return
	}

	if d.hub != nil {
		payload, err := json.Marshal(map[string]interface{}{
			"event": "notification",
			"data":  n,
		})
		if err == nil {
			d.hub.SendToUser(n.UserID, payload)
		}
	}
}

// --- notification builders ---

func notifData(data model.NotificationData) json.RawMessage {
	raw, _ := json.Marshal(data)
	return raw
}

func newBidNotification(l *model.Listing, b *model.Bid) *model.Notification {
	notifType := model.NotifNewBid
	title := "New bid received"
	if l.Type == model.ListingTypeBuy {
		notifType = model.NotifNewOffer
		title = "New offer received"
	}
	return &model.Notification{
		UserID:  l.OwnerID,
		Type:    notifType,
		Title:   title,
		Message: fmt.Sprintf("%s proposed %d x %s shares at %d", b.BidderUsername, b.Quantity, l.CompanyName, b.Price),
		Data: notifData(model.NotificationData{
			ListingID:   l.ID,
			BidID:       b.ID,
			CompanyName: l.CompanyName,
			Amount:      b.Price,
			Quantity:    b.Quantity,
			Username:    b.BidderUsername,
		}),
	}
}

func bidDecisionNotification(l *model.Listing, b *model.Bid, accepted bool) *model.Notification {
	var notifType, title, verb string
	switch {
	case accepted && l.Type == model.ListingTypeBuy:
		notifType, title, verb = model.NotifOfferAccepted, "Offer accepted", "accepted"
	case accepted:
		notifType, title, verb = model.NotifBidAccepted, "Bid accepted", "accepted"
	case l.Type == model.ListingTypeBuy:
		notifType, title, verb = model.NotifOfferRejected, "Offer rejected", "rejected"
	default:
		notifType, title, verb = model.NotifBidRejected, "Bid rejected", "rejected"
	}
	return &model.Notification{
		UserID:  b.BidderID,
		Type:    notifType,
		Title:   title,
		Message: fmt.Sprintf("%s %s your proposal of %d x %s shares at %d", l.OwnerUsername, verb, b.Quantity, l.CompanyName, b.Price),
		Data: notifData(model.NotificationData{
			ListingID:   l.ID,
			BidID:       b.ID,
			CompanyName: l.CompanyName,
			Amount:      b.Price,
			Quantity:    b.Quantity,
		}),
	}
}

func counterNotification(l *model.Listing, b *model.Bid, round int) *model.Notification {
	return &model.Notification{
		UserID:  b.BidderID,
		Type:    model.NotifCounterOffer,
		Title:   "Counter offer received",
		Message: fmt.Sprintf("%s countered with %d x %s shares at %d (round %d)", l.OwnerUsername, b.Quantity, l.CompanyName, b.Price, round),
		Data: notifData(model.NotificationData{
			ListingID:   l.ID,
			BidID:       b.ID,
			CompanyName: l.CompanyName,
			Amount:      b.Price,
			Quantity:    b.Quantity,
			Round:       round,
		}),
	}
}

func listingCancelledNotification(l *model.Listing, bidderID string) *model.Notification {
	return &model.Notification{
		UserID:  bidderID,
		Type:    model.NotifListingCancelled,
		Title:   "Listing cancelled",
		Message: fmt.Sprintf("The %s listing for %s shares was cancelled by its owner", l.Type, l.CompanyName),
		Data: notifData(model.NotificationData{
			ListingID:   l.ID,
			CompanyName: l.CompanyName,
		}),
	}
}

func boostNotification(l *model.Listing) *model.Notification {
	return &model.Notification{
		UserID:  l.OwnerID,
		Type:    model.NotifBoostActivated,
		Title:   "Boost activated",
		Message: fmt.Sprintf("Your %s listing for %s shares is boosted for the next 24 hours", l.Type, l.CompanyName),
		Data: notifData(model.NotificationData{
			ListingID:   l.ID,
			CompanyName: l.CompanyName,
		}),
	}
}

func referralNotification(referrerID, newUsername string) *model.Notification {
	return &model.Notification{
		UserID:  referrerID,
		Type:    model.NotifReferralEarning,
		Title:   "Referral signup",
		Message: fmt.Sprintf("%s joined using your referral code", newUsername),
		Data: notifData(model.NotificationData{
			Username: newUsername,
		}),
	}
}
