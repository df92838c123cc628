package service

import (
	"context"

	"sharemarket-backend/internal/model"
)

// Store interfaces consumed by the business services. The pgx repositories
// satisfy them; tests substitute in-memory fakes.

type listingStore interface {
	Create(ctx context.Context, l *model.Listing) (*model.Listing, error)
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	Update(ctx context.Context, l *model.Listing) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, req *model.SearchListingsRequest) ([]model.Listing, int, error)
	GetByOwnerID(ctx context.Context, ownerID string, status string) ([]model.Listing, error)
}

type companyStore interface {
	GetByID(ctx context.Context, id string) (*model.Company, error)
	IncrementListingCount(ctx context.Context, id string, delta int) error
}

type feeStore interface {
	Create(ctx context.Context, f *model.FeeTransaction) (*model.FeeTransaction, error)
}

type identityUserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	UpdateUsername(ctx context.Context, id, oldUsername, newUsername string) error
}

type usernameHistoryStore interface {
	Insert(ctx context.Context, username, userID, reason string) error
	Exists(ctx context.Context, username string) (bool, error)
}

type notificationStore interface {
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)
}

// notifier is the fire-and-forget side of the Dispatcher. State transitions
// call it after their write succeeds and never observe its outcome.
type notifier interface {
	Dispatch(n *model.Notification)
}
