package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"sharemarket-backend/internal/model"
	"sharemarket-backend/internal/repository"
)

// In-memory store fakes mirroring the pgx repositories' semantics,
// including the version check on listing updates.

type fakeListingStore struct {
	mu       sync.Mutex
	listings map[string]*model.Listing
	failNext error
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{listings: make(map[string]*model.Listing)}
}

func copyListing(l *model.Listing) *model.Listing {
	cp := *l
	cp.Bids = append([]model.Bid(nil), l.Bids...)
	for i := range cp.Bids {
		cp.Bids[i].CounterHistory = append([]model.CounterEntry(nil), l.Bids[i].CounterHistory...)
	}
	cp.Offers = append([]model.Bid(nil), l.Offers...)
	for i := range cp.Offers {
		cp.Offers[i].CounterHistory = append([]model.CounterEntry(nil), l.Offers[i].CounterHistory...)
	}
	if l.BoostExpiresAt != nil {
		t := *l.BoostExpiresAt
		cp.BoostExpiresAt = &t
	}
	return &cp
}

func (s *fakeListingStore) Create(_ context.Context, l *model.Listing) (*model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.Status = model.ListingStatusActive
	l.Version = 1
	if l.Bids == nil {
		l.Bids = []model.Bid{}
	}
	if l.Offers == nil {
		l.Offers = []model.Bid{}
	}
	s.listings[l.ID] = copyListing(l)
	return l, nil
}

func (s *fakeListingStore) GetByID(_ context.Context, id string) (*model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, fmt.Errorf("no rows in result set")
	}
	return copyListing(l), nil
}

func (s *fakeListingStore) Update(_ context.Context, l *model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	stored, ok := s.listings[l.ID]
	if !ok || stored.Version != l.Version {
		return repository.ErrVersionMismatch
	}
	l.Version++
	s.listings[l.ID] = copyListing(l)
	return nil
}

func (s *fakeListingStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[id]; !ok {
		return fmt.Errorf("listing not found")
	}
	delete(s.listings, id)
	return nil
}

func (s *fakeListingStore) Search(_ context.Context, _ *model.SearchListingsRequest) ([]model.Listing, int, error) {
	return []model.Listing{}, 0, nil
}

func (s *fakeListingStore) GetByOwnerID(_ context.Context, ownerID string, _ string) ([]model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Listing
	for _, l := range s.listings {
		if l.OwnerID == ownerID {
			out = append(out, *copyListing(l))
		}
	}
	return out, nil
}

type fakeCompanyStore struct {
	companies map[string]*model.Company
	deltas    []int
}

func newFakeCompanyStore(companies ...*model.Company) *fakeCompanyStore {
	s := &fakeCompanyStore{companies: make(map[string]*model.Company)}
	for _, c := range companies {
		s.companies[c.ID] = c
	}
	return s
}

func (s *fakeCompanyStore) GetByID(_ context.Context, id string) (*model.Company, error) {
	c, ok := s.companies[id]
	if !ok {
		return nil, fmt.Errorf("no rows in result set")
	}
	return c, nil
}

func (s *fakeCompanyStore) IncrementListingCount(_ context.Context, id string, delta int) error {
	if c, ok := s.companies[id]; ok {
		c.ListingCount += delta
	}
	s.deltas = append(s.deltas, delta)
	return nil
}

type fakeFeeStore struct {
	fees []*model.FeeTransaction
}

func (s *fakeFeeStore) Create(_ context.Context, f *model.FeeTransaction) (*model.FeeTransaction, error) {
	s.fees = append(s.fees, f)
	return f, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []*model.Notification
}

func (n *fakeNotifier) Dispatch(notif *model.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notif)
}

func (n *fakeNotifier) byType(t string) []*model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []*model.Notification
	for _, s := range n.sent {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

type fakeUserStore struct {
	users map[string]*model.User
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("no rows in result set")
	}
	cp := *u
	cp.PreviousUsernames = append([]string(nil), u.PreviousUsernames...)
	return &cp, nil
}

func (s *fakeUserStore) UsernameTaken(_ context.Context, username string) (bool, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) UpdateUsername(_ context.Context, id, oldUsername, newUsername string) error {
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("no rows in result set")
	}
	u.PreviousUsernames = append(u.PreviousUsernames, oldUsername)
	u.Username = newUsername
	return nil
}

type fakeHistoryStore struct {
	entries map[string]string // username -> user id
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{entries: make(map[string]string)}
}

func (s *fakeHistoryStore) Insert(_ context.Context, username, userID, _ string) error {
	key := strings.ToLower(username)
	if _, ok := s.entries[key]; ok {
		return fmt.Errorf("duplicate key value violates unique constraint")
	}
	s.entries[key] = userID
	return nil
}

func (s *fakeHistoryStore) Exists(_ context.Context, username string) (bool, error) {
	_, ok := s.entries[strings.ToLower(username)]
	return ok, nil
}

type fakeNotifStore struct {
	mu      sync.Mutex
	created []*model.Notification
	err     error
}

func (s *fakeNotifStore) Create(_ context.Context, n *model.Notification) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, n)
	return n, nil
}

func (s *fakeNotifStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}
