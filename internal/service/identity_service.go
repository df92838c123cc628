package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sharemarket-backend/internal/model"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username is already in use")
	ErrUsernameRetired = errors.New("username was previously used and cannot be reassigned")
	ErrSameUsername    = errors.New("new username matches the current one")
	ErrInvalidUsername = errors.New("username must be 3-32 characters: letters, digits, underscore")
)

const (
	reasonInitialRegistration = "Initial registration"
	reasonUserChanged         = "User changed username"
)

// IdentityService enforces the username retirement rule: a name that has
// ever appeared in the history log is permanently out of circulation, even
// for the account that retired it.
type IdentityService struct {
	users   identityUserStore
	history usernameHistoryStore
}

func NewIdentityService(users identityUserStore, history usernameHistoryStore) *IdentityService {
	return &IdentityService{users: users, history: history}
}

// ReserveInitialUsername records a fresh account's chosen name in the
// history log. Registration already checked uniqueness against live users;
// the guard re-verifies against retired names.
func (s *IdentityService) ReserveInitialUsername(ctx context.Context, userID, username string) error {
	username = normalizeUsername(username)
	if !validUsername(username) {
		return ErrInvalidUsername
	}

	retired, err := s.history.Exists(ctx, username)
	if err != nil {
		return fmt.Errorf("check username history: %w", err)
	}
	if retired {
		return ErrUsernameRetired
	}

	if err := s.history.Insert(ctx, username, userID, reasonInitialRegistration); err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameRetired
		}
		return fmt.Errorf("reserve username: %w", err)
	}
	return nil
}

// ChangeUsername swaps a user's active name. The new name must never have
// appeared in history; on success the OLD name is what gets retired — the
// new one only enters the log when it is itself superseded later.
func (s *IdentityService) ChangeUsername(ctx context.Context, userID, newUsername string) (*model.User, error) {
	newUsername = normalizeUsername(newUsername)
	if !validUsername(newUsername) {
		return nil, ErrInvalidUsername
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if strings.EqualFold(user.Username, newUsername) {
		return nil, ErrSameUsername
	}

	retired, err := s.history.Exists(ctx, newUsername)
	if err != nil {
		return nil, fmt.Errorf("check username history: %w", err)
	}
	if retired {
		return nil, ErrUsernameRetired
	}

	taken, err := s.users.UsernameTaken(ctx, newUsername)
	if err != nil {
		return nil, fmt.Errorf("check live usernames: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	oldUsername := user.Username
	if err := s.history.Insert(ctx, oldUsername, userID, reasonUserChanged); err != nil && !isUniqueViolation(err) {
		return nil, fmt.Errorf("retire old username: %w", err)
	}

	if err := s.users.UpdateUsername(ctx, userID, oldUsername, newUsername); err != nil {
		return nil, fmt.Errorf("update username: %w", err)
	}

	user.PreviousUsernames = append(user.PreviousUsernames, oldUsername)
	user.Username = newUsername
	return user, nil
}

// CheckUsernameAvailability reports whether a candidate can become anyone's
// active username: it must match no live user and no retired name.
func (s *IdentityService) CheckUsernameAvailability(ctx context.Context, candidate string) (bool, error) {
	candidate = normalizeUsername(candidate)
	if !validUsername(candidate) {
		return false, nil
	}

	taken, err := s.users.UsernameTaken(ctx, candidate)
	if err != nil {
		return false, fmt.Errorf("check live usernames: %w", err)
	}
	if taken {
		return false, nil
	}

	retired, err := s.history.Exists(ctx, candidate)
	if err != nil {
		return false, fmt.Errorf("check username history: %w", err)
	}
	return !retired, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validUsername(username string) bool {
	if len(username) < 3 || len(username) > 32 {
		return false
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique")
}
