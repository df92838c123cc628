package service

import (
	"context"
	"errors"
	"testing"

	"sharemarket-backend/internal/model"
)

func newIdentityEnv(users ...*model.User) (*IdentityService, *fakeUserStore, *fakeHistoryStore) {
	userStore := newFakeUserStore(users...)
	history := newFakeHistoryStore()
	return NewIdentityService(userStore, history), userStore, history
}

func TestReserveInitialUsername(t *testing.T) {
	svc, _, history := newIdentityEnv()

	if err := svc.ReserveInitialUsername(context.Background(), "u1", "alice"); err != nil {
		t.Fatalf("ReserveInitialUsername: %v", err)
	}

	exists, _ := history.Exists(context.Background(), "alice")
	if !exists {
		t.Error("initial username not recorded in history")
	}
}

func TestReserveInitialUsernameNormalizes(t *testing.T) {
	svc, _, history := newIdentityEnv()

	if err := svc.ReserveInitialUsername(context.Background(), "u1", "  Alice "); err != nil {
		t.Fatalf("ReserveInitialUsername: %v", err)
	}
	if exists, _ := history.Exists(context.Background(), "ALICE"); !exists {
		t.Error("lookup must be case-insensitive over normalized names")
	}
}

func TestReserveRetiredUsername(t *testing.T) {
	svc, _, _ := newIdentityEnv()

	if err := svc.ReserveInitialUsername(context.Background(), "u1", "alice"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.ReserveInitialUsername(context.Background(), "u2", "alice"); !errors.Is(err, ErrUsernameRetired) {
		t.Fatalf("err = %v, want ErrUsernameRetired", err)
	}
}

func TestChangeUsernameRetiresOldName(t *testing.T) {
	alice := &model.User{ID: "u1", Username: "alice"}
	svc, users, history := newIdentityEnv(alice)
	_ = svc.ReserveInitialUsername(context.Background(), "u1", "alice")

	updated, err := svc.ChangeUsername(context.Background(), "u1", "bob")
	if err != nil {
		t.Fatalf("ChangeUsername: %v", err)
	}

	if updated.Username != "bob" {
		t.Errorf("username = %s, want bob", updated.Username)
	}
	if len(updated.PreviousUsernames) != 1 || updated.PreviousUsernames[0] != "alice" {
		t.Errorf("previous usernames = %v, want [alice]", updated.PreviousUsernames)
	}

	// The OLD name is locked; the new one enters history only when it is
	// itself superseded.
	if exists, _ := history.Exists(context.Background(), "alice"); !exists {
		t.Error("old username must be retired")
	}
	if users.users["u1"].Username != "bob" {
		t.Errorf("stored username = %s, want bob", users.users["u1"].Username)
	}
}

func TestRetiredUsernameNeverReassigned(t *testing.T) {
	// Register A as alice, change A to bob, then try to claim alice again.
	alice := &model.User{ID: "a", Username: "alice"}
	svc, _, _ := newIdentityEnv(alice)
	_ = svc.ReserveInitialUsername(context.Background(), "a", "alice")

	if _, err := svc.ChangeUsername(context.Background(), "a", "bob"); err != nil {
		t.Fatalf("ChangeUsername: %v", err)
	}

	// New registration cannot take the retired name
	if err := svc.ReserveInitialUsername(context.Background(), "c", "alice"); !errors.Is(err, ErrUsernameRetired) {
		t.Errorf("register with retired name: err = %v, want ErrUsernameRetired", err)
	}

	// Not even its original owner can take it back
	if _, err := svc.ChangeUsername(context.Background(), "a", "alice"); !errors.Is(err, ErrUsernameRetired) {
		t.Errorf("owner reclaiming retired name: err = %v, want ErrUsernameRetired", err)
	}

	if available, _ := svc.CheckUsernameAvailability(context.Background(), "alice"); available {
		t.Error("retired name reported available")
	}
}

func TestChangeUsernameRejectsLiveName(t *testing.T) {
	svc, _, _ := newIdentityEnv(
		&model.User{ID: "a", Username: "alice"},
		&model.User{ID: "b", Username: "bob"},
	)

	if _, err := svc.ChangeUsername(context.Background(), "a", "bob"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestChangeUsernameRejectsSameName(t *testing.T) {
	svc, _, _ := newIdentityEnv(&model.User{ID: "a", Username: "alice"})

	if _, err := svc.ChangeUsername(context.Background(), "a", "Alice"); !errors.Is(err, ErrSameUsername) {
		t.Fatalf("err = %v, want ErrSameUsername", err)
	}
}

func TestChangeUsernameUnknownUser(t *testing.T) {
	svc, _, _ := newIdentityEnv()

	if _, err := svc.ChangeUsername(context.Background(), "ghost", "bob"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestUsernameValidation(t *testing.T) {
	svc, _, _ := newIdentityEnv(&model.User{ID: "a", Username: "alice"})

	for _, bad := range []string{"ab", "has space", "emoji✨", "x", ""} {
		if _, err := svc.ChangeUsername(context.Background(), "a", bad); !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("ChangeUsername(%q): err = %v, want ErrInvalidUsername", bad, err)
		}
		if available, _ := svc.CheckUsernameAvailability(context.Background(), bad); available {
			t.Errorf("CheckUsernameAvailability(%q) = true, want false", bad)
		}
	}
}

func TestCheckUsernameAvailability(t *testing.T) {
	svc, _, _ := newIdentityEnv(&model.User{ID: "a", Username: "alice"})

	if available, _ := svc.CheckUsernameAvailability(context.Background(), "alice"); available {
		t.Error("live username reported available")
	}
	if available, _ := svc.CheckUsernameAvailability(context.Background(), "fresh_name"); !available {
		t.Error("fresh username reported unavailable")
	}
}
