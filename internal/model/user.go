package model

import "time"

type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email,omitempty"`
	PasswordHash      string     `json:"-"`
	FullName          string     `json:"full_name,omitempty"`
	PreviousUsernames []string   `json:"previous_usernames,omitempty"`
	ReferralCode      string     `json:"referral_code,omitempty"`
	ReferredBy        *string    `json:"referred_by,omitempty"`
	IsBanned          bool       `json:"is_banned"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type UserProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UsernameHistory is one retired name. Once a username lands here it can
// never be assigned to anyone again, its original owner included.
type UsernameHistory struct {
	Username  string    `json:"username"`
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	ChangedAt time.Time `json:"changed_at"`
}

type ChangeUsernameRequest struct {
	Username string `json:"username"`
}
