package models

import (
	"strings"
	"time"
)

// Profile is the founder record keyed by user id.
type Profile struct {
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Bio       string    `json:"bio,omitempty"`
	AvatarRef string    `json:"avatar_ref,omitempty"` // data URI of a PNG thumbnail
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the name to greet the founder with.
func (p Profile) DisplayName() string {
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}
	return "Founder"
}

// Account is a credential record owned by the local auth adapter.
type Account struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Provider     string     `json:"provider"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Session is the single source of truth for whether a founder is signed in.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	Provider  string    `json:"provider"`
	ExpiresAt time.Time `json:"expires_at"`
	Remember  bool      `json:"remember"`
}

// Valid reports whether the session identifies a user and has not expired.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.UserID == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}
