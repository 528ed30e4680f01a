package models

import "time"

// Account represents a registered user with entitlement state.
// Username is immutable after creation.
type Account struct {
	ID                  int64     `json:"id" db:"id"`
	Username            string    `json:"username" db:"username"`
	PasswordHash        string    `json:"-" db:"password_hash"`
	PremiumSubscription bool      `json:"premiumSubscription" db:"premium_subscription"`
	NumOwnedSongs       int       `json:"numOwnedSongs" db:"num_owned_songs"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
}

// AccountSummary is the public projection returned by account search.
type AccountSummary struct {
	Username            string `json:"username"`
	PremiumSubscription bool   `json:"premiumSubscription"`
}
