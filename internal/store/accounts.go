package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SetPremium updates the account's premium flag and returns the stored
// value. Downgrading an over-quota account is allowed: the free-tier cap
// only gates new uploads, existing songs are grandfathered.
func (s *Store) SetPremium(ctx context.Context, username string, subscribed bool) (bool, error) {
	var stored bool
	err := s.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET premium_subscription = $2
		WHERE username = $1
		RETURNING premium_subscription
	`, username, subscribed).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrAccountNotFound
		}
		return false, fmt.Errorf("update premium: %w", err)
	}
	return stored, nil
}

// IsPremium reports whether the account holds a premium subscription.
func (s *Store) IsPremium(ctx context.Context, username string) (bool, error) {
	var subscribed bool
	err := s.db.QueryRowContext(ctx, `
		SELECT premium_subscription
		FROM accounts
		WHERE username = $1
	`, username).Scan(&subscribed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrAccountNotFound
		}
		return false, fmt.Errorf("lookup premium: %w", err)
	}
	return subscribed, nil
}
