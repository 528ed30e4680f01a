package subscriptions

import (
	"context"
	"errors"
)

// ErrMissingState indicates the desired subscription state was absent from
// the request. An explicit false is a valid downgrade request.
var ErrMissingState = errors.New("missing subscribed state")

// Store describes the persistence operations required for subscription
// workflows.
type Store interface {
	SetPremium(ctx context.Context, username string, subscribed bool) (bool, error)
	IsPremium(ctx context.Context, username string) (bool, error)
}

// Service exposes premium subscription workflows.
type Service interface {
	Toggle(ctx context.Context, username string, subscribed *bool) (bool, error)
	Status(ctx context.Context, username string) (bool, error)
}

type service struct {
	store Store
}

// New constructs a subscriptions Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

// Toggle sets the premium flag. No quota re-check happens on downgrade:
// songs already owned over the free cap are grandfathered and only new
// uploads are blocked.
func (s *service) Toggle(ctx context.Context, username string, subscribed *bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if subscribed == nil {
		return false, ErrMissingState
	}
	return s.store.SetPremium(ctx, username, *subscribed)
}

func (s *service) Status(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.IsPremium(ctx, username)
}
