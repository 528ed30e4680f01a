package likes

import (
	"context"
	"errors"
)

var (
	// ErrMissingID indicates an absent song id.
	ErrMissingID = errors.New("missing song id")
	// ErrMissingState indicates the desired liked state was absent from the
	// request. An explicit false is valid; only nil is an error.
	ErrMissingState = errors.New("missing liked state")
)

// Store describes the persistence operations required for like workflows.
type Store interface {
	SetLiked(ctx context.Context, username, songID string, liked bool) (bool, error)
	IsLiked(ctx context.Context, username, songID string) (bool, error)
	LikedSongIDs(ctx context.Context, username string) ([]string, error)
}

// Service exposes like-toggling workflows.
type Service interface {
	Toggle(ctx context.Context, username, songID string, liked *bool) (bool, error)
	IsLiked(ctx context.Context, username, songID string) (bool, error)
	ListIDs(ctx context.Context, username string) ([]string, error)
}

type service struct {
	store Store
}

// New constructs a likes Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

// Toggle sets the liked state for a song. The desired state is a pointer so
// an explicit false is distinguishable from an absent field.
func (s *service) Toggle(ctx context.Context, username, songID string, liked *bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if songID == "" {
		return false, ErrMissingID
	}
	if liked == nil {
		return false, ErrMissingState
	}
	return s.store.SetLiked(ctx, username, songID, *liked)
}

func (s *service) IsLiked(ctx context.Context, username, songID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if songID == "" {
		return false, ErrMissingID
	}
	return s.store.IsLiked(ctx, username, songID)
}

func (s *service) ListIDs(ctx context.Context, username string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.LikedSongIDs(ctx, username)
}
