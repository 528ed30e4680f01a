package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// SetLiked sets whether the account likes the given song id and returns the
// resulting membership. Both directions are idempotent: liking twice keeps a
// single entry, unliking an absent entry is a no-op. The song id is not
// required to reference a live song.
func (s *Store) SetLiked(ctx context.Context, username, songID string, liked bool) (bool, error) {
	accountID, err := s.accountIDByUsername(ctx, username)
	if err != nil {
		return false, err
	}

	if liked {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO likes (account_id, song_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (account_id, song_id) DO NOTHING
		`, accountID, songID, time.Now().UTC()); err != nil {
			return false, fmt.Errorf("insert like: %w", err)
		}
		return true, nil
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM likes
		WHERE account_id = $1 AND song_id = $2
	`, accountID, songID); err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	return false, nil
}

// IsLiked reports whether the account currently likes the song id.
func (s *Store) IsLiked(ctx context.Context, username, songID string) (bool, error) {
	accountID, err := s.accountIDByUsername(ctx, username)
	if err != nil {
		return false, err
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM likes WHERE account_id = $1 AND song_id = $2)
	`, accountID, songID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return exists, nil
}

// LikedSongIDs returns the ids of every song the account has liked,
// including ids whose song has since been deleted.
func (s *Store) LikedSongIDs(ctx context.Context, username string) ([]string, error) {
	accountID, err := s.accountIDByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	var ids []string
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(ARRAY_AGG(song_id::text ORDER BY created_at ASC), '{}')
		FROM likes
		WHERE account_id = $1
	`, accountID).Scan(pq.Array(&ids))
	if err != nil {
		return nil, fmt.Errorf("list liked songs: %w", err)
	}
	return ids, nil
}
