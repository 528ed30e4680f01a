package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"soundshare/shared/go/models"
)

// CreateSong admits a new song for the owner. The account row is locked for
// the duration of the transaction so the quota check, the song insert, and
// the owned-song counter increment land as one unit; concurrent uploads from
// the same account cannot overshoot the cap.
func (s *Store) CreateSong(ctx context.Context, owner string, up models.Upload) (models.Song, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Song{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		premium bool
		owned   int
	)
	err = tx.QueryRowContext(ctx, `
		SELECT premium_subscription, num_owned_songs
		FROM accounts
		WHERE username = $1
		FOR UPDATE
	`, owner).Scan(&premium, &owned)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Song{}, ErrAccountNotFound
		}
		return models.Song{}, fmt.Errorf("lock account: %w", err)
	}

	if !premium && owned >= FreeTierSongLimit {
		return models.Song{}, ErrQuotaExceeded
	}

	song := models.Song{
		ID:        uuid.NewString(),
		Name:      up.Name,
		Filename:  up.Filename,
		Size:      up.Size,
		Data:      up.Data,
		Owner:     owner,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO songs (id, name, filename, size, data, owner, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, song.ID, song.Name, song.Filename, song.Size, song.Data, song.Owner, song.CreatedAt); err != nil {
		return models.Song{}, fmt.Errorf("insert song: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET num_owned_songs = num_owned_songs + 1
		WHERE username = $1
	`, owner); err != nil {
		return models.Song{}, fmt.Errorf("increment owned songs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Song{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return song, nil
}

// DeleteSong removes a song owned by the requester and decrements the
// owner's counter, floored at zero. Liked-song references are left alone:
// a dangling like is a valid state, not a corruption.
func (s *Store) DeleteSong(ctx context.Context, requester, id string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		name  string
		owner string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT name, owner
		FROM songs
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&name, &owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSongNotFound
		}
		return "", fmt.Errorf("lookup song: %w", err)
	}

	if owner != requester {
		return "", ErrForbidden
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM songs
		WHERE id = $1
	`, id); err != nil {
		return "", fmt.Errorf("delete song: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET num_owned_songs = GREATEST(num_owned_songs - 1, 0)
		WHERE username = $1
	`, owner); err != nil {
		return "", fmt.Errorf("decrement owned songs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return name, nil
}

// GetSong returns a song including its binary payload.
func (s *Store) GetSong(ctx context.Context, id string) (models.Song, error) {
	var song models.Song
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, filename, size, data, owner, created_at
		FROM songs
		WHERE id = $1
	`, id).Scan(&song.ID, &song.Name, &song.Filename, &song.Size, &song.Data, &song.Owner, &song.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Song{}, ErrSongNotFound
		}
		return models.Song{}, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// SongName returns the display name for a song id. A missing song reports
// found=false rather than an error so deleted songs referenced by stale
// likes resolve to a sentinel.
func (s *Store) SongName(ctx context.Context, id string) (string, bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `
		SELECT name
		FROM songs
		WHERE id = $1
	`, id).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup song name: %w", err)
	}
	return name, true, nil
}

// SongsByOwner lists the id/name pairs of all songs owned by a user.
func (s *Store) SongsByOwner(ctx context.Context, owner string) ([]models.SongSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM songs
		WHERE owner = $1
		ORDER BY created_at ASC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	return scanSongSummaries(rows, false)
}

// SearchSongs returns songs whose name contains the term,
// case-insensitively. The term is escaped so it is matched literally.
func (s *Store) SearchSongs(ctx context.Context, term string) ([]models.SongSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, owner
		FROM songs
		WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY name ASC
		LIMIT 100
	`, escapeLike(term))
	if err != nil {
		return nil, fmt.Errorf("search songs: %w", err)
	}
	defer rows.Close()

	return scanSongSummaries(rows, true)
}

// RandomSongs samples up to n songs for the homepage feed.
func (s *Store) RandomSongs(ctx context.Context, n int) ([]models.SongSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, owner
		FROM songs
		ORDER BY RANDOM()
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("random songs: %w", err)
	}
	defer rows.Close()

	return scanSongSummaries(rows, true)
}

func scanSongSummaries(rows *sql.Rows, withOwner bool) ([]models.SongSummary, error) {
	var songs []models.SongSummary
	for rows.Next() {
		var song models.SongSummary
		var err error
		if withOwner {
			err = rows.Scan(&song.ID, &song.Name, &song.Owner)
		} else {
			err = rows.Scan(&song.ID, &song.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}
