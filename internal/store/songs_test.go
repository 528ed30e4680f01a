package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"soundshare/shared/go/models"
)

func expectAccountLock(mock sqlmock.Sqlmock, owner string, premium bool, owned int) {
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT premium_subscription, num_owned_songs
		FROM accounts
		WHERE username = $1
		FOR UPDATE
	`)).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"premium_subscription", "num_owned_songs"}).
			AddRow(premium, owned))
}

func mp3Upload(name string) models.Upload {
	return models.Upload{
		Name:        name,
		Filename:    "track.mp3",
		ContentType: "audio/mpeg",
		Size:        4,
		Data:        []byte{0xFF, 0xFB, 0x90, 0x00},
	}
}

func TestCreateSongSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	expectAccountLock(mock, "alice", false, 4)
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO songs (id, name, filename, size, data, owner, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)).
		WithArgs(sqlmock.AnyArg(), "My Song", "track.mp3", int64(4), []byte{0xFF, 0xFB, 0x90, 0x00}, "alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE accounts
		SET num_owned_songs = num_owned_songs + 1
		WHERE username = $1
	`)).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	song, err := s.CreateSong(context.Background(), "alice", mp3Upload("My Song"))
	if err != nil {
		t.Fatalf("CreateSong error: %v", err)
	}

	if song.ID == "" {
		t.Fatal("expected generated song id")
	}
	if song.Owner != "alice" || song.Name != "My Song" {
		t.Fatalf("unexpected song: %+v", song)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateSongQuotaExceeded(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	expectAccountLock(mock, "alice", false, FreeTierSongLimit)
	mock.ExpectRollback()

	if _, err := s.CreateSong(context.Background(), "alice", mp3Upload("One Too Many")); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	// No insert and no counter mutation may happen on denial.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateSongPremiumBypassesQuota(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	expectAccountLock(mock, "alice", true, FreeTierSongLimit)
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO songs (id, name, filename, size, data, owner, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE accounts
		SET num_owned_songs = num_owned_songs + 1
		WHERE username = $1
	`)).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if _, err := s.CreateSong(context.Background(), "alice", mp3Upload("Sixth Song")); err != nil {
		t.Fatalf("CreateSong error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateSongUnknownAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT premium_subscription, num_owned_songs
		FROM accounts
		WHERE username = $1
		FOR UPDATE
	`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	if _, err := s.CreateSong(context.Background(), "ghost", mp3Upload("Nobody Home")); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestDeleteSongSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT name, owner
		FROM songs
		WHERE id = $1
		FOR UPDATE
	`)).
		WithArgs("song-1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "owner"}).AddRow("My Song", "alice"))
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM songs
		WHERE id = $1
	`)).
		WithArgs("song-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE accounts
		SET num_owned_songs = GREATEST(num_owned_songs - 1, 0)
		WHERE username = $1
	`)).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	name, err := s.DeleteSong(context.Background(), "alice", "song-1")
	if err != nil {
		t.Fatalf("DeleteSong error: %v", err)
	}
	if name != "My Song" {
		t.Fatalf("expected deleted song name, got %q", name)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteSongForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT name, owner
		FROM songs
		WHERE id = $1
		FOR UPDATE
	`)).
		WithArgs("song-1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "owner"}).AddRow("Someone Else's", "bob"))
	mock.ExpectRollback()

	if _, err := s.DeleteSong(context.Background(), "alice", "song-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteSongNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT name, owner
		FROM songs
		WHERE id = $1
		FOR UPDATE
	`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	if _, err := s.DeleteSong(context.Background(), "alice", "missing"); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}
}

func TestSongNameMissingIsSentinel(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT name
		FROM songs
		WHERE id = $1
	`)).
		WithArgs("deleted-song").
		WillReturnError(sql.ErrNoRows)

	name, found, err := s.SongName(context.Background(), "deleted-song")
	if err != nil {
		t.Fatalf("SongName error: %v", err)
	}
	if found || name != "" {
		t.Fatalf("expected sentinel miss, got name=%q found=%v", name, found)
	}
}

func TestSearchSongsEscapesPattern(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, name, owner
		FROM songs
		WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY name ASC
		LIMIT 100
	`)).
		WithArgs(`100\%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner"}).
			AddRow("song-1", "100% Pure", "alice"))

	songs, err := s.SearchSongs(context.Background(), "100%")
	if err != nil {
		t.Fatalf("SearchSongs error: %v", err)
	}
	if len(songs) != 1 || songs[0].Name != "100% Pure" || songs[0].Owner != "alice" {
		t.Fatalf("unexpected songs: %#v", songs)
	}
}

func TestSongsByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, name
		FROM songs
		WHERE owner = $1
		ORDER BY created_at ASC
	`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("song-1", "First").
			AddRow("song-2", "Second"))

	songs, err := s.SongsByOwner(context.Background(), "alice")
	if err != nil {
		t.Fatalf("SongsByOwner error: %v", err)
	}
	if len(songs) != 2 || songs[0].ID != "song-1" || songs[1].Name != "Second" {
		t.Fatalf("unexpected songs: %#v", songs)
	}
}
