package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"soundshare/shared/go/models"
)

var (
	// ErrUserExists signals the username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountNotFound indicates the identity does not resolve to an account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrSongNotFound indicates a lookup miss on a song id.
	ErrSongNotFound = errors.New("song not found")
	// ErrQuotaExceeded indicates the free-tier upload cap was hit.
	ErrQuotaExceeded = errors.New("max number of uploads met")
	// ErrForbidden indicates the requester does not own the resource.
	ErrForbidden = errors.New("forbidden")

	dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")
)

// FreeTierSongLimit is the owned-song cap for accounts without a premium
// subscription. Existing songs are grandfathered on downgrade; the cap only
// blocks new uploads.
const FreeTierSongLimit = 5

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateAccount registers a new account with default entitlements.
func (s *Store) CreateAccount(ctx context.Context, username, password string) (models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Account{}, fmt.Errorf("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	var account models.Account
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, premium_subscription, num_owned_songs, created_at
	`, username, hash).Scan(&account.ID, &account.Username, &account.PremiumSubscription, &account.NumOwnedSongs, &account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Account{}, ErrUserExists
		}
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}

	return account, nil
}

// Authenticate validates credentials and returns the matching account.
func (s *Store) Authenticate(ctx context.Context, username, password string) (models.Account, error) {
	var (
		account models.Account
		hash    []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, premium_subscription, num_owned_songs, created_at
		FROM accounts
		WHERE username = $1
	`, username).Scan(&account.ID, &account.Username, &hash, &account.PremiumSubscription, &account.NumOwnedSongs, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Level the timing between unknown users and bad passwords.
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return models.Account{}, ErrInvalidCredentials
		}
		return models.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return models.Account{}, ErrInvalidCredentials
	}

	return account, nil
}

// ChangePassword re-authenticates the account and stores a new hash.
func (s *Store) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if _, err := s.Authenticate(ctx, username, oldPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = $2
		WHERE username = $1
	`, username, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// SearchAccounts returns accounts whose username contains the term,
// case-insensitively. The term is escaped so it is matched literally.
func (s *Store) SearchAccounts(ctx context.Context, term string) ([]models.AccountSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, premium_subscription
		FROM accounts
		WHERE username ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY username ASC
		LIMIT 100
	`, escapeLike(term))
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.AccountSummary
	for rows.Next() {
		var acc models.AccountSummary
		if err := rows.Scan(&acc.Username, &acc.PremiumSubscription); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

func (s *Store) accountIDByUsername(ctx context.Context, username string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id
		FROM accounts
		WHERE username = $1
	`, username).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("lookup account: %w", err)
	}
	return id, nil
}

// escapeLike neutralizes LIKE metacharacters so user input is a literal
// substring, never a pattern.
func escapeLike(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, `%`, `\%`)
	term = strings.ReplaceAll(term, `_`, `\_`)
	return term
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
