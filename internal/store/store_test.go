package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateAccountSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO accounts (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, premium_subscription, num_owned_songs, created_at
	`)).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "premium_subscription", "num_owned_songs", "created_at",
		}).AddRow(int64(1), "alice", false, 0, time.Now()))

	account, err := s.CreateAccount(context.Background(), "  alice ", "hunter22")
	if err != nil {
		t.Fatalf("CreateAccount error: %v", err)
	}

	if account.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", account.Username)
	}
	if account.PremiumSubscription || account.NumOwnedSongs != 0 {
		t.Fatalf("expected default entitlements, got %+v", account)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAccountDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO accounts (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, premium_subscription, num_owned_songs, created_at
	`)).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if _, err := s.CreateAccount(context.Background(), "alice", "hunter22"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAccountRequiresFields(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	if _, err := s.CreateAccount(context.Background(), "   ", "pass"); err == nil {
		t.Fatal("expected error for blank username")
	}
	if _, err := s.CreateAccount(context.Background(), "user", ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, username, password_hash, premium_subscription, num_owned_songs, created_at
		FROM accounts
		WHERE username = $1
	`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "password_hash", "premium_subscription", "num_owned_songs", "created_at",
		}).AddRow(int64(7), "alice", hash, true, 3, time.Now()))

	account, err := s.Authenticate(context.Background(), "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if account.ID != 7 || !account.PremiumSubscription || account.NumOwnedSongs != 3 {
		t.Fatalf("unexpected account: %+v", account)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	hash, err := bcrypt.GenerateFromPassword([]byte("the-real-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, username, password_hash, premium_subscription, num_owned_songs, created_at
		FROM accounts
		WHERE username = $1
	`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "password_hash", "premium_subscription", "num_owned_songs", "created_at",
		}).AddRow(int64(7), "alice", hash, false, 0, time.Now()))

	if _, err := s.Authenticate(context.Background(), "alice", "guess"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, username, password_hash, premium_subscription, num_owned_songs, created_at
		FROM accounts
		WHERE username = $1
	`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	if _, err := s.Authenticate(context.Background(), "ghost", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSearchAccountsEscapesPattern(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT username, premium_subscription
		FROM accounts
		WHERE username ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY username ASC
		LIMIT 100
	`)).
		WithArgs(`50\%\_off`).
		WillReturnRows(sqlmock.NewRows([]string{"username", "premium_subscription"}).
			AddRow("50%_off_dave", true))

	accounts, err := s.SearchAccounts(context.Background(), "50%_off")
	if err != nil {
		t.Fatalf("SearchAccounts error: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Username != "50%_off_dave" {
		t.Fatalf("unexpected accounts: %#v", accounts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
	}

	for _, tc := range tests {
		if got := escapeLike(tc.in); got != tc.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
