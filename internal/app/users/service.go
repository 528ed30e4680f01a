package users

import (
	"context"
	"errors"
	"strings"

	"soundshare/shared/go/models"
)

var (
	// ErrMissingFields indicates a required signup/login field was absent.
	ErrMissingFields = errors.New("all fields are required")
	// ErrPasswordMismatch indicates the two signup passwords differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrMissingSearch indicates an absent search parameter.
	ErrMissingSearch = errors.New("missing search parameter")
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateAccount(ctx context.Context, username, password string) (models.Account, error)
	Authenticate(ctx context.Context, username, password string) (models.Account, error)
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	SearchAccounts(ctx context.Context, term string) ([]models.AccountSummary, error)
}

// Service exposes account workflows.
type Service interface {
	Signup(ctx context.Context, username, password, password2 string) (models.Account, error)
	Login(ctx context.Context, username, password string) (models.Account, error)
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	Search(ctx context.Context, term string) ([]models.AccountSummary, error)
}

type service struct {
	store Store
}

// New wires a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Signup(ctx context.Context, username, password, password2 string) (models.Account, error) {
	if err := ctx.Err(); err != nil {
		return models.Account{}, err
	}
	if strings.TrimSpace(username) == "" || password == "" || password2 == "" {
		return models.Account{}, ErrMissingFields
	}
	if password != password2 {
		return models.Account{}, ErrPasswordMismatch
	}
	return s.store.CreateAccount(ctx, username, password)
}

func (s *service) Login(ctx context.Context, username, password string) (models.Account, error) {
	if err := ctx.Err(); err != nil {
		return models.Account{}, err
	}
	if username == "" || password == "" {
		return models.Account{}, ErrMissingFields
	}
	return s.store.Authenticate(ctx, username, password)
}

func (s *service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if oldPassword == "" || newPassword == "" {
		return ErrMissingFields
	}
	return s.store.ChangePassword(ctx, username, oldPassword, newPassword)
}

func (s *service) Search(ctx context.Context, term string) ([]models.AccountSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if term == "" {
		return nil, ErrMissingSearch
	}
	return s.store.SearchAccounts(ctx, term)
}
