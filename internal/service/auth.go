// Package service implements the application's business logic: the
// register/login flow and the ownership-checked document operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/docvault/docvault/internal/auth"
	"github.com/docvault/docvault/internal/model"
	"github.com/docvault/docvault/internal/repository"
)

// Auth flow errors.
var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AccountStore is the credential store used by the auth flow.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
}

// TokenIssuer signs bearer tokens for authenticated identities.
type TokenIssuer interface {
	Issue(identity model.Identity) (string, error)
}

// AuthService implements registration and login.
type AuthService struct {
	accounts AccountStore
	tokens   TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(accounts AccountStore, tokens TokenIssuer) *AuthService {
	return &AuthService{
		accounts: accounts,
		tokens:   tokens,
	}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Username string
	Password string
}

// RegisterResult is the outcome of a successful registration.
type RegisterResult struct {
	InsertedID string `json:"insertedId"`
}

// Register creates a new account. The password is stored only as a one-way
// hash. Duplicate usernames fail with ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if input.Username == "" || input.Password == "" {
		return nil, ErrMissingCredentials
	}

	_, err := s.accounts.GetAccountByUsername(ctx, input.Username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		ID:           ulid.Make().String(),
		Username:     input.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		// Lost a race to another registration for the same username.
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	return &RegisterResult{InsertedID: account.ID}, nil
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns a signed bearer token embedding
// the account id and username.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (string, error) {
	if input.Username == "" || input.Password == "" {
		return "", ErrMissingCredentials
	}

	account, err := s.accounts.GetAccountByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("lookup account: %w", err)
	}

	match, err := auth.VerifyPassword(input.Password, account.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return "", ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(model.Identity{
		AccountID: account.ID,
		Username:  account.Username,
	})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return tok, nil
}
