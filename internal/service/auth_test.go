package service

import (
	"context"
	"errors"
	"testing"

	"github.com/docvault/docvault/internal/model"
	"github.com/docvault/docvault/internal/repository"
	"github.com/docvault/docvault/internal/token"
)

// fakeAccountStore is an in-memory AccountStore for unit tests.
type fakeAccountStore struct {
	byUsername map[string]*model.Account
	createErr  error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{byUsername: make(map[string]*model.Account)}
}

func (f *fakeAccountStore) CreateAccount(_ context.Context, account *model.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byUsername[account.Username]; ok {
		return repository.ErrUsernameExists
	}
	copied := *account
	f.byUsername[account.Username] = &copied
	return nil
}

func (f *fakeAccountStore) GetAccountByUsername(_ context.Context, username string) (*model.Account, error) {
	account, ok := f.byUsername[username]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func newAuthService(store AccountStore) (*AuthService, *token.Service) {
	tokens := token.NewService([]byte("test-secret"), 0)
	return NewAuthService(store, tokens), tokens
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(newFakeAccountStore())

	result, err := svc.Register(context.Background(), RegisterInput{Username: "demo1", Password: "demo1"})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if result.InsertedID == "" {
		t.Error("expected a non-empty inserted id")
	}
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(newFakeAccountStore())

	cases := []RegisterInput{
		{},
		{Username: "demo1"},
		{Password: "demo1"},
	}
	for _, input := range cases {
		if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("input %+v: expected ErrMissingCredentials, got %v", input, err)
		}
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(newFakeAccountStore())
	input := RegisterInput{Username: "demo1", Password: "demo1"}

	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken on second registration, got %v", err)
	}
}

func TestRegister_InsertRace(t *testing.T) {
	t.Parallel()

	store := newFakeAccountStore()
	store.createErr = repository.ErrUsernameExists
	svc, _ := newAuthService(store)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "demo1", Password: "demo1"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken when insert loses the race, got %v", err)
	}
}

func TestLogin_TokenEmbedsIdentity(t *testing.T) {
	t.Parallel()

	store := newFakeAccountStore()
	svc, tokens := newAuthService(store)

	if _, err := svc.Register(context.Background(), RegisterInput{Username: "demo1", Password: "demo1"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	tok, err := svc.Login(context.Background(), LoginInput{Username: "demo1", Password: "demo1"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	identity, err := tokens.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if identity.Username != "demo1" {
		t.Errorf("token username mismatch: got %q", identity.Username)
	}
	if identity.AccountID != store.byUsername["demo1"].ID {
		t.Errorf("token account id mismatch: got %q want %q", identity.AccountID, store.byUsername["demo1"].ID)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(newFakeAccountStore())

	_, err := svc.Login(context.Background(), LoginInput{Username: "nobody", Password: "x"})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(newFakeAccountStore())

	if _, err := svc.Register(context.Background(), RegisterInput{Username: "demo1", Password: "demo1"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err := svc.Login(context.Background(), LoginInput{Username: "demo1", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(newFakeAccountStore())

	if _, err := svc.Login(context.Background(), LoginInput{Username: "demo1"}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}
