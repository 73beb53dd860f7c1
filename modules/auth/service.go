package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"portrait-studio-server/modules/common/model"
	"portrait-studio-server/modules/common/persist"
	"portrait-studio-server/modules/common/token"
)

var (
	// ErrDuplicateEmail - signup with an email that already has an account
	ErrDuplicateEmail = errors.New("an account with this email already exists")
	// ErrInvalidCredentials - login with a wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnknownUser - the email has no account
	ErrUnknownUser = errors.New("no account with this email")
)

// Accounts is the slice of the document store the auth flows need.
type Accounts interface {
	FetchUserByEmail(ctx context.Context, email string) (*model.UserAccount, error)
	CreateUser(ctx context.Context, user *model.UserAccount) error
	UpdateUserPassword(ctx context.Context, email, passwordHash string) error
	DeleteUser(ctx context.Context, email string) error
}

// Service - signup, login and account deletion
type Service struct {
	accounts Accounts
	store    persist.Store
	secret   string
	tokenTTL time.Duration
}

// NewService - create the auth service
func NewService(accounts Accounts, store persist.Store, secret string, tokenTTL time.Duration) *Service {
	return &Service{accounts: accounts, store: store, secret: secret, tokenTTL: tokenTTL}
}

// Signup - create an account with a bcrypt-hashed password
func (s *Service) Signup(ctx context.Context, email, password, nom, prenom string) error {
	existing, err := s.accounts.FetchUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.accounts.CreateUser(ctx, &model.UserAccount{
		Email:        email,
		Nom:          nom,
		Prenom:       prenom,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
}

// Login - verify the password and issue a session token. Accounts created
// before hashing was introduced store the password in clear; those are
// accepted once and upgraded to a bcrypt hash on the spot.
func (s *Service) Login(ctx context.Context, email, password string) (sessionToken string, user *model.UserAccount, err error) {
	user, err = s.accounts.FetchUserByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if user.PasswordHash != password {
			return "", nil, ErrInvalidCredentials
		}
		// Legacy clear-text record: upgrade it now.
		if hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost); hashErr == nil {
			if upErr := s.accounts.UpdateUserPassword(ctx, email, string(hash)); upErr != nil {
				log.Printf("⚠️  [Auth] Password upgrade failed for %s: %v", email, upErr)
			} else {
				log.Printf("✅ [Auth] Upgraded legacy password for %s", email)
			}
		}
	}

	sessionToken, err = token.Issue(s.secret, email, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return sessionToken, user, nil
}

// DeleteAccount - remove the account and everything it owns
func (s *Service) DeleteAccount(ctx context.Context, email string) error {
	existing, err := s.accounts.FetchUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrUnknownUser
	}

	if err := s.store.DeleteOwner(ctx, email); err != nil {
		// Account deletion still proceeds; orphaned records are harmless
		// and cheaper than a half-deleted account.
		log.Printf("⚠️  [Auth] Image cleanup failed for %s: %v", email, err)
	}

	return s.accounts.DeleteUser(ctx, email)
}
