// Package auth registers subjects with hashed credentials and verifies logins.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
)

// ErrInvalidCredentials is returned for an unknown handle or a wrong secret.
// The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid handle or password")

// MinSecretLength is the shortest accepted password.
const MinSecretLength = 6

// Users is the part of the store auth needs.
type Users interface {
	CreateUser(ctx context.Context, in model.NewUser) (*model.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*model.User, error)
	SetCredentialHash(ctx context.Context, id int64, hash string) error
}

// Service hashes and checks credentials.
type Service struct {
	users Users
	cost  int
}

// NewService returns a Service. cost 0 uses bcrypt.DefaultCost.
func NewService(users Users, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{users: users, cost: cost}
}

// Register creates a subject whose secret is stored as a bcrypt hash.
func (s *Service) Register(ctx context.Context, in model.NewUser, secret string) (*model.User, error) {
	hash, err := s.hash(secret)
	if err != nil {
		return nil, err
	}
	in.CredentialHash = hash
	return s.users.CreateUser(ctx, in)
}

// Authenticate returns the subject when secret matches its stored hash.
func (s *Service) Authenticate(ctx context.Context, handle, secret string) (*model.User, error) {
	u, err := s.users.GetUserByHandle(ctx, handle)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.CredentialHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.CredentialHash), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// SetSecret replaces a subject's secret.
func (s *Service) SetSecret(ctx context.Context, userID int64, secret string) error {
	hash, err := s.hash(secret)
	if err != nil {
		return err
	}
	return s.users.SetCredentialHash(ctx, userID, hash)
}

func (s *Service) hash(secret string) (string, error) {
	if len(secret) < MinSecretLength {
		return "", &store.ValidationError{
			Field:   "password",
			Rule:    "min",
			Message: fmt.Sprintf("must be at least %d characters", MinSecretLength),
		}
	}
	b, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(b), nil
}
