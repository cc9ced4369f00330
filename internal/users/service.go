package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"docassist-backend/internal/shared/auth"
)

type Repo interface {
	Create(ctx context.Context, user User) error
	Get(ctx context.Context, username string) (User, error)
}

type Service struct {
	Repo   Repo
	Tokens *auth.Signer
	// Cost is the bcrypt work factor; zero means bcrypt.DefaultCost.
	Cost int
}

func NewService(repo Repo, tokens *auth.Signer) *Service {
	return &Service{Repo: repo, Tokens: tokens}
}

// Register stores a new account with a hashed password.
func (s *Service) Register(ctx context.Context, username, password string) error {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	if username == "" || password == "" {
		return ErrInvalidInput
	}
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	cost := s.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Repo.Create(ctx, User{Username: username, PasswordHash: string(hash)})
}

// Login checks credentials. The returned token is empty when sessions
// are not configured.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	if username == "" || password == "" {
		return "", ErrInvalidInput
	}
	if s == nil || s.Repo == nil {
		return "", errors.New("users service not configured")
	}
	user, err := s.Repo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	if s.Tokens == nil {
		return "", nil
	}
	return s.Tokens.Sign(user.Username)
}

// Me resolves a session token back to its account.
func (s *Service) Me(ctx context.Context, token string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		return User{}, err
	}
	return s.Repo.Get(ctx, claims.Username)
}
