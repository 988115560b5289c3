package auth

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuscore/campuscore/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo    Repository
	tokens  *TokenManager
	refresh *RefreshStore
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager, refresh *RefreshStore) *Service {
	return &Service{repo: repo, tokens: tokens, refresh: refresh}
}

// Login validates email/password credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return s.issue(ctx, account)
}

// Refresh rotates a refresh token: the presented token is consumed and a fresh
// pair is issued. A revoked or reused token fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	userID, err := s.refresh.Consume(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.FindByID(ctx, userID)
	if err != nil || !account.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	return s.issue(ctx, account)
}

// Logout revokes the presented refresh token. An already invalid token is not
// an error; logout is idempotent.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil
	}
	return s.refresh.Revoke(ctx, claims.ID)
}

func (s *Service) issue(ctx context.Context, account *Account) (*TokenPair, error) {
	refreshID := uuid.NewString()
	pair, err := s.tokens.GeneratePair(account, refreshID)
	if err != nil {
		return nil, err
	}
	if err := s.refresh.Save(ctx, refreshID, account.ID, s.tokens.RefreshTTL()); err != nil {
		return nil, err
	}
	return pair, nil
}
