package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuscore/campuscore/internal/auth"
	"github.com/campuscore/campuscore/internal/shared"
	_ "github.com/campuscore/campuscore/testing"
)

type stubRepo struct {
	account *auth.Account
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	if s.account == nil {
		return nil, shared.ErrNotFound
	}
	return s.account, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.Account, error) {
	if s.account == nil || s.account.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.account, nil
}

func newService(t *testing.T, repo auth.Repository) *auth.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := auth.NewTokenManager("test-secret", 15*time.Minute, time.Hour)
	return auth.NewService(repo, tokens, auth.NewRefreshStore(client))
}

func activeAccount(t *testing.T) *auth.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &auth.Account{ID: 7, Email: "head@school.test", PasswordHash: string(hash), IsActive: true}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	service := newService(t, &stubRepo{account: activeAccount(t)})

	pair, err := service.Login(context.Background(), "head@school.test", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	service := newService(t, &stubRepo{account: activeAccount(t)})

	if _, err := service.Login(context.Background(), "head@school.test", "wrong password"); err != shared.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	account := activeAccount(t)
	account.IsActive = false
	service := newService(t, &stubRepo{account: account})

	if _, err := service.Login(context.Background(), "head@school.test", "correct horse"); err != shared.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	service := newService(t, &stubRepo{account: activeAccount(t)})

	pair, err := service.Login(context.Background(), "head@school.test", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	next, err := service.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("expected refresh token to rotate")
	}

	// The consumed token must not be replayable.
	if _, err := service.Refresh(context.Background(), pair.RefreshToken); err == nil {
		t.Fatal("expected replayed refresh token to fail")
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	service := newService(t, &stubRepo{account: activeAccount(t)})

	pair, err := service.Login(context.Background(), "head@school.test", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := service.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := service.Refresh(context.Background(), pair.RefreshToken); err == nil {
		t.Fatal("expected refresh after logout to fail")
	}
}
