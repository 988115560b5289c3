package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken indicates a token that failed parsing or signature checks.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired indicates a structurally valid but expired token.
	ErrTokenExpired = errors.New("auth: token expired")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	issuer = "campuscore"
)

// Claims are the JWT claims carried by CampusCore tokens.
type Claims struct {
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 token pairs.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// RefreshTTL exposes the configured refresh-token lifetime.
func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// GeneratePair issues an access/refresh token pair for the account. The refresh
// token carries the supplied opaque ID so the server side copy can be revoked.
func (m *TokenManager) GeneratePair(account *Account, refreshID string) (*TokenPair, error) {
	now := m.now()
	subject := strconv.FormatInt(account.ID, 10)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email:     account.Email,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			ID:        uuid.NewString(),
		},
	})
	accessToken, err := access.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email:     account.Email,
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
			ID:        refreshID,
		},
	})
	refreshToken, err := refresh.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(m.accessTTL.Seconds()),
	}, nil
}

// ParseAccess validates an access token and returns its claims.
func (m *TokenManager) ParseAccess(token string) (*Claims, error) {
	return m.parse(token, tokenTypeAccess)
}

// ParseRefresh validates a refresh token and returns its claims.
func (m *TokenManager) ParseRefresh(token string) (*Claims, error) {
	return m.parse(token, tokenTypeRefresh)
}

func (m *TokenManager) parse(token, wantType string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid || claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserID extracts the numeric subject of the claims.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}
