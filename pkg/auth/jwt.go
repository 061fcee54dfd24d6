package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access from refresh tokens inside the claims.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
)

// Claims are the custom JWT claims issued by TokenIssuer.
type Claims struct {
	jwt.RegisteredClaims
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// Principal converts the claims to a request Principal.
func (c *Claims) Principal() (Principal, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: id, Email: c.Email, Role: c.Role}, nil
}

// TokenPair is returned on login and refresh.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresIn        int64     `json:"expires_in"`
	RefreshExpiresAt time.Time `json:"-"`
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer returns a TokenIssuer. secret should be at least 32 bytes.
func NewTokenIssuer(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// RefreshTTL is the lifetime of refresh tokens; the refresh token store uses
// it as the Redis TTL.
func (t *TokenIssuer) RefreshTTL() time.Duration {
	return t.refreshTTL
}

// IssuePair signs a new access and refresh token for p.
func (t *TokenIssuer) IssuePair(p Principal) (*TokenPair, error) {
	now := t.now()

	access, err := t.sign(&Claims{
		RegisteredClaims: t.registered(p.UserID, now, t.accessTTL),
		Email:            p.Email,
		Role:             p.Role,
		TokenType:        TokenTypeAccess,
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := t.sign(&Claims{
		RegisteredClaims: t.registered(p.UserID, now, t.refreshTTL),
		TokenType:        TokenTypeRefresh,
	})
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresIn:        int64(t.accessTTL / time.Second),
		RefreshExpiresAt: now.Add(t.refreshTTL),
	}, nil
}

// ParseAccess validates an access token and returns its claims.
func (t *TokenIssuer) ParseAccess(token string) (*Claims, error) {
	return t.parse(token, TokenTypeAccess)
}

// ParseRefresh validates a refresh token and returns its claims.
func (t *TokenIssuer) ParseRefresh(token string) (*Claims, error) {
	return t.parse(token, TokenTypeRefresh)
}

// Remaining returns how long a token stays valid. Invalid or already expired
// tokens return 0.
func (t *TokenIssuer) Remaining(token string) time.Duration {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil || claims.ExpiresAt == nil {
		return 0
	}
	d := claims.ExpiresAt.Sub(t.now())
	if d < 0 {
		return 0
	}
	return d
}

func (t *TokenIssuer) registered(userID uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    t.issuer,
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (t *TokenIssuer) sign(claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) parse(token string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != want {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}
