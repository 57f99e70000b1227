package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medikart/medikart/internal/user"
)

var (
	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for bad signatures and malformed tokens.
	ErrTokenInvalid = errors.New("invalid token")
)

// TokenKind selects which signing key a token is verified against.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

// Claims carries the identity encoded in a signed token.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 tokens. Access and refresh tokens use
// distinct secrets and lifetimes.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenIssuer builds a TokenIssuer from the two signing secrets.
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess mints a short-lived access token for the user.
func (t *TokenIssuer) IssueAccess(userID string, roles []user.Role) (string, time.Time, error) {
	return t.sign(userID, roles, t.accessSecret, t.accessTTL)
}

// IssueRefresh mints a longer-lived refresh token for the user.
func (t *TokenIssuer) IssueRefresh(userID string, roles []user.Role) (string, time.Time, error) {
	return t.sign(userID, roles, t.refreshSecret, t.refreshTTL)
}

// AccessTTL exposes the configured access token lifetime, used for cookie expiry.
func (t *TokenIssuer) AccessTTL() time.Duration { return t.accessTTL }

// RefreshTTL exposes the configured refresh token lifetime.
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.refreshTTL }

func (t *TokenIssuer) sign(userID string, roles []user.Role, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := Claims{
		Roles: user.RolesToStrings(roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature and expiry with the key appropriate to kind and
// returns the embedded identity.
func (t *TokenIssuer) Verify(token string, kind TokenKind) (*Claims, error) {
	secret := t.accessSecret
	if kind == RefreshToken {
		secret = t.refreshSecret
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
