// Package auth issues and verifies signed session tokens.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rental-market/internal/apperr"
)

// ErrEmptySecret is returned by NewTokenService when no signing key is configured.
var ErrEmptySecret = errors.New("token signing secret is empty")

// Claims carries the subject (user id) and expiry.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService signs HS256 session tokens. Verification is stateless.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL is the validity window of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for userID that expires after the configured TTL.
func (s *TokenService) Issue(userID int) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	return token.SignedString(s.secret)
}

// Verify returns the subject of a valid token. Malformed, tampered or expired
// tokens yield an Unauthorized error.
func (s *TokenService) Verify(tokenString string) (int, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperr.Wrap(apperr.KindUnauthorized, "token expired", err)
		}
		return 0, apperr.Wrap(apperr.KindUnauthorized, "invalid token", err)
	}
	if !token.Valid {
		return 0, apperr.Unauthorized("invalid token")
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID <= 0 {
		return 0, apperr.Unauthorized("invalid token subject")
	}
	return userID, nil
}
