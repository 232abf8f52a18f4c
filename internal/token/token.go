// Package token issues and verifies the signed bearer tokens that identify
// an account on authenticated requests. Tokens are stateless: verification
// needs only the shared signing secret, no server-side session lookup.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/docvault/docvault/internal/model"
)

// Token errors.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// Claims carries the identity embedded in a token. The account id rides in
// the registered "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Service signs and verifies HS256 tokens with a process-wide secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token Service. A ttl of zero means issued tokens
// carry no expiry.
func NewService(secret []byte, ttl time.Duration) *Service {
	return &Service{secret: secret, ttl: ttl}
}

// Issue produces a signed token embedding the identity's account id and
// username.
func (s *Service) Issue(identity model.Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  identity.AccountID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Username: identity.Username,
	}
	if s.ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the signature and returns the embedded identity.
// Any malformed, tampered, or wrongly-signed token yields ErrInvalidToken.
func (s *Service) Verify(tokenString string) (model.Identity, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject anything but HMAC to close the alg-confusion hole.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Identity{}, ErrExpiredToken
		}
		return model.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return model.Identity{}, ErrInvalidToken
	}

	if claims.Subject == "" {
		return model.Identity{}, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	if claims.Username == "" {
		return model.Identity{}, fmt.Errorf("%w: username", ErrMissingClaim)
	}

	return model.Identity{AccountID: claims.Subject, Username: claims.Username}, nil
}
