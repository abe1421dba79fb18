package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/dom/bookshelf/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the payload of an access token.
type TokenClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 access tokens. It holds no state
// besides its key, so one codec is shared by all requests.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the codec that reads the current time from now.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *c
	cp.now = now
	return &cp
}

// Issue signs a token for user and returns it with its expiry.
func (c *TokenCodec) Issue(user *domain.User) (string, time.Time, error) {
	now := c.now()
	expiresAt := jwt.NewNumericDate(now.Add(c.ttl))

	claims := TokenClaims{
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: expiresAt,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt.Time, nil
}

// Verify checks the signature, algorithm and expiry of raw and returns the
// user id it was issued for. Every failure is reported as ErrInvalidToken.
func (c *TokenCodec) Verify(raw string) (uuid.UUID, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !token.Valid {
		return uuid.Nil, domain.ErrInvalidToken
	}

	if claims.Subject == "" {
		return uuid.Nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, errors.New("missing sub claim"))
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: parse sub: %w", domain.ErrInvalidToken, err)
	}

	return userID, nil
}
