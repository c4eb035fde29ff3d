// Package auth issues and verifies the signed session tokens handed out at
// login, and carries verified session claims through a request context.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vivamos/vivamos/internal/common"
)

// DefaultTokenValidityDuration is used when no lifetime is configured.
const DefaultTokenValidityDuration = time.Hour

// SessionClaims is the identity recovered from a valid token.
type SessionClaims struct {
	SubjectID       int64
	Username        string
	RoleID          int64
	PersonID        int64
	AccountStatusID int64
}

// Claims is the JWT payload: registered claims plus the session identity.
// The subject carries the account id in decimal.
type Claims struct {
	jwt.RegisteredClaims
	Username        string `json:"username"`
	RoleID          int64  `json:"roleId"`
	PersonID        int64  `json:"personId"`
	AccountStatusID int64  `json:"statusId"`
}

// TokenIssuer signs and verifies HS256 tokens with a single shared secret.
// It holds no mutable state after construction.
type TokenIssuer struct {
	secret           []byte
	validityDuration time.Duration
	now              func() time.Time
}

// NewTokenIssuer builds an issuer. A non-positive validity falls back to
// DefaultTokenValidityDuration.
func NewTokenIssuer(secret []byte, validityDuration time.Duration) *TokenIssuer {
	if validityDuration <= 0 {
		validityDuration = DefaultTokenValidityDuration
	}
	return &TokenIssuer{secret: secret, validityDuration: validityDuration, now: time.Now}
}

// ValidityDuration is the lifetime stamped into every issued token.
func (i *TokenIssuer) ValidityDuration() time.Duration {
	return i.validityDuration
}

// Issue signs claims with an expiration of now + validity duration.
func (i *TokenIssuer) Issue(claims SessionClaims) (string, error) {
	now := i.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.SubjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validityDuration)),
		},
		Username:        claims.Username,
		RoleID:          claims.RoleID,
		PersonID:        claims.PersonID,
		AccountStatusID: claims.AccountStatusID,
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}

	return tokenString, nil
}

// Verify checks signature, algorithm, structure and expiry. Every failure
// matches common.ErrInvalidToken; the cause stays wrapped for logging.
func (i *TokenIssuer) Verify(tokenString string) (SessionClaims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return SessionClaims{}, common.ErrInvalidToken
	}

	subjectID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: bad subject: %w", common.ErrInvalidToken, err)
	}

	return SessionClaims{
		SubjectID:       subjectID,
		Username:        claims.Username,
		RoleID:          claims.RoleID,
		PersonID:        claims.PersonID,
		AccountStatusID: claims.AccountStatusID,
	}, nil
}
