package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "chat-relay/errors"
)

const issuer = "chat-relay"

// Claims is the payload carried inside a connection token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Verifier validates the bearer credentials presented at connect time.
// The relay trusts its output only; credential storage lives elsewhere.
type Verifier struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewVerifier(secret string, tokenTTL time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), tokenTTL: tokenTTL}
}

// Generate creates a signed HS256 token for a user. Kept for operational
// tooling and tests; issuing tokens to end users is the login surface's job.
func (v *Verifier) Generate(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// Verify parses and validates the signature and expiration of a token
// string, returning the verified identity.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}
