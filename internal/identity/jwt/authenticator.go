// Package jwt implements JWT access token generation and validation.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/statusdeck/statusdeck/internal/domain"
)

// Config contains JWT settings.
type Config struct {
	SecretKey           string
	AccessTokenDuration time.Duration
}

// Claims are the custom claims carried by access tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role domain.Role `json:"role"`
}

// Authenticator issues and validates access tokens.
type Authenticator struct {
	config Config
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(config Config) *Authenticator {
	return &Authenticator{config: config}
}

// GenerateAccessToken issues a signed access token for the user.
func (a *Authenticator) GenerateAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.AccessTokenDuration)),
		},
		Role: user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken parses and validates a token, returning the user ID and role.
func (a *Authenticator) ValidateAccessToken(tokenString string) (string, domain.Role, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.config.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("parse token: %w", err)
	}

	return claims.Subject, claims.Role, nil
}
