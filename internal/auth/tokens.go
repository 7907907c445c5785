package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
)

// TokenConfig holds access token settings.
type TokenConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// AccessTokenClaims represents the claims in an access token.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// NewAccessToken signs an access token for the user.
func NewAccessToken(cfg TokenConfig, user *domain.User) (string, error) {
	now := time.Now()
	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
		Email: user.Email,
	}
	if user.Name != nil {
		claims.Name = *user.Name
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}

// ParseAccessToken validates a signed access token and returns its claims.
func ParseAccessToken(cfg TokenConfig, raw string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return cfg.Secret, nil
	}, jwt.WithIssuer(cfg.Issuer))
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// UserIDFromClaims parses the subject claim as a user id.
func UserIDFromClaims(claims *AccessTokenClaims) (uuid.UUID, error) {
	return uuid.Parse(claims.Subject)
}
