package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents the JWT claims carried by a service-to-service write token.
// There is no end-user identity in this domain (see Non-goals §1); the subject
// identifies the calling operator/integration, not a person in the graph.
type Claims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates the single class of access token this
// service recognizes: a bearer credential authorizing calls to write
// endpoints (bulk ingest, parent-link update). There is no refresh-token flow because
// there is no interactive login.
type TokenManager struct {
	secret string
	expiry time.Duration
}

// NewTokenManager creates a new token manager.
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{secret: secret, expiry: expiry}
}

// GenerateToken issues a bearer token for the named subject (an operator or
// integration identifier, which WriteAccessMiddleware stores in the request
// context under "subject").
func (m *TokenManager) GenerateToken(subject string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

// ValidateToken validates a bearer token and returns its claims.
func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
