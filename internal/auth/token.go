package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
)

// sessionClaims carries the caller DID inside a signed session token.
type sessionClaims struct {
	DID string `json:"did"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 session tokens.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenService creates a token service from the shared signing key.
func NewTokenService(signingKey string, ttl time.Duration) *TokenService {
	return &TokenService{signingKey: []byte(signingKey), ttl: ttl}
}

// Generate issues a session token for the given DID.
func (s *TokenService) Generate(did domain.DID) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		DID: did.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   did.String(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign session token")
	}
	return signed, nil
}

// ValidateToken parses and validates a session token and returns its DID.
func (s *TokenService) ValidateToken(tokenString string) (domain.DID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return s.signingKey, nil
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid session token")
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	return domain.ParseDID(claims.DID)
}
