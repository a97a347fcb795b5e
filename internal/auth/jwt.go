// Package auth issues and checks viewer tokens for the progress server.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// DefaultViewerExpiry is how long a viewer token stays valid.
const DefaultViewerExpiry = 24 * time.Hour

// Claims holds the JWT payload. An empty Tournament grants access to every
// tournament.
type Claims struct {
	ViewerID   string `json:"viewer_id"`
	Tournament string `json:"tournament,omitempty"`
	jwt.RegisteredClaims
}

// CanView reports whether the claims cover tournamentID.
func (c *Claims) CanView(tournamentID string) bool {
	return c.Tournament == "" || c.Tournament == tournamentID
}

// JWTManager handles token creation and validation.
type JWTManager struct {
	secret []byte
	expiry time.Duration
}

// NewJWTManager creates a JWTManager with the given secret.
func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		expiry: DefaultViewerExpiry,
	}
}

// WithExpiry returns a copy that issues tokens valid for d.
func (m *JWTManager) WithExpiry(d time.Duration) *JWTManager {
	return &JWTManager{secret: m.secret, expiry: d}
}

// Expiry returns the lifetime of issued tokens.
func (m *JWTManager) Expiry() time.Duration { return m.expiry }

// GenerateViewerToken creates a token for viewerID, optionally scoped to a
// single tournament.
func (m *JWTManager) GenerateViewerToken(viewerID, tournamentID string) (string, error) {
	claims := &Claims{
		ViewerID:   viewerID,
		Tournament: tournamentID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   viewerID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a JWT string, returning the claims.
func (m *JWTManager) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ViewerID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
