package auth

import (
	"fmt"
	"strings"

	"github.com/chronovashop/chronova-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// Identity is the authenticated account attached to a request, when present.
// Checkout and coupon entitlement checks work without one.
type Identity struct {
	CustomerID uuid.UUID
	Email      string
}

// AccessTokenClaims represents the typed JWT issued by the account service.
type AccessTokenClaims struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Email      string    `json:"email"`
	jwt.RegisteredClaims
}

// ParseAccessToken verifies the signed JWT and extracts the identity.
func ParseAccessToken(cfg config.JWTConfig, token string) (*Identity, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}

	claims := &AccessTokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwtSigningMethod {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer))
	if err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("access token is invalid")
	}
	if claims.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("access token missing customer id")
	}

	return &Identity{
		CustomerID: claims.CustomerID,
		Email:      strings.ToLower(strings.TrimSpace(claims.Email)),
	}, nil
}
