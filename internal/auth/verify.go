package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken means no Bearer credential was presented.
	ErrMissingToken = errors.New("missing or invalid Authorization header")
	// ErrInvalidToken means the credential failed signature or claim checks.
	ErrInvalidToken = errors.New("invalid token")
)

// VerifyConfig configures HS256 verification.
type VerifyConfig struct {
	Secret          []byte
	RequireJTI      bool
	AllowedIssuer   string
	AllowedAudience string
	ClockSkew       time.Duration
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", ErrMissingToken
	}
	tok := strings.TrimSpace(header[len("Bearer "):])
	if tok == "" {
		return "", ErrMissingToken
	}
	return tok, nil
}

// Verify checks the signature and claims of tokStr and returns its claims.
// exp and nbf are enforced by the parser with ClockSkew as leeway; a
// malformed time claim fails verification.
func Verify(tokStr string, cfg VerifyConfig) (jwt.MapClaims, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithLeeway(cfg.ClockSkew),
	}
	if cfg.AllowedIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.AllowedIssuer))
	}
	if cfg.AllowedAudience != "" {
		opts = append(opts, jwt.WithAudience(cfg.AllowedAudience))
	}
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(tokStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return cfg.Secret, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if cfg.RequireJTI {
		if jti, _ := claims["jti"].(string); jti == "" {
			return nil, fmt.Errorf("%w: token missing jti", ErrInvalidToken)
		}
	}
	return claims, nil
}
