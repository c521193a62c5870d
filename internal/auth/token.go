package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTLSeconds is the token lifetime when neither ExpiresAt nor
// TTLSeconds is set.
const DefaultTTLSeconds = 300

// TokenConfig describes an HS256 token to issue for the inspector API.
type TokenConfig struct {
	// Secret is the HMAC secret key used for HS256 signing (required)
	Secret     string `mapstructure:"secret" json:"secret" yaml:"secret"`
	TTLSeconds int64  `mapstructure:"ttl_seconds" json:"ttl_seconds" yaml:"ttl_seconds"`

	Subject   string   `mapstructure:"sub" json:"sub" yaml:"sub"`
	Issuer    string   `mapstructure:"iss" json:"iss" yaml:"iss"`
	Audience  []string `mapstructure:"aud" json:"aud" yaml:"aud"`
	NotBefore int64    `mapstructure:"nbf" json:"nbf" yaml:"nbf"`
	ExpiresAt int64    `mapstructure:"exp" json:"exp" yaml:"exp"`
	ID        string   `mapstructure:"jti" json:"jti" yaml:"jti"`

	// Custom claims, e.g. id, role, agency_id.
	Custom map[string]interface{} `mapstructure:"custom" json:"custom" yaml:"custom"`
}

// Issue creates a signed JWT token string.
func (c TokenConfig) Issue() (string, error) {
	if len(c.Secret) == 0 {
		return "", errors.New("auth: secret required")
	}
	now := time.Now()
	exp := c.ExpiresAt
	if exp == 0 {
		ttl := c.TTLSeconds
		if ttl <= 0 {
			ttl = DefaultTTLSeconds
		}
		exp = now.Unix() + ttl
	}
	claims := jwt.MapClaims{}
	if c.Subject != "" {
		claims["sub"] = c.Subject
	}
	if c.Issuer != "" {
		claims["iss"] = c.Issuer
	}
	if len(c.Audience) > 0 {
		claims["aud"] = c.Audience
	}
	if c.NotBefore > 0 {
		claims["nbf"] = c.NotBefore
	}
	if c.ID != "" {
		claims["jti"] = c.ID
	}
	claims["iat"] = now.Unix()
	claims["exp"] = exp
	for k, v := range c.Custom {
		claims[k] = v
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(c.Secret))
}
