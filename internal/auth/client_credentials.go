package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentialsConfig holds configuration for the Client Credentials grant.
type ClientCredentialsConfig struct {
	ClientID  string   `mapstructure:"client_id" yaml:"client_id"`
	ClientSec string   `mapstructure:"client_secret" yaml:"client_secret"`
	TokenURL  string   `mapstructure:"token_url" yaml:"token_url"`
	Scopes    []string `mapstructure:"scopes" yaml:"scopes"`
}

// Enabled reports whether a token URL is configured.
func (c ClientCredentialsConfig) Enabled() bool {
	return strings.TrimSpace(c.TokenURL) != ""
}

// TokenSource returns a caching, auto-refreshing token source.
func (c ClientCredentialsConfig) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	clientID := strings.TrimSpace(c.ClientID)
	clientSecret := strings.TrimSpace(c.ClientSec)
	tokenURL := strings.TrimSpace(c.TokenURL)
	if tokenURL == "" {
		return nil, errors.New("oauth2: token_url is required for client_credentials grant")
	}
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("oauth2: client_id and client_secret are required for client_credentials grant")
	}
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       c.Scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	return cc.TokenSource(ctx), nil
}

// AccessToken fetches a valid access token from ts.
func AccessToken(ts oauth2.TokenSource) (string, error) {
	tok, err := ts.Token()
	if err != nil {
		return "", err
	}
	if tok == nil || !tok.Valid() || strings.TrimSpace(tok.AccessToken) == "" {
		return "", errors.New("oauth2: received invalid token")
	}
	return tok.AccessToken, nil
}
