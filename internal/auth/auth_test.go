package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	secret := "dev-secret-change-me"
	tok, err := TokenConfig{
		Secret:   secret,
		Issuer:   "schemarun",
		Audience: []string{"inspector"},
		Custom:   map[string]any{"id": 7, "role": "admin", "agency_id": 3},
	}.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := Verify(tok, VerifyConfig{Secret: []byte(secret), AllowedIssuer: "schemarun", AllowedAudience: "inspector"})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims["role"] != "admin" || claims["agency_id"] != float64(3) {
		t.Fatalf("claims = %v", claims)
	}

	if _, err := Verify(tok, VerifyConfig{Secret: []byte("other")}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: %v", err)
	}
	if _, err := Verify(tok, VerifyConfig{Secret: []byte(secret), AllowedIssuer: "someone-else"}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong issuer: %v", err)
	}
	if _, err := Verify(tok, VerifyConfig{Secret: []byte(secret), RequireJTI: true}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("missing jti: %v", err)
	}
	if _, err := Verify(tok, VerifyConfig{}); err == nil {
		t.Fatal("expected error without secret")
	}
}

func TestIssueRequiresSecret(t *testing.T) {
	if _, err := (TokenConfig{}).Issue(); err == nil {
		t.Fatal("expected error")
	}
}

func TestVerifyExpiredWithSkew(t *testing.T) {
	secret := []byte("s")
	exp := time.Now().Add(-2 * time.Second).Unix()
	tok, err := TokenConfig{Secret: string(secret), ExpiresAt: exp}.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Verify(tok, VerifyConfig{Secret: secret}); err == nil {
		t.Fatal("expected expired token to fail")
	}
	if _, err := Verify(tok, VerifyConfig{Secret: secret, ClockSkew: time.Minute}); err != nil {
		t.Fatalf("skew should accept token: %v", err)
	}
}

func TestVerifyRejectsMalformedTimeClaims(t *testing.T) {
	secret := "s3cret"
	bad := []any{"not-a-time", true, map[string]any{"x": 1}}
	for _, claim := range []string{"exp", "nbf"} {
		for _, v := range bad {
			tok, err := TokenConfig{Secret: secret, Custom: map[string]any{"id": "1", claim: v}}.Issue()
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			if _, err := Verify(tok, VerifyConfig{Secret: []byte(secret)}); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("%s=%v accepted: %v", claim, v, err)
			}
		}
	}
}

func TestVerifyNotBeforeAndAudience(t *testing.T) {
	secret := "s3cret"
	future, err := TokenConfig{Secret: secret, NotBefore: time.Now().Add(time.Hour).Unix()}.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Verify(future, VerifyConfig{Secret: []byte(secret)}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("nbf in the future accepted: %v", err)
	}

	tok, err := TokenConfig{Secret: secret, Audience: []string{"inspector"}}.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Verify(tok, VerifyConfig{Secret: []byte(secret), AllowedAudience: "other"}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong audience accepted: %v", err)
	}
	if _, err := Verify(tok, VerifyConfig{Secret: []byte(secret), AllowedAudience: "inspector"}); err != nil {
		t.Fatalf("audience rejected: %v", err)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := Verify(s, VerifyConfig{Secret: []byte("s")}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("alg none accepted: %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"Bearer abc", "abc", false},
		{"bearer   abc ", "abc", false},
		{"Basic abc", "", true},
		{"Bearer ", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := BearerToken(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("BearerToken(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestClientCredentialsTokenSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "client_credentials" || r.Form.Get("client_id") != "cli" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "abc123", "token_type": "bearer", "expires_in": 3600})
	}))
	defer srv.Close()

	cfg := ClientCredentialsConfig{ClientID: "cli", ClientSec: "sec", TokenURL: srv.URL}
	if !cfg.Enabled() {
		t.Fatal("expected enabled")
	}
	ts, err := cfg.TokenSource(context.Background())
	if err != nil {
		t.Fatalf("TokenSource: %v", err)
	}
	tok, err := AccessToken(ts)
	if err != nil || tok != "abc123" {
		t.Fatalf("AccessToken = %q, %v", tok, err)
	}

	if _, err := (ClientCredentialsConfig{TokenURL: srv.URL}).TokenSource(context.Background()); err == nil {
		t.Fatal("expected error without client credentials")
	}
	if _, err := (ClientCredentialsConfig{}).TokenSource(context.Background()); err == nil {
		t.Fatal("expected error without token url")
	}
}
