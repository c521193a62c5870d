package httpc

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func doGet(t *testing.T, opts Options, url string) (int, error) {
	t.Helper()
	resp, err := New(opts).R().Get(url)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode(), nil
}

func TestHTTPClient_Insecure_AllowsSelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	if _, err := doGet(t, Options{}, srv.URL); err == nil {
		t.Fatalf("expected error without insecure TLS, got nil")
	}
	if code, err := doGet(t, Options{Insecure: true}, srv.URL); err != nil || code != 200 {
		t.Fatalf("expected 200 with insecure, got code=%d err=%v", code, err)
	}
}

func TestHTTPClient_TLSBounds(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		min, max uint16
	}{
		{"default", Options{}, tls.VersionTLS13, 0},
		{"tls1.2 only", Options{MinVersion: "1.2", MaxVersion: "1.2"}, tls.VersionTLS12, tls.VersionTLS12},
		{"max below default min", Options{MaxVersion: "tls1.2"}, tls.VersionTLS12, tls.VersionTLS12},
		{"garbage ignored", Options{MinVersion: "weird"}, tls.VersionTLS13, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := New(tt.opts).GetClient().Transport.(*http.Transport)
			if tr == nil || tr.TLSClientConfig == nil {
				t.Fatalf("expected TLSClientConfig")
			}
			if tr.TLSClientConfig.MinVersion != tt.min || tr.TLSClientConfig.MaxVersion != tt.max {
				t.Fatalf("Min=%v Max=%v, want %v %v", tr.TLSClientConfig.MinVersion, tr.TLSClientConfig.MaxVersion, tt.min, tt.max)
			}
		})
	}
}

func TestHTTPClient_Timeout(t *testing.T) {
	c := New(Options{Timeout: 3 * time.Second})
	if c.GetClient().Timeout != 3*time.Second {
		t.Fatalf("timeout = %v", c.GetClient().Timeout)
	}
}

func TestParseTLSVersion(t *testing.T) {
	cases := map[string]uint16{
		"1.0": tls.VersionTLS10, "TLS1.1": tls.VersionTLS11, "tls12": tls.VersionTLS12,
		"v1.3": tls.VersionTLS13, "": 0, "2.0": 0,
	}
	for in, want := range cases {
		if got := parseTLSVersion(in); got != want {
			t.Errorf("parseTLSVersion(%q) = %v, want %v", in, got, want)
		}
	}
}
