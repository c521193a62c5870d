package httpc

import (
	"crypto/tls"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configure the resty client used to reach the inspector API.
type Options struct {
	Insecure   bool          `mapstructure:"insecure" yaml:"insecure"`
	MinVersion string        `mapstructure:"min_tls_version" yaml:"min_tls_version"`
	MaxVersion string        `mapstructure:"max_tls_version" yaml:"max_tls_version"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// New returns a resty.Client configured from opts. Without explicit bounds
// the minimum TLS version is 1.3 for https endpoints.
func New(opts Options) *resty.Client {
	c := resty.New()
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	cfg := &tls.Config{MinVersion: tls.VersionTLS13}
	if v := parseTLSVersion(opts.MinVersion); v != 0 {
		cfg.MinVersion = v
	}
	if v := parseTLSVersion(opts.MaxVersion); v != 0 {
		cfg.MaxVersion = v
		if cfg.MinVersion > v {
			cfg.MinVersion = v
		}
	}
	if opts.Insecure {
		// #nosec G402 -- explicit operator opt-in for self-signed inspectors
		cfg.InsecureSkipVerify = true
	}
	c.SetTLSClientConfig(cfg)
	return c
}

// parseTLSVersion accepts "1.2", "tls1.2", "TLS12" and the like. Unknown
// input yields 0.
func parseTLSVersion(s string) uint16 {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "tls")
	v = strings.TrimPrefix(v, "v")
	v = strings.ReplaceAll(v, ".", "")
	v = strings.ReplaceAll(v, "_", "")
	switch v {
	case "10":
		return tls.VersionTLS10
	case "11":
		return tls.VersionTLS11
	case "12":
		return tls.VersionTLS12
	case "13":
		return tls.VersionTLS13
	default:
		return 0
	}
}
