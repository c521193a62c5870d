package postgresql

import (
	"net/url"
	"testing"

	"github.com/loykin/schemarun/internal/database/connector"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name      string
		cfg       connector.Config
		wantHost  string
		wantUser  string
		wantPass  string
		wantPath  string
		wantQuery map[string]string
	}{
		{
			name:      "defaults",
			cfg:       connector.Config{User: "root", Name: "property_portforio"},
			wantHost:  "localhost:5432",
			wantUser:  "root",
			wantPath:  "/property_portforio",
			wantQuery: map[string]string{"sslmode": "disable"},
		},
		{
			name:      "password with reserved characters",
			cfg:       connector.Config{Host: "db", Port: 6543, User: "app", Password: "p@ss/word", Name: "x", SSLMode: "require", MultiStatements: true},
			wantHost:  "db:6543",
			wantUser:  "app",
			wantPass:  "p@ss/word",
			wantPath:  "/x",
			wantQuery: map[string]string{"sslmode": "require", "default_query_exec_mode": "simple_protocol"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := BuildDSN(tt.cfg)
			if err != nil {
				t.Fatalf("BuildDSN() error = %v", err)
			}
			u, err := url.Parse(dsn)
			if err != nil {
				t.Fatalf("url.Parse(%q): %v", dsn, err)
			}
			if u.Host != tt.wantHost {
				t.Errorf("host = %q, want %q", u.Host, tt.wantHost)
			}
			if u.User.Username() != tt.wantUser {
				t.Errorf("user = %q, want %q", u.User.Username(), tt.wantUser)
			}
			if pw, _ := u.User.Password(); pw != tt.wantPass {
				t.Errorf("password = %q, want %q", pw, tt.wantPass)
			}
			if u.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", u.Path, tt.wantPath)
			}
			for k, v := range tt.wantQuery {
				if got := u.Query().Get(k); got != v {
					t.Errorf("query %s = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestDialect(t *testing.T) {
	d := NewDialect()
	if d.DriverName() != "pgx" {
		t.Errorf("DriverName = %q", d.DriverName())
	}
	if got := d.Placeholder(2); got != "$2" {
		t.Errorf("Placeholder(2) = %q", got)
	}
	if got := d.QuoteIdent(`a"b`); got != `"a""b"` {
		t.Errorf("QuoteIdent = %q", got)
	}
}
