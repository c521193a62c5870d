package mysql

import (
	"strings"
	"testing"

	driver "github.com/go-sql-driver/mysql"
	"github.com/loykin/schemarun/internal/database/connector"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      connector.Config
		contains []string
	}{
		{
			name:     "defaults with empty password",
			cfg:      connector.Config{User: "root", Name: "property_portforio"},
			contains: []string{"root@tcp(localhost:3306)/property_portforio", "charset=utf8mb4"},
		},
		{
			name:     "multi statements and custom port",
			cfg:      connector.Config{Host: "db", Port: 3307, User: "app", Password: "pw", Name: "x", MultiStatements: true},
			contains: []string{"app:pw@tcp(db:3307)/x", "multiStatements=true"},
		},
		{
			name:     "no database selected",
			cfg:      connector.Config{Host: "db", User: "root"},
			contains: []string{"root@tcp(db:3306)/"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := BuildDSN(tt.cfg)
			if err != nil {
				t.Fatalf("BuildDSN() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(dsn, want) {
					t.Errorf("dsn %q missing %q", dsn, want)
				}
			}
			parsed, err := driver.ParseDSN(dsn)
			if err != nil {
				t.Fatalf("ParseDSN(%q) error = %v", dsn, err)
			}
			if parsed.MultiStatements != tt.cfg.MultiStatements {
				t.Errorf("MultiStatements = %v, want %v", parsed.MultiStatements, tt.cfg.MultiStatements)
			}
			if parsed.Passwd != tt.cfg.Password {
				t.Errorf("Passwd = %q, want %q", parsed.Passwd, tt.cfg.Password)
			}
		})
	}
}

func TestBuildDSN_InvalidPort(t *testing.T) {
	if _, err := BuildDSN(connector.Config{Port: 70000}); err == nil {
		t.Fatal("expected error for out of range port")
	}
}

func TestDialect(t *testing.T) {
	d := NewDialect()
	if d.Name() != "mysql" || d.DriverName() != "mysql" {
		t.Errorf("unexpected names %q/%q", d.Name(), d.DriverName())
	}
	if got := d.Placeholder(3); got != "?" {
		t.Errorf("Placeholder = %q", got)
	}
	if got := d.QuoteIdent("we`ird"); got != "`we``ird`" {
		t.Errorf("QuoteIdent = %q", got)
	}
}
