package schemarun

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFacadeRunsAgainstSQLite(t *testing.T) {
	dir := t.TempDir()
	cfg, err := ConfigFrom(func(key string) (string, bool) {
		switch key {
		case "DB_DRIVER":
			return "sqlite", true
		case "DB_SQLITE_PATH":
			return filepath.Join(dir, "facade.db"), true
		}
		return "", false
	})
	if err != nil {
		t.Fatalf("ConfigFrom: %v", err)
	}
	if err := Validate(cfg, true); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	script := filepath.Join(dir, "schema.sql")
	body := "CREATE TABLE properties (id INTEGER PRIMARY KEY);\nCREATE TABLE clients (id INTEGER PRIMARY KEY);\n"
	if err := os.WriteFile(script, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctx := context.Background()
	if _, err := RunSchemaFile(ctx, cfg, script); err != nil {
		t.Fatalf("RunSchemaFile: %v", err)
	}
	res, err := RunSchemaQuery(ctx, cfg, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		t.Fatalf("RunSchemaQuery: %v", err)
	}
	if got := len(res.Rows()); got != 2 {
		t.Fatalf("tables = %d, want 2", got)
	}

	_, err = RunSchemaFile(ctx, cfg, filepath.Join(dir, "nope.sql"))
	var fae *FileAccessError
	if !errors.As(err, &fae) {
		t.Fatalf("expected FileAccessError, got %v", err)
	}
}

func TestFacadeDefaults(t *testing.T) {
	cfg, err := ConfigFrom(func(string) (string, bool) { return "", false })
	if err != nil {
		t.Fatalf("ConfigFrom: %v", err)
	}
	if cfg.Host != "localhost" || cfg.User != "root" || cfg.Password != "" || cfg.Name != "property_portforio" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	var de *DefaultedError
	if err := Validate(cfg, true); !errors.As(err, &de) {
		t.Fatalf("expected DefaultedError, got %v", err)
	}
}

func TestFacadeCreateScript(t *testing.T) {
	p, err := CreateScript(t.TempDir(), "add index")
	if err != nil {
		t.Fatalf("CreateScript: %v", err)
	}
	if !strings.HasSuffix(p, "_add_index.sql") {
		t.Fatalf("path = %s", p)
	}
}
