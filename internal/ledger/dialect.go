package ledger

import (
	"fmt"
	"strings"

	"github.com/loykin/schemarun/internal/database/connector"
)

// ensureStatements returns the history table DDL for the dialect.
func ensureStatements(d connector.Dialect, table string) []string {
	t := d.QuoteIdent(table)
	switch d.Name() {
	case "postgres":
		return []string{
			fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id BIGSERIAL PRIMARY KEY, script TEXT NOT NULL, checksum VARCHAR(64) NOT NULL, kind VARCHAR(16) NOT NULL, success BOOLEAN NOT NULL DEFAULT FALSE, error TEXT NULL, ran_at TIMESTAMPTZ NOT NULL)", t),
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (checksum)", d.QuoteIdent(table+"_checksum_idx"), t),
		}
	case "mysql":
		return []string{
			fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id BIGINT AUTO_INCREMENT PRIMARY KEY, script VARCHAR(1024) NOT NULL, checksum CHAR(64) NOT NULL, kind VARCHAR(16) NOT NULL, success TINYINT(1) NOT NULL DEFAULT 0, error TEXT NULL, ran_at VARCHAR(40) NOT NULL, INDEX %s (checksum))", t, d.QuoteIdent(table+"_checksum_idx")),
		}
	default:
		return []string{
			fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, script TEXT NOT NULL, checksum TEXT NOT NULL, kind TEXT NOT NULL, success INTEGER NOT NULL DEFAULT 0, error TEXT NULL, ran_at TEXT NOT NULL)", t),
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (checksum)", d.QuoteIdent(table+"_checksum_idx"), t),
		}
	}
}

// placeholders renders n bind markers starting at 1.
func placeholders(d connector.Dialect, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = d.Placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

// boolToStorage maps success onto the column type of the dialect.
func boolToStorage(d connector.Dialect, b bool) any {
	if d.Name() == "postgres" {
		return b
	}
	if b {
		return 1
	}
	return 0
}

// boolFromStorage accepts whatever the driver scanned for the success column.
func boolFromStorage(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case int:
		return t != 0
	case []byte:
		return string(t) == "1" || strings.EqualFold(string(t), "true")
	case string:
		return t == "1" || strings.EqualFold(t, "true")
	default:
		return false
	}
}

// timeFromStorage renders ran_at as a string regardless of column type.
func timeFromStorage(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case interface{ Format(string) string }:
		return t.Format(RanAtLayout)
	default:
		return ""
	}
}
