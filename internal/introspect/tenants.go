package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/loykin/schemarun/internal/database/connector"
)

// ListTenantDatabases returns the databases whose names match the LIKE
// pattern (e.g. "agency_%"), sorted by name. When nothing matches and
// fallback is set, it returns []string{fallback}.
func ListTenantDatabases(ctx context.Context, db Queryer, d connector.Dialect, pattern, fallback string) ([]string, error) {
	var (
		q    string
		args []any
	)
	switch d.Name() {
	case "mysql":
		q = "SHOW DATABASES LIKE '" + strings.ReplaceAll(pattern, "'", "''") + "'"
	case "postgres":
		q = "SELECT datname FROM pg_database WHERE NOT datistemplate AND datname LIKE " + d.Placeholder(1) + " ORDER BY datname"
		args = append(args, pattern)
	default:
		q = "SELECT name FROM pragma_database_list WHERE name LIKE " + d.Placeholder(1) + " ORDER BY name"
		args = append(args, pattern)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant databases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan database name: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating databases: %w", err)
	}
	if len(out) == 0 && fallback != "" {
		return []string{fallback}, nil
	}
	return out, nil
}

// TenantCount is the row count of one table in one tenant database. Error
// is set instead when that database could not be queried.
type TenantCount struct {
	Database string `json:"database" yaml:"database"`
	Rows     int64  `json:"rows" yaml:"rows"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CountTenantRows counts table in each database. A failing database does not
// stop the others. Only MySQL can reach across databases; other dialects
// count in current only.
func CountTenantRows(ctx context.Context, db Queryer, d connector.Dialect, databases []string, table, current string) []TenantCount {
	out := make([]TenantCount, 0, len(databases))
	for _, name := range databases {
		tc := TenantCount{Database: name}
		var q string
		switch {
		case d.Name() == "mysql":
			q = "SELECT COUNT(*) FROM " + d.QuoteIdent(name) + "." + d.QuoteIdent(table)
		case name == current:
			q = "SELECT COUNT(*) FROM " + d.QuoteIdent(table)
		default:
			tc.Error = fmt.Sprintf("cross-database count not supported by %s", d.Name())
			out = append(out, tc)
			continue
		}
		rows, err := db.QueryContext(ctx, q)
		if err == nil {
			if rows.Next() {
				err = rows.Scan(&tc.Rows)
			}
			if err == nil {
				err = rows.Err()
			}
			_ = rows.Close()
		}
		if err != nil {
			tc.Error = err.Error()
		}
		out = append(out, tc)
	}
	return out
}
