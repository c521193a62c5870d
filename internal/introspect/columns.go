package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/loykin/schemarun/internal/database/connector"
	"github.com/loykin/schemarun/internal/util"
)

// Queryer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Column mirrors one row of MySQL's SHOW COLUMNS output.
type Column struct {
	Field   string  `json:"Field" yaml:"field"`
	Type    string  `json:"Type" yaml:"type"`
	Null    string  `json:"Null" yaml:"null"`
	Key     string  `json:"Key" yaml:"key"`
	Default *string `json:"Default" yaml:"default"`
	Extra   string  `json:"Extra" yaml:"extra"`
}

// ShowColumns lists the columns of table in engine order. When fields are
// given only those columns are returned; unknown names are simply absent.
func ShowColumns(ctx context.Context, db Queryer, d connector.Dialect, table string, fields ...string) ([]Column, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("table name is required")
	}
	var (
		cols []Column
		err  error
	)
	switch d.Name() {
	case "mysql":
		cols, err = mysqlColumns(ctx, db, d, table, fields)
	case "postgres":
		cols, err = postgresColumns(ctx, db, d, table, fields)
	default:
		cols, err = sqliteColumns(ctx, db, d, table, fields)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	return cols, nil
}

func mysqlColumns(ctx context.Context, db Queryer, d connector.Dialect, table string, fields []string) ([]Column, error) {
	q := "SHOW COLUMNS FROM " + d.QuoteIdent(table)
	if len(fields) > 0 {
		q += " WHERE Field IN (" + util.QuoteList(fields) + ")"
	}
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []Column{}
	for rows.Next() {
		var (
			c     Column
			null  sql.NullString
			key   sql.NullString
			def   sql.NullString
			extra sql.NullString
		)
		if err := rows.Scan(&c.Field, &c.Type, &null, &key, &def, &extra); err != nil {
			return nil, err
		}
		c.Null, c.Key, c.Extra = null.String, key.String, extra.String
		if def.Valid {
			v := def.String
			c.Default = &v
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func postgresColumns(ctx context.Context, db Queryer, d connector.Dialect, table string, fields []string) ([]Column, error) {
	q := `SELECT c.column_name, c.data_type, c.is_nullable, c.column_default,
		CASE WHEN EXISTS (
			SELECT 1 FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage k
			  ON k.constraint_name = tc.constraint_name AND k.table_schema = tc.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = c.table_schema
			  AND tc.table_name = c.table_name AND k.column_name = c.column_name
		) THEN 'PRI' ELSE '' END
		FROM information_schema.columns c
		WHERE c.table_schema = current_schema() AND c.table_name = ` + d.Placeholder(1)
	if len(fields) > 0 {
		q += " AND c.column_name IN (" + util.QuoteList(fields) + ")"
	}
	q += " ORDER BY c.ordinal_position"

	rows, err := db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []Column{}
	for rows.Next() {
		var (
			c   Column
			def sql.NullString
		)
		if err := rows.Scan(&c.Field, &c.Type, &c.Null, &def, &c.Key); err != nil {
			return nil, err
		}
		if def.Valid {
			v := def.String
			c.Default = &v
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func sqliteColumns(ctx context.Context, db Queryer, d connector.Dialect, table string, fields []string) ([]Column, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+d.QuoteIdent(table)+")")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	want := map[string]bool{}
	for _, f := range fields {
		want[f] = true
	}
	out := []Column{}
	for rows.Next() {
		var (
			cid     int
			c       Column
			notNull int
			def     sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &c.Field, &c.Type, &notNull, &def, &pk); err != nil {
			return nil, err
		}
		if len(want) > 0 && !want[c.Field] {
			continue
		}
		c.Null = "YES"
		if notNull != 0 {
			c.Null = "NO"
		}
		if pk > 0 {
			c.Key = "PRI"
		}
		if def.Valid {
			v := def.String
			c.Default = &v
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// HasColumns reports which of names exist on table.
func HasColumns(ctx context.Context, db Queryer, d connector.Dialect, table string, names ...string) (map[string]bool, error) {
	cols, err := ShowColumns(ctx, db, d, table, names...)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(names))
	for _, c := range cols {
		found[c.Field] = true
	}
	return found, nil
}
