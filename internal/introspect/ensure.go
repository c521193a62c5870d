package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/loykin/schemarun/internal/common"
	"github.com/loykin/schemarun/internal/database/connector"
)

// ColumnSpec describes a column that must exist on a table. Backfill runs
// once, right after the column is added.
type ColumnSpec struct {
	Name       string `mapstructure:"name" yaml:"name"`
	Definition string `mapstructure:"definition" yaml:"definition"`
	Backfill   string `mapstructure:"backfill" yaml:"backfill"`
}

// TableSpec groups the column specs of one table.
type TableSpec struct {
	Table   string       `mapstructure:"table" yaml:"table"`
	Columns []ColumnSpec `mapstructure:"columns" yaml:"columns"`
}

// EnsureColumns adds the columns of specs that table lacks and returns the
// names it added, in the order given. Existing columns are left untouched.
func EnsureColumns(ctx context.Context, db Queryer, d connector.Dialect, table string, specs []ColumnSpec) ([]string, error) {
	logger := common.GetLogger().WithComponent("introspect").WithDriver(d.Name())
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Definition) == "" {
			return nil, fmt.Errorf("column spec on %s needs name and definition", table)
		}
		names = append(names, s.Name)
	}
	found, err := HasColumns(ctx, db, d, table, names...)
	if err != nil {
		return nil, err
	}

	var added []string
	for _, s := range specs {
		if found[s.Name] {
			logger.Info("column already exists", "table", table, "column", s.Name)
			continue
		}
		q := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", d.QuoteIdent(table), d.QuoteIdent(s.Name), s.Definition)
		if _, err := db.ExecContext(ctx, q); err != nil {
			return added, fmt.Errorf("failed to add column %s.%s: %w", table, s.Name, err)
		}
		added = append(added, s.Name)
		logger.Info("column added", "table", table, "column", s.Name)

		if s.Backfill != "" {
			res, err := db.ExecContext(ctx, s.Backfill)
			if err != nil {
				return added, fmt.Errorf("failed to backfill %s.%s: %w", table, s.Name, err)
			}
			n, _ := res.RowsAffected()
			logger.Info("column backfilled", "table", table, "column", s.Name, "rows_affected", n)
		}
	}
	return added, nil
}
