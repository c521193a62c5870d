package postgresql

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/database/connector"
)

// Dialect implements connector.Dialect for PostgreSQL via pgx.
type Dialect struct{}

// NewDialect creates a new PostgreSQL dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

func (d *Dialect) Name() string { return "postgres" }

func (d *Dialect) DriverName() string { return "pgx" }

func (d *Dialect) DSN(cfg connector.Config) (string, error) { return BuildDSN(cfg) }

func (d *Dialect) ConfigurePool(db *sql.DB, cfg connector.Config) {
	size := cfg.PoolSize
	if size <= 0 {
		size = constants.DefaultPoolSize
	}
	db.SetMaxOpenConns(size)
	db.SetMaxIdleConns(size)
	db.SetConnMaxLifetime(constants.DefaultMaxConnLifetime)
	db.SetConnMaxIdleTime(constants.DefaultMaxIdleTime)
}

// Placeholder returns PostgreSQL-style placeholders ($1, $2, ...)
func (d *Dialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (d *Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
