package sqlite

import (
	"database/sql"
	"strings"

	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/database/connector"
	_ "modernc.org/sqlite"
)

// Dialect implements connector.Dialect for SQLite.
type Dialect struct{}

// NewDialect creates a new SQLite dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

func (d *Dialect) Name() string { return "sqlite" }

func (d *Dialect) DriverName() string { return "sqlite" }

func (d *Dialect) DSN(cfg connector.Config) (string, error) { return BuildDSN(cfg) }

// ConfigurePool pins SQLite to a single connection; it allows only one writer.
func (d *Dialect) ConfigurePool(db *sql.DB, _ connector.Config) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(constants.DefaultSQLiteLifetime)
	db.SetConnMaxIdleTime(constants.DefaultSQLiteIdleTime)
}

// Placeholder returns SQLite-style placeholders (?)
func (d *Dialect) Placeholder(int) string { return "?" }

func (d *Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
