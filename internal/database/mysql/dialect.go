package mysql

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/database/connector"
)

// Dialect implements connector.Dialect for MySQL and MariaDB.
type Dialect struct{}

// NewDialect creates a new MySQL dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

func (d *Dialect) Name() string { return "mysql" }

func (d *Dialect) DriverName() string { return "mysql" }

func (d *Dialect) DSN(cfg connector.Config) (string, error) { return BuildDSN(cfg) }

// ConfigurePool caps open connections at the configured pool size.
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

// Placeholder returns MySQL-style placeholders (?)
func (d *Dialect) Placeholder(int) string { return "?" }

// QuoteIdent wraps name in backticks, doubling embedded backticks.
func (d *Dialect) QuoteIdent(name string) string {
	return fmt.Sprintf("`%s`", strings.ReplaceAll(name, "`", "``"))
}
