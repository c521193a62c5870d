package connector

import "database/sql"

// Config is the immutable set of connection parameters for one target database.
// Defaulted lists the environment keys that were absent and resolved to defaults.
type Config struct {
	Driver          string `mapstructure:"driver" yaml:"driver"`
	Host            string `mapstructure:"host" yaml:"host"`
	Port            int    `mapstructure:"port" yaml:"port"`
	User            string `mapstructure:"user" yaml:"user"`
	Password        string `mapstructure:"password" yaml:"password"`
	Name            string `mapstructure:"name" yaml:"name"`
	PoolSize        int    `mapstructure:"pool_size" yaml:"pool_size"`
	QueueLimit      int    `mapstructure:"queue_limit" yaml:"queue_limit"`
	MultiStatements bool   `mapstructure:"multi_statements" yaml:"multi_statements"`
	Charset         string `mapstructure:"charset" yaml:"charset"`
	SSLMode         string `mapstructure:"sslmode" yaml:"sslmode"`
	SQLitePath      string `mapstructure:"sqlite_path" yaml:"sqlite_path"`

	Defaulted []string `mapstructure:"-" yaml:"-"`
}

// IsDefaulted reports whether key (e.g. "DB_HOST") fell back to its default.
func (c Config) IsDefaulted(key string) bool {
	for _, k := range c.Defaulted {
		if k == key {
			return true
		}
	}
	return false
}

// Dialect captures what differs between database engines: DSN syntax, pool
// tuning, and identifier/placeholder rules.
type Dialect interface {
	// Name is the canonical driver key: "mysql", "postgres" or "sqlite".
	Name() string
	// DriverName is the database/sql driver registered by the driver package.
	DriverName() string
	// DSN renders cfg into a driver connection string.
	DSN(cfg Config) (string, error)
	// ConfigurePool applies pool limits for cfg.
	ConfigurePool(db *sql.DB, cfg Config)
	// Placeholder returns the n-th (1-based) bind parameter marker.
	Placeholder(n int) string
	// QuoteIdent quotes a table or column identifier.
	QuoteIdent(name string) string
}
