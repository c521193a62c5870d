package constants

import "time"

// Connection defaults applied when the matching DB_* variable is absent.
const (
	DefaultDriver   = "mysql"
	DefaultHost     = "localhost"
	DefaultUser     = "root"
	DefaultPassword = ""
	DefaultDBName   = "property_portforio"

	DefaultMySQLPort    = 3306
	DefaultPostgresPort = 5432

	DefaultPostgresSSLMode = "disable"
	DefaultMySQLCharset    = "utf8mb4"

	// Pool sizing mirrors the application server's pool.
	DefaultPoolSize   = 10
	DefaultQueueLimit = 0 // 0 = callers wait without bound

	DefaultSQLitePath = "schemarun.db"
)

// Connection pool lifetimes
const (
	DefaultMaxConnLifetime = 5 * time.Minute
	DefaultMaxIdleTime     = 1 * time.Minute
	DefaultSQLiteLifetime  = 10 * time.Minute
	DefaultSQLiteIdleTime  = 5 * time.Minute

	DefaultConnectTimeout = 10 * time.Second
	SQLiteBusyTimeoutMS   = 5000
)

// Environment variable names
const (
	EnvDriver     = "DB_DRIVER"
	EnvHost       = "DB_HOST"
	EnvPort       = "DB_PORT"
	EnvUser       = "DB_USER"
	EnvPassword   = "DB_PASSWORD"
	EnvName       = "DB_NAME"
	EnvPoolSize   = "DB_POOL_SIZE"
	EnvQueueLimit = "DB_QUEUE_LIMIT"
	EnvSQLitePath = "DB_SQLITE_PATH"
	EnvSSLMode    = "DB_SSLMODE"
)

// Ledger and bootstrap defaults
const (
	DefaultLedgerTable   = "schemarun_runs"
	DefaultSchemaFile    = "schema.sql"
	DefaultTenantPattern = "agency_%"
	DefaultMigrationDir  = "./migrations"
)

// Inspector API defaults
const (
	DefaultListenAddr      = ":8089"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRequestTimeout  = 5 * time.Second
)
