package database

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/loykin/schemarun/internal/common"
	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/database/connector"
)

// Config is the connection configuration for one target database.
type Config = connector.Config

// LookupFunc resolves an environment key; ok=false means the key is absent.
type LookupFunc func(key string) (string, bool)

// OSLookup reads straight from the process environment.
func OSLookup(key string) (string, bool) { return os.LookupEnv(key) }

// FromEnv builds a Config from DB_* variables. Absent keys fall back to their
// documented defaults and are listed in Config.Defaulted; absence is never an
// error by itself. Malformed numbers are.
func FromEnv(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = OSLookup
	}
	cfg := Config{}
	str := func(key, def string) string {
		if v, ok := lookup(key); ok {
			return v
		}
		cfg.Defaulted = append(cfg.Defaulted, key)
		return def
	}
	num := func(key string, def int) (int, error) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return def, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not a number", key, v)
		}
		return n, nil
	}

	cfg.Driver = NormalizeDriver(str(constants.EnvDriver, constants.DefaultDriver))
	cfg.Host = str(constants.EnvHost, constants.DefaultHost)
	cfg.User = str(constants.EnvUser, constants.DefaultUser)
	cfg.Password = str(constants.EnvPassword, constants.DefaultPassword)
	cfg.Name = str(constants.EnvName, constants.DefaultDBName)
	if v, ok := lookup(constants.EnvSQLitePath); ok {
		cfg.SQLitePath = v
	}
	if v, ok := lookup(constants.EnvSSLMode); ok {
		cfg.SSLMode = v
	}

	var err error
	if cfg.Port, err = num(constants.EnvPort, 0); err != nil {
		return Config{}, err
	}
	if cfg.PoolSize, err = num(constants.EnvPoolSize, constants.DefaultPoolSize); err != nil {
		return Config{}, err
	}
	if cfg.QueueLimit, err = num(constants.EnvQueueLimit, constants.DefaultQueueLimit); err != nil {
		return Config{}, err
	}
	cfg.Charset = constants.DefaultMySQLCharset
	return cfg, nil
}

// NormalizeDriver maps driver aliases onto canonical dialect names.
func NormalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "", "mysql", "mariadb":
		return "mysql"
	case "postgres", "postgresql", "pgx", "pg":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return strings.ToLower(strings.TrimSpace(d))
	}
}

// strictKeys must be set explicitly when validating in strict mode. An empty
// password is a legitimate setting, so DB_PASSWORD only ever warns.
var strictKeys = []string{constants.EnvHost, constants.EnvUser, constants.EnvName}

// Validate checks cfg before any connection attempt. In strict mode a
// defaulted host, user or database name is rejected with a DefaultedError;
// otherwise each defaulted key is logged once as a warning.
func Validate(cfg Config, strict bool) error {
	if _, err := DialectFor(cfg.Driver); err != nil {
		return err
	}
	if cfg.PoolSize < 0 {
		return fmt.Errorf("pool size must not be negative, got %d", cfg.PoolSize)
	}
	if cfg.QueueLimit < 0 {
		return fmt.Errorf("queue limit must not be negative, got %d", cfg.QueueLimit)
	}
	if cfg.Driver == "sqlite" {
		return nil
	}
	if strict {
		var missing []string
		for _, k := range strictKeys {
			if cfg.IsDefaulted(k) {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			return &DefaultedError{Keys: missing}
		}
	}
	logger := common.GetLogger().WithComponent("config")
	for _, k := range cfg.Defaulted {
		logger.Warn("configuration default applied", "key", k)
	}
	return nil
}

// WithoutDatabase returns a copy of cfg that connects to the server without
// selecting a database, for bootstrap scripts that create it themselves.
func WithoutDatabase(cfg Config) Config {
	out := cfg
	out.Name = ""
	if out.Driver == "postgres" {
		out.Name = "postgres"
	}
	out.Defaulted = append([]string(nil), cfg.Defaulted...)
	return out
}

// WithDatabase returns a copy of cfg targeting name.
func WithDatabase(cfg Config, name string) Config {
	out := cfg
	out.Name = name
	out.Defaulted = append([]string(nil), cfg.Defaulted...)
	return out
}
