package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/loykin/schemarun/internal/common"
	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/database"
	"github.com/loykin/schemarun/internal/runner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// defaultConfigFile is read when present and --config is not given.
const defaultConfigFile = "schemarun.yaml"

var dbEnvKeys = []string{
	constants.EnvDriver, constants.EnvHost, constants.EnvPort, constants.EnvUser,
	constants.EnvPassword, constants.EnvName, constants.EnvPoolSize, constants.EnvQueueLimit,
	constants.EnvSQLitePath, constants.EnvSSLMode,
}

// session is what every command works from once flags, the config document
// and the environment have been resolved.
type session struct {
	doc ConfigDoc
	env *viper.Viper
	db  database.Config
}

var current *session

// newEnvViper binds the DB_* variables and, when envFile is set, layers a
// dotenv file beneath the process environment.
func newEnvViper(envFile string) (*viper.Viper, error) {
	v := viper.New()
	v.AllowEmptyEnv(true)
	for _, k := range dbEnvKeys {
		_ = v.BindEnv(strings.ToLower(k), k)
	}
	_ = v.BindEnv("jwt_secret", "SCHEMARUN_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("client_token", "SCHEMARUN_TOKEN")
	if strings.TrimSpace(envFile) == "" {
		return v, nil
	}
	v.SetConfigFile(filepath.Clean(envFile))
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v, nil
}

// envLookup exposes v as a database.LookupFunc.
func envLookup(v *viper.Viper) database.LookupFunc {
	return func(key string) (string, bool) {
		k := strings.ToLower(key)
		if !v.IsSet(k) {
			return "", false
		}
		return v.GetString(k), true
	}
}

// prepare resolves the session for cmd. It runs before every command.
func prepare(cmd *cobra.Command) error {
	v := viper.GetViper()
	s := &session{}

	cfgPath := strings.TrimSpace(v.GetString("config"))
	if cfgPath == "" {
		if info, err := os.Stat(defaultConfigFile); err == nil && info.Mode().IsRegular() {
			cfgPath = defaultConfigFile
		}
	}
	if cfgPath != "" {
		if err := s.doc.Load(cfgPath); err != nil {
			return err
		}
	}
	if lvl := strings.TrimSpace(v.GetString("log_level")); lvl != "" {
		s.doc.Logging.Level = lvl
	}
	if f := strings.TrimSpace(v.GetString("log_format")); f != "" {
		s.doc.Logging.Format = f
	}
	if err := s.doc.SetupLogging(); err != nil {
		return err
	}

	env, err := newEnvViper(v.GetString("env_file"))
	if err != nil {
		return err
	}
	s.env = env

	db, err := database.FromEnv(envLookup(env))
	if err != nil {
		return err
	}
	if err := database.Validate(db, v.GetBool("strict")); err != nil {
		return err
	}
	s.db = db
	current = s
	common.GetLogger().WithComponent("main").Debug("configuration resolved",
		"command", cmd.Name(), "driver", db.Driver, "host", db.Host, "database", db.Name)
	return nil
}

// newRunner builds a runner honouring --record and the ledger section.
func (s *session) newRunner(once bool) *runner.Runner {
	r := runner.New()
	r.Ledger = runner.LedgerOptions{
		Enabled: viper.GetBool("record") || s.doc.Ledger.Enabled || once,
		Table:   s.doc.Ledger.Table,
		Once:    once,
	}
	return r
}

func (s *session) tenantPattern() string {
	if p := strings.TrimSpace(s.doc.TenantPattern); p != "" {
		return p
	}
	return constants.DefaultTenantPattern
}

// withPolicy applies p to the error returned by fn: failures p maps to exit
// status 0 are logged and swallowed, the rest are returned tagged with p.
// Cancellation is always fatal.
func withPolicy(p runner.Policy, fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		policy := p
		if errors.Is(err, context.Canceled) {
			policy = runner.Fatal
		}
		if policy.ExitCode(err) == 0 {
			common.GetLogger().WithComponent("main").Error(cmd.Name()+" failed", "error", err, "policy", policy.String())
			return nil
		}
		return &commandError{policy: policy, err: err}
	}
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
