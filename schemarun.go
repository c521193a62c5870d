package schemarun

import (
	"context"
	"time"

	"github.com/loykin/schemarun/internal/database"
	"github.com/loykin/schemarun/internal/introspect"
	"github.com/loykin/schemarun/internal/ledger"
	"github.com/loykin/schemarun/internal/runner"
)

// Re-export commonly used types for public API

// Config is the resolved connection configuration for one run.
type Config = database.Config

// LookupFunc resolves one environment key.
type LookupFunc = database.LookupFunc

// Runner applies SQL scripts; the zero value is not usable, call NewRunner.
type Runner = runner.Runner

// LedgerOptions enables run history in the target database.
type LedgerOptions = runner.LedgerOptions

// Result is what one script execution produced.
type Result = runner.Result

// Run is one recorded ledger entry.
type Run = ledger.Run

// Column is one row of a column listing.
type Column = introspect.Column

// Error taxonomy
type (
	FileAccessError = runner.FileAccessError
	ConnectionError = runner.ConnectionError
	ExecutionError  = runner.ExecutionError
	DefaultedError  = database.DefaultedError
)

// ErrQueueFull is returned when every pool slot and queue slot is taken.
var ErrQueueFull = database.ErrQueueFull

// ConfigFromEnv reads DB_* from the process environment, applying defaults.
func ConfigFromEnv() (Config, error) { return database.FromEnv(database.OSLookup) }

// ConfigFrom reads DB_* through lookup, applying defaults.
func ConfigFrom(lookup LookupFunc) (Config, error) { return database.FromEnv(lookup) }

// Validate checks cfg; strict rejects a defaulted host, user or database name.
func Validate(cfg Config, strict bool) error { return database.Validate(cfg, strict) }

// NewRunner returns a Runner that opens a fresh pool per call.
func NewRunner() *Runner { return runner.New() }

// RunSchemaQuery executes queryText against cfg's database.
func RunSchemaQuery(ctx context.Context, cfg Config, queryText string) (*Result, error) {
	return runner.RunSchemaQuery(ctx, cfg, queryText)
}

// RunSchemaFile executes the SQL file at path against cfg's database.
func RunSchemaFile(ctx context.Context, cfg Config, path string) (*Result, error) {
	return runner.RunSchemaFile(ctx, cfg, path)
}

// CreateScript writes an empty timestamped script into dir.
func CreateScript(dir, name string) (string, error) {
	return runner.CreateScript(dir, name, time.Now())
}
