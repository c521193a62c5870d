package runner

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/loykin/schemarun/internal/common"
	"github.com/loykin/schemarun/internal/database"
	"github.com/loykin/schemarun/internal/ledger"
	"github.com/loykin/schemarun/internal/util"
)

// Opener opens a short-lived handle for one invocation.
type Opener func(ctx context.Context, cfg database.Config) (*database.Handle, error)

// LedgerOptions turns on run history in the target database.
type LedgerOptions struct {
	Enabled bool
	Table   string
	// Once skips a script whose checksum already has a successful run.
	Once bool
}

// Runner applies SQL scripts to one configured database per call.
type Runner struct {
	Opener Opener
	Ledger LedgerOptions
	Logger *common.Logger
}

// New returns a Runner using database.Open.
func New() *Runner {
	return &Runner{Opener: database.Open}
}

func (r *Runner) logger() *common.Logger {
	l := r.Logger
	if l == nil {
		l = common.GetLogger()
	}
	return l.WithComponent("runner")
}

// RunSchemaQuery executes queryText against cfg's database. The text is sent
// verbatim; callers are trusted operators.
func (r *Runner) RunSchemaQuery(ctx context.Context, cfg database.Config, queryText string) (*Result, error) {
	return r.run(ctx, cfg, NewQueryScript(queryText), ledger.KindQuery)
}

// RunSchemaFile reads path and executes its contents with multi-statement
// support. An unreadable file fails before any connection is attempted.
func (r *Runner) RunSchemaFile(ctx context.Context, cfg database.Config, path string) (*Result, error) {
	return r.runFile(ctx, cfg, path, ledger.KindFile)
}

// Bootstrap runs a schema file without selecting a database, so the script
// can create it.
func (r *Runner) Bootstrap(ctx context.Context, cfg database.Config, path string) (*Result, error) {
	return r.runFile(ctx, database.WithoutDatabase(cfg), path, ledger.KindBootstrap)
}

func (r *Runner) runFile(ctx context.Context, cfg database.Config, path string, kind ledger.Kind) (*Result, error) {
	logger := r.logger().WithScript(path)
	logger.Info("running schema file")
	script, err := LoadScript(path)
	if err != nil {
		logger.Error("schema file not accessible", "error", err)
		return nil, err
	}
	cfg.MultiStatements = true
	return r.run(ctx, cfg, script, kind)
}

func (r *Runner) run(ctx context.Context, cfg database.Config, script Script, kind ledger.Kind) (*Result, error) {
	logger := r.logger().WithScript(script.Path).WithDriver(database.NormalizeDriver(cfg.Driver))
	open := r.Opener
	if open == nil {
		open = database.Open
	}

	h, err := open(ctx, cfg)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		return nil, err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			logger.Warn("failed to close database handle", "error", cerr)
		}
	}()

	var hist *ledger.Ledger
	if r.Ledger.Enabled {
		hist = ledger.New(h.DB, h.Dialect, r.Ledger.Table)
		if err := hist.Ensure(ctx); err != nil {
			logger.Warn("run history unavailable", "error", err)
			hist = nil
		}
	}
	if hist != nil && r.Ledger.Once {
		prev, err := hist.LastSuccess(ctx, script.Checksum)
		if err != nil {
			logger.Warn("run history lookup failed", "error", err)
		} else if prev != nil {
			logger.Info("schema already applied, skipping", "ran_at", prev.RanAt)
			return &Result{Script: script.Path, Checksum: script.Checksum, Skipped: true}, nil
		}
	}

	start := time.Now()
	res, err := execute(ctx, h, script)
	if hist != nil {
		entry := ledger.Run{Script: script.Path, Checksum: script.Checksum, Kind: kind, Success: err == nil}
		if err != nil {
			msg := common.MaskSensitiveData(err.Error())
			entry.Error = &msg
		}
		if rerr := hist.Record(ctx, entry); rerr != nil {
			logger.Warn("failed to record run", "error", rerr)
		}
	}
	if err != nil {
		logger.Error("schema execution failed", "error", err)
		return nil, err
	}
	res.Duration = time.Since(start)
	logger.Info("schema executed successfully", "rows_affected", res.RowsAffected, "result_sets", len(res.Sets), "duration", res.Duration)
	return res, nil
}

// execute runs the script on one dedicated connection and returns it to the
// pool before returning.
func execute(ctx context.Context, h *database.Handle, script Script) (*Result, error) {
	conn, err := h.Conn(ctx)
	if err != nil {
		if errors.Is(err, database.ErrQueueFull) {
			return nil, &ConnectionError{Driver: h.Dialect.Name(), Err: err}
		}
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	res := &Result{Script: script.Path, Checksum: script.Checksum}
	if returnsRows(script.Text) {
		sets, err := queryAll(ctx, conn.Conn, script.Text)
		if err != nil {
			return nil, &ExecutionError{Script: script.Path, Err: err}
		}
		res.Sets = sets
		return res, nil
	}

	out, err := conn.ExecContext(ctx, script.Text)
	if err != nil {
		return nil, &ExecutionError{Script: script.Path, Err: err}
	}
	if n, err := out.RowsAffected(); err == nil {
		res.RowsAffected = n
	}
	return res, nil
}

var rowKeywords = map[string]bool{
	"SELECT": true, "SHOW": true, "DESCRIBE": true, "DESC": true,
	"EXPLAIN": true, "PRAGMA": true, "WITH": true, "VALUES": true,
}

// returnsRows reports whether the leading statement produces a result set.
func returnsRows(text string) bool {
	return rowKeywords[util.FirstKeyword(text)]
}

// queryAll drains every result set the statement text produces.
func queryAll(ctx context.Context, conn *sql.Conn, text string) ([]ResultSet, error) {
	rows, err := conn.QueryContext(ctx, text)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sets []ResultSet
	for {
		set, err := scanSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
		if !rows.NextResultSet() {
			break
		}
	}
	return sets, rows.Err()
}

func scanSet(rows *sql.Rows) (ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return ResultSet{}, err
	}
	set := ResultSet{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		row := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return ResultSet{}, err
		}
		for i, v := range row {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			}
		}
		set.Rows = append(set.Rows, row)
	}
	return set, rows.Err()
}

var defaultRunner = New()

// RunSchemaQuery executes queryText with the default runner.
func RunSchemaQuery(ctx context.Context, cfg database.Config, queryText string) (*Result, error) {
	return defaultRunner.RunSchemaQuery(ctx, cfg, queryText)
}

// RunSchemaFile executes the file at path with the default runner.
func RunSchemaFile(ctx context.Context, cfg database.Config, path string) (*Result, error) {
	return defaultRunner.RunSchemaFile(ctx, cfg, path)
}
