package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/loykin/schemarun/internal/common"
	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/database/connector"
)

// RanAtLayout is the timestamp format stored in ran_at.
const RanAtLayout = time.RFC3339Nano

// Kind classifies what produced a run.
type Kind string

const (
	KindFile      Kind = "file"
	KindQuery     Kind = "query"
	KindBootstrap Kind = "bootstrap"
)

// Run is one recorded invocation of the runner.
type Run struct {
	ID       int64   `json:"id" yaml:"id"`
	Script   string  `json:"script" yaml:"script"`
	Checksum string  `json:"checksum" yaml:"checksum"`
	Kind     Kind    `json:"kind" yaml:"kind"`
	Success  bool    `json:"success" yaml:"success"`
	Error    *string `json:"error,omitempty" yaml:"error,omitempty"`
	RanAt    string  `json:"ran_at" yaml:"ran_at"`
}

// Ledger stores run history in a table of the target database.
type Ledger struct {
	db      *sql.DB
	dialect connector.Dialect
	table   string
	now     func() time.Time
}

// New returns a ledger over db. An empty table selects the default name.
func New(db *sql.DB, d connector.Dialect, table string) *Ledger {
	if table == "" {
		table = constants.DefaultLedgerTable
	}
	return &Ledger{db: db, dialect: d, table: table, now: time.Now}
}

// Table returns the history table name.
func (l *Ledger) Table() string { return l.table }

// Ensure creates the history table when missing.
func (l *Ledger) Ensure(ctx context.Context) error {
	logger := common.GetLogger().WithComponent("ledger").WithDriver(l.dialect.Name())
	for i, q := range ensureStatements(l.dialect, l.table) {
		logger.Debug("executing ledger schema statement", "index", i+1, "sql", q)
		if _, err := l.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to ensure ledger table %s: %w", l.table, err)
		}
	}
	return nil
}

// Record appends one run. RanAt is filled when empty.
func (l *Ledger) Record(ctx context.Context, run Run) error {
	if run.RanAt == "" {
		run.RanAt = l.now().UTC().Format(RanAtLayout)
	}
	q := fmt.Sprintf("INSERT INTO %s (script, checksum, kind, success, error, ran_at) VALUES (%s)",
		l.dialect.QuoteIdent(l.table), placeholders(l.dialect, 6))
	var errMsg any
	if run.Error != nil {
		errMsg = *run.Error
	}
	if _, err := l.db.ExecContext(ctx, q, run.Script, run.Checksum, string(run.Kind),
		boolToStorage(l.dialect, run.Success), errMsg, run.RanAt); err != nil {
		return fmt.Errorf("failed to record run of %s: %w", run.Script, err)
	}
	return nil
}

// List returns the most recent runs first. limit <= 0 returns all.
func (l *Ledger) List(ctx context.Context, limit int) ([]Run, error) {
	q := fmt.Sprintf("SELECT id, script, checksum, kind, success, error, ran_at FROM %s ORDER BY id DESC",
		l.dialect.QuoteIdent(l.table))
	args := []any{}
	if limit > 0 {
		q += " LIMIT " + l.dialect.Placeholder(1)
		args = append(args, limit)
	}
	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			kind    string
			success any
			errMsg  sql.NullString
			ranAt   any
		)
		if err := rows.Scan(&r.ID, &r.Script, &r.Checksum, &kind, &success, &errMsg, &ranAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Kind = Kind(kind)
		r.Success = boolFromStorage(success)
		if errMsg.Valid {
			s := errMsg.String
			r.Error = &s
		}
		r.RanAt = timeFromStorage(ranAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return out, nil
}

// LastSuccess returns the latest successful run with checksum, or nil.
func (l *Ledger) LastSuccess(ctx context.Context, checksum string) (*Run, error) {
	q := fmt.Sprintf("SELECT id, script, ran_at FROM %s WHERE checksum = %s AND success = %s ORDER BY id DESC LIMIT 1",
		l.dialect.QuoteIdent(l.table), l.dialect.Placeholder(1), l.dialect.Placeholder(2))
	var (
		r     = Run{Checksum: checksum, Success: true}
		ranAt any
	)
	err := l.db.QueryRowContext(ctx, q, checksum, boolToStorage(l.dialect, true)).Scan(&r.ID, &r.Script, &ranAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up checksum %s: %w", checksum, err)
	}
	r.RanAt = timeFromStorage(ranAt)
	return &r, nil
}
