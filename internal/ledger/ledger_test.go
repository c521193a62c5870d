package ledger

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/loykin/schemarun/internal/database/mysql"
	"github.com/loykin/schemarun/internal/database/postgresql"
	"github.com/loykin/schemarun/internal/database/sqlite"
)

func openSQLite(t *testing.T) *Ledger {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	l := New(db, sqlite.NewDialect(), "")
	if err := l.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	return l
}

func TestEnsureIdempotent(t *testing.T) {
	l := openSQLite(t)
	if err := l.Ensure(context.Background()); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if l.Table() != "schemarun_runs" {
		t.Fatalf("Table() = %q", l.Table())
	}
}

func TestRecordListLastSuccess(t *testing.T) {
	ctx := context.Background()
	l := openSQLite(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	msg := "table properties already exists"
	runs := []Run{
		{Script: "schema.sql", Checksum: "aaa", Kind: KindBootstrap, Success: true},
		{Script: "thumb.sql", Checksum: "bbb", Kind: KindFile, Success: false, Error: &msg},
		{Script: "<query>", Checksum: "ccc", Kind: KindQuery, Success: true},
	}
	for _, r := range runs {
		if err := l.Record(ctx, r); err != nil {
			t.Fatalf("Record(%s): %v", r.Script, err)
		}
	}

	got, err := l.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List len = %d, want 3", len(got))
	}
	if got[0].Script != "<query>" || got[2].Script != "schema.sql" {
		t.Fatalf("List order = %s,%s,%s", got[0].Script, got[1].Script, got[2].Script)
	}
	if got[1].Success || got[1].Error == nil || *got[1].Error != msg {
		t.Fatalf("failed run not preserved: %+v", got[1])
	}
	if got[0].RanAt != fixed.Format(RanAtLayout) {
		t.Fatalf("RanAt = %q", got[0].RanAt)
	}

	limited, err := l.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("List(1) = %v, %v", limited, err)
	}

	last, err := l.LastSuccess(ctx, "aaa")
	if err != nil || last == nil || last.Script != "schema.sql" {
		t.Fatalf("LastSuccess(aaa) = %+v, %v", last, err)
	}
	last, err = l.LastSuccess(ctx, "bbb")
	if err != nil || last != nil {
		t.Fatalf("LastSuccess(bbb) = %+v, %v; want nil", last, err)
	}
}

func TestMySQLStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	l := New(db, mysql.NewDialect(), "runs")
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS `runs`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `runs` (script, checksum, kind, success, error, ran_at) VALUES (?, ?, ?, ?, ?, ?)")).
		WithArgs("a.sql", "abc", "file", 1, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ctx := context.Background()
	if err := l.Ensure(ctx); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if err := l.Record(ctx, Run{Script: "a.sql", Checksum: "abc", Kind: KindFile, Success: true}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresLastSuccessPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	l := New(db, postgresql.NewDialect(), "")
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE checksum = $1 AND success = $2`)).
		WithArgs("abc", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "script", "ran_at"}).
			AddRow(7, "schema.sql", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))

	run, err := l.LastSuccess(context.Background(), "abc")
	if err != nil || run == nil {
		t.Fatalf("LastSuccess = %v, %v", run, err)
	}
	if run.ID != 7 || run.RanAt != "2024-01-02T03:04:05Z" {
		t.Fatalf("unexpected run: %+v", run)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
