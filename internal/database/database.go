package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/loykin/schemarun/internal/common"
	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/database/connector"
	"github.com/loykin/schemarun/internal/database/mysql"
	"github.com/loykin/schemarun/internal/database/postgresql"
	"github.com/loykin/schemarun/internal/database/sqlite"
)

// Dialect is re-exported for callers that only import this package.
type Dialect = connector.Dialect

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]Dialect{}
)

func init() {
	Register(mysql.NewDialect())
	Register(postgresql.NewDialect())
	Register(sqlite.NewDialect())
}

// Register makes a dialect available under its Name.
func Register(d Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[d.Name()] = d
}

// DialectFor returns the dialect registered for driver (aliases accepted).
func DialectFor(driver string) (Dialect, error) {
	dialectsMu.RLock()
	d, ok := dialects[NormalizeDriver(driver)]
	dialectsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownDriver, driver, strings.Join(Drivers(), ", "))
	}
	return d, nil
}

// Drivers lists registered dialect names, sorted.
func Drivers() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	out := make([]string, 0, len(dialects))
	for k := range dialects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Handle is an explicitly constructed, short-lived pool for one target
// database. Close must be called on every exit path; it is idempotent.
type Handle struct {
	DB      *sql.DB
	Dialect Dialect
	Config  Config

	slots     chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Open builds the DSN for cfg, opens a bounded pool and pings it. Any failure
// to reach the server is reported as a *ConnectionError.
func Open(ctx context.Context, cfg Config) (*Handle, error) {
	d, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := d.DSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s dsn: %w", d.Name(), err)
	}

	logger := common.GetLogger().WithComponent("database").WithDriver(d.Name())
	logger.Debug("opening database", "dsn", dsn, "pool_size", cfg.PoolSize, "queue_limit", cfg.QueueLimit)

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, &ConnectionError{Driver: d.Name(), Err: err}
	}
	d.ConfigurePool(db, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, constants.DefaultConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Driver: d.Name(), Err: err}
	}

	logger.Info("database connection established", "database", cfg.Name)
	return NewHandle(db, d, cfg), nil
}

// NewHandle wraps an already opened pool. Tests use it with sqlmock.
func NewHandle(db *sql.DB, d Dialect, cfg Config) *Handle {
	h := &Handle{DB: db, Dialect: d, Config: cfg}
	if cfg.QueueLimit > 0 {
		size := cfg.PoolSize
		if size <= 0 {
			size = constants.DefaultPoolSize
		}
		if d.Name() == "sqlite" {
			size = 1
		}
		h.slots = make(chan struct{}, size+cfg.QueueLimit)
	}
	return h
}

// Conn is a dedicated connection checked out of a Handle.
type Conn struct {
	*sql.Conn
	release func()
	once    sync.Once
}

// Close returns the connection to the pool and frees its queue slot.
func (c *Conn) Close() error {
	err := c.Conn.Close()
	c.once.Do(c.release)
	return err
}

// Conn checks out a dedicated connection so that session state (USE db,
// SET ...) persists across the statements of one script. With a positive
// queue limit at most PoolSize holders plus QueueLimit waiters are admitted;
// anyone beyond that gets ErrQueueFull immediately.
func (h *Handle) Conn(ctx context.Context) (*Conn, error) {
	release := func() {}
	if h.slots != nil {
		select {
		case h.slots <- struct{}{}:
			release = func() { <-h.slots }
		default:
			return nil, ErrQueueFull
		}
	}
	conn, err := h.DB.Conn(ctx)
	if err != nil {
		release()
		return nil, &ConnectionError{Driver: h.Dialect.Name(), Err: err}
	}
	return &Conn{Conn: conn, release: release}, nil
}

// Close releases the pool. Safe to call more than once.
func (h *Handle) Close() error {
	if h == nil || h.DB == nil {
		return nil
	}
	h.closeOnce.Do(func() {
		h.closeErr = h.DB.Close()
	})
	return h.closeErr
}
