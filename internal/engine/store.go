package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/tuannm99/fallbackdb/internal/catalog"
	"github.com/tuannm99/fallbackdb/internal/record"
	"github.com/tuannm99/fallbackdb/internal/sql/executor"
	"github.com/tuannm99/fallbackdb/internal/storage"
)

var ErrStoreClosed = errors.New("fallbackdb: store is closed")

// DefaultDir is where snapshots live when Options.Dir is empty.
const DefaultDir = ".mockdb-data"

// DefaultTables exist, possibly empty, after every Open.
var DefaultTables = []string{
	"users", "properties", "contracts", "payments", "alerts",
	"reports", "settings", "logs", "tenants", "transactions",
}

type Options struct {
	// Fs defaults to the OS filesystem.
	Fs  afero.Fs
	Dir string
	// DefaultTables replaces the package default when non-nil. Pass an
	// empty slice to start without tables.
	DefaultTables []string

	// LatencyMin and LatencyMax bound the simulated delay applied before
	// and after every statement. Zero disables it.
	LatencyMin time.Duration
	LatencyMax time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

// Store is the fallback database. All statements run under one lock, so
// Query is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	exec   *executor.Executor
	files  *storage.FileSet
	closed bool

	delay  latency
	log    *slog.Logger
	events emitter
}

// Open loads the snapshot in opts.Dir. An unreadable or malformed snapshot
// is logged and replaced by empty default tables; Open only fails when ctx
// is done.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := opts.Dir
	if dir == "" {
		dir = DefaultDir
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	tables := opts.DefaultTables
	if tables == nil {
		tables = DefaultTables
	}

	files := storage.NewFileSet(opts.Fs, dir)
	cat := catalog.New()

	snap, found, err := files.Load()
	switch {
	case err != nil:
		log.WarnContext(ctx, "snapshot unreadable, starting from empty tables", "dir", dir, "err", err)
	case found:
		cat.Restore(snap)
		log.InfoContext(ctx, "snapshot loaded", "dir", dir, "tables", len(snap.Tables))
	default:
		log.InfoContext(ctx, "no snapshot found, first start", "dir", dir)
	}

	for _, name := range tables {
		cat.EnsureTable(name)
	}
	if err := files.Save(cat.Snapshot()); err != nil {
		log.ErrorContext(ctx, "write initial snapshot", "dir", dir, "err", err)
	}

	ex := executor.NewExecutor(cat, files)
	if opts.Now != nil {
		ex.Now = opts.Now
	}

	return &Store{
		exec:  ex,
		files: files,
		delay: latency{min: opts.LatencyMin, max: opts.LatencyMax},
		log:   log,
	}, nil
}

// Query runs one statement with positional parameters ($1 is params[0]).
//
// Statements the store does not understand return an empty result. When a
// mutation is applied but its snapshot cannot be written, both the result
// and a *storage.PersistenceError are returned.
func (s *Store) Query(ctx context.Context, sql string, params ...any) (*executor.Result, error) {
	return s.query(ctx, "", sql, params)
}

func (s *Store) query(ctx context.Context, connID, sql string, params []any) (*executor.Result, error) {
	if err := sleep(ctx, s.delay.pick()); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.execLocked(sql, params)
	elapsed := time.Since(start)

	if errors.Is(err, ErrStoreClosed) {
		return nil, err
	}
	if err != nil {
		s.log.ErrorContext(ctx, "query failed", "conn", connID, "sql", sql, "err", err)
		s.events.emit(EventInfo{Event: EventError, ConnID: connID, SQL: sql, Err: err})
	}
	if res != nil {
		s.log.DebugContext(ctx, "query", "conn", connID, "sql", sql, "rows", res.RowCount, "elapsed", elapsed)
		s.events.emit(EventInfo{Event: EventQuery, ConnID: connID, SQL: sql, RowCount: res.RowCount, Elapsed: elapsed})
	}

	// the statement has run; cancellation only shortens the wait
	_ = sleep(ctx, s.delay.pick())
	return res, err
}

func (s *Store) execLocked(sql string, params []any) (*executor.Result, error) {
	vals := make([]record.Value, len(params))
	for i, p := range params {
		vals[i] = record.FromAny(p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return s.exec.ExecSQL(sql, vals)
}

// Tables lists table names in lexical order.
func (s *Store) Tables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec.Catalog.Tables()
}

// Schema returns the CREATE TABLE text recorded for name.
func (s *Store) Schema(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec.Catalog.Schema(name)
}

func (s *Store) Dir() string {
	return s.files.Dir
}

// On registers l for ev. Listeners run synchronously on the calling
// goroutine after the statement has released the store lock.
func (s *Store) On(ev Event, l Listener) {
	s.events.on(ev, l)
}

// Flush writes the current state to disk.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.files.Save(s.exec.Catalog.Snapshot())
}

// End flushes the snapshot and closes the store. Later calls are no-ops.
func (s *Store) End(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	err := s.files.Save(s.exec.Catalog.Snapshot())
	s.closed = true
	s.mu.Unlock()

	if err != nil {
		s.log.ErrorContext(ctx, "final snapshot failed", "dir", s.files.Dir, "err", err)
		return err
	}
	s.log.InfoContext(ctx, "store stopped, data persisted", "dir", s.files.Dir)
	return nil
}

func (s *Store) Close() error {
	return s.End(context.Background())
}
