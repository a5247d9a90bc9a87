// Package fallbackdb is the top-level facade for the embedded fallback
// store: a disk-persisted table store that answers a small SQL subset with
// $n parameters, shaped like a pooled database driver.
package fallbackdb

import (
	"context"

	"github.com/tuannm99/fallbackdb/internal/engine"
	"github.com/tuannm99/fallbackdb/internal/record"
	"github.com/tuannm99/fallbackdb/internal/sql/executor"
	"github.com/tuannm99/fallbackdb/internal/storage"
)

type (
	Store     = engine.Store
	Conn      = engine.Conn
	Options   = engine.Options
	Event     = engine.Event
	EventInfo = engine.EventInfo
	Listener  = engine.Listener

	Result = executor.Result
	Row    = record.Row
	Value  = record.Value

	PersistenceError = storage.PersistenceError
)

const (
	EventConnect = engine.EventConnect
	EventError   = engine.EventError
	EventQuery   = engine.EventQuery
)

var (
	ErrStoreClosed = engine.ErrStoreClosed
	ErrPersistence = storage.ErrPersistence
)

// Open loads or initializes the store described by opts.
func Open(ctx context.Context, opts Options) (*Store, error) {
	return engine.Open(ctx, opts)
}
