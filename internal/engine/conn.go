package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/tuannm99/fallbackdb/internal/sql/executor"
)

// Conn is a pooled-driver style handle. Every Conn shares its Store; there
// is nothing to acquire or give back.
type Conn struct {
	ID    string
	store *Store
}

func (s *Store) Connect(ctx context.Context) (*Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrStoreClosed
	}

	c := &Conn{ID: uuid.Must(uuid.NewV7()).String(), store: s}
	s.log.DebugContext(ctx, "connect", "conn", c.ID)
	s.events.emit(EventInfo{Event: EventConnect, ConnID: c.ID})
	return c, nil
}

func (c *Conn) Query(ctx context.Context, sql string, params ...any) (*executor.Result, error) {
	return c.store.query(ctx, c.ID, sql, params)
}

// Release is a no-op.
func (c *Conn) Release() {}
