package catalog

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/tuannm99/fallbackdb/internal/record"
)

const (
	ColID        = "id"
	ColCreatedAt = "created_at"
)

// Snapshot is the full persisted state of a Catalog.
type Snapshot struct {
	Tables    map[string][]record.Row
	Schemas   map[string]string
	Sequences map[string]int64
}

// Catalog owns the table store, the schema registry and the id allocator.
// It does no locking; callers serialize access.
type Catalog struct {
	tables  map[string][]record.Row
	schemas *SchemaRegistry
	ids     *IDAllocator
}

func New() *Catalog {
	return &Catalog{
		tables:  make(map[string][]record.Row),
		schemas: NewSchemaRegistry(),
		ids:     NewIDAllocator(),
	}
}

// NormalizeName is applied to every table name on the way in.
func NormalizeName(name string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(name)))
}

// EnsureTable creates an empty table with counter 1 if absent.
func (c *Catalog) EnsureTable(name string) bool {
	name = NormalizeName(name)
	if _, ok := c.tables[name]; ok {
		return false
	}
	c.tables[name] = []record.Row{}
	c.ids.Init(name)
	return true
}

// CreateTable ensures the table and records raw as its schema if none is
// recorded yet. Existing rows are kept. It reports whether anything changed.
func (c *Catalog) CreateTable(name, raw string) bool {
	created := c.EnsureTable(name)
	recorded := c.schemas.Record(NormalizeName(name), raw)
	return created || recorded
}

// DropTable removes rows and schema. The id counter is kept, so a table
// recreated under the same name never reuses an id. It reports whether the
// table or its schema existed.
func (c *Catalog) DropTable(name string) bool {
	name = NormalizeName(name)
	_, hadRows := c.tables[name]
	_, hadSchema := c.schemas.Get(name)

	delete(c.tables, name)
	c.schemas.Remove(name)
	return hadRows || hadSchema
}

func (c *Catalog) HasTable(name string) bool {
	_, ok := c.tables[NormalizeName(name)]
	return ok
}

// Rows returns the live row slice of a table. Callers must not retain it
// across mutations.
func (c *Catalog) Rows(name string) ([]record.Row, bool) {
	rows, ok := c.tables[NormalizeName(name)]
	return rows, ok
}

func (c *Catalog) SetRows(name string, rows []record.Row) {
	c.tables[NormalizeName(name)] = rows
}

// Append stores row at the end of the table, creating the table if needed.
func (c *Catalog) Append(name string, row record.Row) {
	name = NormalizeName(name)
	c.EnsureTable(name)
	c.tables[name] = append(c.tables[name], row)
}

// NextID allocates the next identity for a table.
func (c *Catalog) NextID(name string) int64 {
	return c.ids.Next(NormalizeName(name))
}

func (c *Catalog) Schema(name string) (string, bool) {
	return c.schemas.Get(NormalizeName(name))
}

// Tables lists table names in lexical order.
func (c *Catalog) Tables() []string {
	out := make([]string, 0, len(c.tables))
	for name := range c.tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Snapshot copies the state for persistence. Rows are shared, not cloned;
// the snapshot must be written before the next mutation.
func (c *Catalog) Snapshot() Snapshot {
	tables := make(map[string][]record.Row, len(c.tables))
	for k, v := range c.tables {
		tables[k] = v
	}
	return Snapshot{
		Tables:    tables,
		Schemas:   c.schemas.All(),
		Sequences: c.ids.Counters(),
	}
}

// Restore replaces the state with snap. Each counter ends up past both its
// saved value and the largest id present (counters of dropped tables are
// restored too), and created_at text is turned
// back into a timestamp.
func (c *Catalog) Restore(snap Snapshot) {
	c.tables = make(map[string][]record.Row, len(snap.Tables))
	c.schemas = NewSchemaRegistry()
	c.ids = NewIDAllocator()

	for name, rows := range snap.Tables {
		name = NormalizeName(name)
		if rows == nil {
			rows = []record.Row{}
		}
		c.EnsureTable(name)
		for _, row := range rows {
			restoreCreatedAt(&row)
			if id, ok := row.Lookup(ColID).IntValue(); ok {
				c.ids.Observe(name, id)
			}
			c.tables[name] = append(c.tables[name], row)
		}
	}
	for name, raw := range snap.Schemas {
		c.schemas.Record(NormalizeName(name), raw)
	}
	for name, next := range snap.Sequences {
		name = NormalizeName(name)
		if next > 1 {
			c.ids.Observe(name, next-1)
		}
	}
}

func restoreCreatedAt(row *record.Row) {
	s, ok := row.Lookup(ColCreatedAt).StringValue()
	if !ok {
		return
	}
	if t, err := time.Parse(record.TimeLayout, s); err == nil {
		row.Set(ColCreatedAt, record.Time(t))
	}
}
