package executor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tuannm99/fallbackdb/internal/catalog"
	"github.com/tuannm99/fallbackdb/internal/record"
	"github.com/tuannm99/fallbackdb/internal/sql/parser"
	"github.com/tuannm99/fallbackdb/internal/sql/planner"
)

// Persister receives a snapshot after every mutation.
type Persister interface {
	Save(snap catalog.Snapshot) error
}

// Executor runs statements against a Catalog. It is not safe for
// concurrent use; the engine serializes calls.
type Executor struct {
	Catalog *catalog.Catalog
	// Files may be nil, in which case nothing is persisted.
	Files Persister
	Now   func() time.Time
}

func NewExecutor(cat *catalog.Catalog, files Persister) *Executor {
	return &Executor{Catalog: cat, Files: files, Now: time.Now}
}

// ExecSQL is the top-level entry: SQL string -> Result.
//
// Text the parser cannot route yields an empty result and no error. A
// mutation whose snapshot could not be written returns both the result and
// the persistence error; the change stays in memory.
func (e *Executor) ExecSQL(sql string, params []record.Value) (*Result, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return Empty(""), nil
	}
	plan, err := planner.BuildPlan(stmt, params)
	if err != nil {
		return Empty(""), nil
	}
	return e.execPlan(plan)
}

func (e *Executor) execPlan(p planner.Plan) (*Result, error) {
	switch plan := p.(type) {
	case *planner.CreateTablePlan:
		return e.execCreateTable(plan)
	case *planner.DropTablePlan:
		return e.execDropTable(plan)
	case *planner.NoopPlan:
		return Empty(plan.Command), nil

	case *planner.InsertPlan:
		return e.execInsert(plan)
	case *planner.SeqScanPlan:
		return e.execSeqScan(plan), nil
	case *planner.UpdatePlan:
		return e.execUpdate(plan)
	case *planner.DeletePlan:
		return e.execDelete(plan)

	default:
		return nil, fmt.Errorf("executor: unsupported plan type %T", p)
	}
}

func (e *Executor) persist() error {
	if e.Files == nil {
		return nil
	}
	return e.Files.Save(e.Catalog.Snapshot())
}

func (e *Executor) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Executor) execCreateTable(p *planner.CreateTablePlan) (*Result, error) {
	if !e.Catalog.CreateTable(p.TableName, p.Raw) {
		return Empty("CREATE"), nil
	}
	return Empty("CREATE"), e.persist()
}

func (e *Executor) execDropTable(p *planner.DropTablePlan) (*Result, error) {
	if !e.Catalog.DropTable(p.TableName) {
		return Empty("DROP"), nil
	}
	return Empty("DROP"), e.persist()
}

func (e *Executor) execInsert(p *planner.InsertPlan) (*Result, error) {
	e.Catalog.EnsureTable(p.TableName)
	id := e.Catalog.NextID(p.TableName)

	var row record.Row
	row.Set(catalog.ColID, record.Int(id))
	row.Set(catalog.ColCreatedAt, record.Time(e.now()))
	for _, col := range p.Values.Columns() {
		if isSynthetic(col) {
			continue
		}
		row.Set(col, p.Values.Lookup(col))
	}
	e.Catalog.Append(p.TableName, row)

	res := &Result{
		Rows:     []record.Row{row.Clone()},
		RowCount: 1,
		Command:  "INSERT",
		OID:      id,
	}
	return res, e.persist()
}

func (e *Executor) execSeqScan(p *planner.SeqScanPlan) *Result {
	rows, ok := e.Catalog.Rows(p.TableName)
	if !ok {
		return Empty("SELECT")
	}

	out := make([]record.Row, 0, len(rows))
	for _, row := range rows {
		if p.Filter != nil && !p.Filter.Match(row) {
			continue
		}
		// never hand out stored rows
		out = append(out, row.Clone())
	}

	if p.OrderBy != nil {
		col, desc := p.OrderBy.Column, p.OrderBy.Desc
		sort.SliceStable(out, func(i, j int) bool {
			c := record.Compare(out[i].Lookup(col), out[j].Lookup(col))
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	out = window(out, p.Offset, p.Limit)
	return &Result{Rows: out, RowCount: len(out), Command: "SELECT"}
}

func window(rows []record.Row, offset, limit int64) []record.Row {
	if offset >= int64(len(rows)) {
		return rows[:0]
	}
	rows = rows[offset:]
	if limit >= 0 && limit < int64(len(rows)) {
		rows = rows[:limit]
	}
	return rows
}

func (e *Executor) execUpdate(p *planner.UpdatePlan) (*Result, error) {
	// UPDATE without WHERE is refused rather than applied to every row.
	if p.Filter == nil {
		return affected("UPDATE", 0), nil
	}
	rows, ok := e.Catalog.Rows(p.TableName)
	if !ok {
		return affected("UPDATE", 0), nil
	}

	n := 0
	for i := range rows {
		if !p.Filter.Match(rows[i]) {
			continue
		}
		for _, a := range p.Assigns {
			if strings.EqualFold(a.Column, catalog.ColID) {
				continue
			}
			rows[i].Set(a.Column, a.Value)
		}
		n++
	}
	if n == 0 {
		return affected("UPDATE", 0), nil
	}
	return affected("UPDATE", n), e.persist()
}

func (e *Executor) execDelete(p *planner.DeletePlan) (*Result, error) {
	if p.Filter == nil {
		return affected("DELETE", 0), nil
	}
	rows, ok := e.Catalog.Rows(p.TableName)
	if !ok {
		return affected("DELETE", 0), nil
	}

	kept := make([]record.Row, 0, len(rows))
	for _, row := range rows {
		if !p.Filter.Match(row) {
			kept = append(kept, row)
		}
	}
	n := len(rows) - len(kept)
	if n == 0 {
		return affected("DELETE", 0), nil
	}
	e.Catalog.SetRows(p.TableName, kept)
	return affected("DELETE", n), e.persist()
}

// isSynthetic reports columns the store assigns itself on INSERT.
func isSynthetic(col string) bool {
	return strings.EqualFold(col, catalog.ColID) || strings.EqualFold(col, catalog.ColCreatedAt)
}
