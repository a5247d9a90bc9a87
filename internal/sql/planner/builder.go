package planner

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/tuannm99/fallbackdb/internal/record"
	"github.com/tuannm99/fallbackdb/internal/sql/parser"
)

// BuildPlan binds params into stmt.
//
// A $n item always reads params[n-1]. Any other VALUES or SET item reads
// the parameter at its own position, so literals in the SQL text are not
// used. Parameters that were not supplied bind as NULL.
func BuildPlan(stmt parser.Statement, params []record.Value) (Plan, error) {
	b := binder{params: params}
	switch s := stmt.(type) {
	case *parser.CreateTableStmt:
		return &CreateTablePlan{TableName: s.TableName, Raw: s.Raw}, nil
	case *parser.DropTableStmt:
		return &DropTablePlan{TableName: s.TableName, IfExists: s.IfExists}, nil
	case *parser.AlterStmt:
		return &NoopPlan{Command: "ALTER"}, nil
	case *parser.InsertStmt:
		return b.insert(s), nil
	case *parser.SelectStmt:
		return b.selectPlan(s), nil
	case *parser.UpdateStmt:
		return b.update(s), nil
	case *parser.DeleteStmt:
		return &DeletePlan{TableName: s.TableName, Filter: b.predicate(s.Where)}, nil
	default:
		return nil, fmt.Errorf("planner: unsupported statement type %T", stmt)
	}
}

type binder struct {
	params []record.Value
}

func (b binder) param(i int) record.Value {
	if i >= 0 && i < len(b.params) {
		return b.params[i]
	}
	return record.Null()
}

// positional binds the item found at position i of a VALUES or SET list.
func (b binder) positional(i int, e parser.Expr) record.Value {
	if p, ok := e.(*parser.ParamExpr); ok {
		return b.param(p.Index)
	}
	return b.param(i)
}

func (b binder) predicate(w *parser.WhereEq) *Predicate {
	if w == nil || w.Param == nil {
		return nil
	}
	return &Predicate{Column: w.Column, Value: b.param(w.Param.Index)}
}

// count resolves a LIMIT or OFFSET operand, -1 when absent or unusable.
func (b binder) count(e parser.Expr) int64 {
	var v record.Value
	switch x := e.(type) {
	case *parser.ParamExpr:
		v = b.param(x.Index)
	case *parser.LiteralExpr:
		v = x.Value
	default:
		return -1
	}
	if v.IsNull() {
		return -1
	}
	n, err := cast.ToInt64E(v.Any())
	if err != nil || n < 0 {
		return -1
	}
	return n
}

func (b binder) insert(s *parser.InsertStmt) *InsertPlan {
	var row record.Row
	for i, col := range s.Columns {
		var item parser.Expr
		if i < len(s.Values) {
			item = s.Values[i]
		}
		row.Set(col, b.positional(i, item))
	}
	return &InsertPlan{TableName: s.TableName, Values: row}
}

func (b binder) selectPlan(s *parser.SelectStmt) Plan {
	if s.TableName == "" {
		return &NoopPlan{Command: "SELECT"}
	}
	offset := b.count(s.Offset)
	if offset < 0 {
		offset = 0
	}
	return &SeqScanPlan{
		TableName: s.TableName,
		Filter:    b.predicate(s.Where),
		OrderBy:   s.OrderBy,
		Offset:    offset,
		Limit:     b.count(s.Limit),
	}
}

func (b binder) update(s *parser.UpdateStmt) *UpdatePlan {
	assigns := make([]Assign, 0, len(s.Assignments))
	for i, a := range s.Assignments {
		assigns = append(assigns, Assign{Column: a.Column, Value: b.positional(i, a.Value)})
	}
	return &UpdatePlan{
		TableName: s.TableName,
		Assigns:   assigns,
		Filter:    b.predicate(s.Where),
	}
}
