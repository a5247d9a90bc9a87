package planner

import (
	"github.com/tuannm99/fallbackdb/internal/record"
	"github.com/tuannm99/fallbackdb/internal/sql/parser"
)

// Plan is a statement with every parameter resolved.
type Plan interface {
	planNode()
}

// ----- Plan nodes -----

type CreateTablePlan struct {
	TableName string
	Raw       string
}

func (*CreateTablePlan) planNode() {}

type DropTablePlan struct {
	TableName string
	IfExists  bool
}

func (*DropTablePlan) planNode() {}

// NoopPlan answers with an empty result (ALTER, SELECT without FROM).
type NoopPlan struct {
	Command string
}

func (*NoopPlan) planNode() {}

type InsertPlan struct {
	TableName string
	// Values holds the bound column values in statement order.
	Values record.Row
}

func (*InsertPlan) planNode() {}

type SeqScanPlan struct {
	TableName string
	Filter    *Predicate
	OrderBy   *parser.OrderBy
	Offset    int64
	// Limit < 0 means no limit.
	Limit int64
}

func (*SeqScanPlan) planNode() {}

type Assign struct {
	Column string
	Value  record.Value
}

type UpdatePlan struct {
	TableName string
	Assigns   []Assign
	Filter    *Predicate
}

func (*UpdatePlan) planNode() {}

type DeletePlan struct {
	TableName string
	Filter    *Predicate
}

func (*DeletePlan) planNode() {}

// Predicate is a bound equality filter.
type Predicate struct {
	Column string
	Value  record.Value
}

// Match compares loosely; a missing column reads as NULL.
func (p *Predicate) Match(row record.Row) bool {
	return record.Equal(row.Lookup(p.Column), p.Value)
}
