package parser

import "github.com/tuannm99/fallbackdb/internal/record"

// Statement is the root interface for all SQL statements.
type Statement interface {
	stmtNode()
}

// ----- CREATE TABLE -----
type CreateTableStmt struct {
	TableName   string
	IfNotExists bool
	// Columns lists declared column names, informational only.
	Columns []string
	// Raw is the statement text as received, recorded in the schema registry.
	Raw string
}

func (*CreateTableStmt) stmtNode() {}

// ----- DROP TABLE -----
type DropTableStmt struct {
	TableName string
	IfExists  bool
}

func (*DropTableStmt) stmtNode() {}

// ----- ALTER (accepted, never applied) -----
type AlterStmt struct{}

func (*AlterStmt) stmtNode() {}

// ----- INSERT -----
type InsertStmt struct {
	TableName string
	Columns   []string
	// Values holds the VALUES items in column order. It may be shorter than
	// Columns when the statement has no VALUES list.
	Values []Expr
}

func (*InsertStmt) stmtNode() {}

// ----- SELECT -----
type SelectStmt struct {
	// TableName is empty for SELECT without FROM.
	TableName string
	Where     *WhereEq
	OrderBy   *OrderBy
	Limit     Expr
	Offset    Expr
}

func (*SelectStmt) stmtNode() {}

type OrderBy struct {
	Column string
	Desc   bool
}

// ----- UPDATE -----
type Assignment struct {
	Column string
	Value  Expr
}

type UpdateStmt struct {
	TableName   string
	Assignments []Assignment
	Where       *WhereEq
}

func (*UpdateStmt) stmtNode() {}

// ----- DELETE -----
type DeleteStmt struct {
	TableName string
	Where     *WhereEq
}

func (*DeleteStmt) stmtNode() {}

// WhereEq is the only supported predicate: <column> = $<n>.
type WhereEq struct {
	Column string
	Param  *ParamExpr
}

// ----- Expressions -----
type Expr interface {
	exprNode()
}

// ParamExpr references a bound parameter. Index is zero-based ($1 -> 0).
type ParamExpr struct {
	Index int
}

func (*ParamExpr) exprNode() {}

type LiteralExpr struct {
	Value record.Value
}

func (*LiteralExpr) exprNode() {}

// RawExpr is any expression the parser does not evaluate, e.g. NOW().
type RawExpr struct {
	Text string
}

func (*RawExpr) exprNode() {}
