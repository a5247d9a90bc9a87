package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tuannm99/fallbackdb/internal/record"
)

var (
	ErrEmptyStatement = errors.New("parser: empty statement")
	ErrUnsupported    = errors.New("parser: unsupported statement")
)

// Parse parses a single SQL statement into an AST.
// The trailing ';' is optional. Statements whose leading keyword is outside
// CREATE TABLE, INSERT, SELECT, UPDATE, DELETE, DROP and ALTER fail with
// ErrUnsupported.
func Parse(sql string) (Statement, error) {
	s := strings.TrimSpace(sql)

	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	for len(toks) > 0 && toks[len(toks)-1].is(tokPunct, ";") {
		toks = toks[:len(toks)-1]
	}
	if len(toks) == 0 {
		return nil, ErrEmptyStatement
	}

	c := &cursor{toks: toks}
	switch {
	case c.peekKeywords("CREATE", "TABLE"):
		return parseCreateTable(c, s)
	case c.peekKeywords("INSERT"):
		return parseInsert(c)
	case c.peekKeywords("SELECT"):
		return parseSelect(c)
	case c.peekKeywords("UPDATE"):
		return parseUpdate(c)
	case c.peekKeywords("DELETE"):
		return parseDelete(c)
	case c.peekKeywords("DROP"):
		return parseDrop(c)
	case c.peekKeywords("ALTER"):
		return &AlterStmt{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, toks[0].text)
	}
}

func parseCreateTable(c *cursor, raw string) (Statement, error) {
	// "CREATE TABLE [IF NOT EXISTS] users (id SERIAL PRIMARY KEY, name TEXT, ...)"
	c.pos += 2
	stmt := &CreateTableStmt{Raw: raw}
	stmt.IfNotExists = c.acceptKeywords("IF", "NOT", "EXISTS")

	name, err := c.parseName()
	if err != nil {
		return nil, fmt.Errorf("invalid CREATE TABLE syntax: %w", err)
	}
	stmt.TableName = name

	if c.acceptPunct("(") {
		for _, item := range c.splitTop(nil) {
			if len(item) == 0 {
				continue
			}
			first := item[0]
			switch {
			case first.kind == tokQuotedIdent:
				stmt.Columns = append(stmt.Columns, first.text)
			case first.kind == tokIdent && !isConstraintKeyword(first.text):
				stmt.Columns = append(stmt.Columns, first.text)
			}
		}
	}
	return stmt, nil
}

func parseDrop(c *cursor) (Statement, error) {
	// "DROP TABLE [IF EXISTS] users [CASCADE]"
	c.pos++
	if !c.acceptKeywords("TABLE") {
		return nil, fmt.Errorf("%w: only DROP TABLE is supported", ErrUnsupported)
	}
	stmt := &DropTableStmt{IfExists: c.acceptKeywords("IF", "EXISTS")}

	name, err := c.parseName()
	if err != nil {
		return nil, fmt.Errorf("invalid DROP TABLE syntax: %w", err)
	}
	stmt.TableName = name
	return stmt, nil
}

func parseInsert(c *cursor) (Statement, error) {
	// "INSERT INTO payments (amount, status) VALUES ($1, $2) [RETURNING *]"
	c.pos++
	if !c.acceptKeywords("INTO") {
		return nil, fmt.Errorf("invalid INSERT syntax: missing INTO")
	}

	name, err := c.parseName()
	if err != nil {
		return nil, fmt.Errorf("invalid INSERT syntax: %w", err)
	}
	stmt := &InsertStmt{TableName: name}

	if c.acceptPunct("(") {
		for {
			col, err := c.parseName()
			if err != nil {
				return nil, fmt.Errorf("invalid INSERT column list: %w", err)
			}
			stmt.Columns = append(stmt.Columns, col)
			if c.acceptPunct(",") {
				continue
			}
			if c.acceptPunct(")") {
				break
			}
			return nil, fmt.Errorf("invalid INSERT column list near %q", c.peek().text)
		}
	}

	if c.acceptKeywords("VALUES") {
		if !c.acceptPunct("(") {
			return nil, fmt.Errorf("invalid INSERT values syntax")
		}
		for _, item := range c.splitTop(nil) {
			stmt.Values = append(stmt.Values, exprFromTokens(item))
		}
	}

	// ON CONFLICT, RETURNING and multi-row VALUES tails are ignored.
	return stmt, nil
}

func parseSelect(c *cursor) (Statement, error) {
	// "SELECT <anything> [FROM t [WHERE col = $n] [ORDER BY col [ASC|DESC]] [LIMIT n] [OFFSET n]]"
	stmt := &SelectStmt{}

	from := c.findTop(c.pos+1, "FROM")
	if from < 0 {
		return stmt, nil
	}
	c.pos = from + 1

	name, err := c.parseName()
	if err != nil {
		return nil, fmt.Errorf("invalid SELECT syntax: %w", err)
	}
	stmt.TableName = name
	rest := c.pos

	if i := c.findTop(rest, "WHERE"); i >= 0 {
		stmt.Where = parseWhereEq(c.at(i + 1))
	}
	if i := c.findTop(rest, "ORDER", "BY"); i >= 0 {
		stmt.OrderBy = parseOrderBy(c.at(i + 2))
	}
	if i := c.findTop(rest, "LIMIT"); i >= 0 {
		stmt.Limit = parseCount(c.at(i + 1))
	}
	if i := c.findTop(rest, "OFFSET"); i >= 0 {
		stmt.Offset = parseCount(c.at(i + 1))
	}
	return stmt, nil
}

func parseUpdate(c *cursor) (Statement, error) {
	// "UPDATE t SET a = $1, b = $2 [WHERE id = $3] [RETURNING *]"
	c.pos++
	name, err := c.parseName()
	if err != nil {
		return nil, fmt.Errorf("invalid UPDATE syntax: %w", err)
	}
	if !c.acceptKeywords("SET") {
		return nil, fmt.Errorf("invalid UPDATE syntax: missing SET")
	}

	stmt := &UpdateStmt{TableName: name}
	items := c.splitTop(func(t token) bool {
		return t.isKeyword("WHERE") || t.isKeyword("FROM") || t.isKeyword("RETURNING")
	})
	for _, item := range items {
		ic := &cursor{toks: item}
		col, err := ic.parseName()
		if err != nil {
			return nil, fmt.Errorf("invalid assignment: %w", err)
		}
		if !ic.next().is(tokOperator, "=") {
			return nil, fmt.Errorf("invalid assignment for column %q", col)
		}
		stmt.Assignments = append(stmt.Assignments, Assignment{
			Column: col,
			Value:  exprFromTokens(ic.toks[ic.pos:]),
		})
	}
	if len(stmt.Assignments) == 0 {
		return nil, fmt.Errorf("invalid UPDATE syntax: empty SET")
	}

	if i := c.findTop(c.pos, "WHERE"); i >= 0 {
		stmt.Where = parseWhereEq(c.at(i + 1))
	}
	return stmt, nil
}

func parseDelete(c *cursor) (Statement, error) {
	// "DELETE FROM t [WHERE col = $n]"
	c.pos++
	if !c.acceptKeywords("FROM") {
		return nil, fmt.Errorf("invalid DELETE syntax: missing FROM")
	}
	name, err := c.parseName()
	if err != nil {
		return nil, fmt.Errorf("invalid DELETE syntax: %w", err)
	}

	stmt := &DeleteStmt{TableName: name}
	if i := c.findTop(c.pos, "WHERE"); i >= 0 {
		stmt.Where = parseWhereEq(c.at(i + 1))
	}
	return stmt, nil
}

// parseWhereEq recognizes "<col> = $<n>" as the first condition. Anything
// else yields nil, i.e. no usable filter.
func parseWhereEq(c *cursor) *WhereEq {
	col, err := c.parseName()
	if err != nil {
		return nil
	}
	if !c.next().is(tokOperator, "=") {
		return nil
	}
	p, ok := paramOf(c.next())
	if !ok {
		return nil
	}
	return &WhereEq{Column: col, Param: p}
}

func parseOrderBy(c *cursor) *OrderBy {
	col, err := c.parseName()
	if err != nil {
		return nil
	}
	ob := &OrderBy{Column: col}
	switch {
	case c.acceptKeywords("DESC"):
		ob.Desc = true
	case c.acceptKeywords("ASC"):
	}
	return ob
}

// parseCount reads the operand of LIMIT/OFFSET: an integer or a parameter.
func parseCount(c *cursor) Expr {
	t := c.next()
	if p, ok := paramOf(t); ok {
		return p
	}
	if t.kind != tokNumber {
		return nil
	}
	n, err := strconv.ParseInt(t.text, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &LiteralExpr{Value: record.Int(n)}
}

func exprFromTokens(ts []token) Expr {
	if len(ts) == 1 {
		if p, ok := paramOf(ts[0]); ok {
			return p
		}
	}
	if v, ok := parseLiteral(ts); ok {
		return &LiteralExpr{Value: v}
	}
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.text
	}
	return &RawExpr{Text: strings.Join(parts, " ")}
}

func paramOf(t token) (*ParamExpr, bool) {
	if t.kind != tokParam {
		return nil, false
	}
	n, err := strconv.Atoi(t.text[1:])
	if err != nil || n < 1 {
		return nil, false
	}
	return &ParamExpr{Index: n - 1}, true
}

func parseLiteral(ts []token) (record.Value, bool) {
	neg := false
	if len(ts) == 2 && ts[0].is(tokOperator, "-") && ts[1].kind == tokNumber {
		neg = true
		ts = ts[1:]
	}
	if len(ts) != 1 {
		return record.Value{}, false
	}

	t := ts[0]
	switch t.kind {
	case tokString:
		return record.String(strings.ReplaceAll(t.text[1:len(t.text)-1], "''", "'")), true
	case tokNumber:
		text := t.text
		if neg {
			text = "-" + text
		}
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return record.Int(i), true
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return record.Float(f), true
		}
		return record.Value{}, false
	case tokIdent:
		switch strings.ToUpper(t.text) {
		case "NULL":
			return record.Null(), true
		case "TRUE":
			return record.Bool(true), true
		case "FALSE":
			return record.Bool(false), true
		}
	}
	return record.Value{}, false
}

func isConstraintKeyword(s string) bool {
	switch strings.ToUpper(s) {
	case "CONSTRAINT", "PRIMARY", "UNIQUE", "FOREIGN", "CHECK", "EXCLUDE", "LIKE":
		return true
	default:
		return false
	}
}
