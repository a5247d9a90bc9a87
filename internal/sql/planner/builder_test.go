package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/fallbackdb/internal/record"
	"github.com/tuannm99/fallbackdb/internal/sql/parser"
)

func build(t *testing.T, sql string, params ...record.Value) Plan {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	p, err := BuildPlan(stmt, params)
	require.NoError(t, err)
	return p
}

func TestBuildPlan_CreateDropAlter(t *testing.T) {
	{
		p := build(t, "CREATE TABLE IF NOT EXISTS users (id SERIAL PRIMARY KEY, name TEXT)")
		plan, ok := p.(*CreateTablePlan)
		require.True(t, ok)
		require.Equal(t, "users", plan.TableName)
		require.Contains(t, plan.Raw, "SERIAL PRIMARY KEY")
	}
	{
		p := build(t, "DROP TABLE IF EXISTS users")
		plan, ok := p.(*DropTablePlan)
		require.True(t, ok)
		require.Equal(t, "users", plan.TableName)
		require.True(t, plan.IfExists)
	}
	{
		p := build(t, "ALTER TABLE users ADD COLUMN age INT")
		plan, ok := p.(*NoopPlan)
		require.True(t, ok)
		require.Equal(t, "ALTER", plan.Command)
	}
}

func TestBuildPlan_InsertBindsByOrdinal(t *testing.T) {
	p := build(t, "INSERT INTO payments (amount, status) VALUES ($2, $1)",
		record.String("pending"), record.Int(50000))

	plan, ok := p.(*InsertPlan)
	require.True(t, ok)
	assert.Equal(t, "payments", plan.TableName)
	assert.Equal(t, []string{"amount", "status"}, plan.Values.Columns())
	assert.Equal(t, record.Int(50000), plan.Values.Lookup("amount"))
	assert.Equal(t, record.String("pending"), plan.Values.Lookup("status"))
}

func TestBuildPlan_InsertNonParamItemsArePositional(t *testing.T) {
	p := build(t, "INSERT INTO logs (level, message, at) VALUES ('warn', $2, NOW())",
		record.String("info"), record.String("hello"))

	plan := p.(*InsertPlan)
	assert.Equal(t, record.String("info"), plan.Values.Lookup("level"))
	assert.Equal(t, record.String("hello"), plan.Values.Lookup("message"))
	// third parameter was never supplied
	v, ok := plan.Values.Get("at")
	require.True(t, ok)
	assert.True(t, v.IsNull())
}

func TestBuildPlan_Select(t *testing.T) {
	p := build(t, "SELECT * FROM payments WHERE status = $1 ORDER BY amount DESC LIMIT $2 OFFSET 1",
		record.String("paid"), record.String("2"))

	plan, ok := p.(*SeqScanPlan)
	require.True(t, ok)
	require.NotNil(t, plan.Filter)
	assert.Equal(t, "status", plan.Filter.Column)
	assert.Equal(t, record.String("paid"), plan.Filter.Value)
	require.NotNil(t, plan.OrderBy)
	assert.True(t, plan.OrderBy.Desc)
	assert.Equal(t, int64(2), plan.Limit)
	assert.Equal(t, int64(1), plan.Offset)
}

func TestBuildPlan_SelectWithoutLimit(t *testing.T) {
	plan := build(t, "SELECT * FROM payments").(*SeqScanPlan)
	assert.Nil(t, plan.Filter)
	assert.Equal(t, int64(-1), plan.Limit)
	assert.Equal(t, int64(0), plan.Offset)

	// an unusable LIMIT parameter means no limit
	plan = build(t, "SELECT * FROM payments LIMIT $1", record.String("many")).(*SeqScanPlan)
	assert.Equal(t, int64(-1), plan.Limit)
}

func TestBuildPlan_SelectWithoutFrom(t *testing.T) {
	plan, ok := build(t, "SELECT 1 AS ok").(*NoopPlan)
	require.True(t, ok)
	assert.Equal(t, "SELECT", plan.Command)
}

func TestBuildPlan_Update(t *testing.T) {
	p := build(t, "UPDATE payments SET status = 'ignored', note = NOW() WHERE id = $3",
		record.String("paid"), record.String("ok"), record.Int(1))

	plan, ok := p.(*UpdatePlan)
	require.True(t, ok)
	require.Len(t, plan.Assigns, 2)
	assert.Equal(t, Assign{Column: "status", Value: record.String("paid")}, plan.Assigns[0])
	assert.Equal(t, Assign{Column: "note", Value: record.String("ok")}, plan.Assigns[1])
	require.NotNil(t, plan.Filter)
	assert.Equal(t, record.Int(1), plan.Filter.Value)
}

func TestBuildPlan_UpdateWithoutWhere(t *testing.T) {
	plan := build(t, "UPDATE payments SET status = $1", record.String("paid")).(*UpdatePlan)
	assert.Nil(t, plan.Filter)
}

func TestBuildPlan_Delete(t *testing.T) {
	plan := build(t, "DELETE FROM payments WHERE id = $1", record.Int(7)).(*DeletePlan)
	require.NotNil(t, plan.Filter)
	assert.Equal(t, "id", plan.Filter.Column)
	assert.Equal(t, record.Int(7), plan.Filter.Value)

	// missing parameter binds NULL
	plan = build(t, "DELETE FROM payments WHERE id = $2", record.Int(7)).(*DeletePlan)
	assert.True(t, plan.Filter.Value.IsNull())
}

type otherStmt struct{ parser.Statement }

func TestBuildPlan_Unsupported(t *testing.T) {
	_, err := BuildPlan(otherStmt{}, nil)
	require.Error(t, err)
}

func TestPredicate_Match(t *testing.T) {
	row := record.NewRow([]string{"id", "status"}, []record.Value{record.Int(3), record.String("paid")})

	assert.True(t, (&Predicate{Column: "id", Value: record.String("3")}).Match(row))
	assert.True(t, (&Predicate{Column: "status", Value: record.String("paid")}).Match(row))
	assert.False(t, (&Predicate{Column: "status", Value: record.String("PAID")}).Match(row))
	assert.True(t, (&Predicate{Column: "missing", Value: record.Null()}).Match(row))
}
