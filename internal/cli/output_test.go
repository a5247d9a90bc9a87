package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/fallbackdb/internal/record"
	"github.com/tuannm99/fallbackdb/internal/sql/executor"
)

func sampleResult() *executor.Result {
	row := record.NewRow([]string{"id", "status"}, []record.Value{record.Int(1), record.String("paid")})
	return &executor.Result{Rows: []record.Row{row}, RowCount: 1, Command: "SELECT"}
}

func TestWriteResult_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, sampleResult(), "table"))
	assert.Equal(t, "id | status\n---+-------\n1  | paid  \n(1 rows)\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteResult(&buf, &executor.Result{Rows: []record.Row{}, RowCount: 2, Command: "DELETE"}, "table"))
	assert.Equal(t, "DELETE 2\n", buf.String())
}

func TestWriteResult_TableMixedColumns(t *testing.T) {
	a := record.NewRow([]string{"id", "name"}, []record.Value{record.Int(1), record.String("ann")})
	b := record.NewRow([]string{"id", "email"}, []record.Value{record.Int(2), record.String("b@x")})

	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, &executor.Result{Rows: []record.Row{a, b}, RowCount: 2}, "table"))
	assert.Contains(t, buf.String(), "id | name | email")
	assert.Contains(t, buf.String(), "1  | ann  | NULL ")
}

func TestWriteResult_JSONAndYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, sampleResult(), "json"))
	assert.JSONEq(t, `{"rows":[{"id":1,"status":"paid"}],"rowCount":1,"command":"SELECT"}`, buf.String())

	buf.Reset()
	require.NoError(t, WriteResult(&buf, sampleResult(), "yaml"))
	assert.Contains(t, buf.String(), "status: paid")
	assert.Contains(t, buf.String(), "rowCount: 1")
	assert.NotContains(t, buf.String(), "oid")

	assert.Error(t, WriteResult(&buf, sampleResult(), "csv"))
}

func TestParseParam(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"50000", 50000},
		{"12.5", 12.5},
		{"true", true},
		{"null", nil},
		{"pending", "pending"},
		{"", ""},
		{"a: b", "a: b"},
		{"[1, 2]", "[1, 2]"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseParam(tc.in), tc.in)
	}
}
