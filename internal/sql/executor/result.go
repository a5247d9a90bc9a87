package executor

import "github.com/tuannm99/fallbackdb/internal/record"

// Result is shaped like a pooled driver's response:
// {rows, rowCount, command?, oid?}.
type Result struct {
	Rows     []record.Row `json:"rows" yaml:"rows"`
	RowCount int          `json:"rowCount" yaml:"rowCount"`
	Command  string       `json:"command,omitempty" yaml:"command,omitempty"`
	OID      int64        `json:"oid,omitempty" yaml:"oid,omitempty"`
}

// Empty is the result of a statement that matched nothing.
func Empty(command string) *Result {
	return &Result{Rows: []record.Row{}, Command: command}
}

func affected(command string, n int) *Result {
	r := Empty(command)
	r.RowCount = n
	return r
}
