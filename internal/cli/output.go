package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tuannm99/fallbackdb/internal/record"
	"github.com/tuannm99/fallbackdb/internal/sql/executor"
)

// ValidOutputs defines the allowed --output values.
var ValidOutputs = []string{"table", "json", "yaml"}

// WriteResult renders res in one of ValidOutputs.
func WriteResult(w io.Writer, res *executor.Result, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		writeTable(w, res)
		return nil
	default:
		return fmt.Errorf("invalid output %q: must be one of %v", output, ValidOutputs)
	}
}

// columnsOf returns every column that appears in rows, in first-seen order.
func columnsOf(rows []record.Row) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for _, c := range r.Columns() {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}

func writeTable(w io.Writer, res *executor.Result) {
	if len(res.Rows) == 0 {
		if res.Command != "" {
			fmt.Fprintf(w, "%s %d\n", res.Command, res.RowCount)
		} else {
			fmt.Fprintf(w, "(%d rows)\n", res.RowCount)
		}
		return
	}

	cols := columnsOf(res.Rows)
	cells := make([][]string, len(res.Rows))
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	for r, row := range res.Rows {
		cells[r] = make([]string, len(cols))
		for i, c := range cols {
			s := row.Lookup(c).String()
			cells[r][i] = s
			widths[i] = max(widths[i], len(s))
		}
	}

	printRow := func(values []string) {
		for i, v := range values {
			if i > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprint(w, v+strings.Repeat(" ", widths[i]-len(v)))
		}
		fmt.Fprintln(w)
	}

	printRow(cols)
	for i := range cols {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", widths[i]))
	}
	fmt.Fprintln(w)
	for _, row := range cells {
		printRow(row)
	}
	fmt.Fprintf(w, "(%d rows)\n", res.RowCount)
}

// ParseParam turns a command-line argument into a parameter value using
// YAML scalar rules: 42 is an int, 4.2 a float, true a bool, null is NULL
// and anything else is text.
func ParseParam(s string) any {
	if strings.TrimSpace(s) == "" {
		return s
	}
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	switch v.(type) {
	case nil, bool, int, int64, uint64, float64, string:
		return v
	default:
		return s
	}
}
