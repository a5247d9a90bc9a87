package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Row is an ordered mapping from column name to Value.
// Column order is insertion order and survives JSON round trips.
// The zero Row is empty and ready to use.
type Row struct {
	cols []string
	vals map[string]Value
}

// NewRow builds a row from parallel column and value slices. Missing values
// are NULL.
func NewRow(cols []string, vals []Value) Row {
	var r Row
	for i, c := range cols {
		v := Null()
		if i < len(vals) {
			v = vals[i]
		}
		r.Set(c, v)
	}
	return r
}

// Set assigns col. A new column is appended, an existing one keeps its position.
func (r *Row) Set(col string, v Value) {
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, ok := r.vals[col]; !ok {
		r.cols = append(r.cols, col)
	}
	r.vals[col] = v
}

// Get returns the value of col and whether the column is present.
func (r Row) Get(col string) (Value, bool) {
	v, ok := r.vals[col]
	return v, ok
}

// Lookup returns the value of col; an absent column reads as NULL.
func (r Row) Lookup(col string) Value {
	return r.vals[col]
}

func (r Row) Columns() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

func (r Row) Len() int { return len(r.cols) }

// Clone returns a copy that shares no state with r.
func (r Row) Clone() Row {
	out := Row{
		cols: make([]string, len(r.cols)),
		vals: make(map[string]Value, len(r.vals)),
	}
	copy(out.cols, r.cols)
	for k, v := range r.vals {
		out.vals[k] = v
	}
	return out
}

// Map returns the row as a plain map of Go-native values.
func (r Row) Map() map[string]any {
	out := make(map[string]any, len(r.cols))
	for _, c := range r.cols {
		out[c] = r.vals[c].Any()
	}
	return out
}

func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		v, err := r.vals[c].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("record: column %q: %w", c, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("record: decode row: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: decode row: expected object, got %v", tok)
	}

	*r = Row{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("record: decode row: %w", err)
		}
		col, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: decode row: bad key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("record: decode row %q: %w", col, err)
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return err
		}
		r.Set(col, v)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("record: decode row: %w", err)
	}
	return nil
}

// MarshalYAML emits a mapping node so column order is kept.
func (r Row) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, c := range r.cols {
		var val yaml.Node
		x, err := r.vals[c].MarshalYAML()
		if err != nil {
			return nil, err
		}
		if err := val.Encode(x); err != nil {
			return nil, fmt.Errorf("record: yaml column %q: %w", c, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c},
			&val,
		)
	}
	return node, nil
}
