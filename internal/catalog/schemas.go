package catalog

// SchemaRegistry maps a table name to the CREATE TABLE text it was first
// created with. Declared column types are never enforced.
type SchemaRegistry struct {
	text map[string]string
}

func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{text: make(map[string]string)}
}

// Record stores raw for table if no entry exists and reports whether it did.
func (r *SchemaRegistry) Record(table, raw string) bool {
	if _, ok := r.text[table]; ok {
		return false
	}
	r.text[table] = raw
	return true
}

func (r *SchemaRegistry) Get(table string) (string, bool) {
	s, ok := r.text[table]
	return s, ok
}

func (r *SchemaRegistry) Remove(table string) {
	delete(r.text, table)
}

func (r *SchemaRegistry) All() map[string]string {
	out := make(map[string]string, len(r.text))
	for k, v := range r.text {
		out[k] = v
	}
	return out
}
