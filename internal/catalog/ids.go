package catalog

// IDAllocator hands out per-table monotonic integer ids starting at 1.
// Ids are never handed out twice, even after rows are deleted.
type IDAllocator struct {
	next map[string]int64
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: make(map[string]int64)}
}

// Init starts the counter for table at 1 unless it already exists.
func (a *IDAllocator) Init(table string) {
	if _, ok := a.next[table]; !ok {
		a.next[table] = 1
	}
}

// Next returns the next id for table and advances the counter.
func (a *IDAllocator) Next(table string) int64 {
	cur := a.Peek(table)
	a.next[table] = cur + 1
	return cur
}

// Peek returns the id the next call to Next would return.
func (a *IDAllocator) Peek(table string) int64 {
	if n, ok := a.next[table]; ok && n > 0 {
		return n
	}
	return 1
}

// Observe moves the counter past id if needed.
func (a *IDAllocator) Observe(table string, id int64) {
	if id >= a.Peek(table) {
		a.next[table] = id + 1
	}
}

// Counters returns a copy of all counters.
func (a *IDAllocator) Counters() map[string]int64 {
	out := make(map[string]int64, len(a.next))
	for k, v := range a.next {
		out[k] = v
	}
	return out
}
