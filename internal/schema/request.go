package schema

// Entry is one requested schema: the name of its declaration in the
// sources and the public type name to emit.
type Entry struct {
	Schema string
	Type   string
}

// Request is an ordered set of entries. Order determines output order.
type Request struct {
	entries []Entry
	index   map[string]int
}

// NewRequest creates a request from entries, applying Set to each in turn.
func NewRequest(entries ...Entry) *Request {
	r := &Request{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		r.Set(e.Schema, e.Type)
	}
	return r
}

// Set adds schema → typeName. Setting an existing schema replaces its type
// name and keeps its position.
func (r *Request) Set(schema, typeName string) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[schema]; ok {
		r.entries[i].Type = typeName
		return
	}
	r.index[schema] = len(r.entries)
	r.entries = append(r.entries, Entry{Schema: schema, Type: typeName})
}

// Entries returns the entries in request order.
func (r *Request) Entries() []Entry {
	if r == nil {
		return nil
	}
	return r.entries
}

// Len returns the number of entries.
func (r *Request) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
