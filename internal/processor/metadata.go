package processor

import "github.com/toyz/repomap/internal/properties"

// Entry is one interface-instantiation to entity-type mapping
type Entry = properties.Entry

// Metadata is the insertion-ordered mapping accumulated over a run.
// Overwriting a key keeps its original position.
type Metadata struct {
	index   map[string]int
	entries []Entry
}

// NewMetadata creates an empty mapping
func NewMetadata() *Metadata {
	return &Metadata{index: make(map[string]int)}
}

// Record inserts or overwrites key. When a value is replaced the previous
// value is returned with replaced set.
func (m *Metadata) Record(key, value string) (previous string, replaced bool) {
	if i, ok := m.index[key]; ok {
		previous = m.entries[i].Value
		m.entries[i].Value = value
		return previous, true
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value})
	return "", false
}

// Get returns the value recorded for key
func (m *Metadata) Get(key string) (string, bool) {
	i, ok := m.index[key]
	if !ok {
		return "", false
	}
	return m.entries[i].Value, true
}

// Len returns the number of keys
func (m *Metadata) Len() int {
	return len(m.entries)
}

// Snapshot returns a copy of the entries in order
func (m *Metadata) Snapshot() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
