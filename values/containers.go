package values

import "fmt"

// OrderedMap is the codec's representation of Map: spec.md §4.1 requires
// an ordered key/value container with identity (ref strategy), which Go's
// built-in map cannot provide (it has neither stable iteration order nor
// reference identity distinct from its contents).
type OrderedMap struct {
	keys []any
	vals []any
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap { return &OrderedMap{} }

// Set inserts or updates key's value, preserving key's original position
// on update.
func (m *OrderedMap) Set(key, val any) {
	for i, k := range m.keys {
		if k == key {
			m.vals[i] = val
			return
		}
	}
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, val)
}

// Get returns the value for key, and whether it was present.
func (m *OrderedMap) Get(key any) (any, bool) {
	for i, k := range m.keys {
		if k == key {
			return m.vals[i], true
		}
	}
	return nil, false
}

// Delete removes key, if present.
func (m *OrderedMap) Delete(key any) {
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			m.vals = append(m.vals[:i], m.vals[i+1:]...)
			return
		}
	}
}

// Clear removes every entry, keeping the map's identity.
func (m *OrderedMap) Clear() {
	m.keys = nil
	m.vals = nil
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int { return len(m.keys) }

// Entries returns the map's [key, value] pairs in insertion order. The
// returned slice is a copy; mutating it does not affect m.
func (m *OrderedMap) Entries() [][2]any {
	out := make([][2]any, len(m.keys))
	for i := range m.keys {
		out[i] = [2]any{m.keys[i], m.vals[i]}
	}
	return out
}

// OrderedSet is the codec's representation of Set: an identity-bearing,
// insertion-ordered container of unique values.
type OrderedSet struct {
	vals []any
}

// NewOrderedSet returns an empty OrderedSet.
func NewOrderedSet() *OrderedSet { return &OrderedSet{} }

// Add inserts v if not already present.
func (s *OrderedSet) Add(v any) {
	if s.Has(v) {
		return
	}
	s.vals = append(s.vals, v)
}

// Has reports whether v is a member.
func (s *OrderedSet) Has(v any) bool {
	for _, existing := range s.vals {
		if existing == v {
			return true
		}
	}
	return false
}

// Delete removes v, if present.
func (s *OrderedSet) Delete(v any) {
	for i, existing := range s.vals {
		if existing == v {
			s.vals = append(s.vals[:i], s.vals[i+1:]...)
			return
		}
	}
}

// Clear removes every member, keeping the set's identity.
func (s *OrderedSet) Clear() { s.vals = nil }

// Len returns the number of members.
func (s *OrderedSet) Len() int { return len(s.vals) }

// Values returns the set's members in insertion order. The returned slice
// is a copy.
func (s *OrderedSet) Values() []any {
	out := make([]any, len(s.vals))
	copy(out, s.vals)
	return out
}

// ErrorValue is the codec's representation of Error: an exception
// instance carrying a name, message, optional stack trace, optional
// cause, and arbitrary custom fields attached by the origin system.
type ErrorValue struct {
	Name         string
	Message      string
	Stack        string
	Cause        any
	CustomFields map[string]any
}

func (e *ErrorValue) Error() string {
	if e.Name == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// RegExp is the codec's representation of RegExp: a pattern and flag
// string pair. The codec treats these as opaque data (it never compiles
// or executes the pattern) since flag semantics such as "g" or "y" have
// no equivalent in Go's RE2-based regexp package.
type RegExp struct {
	Pattern string
	Flags   string
}
