package value

// Map is an insertion-order preserving string-keyed mapping, the
// backbone of node data and directive/adjust-rule payloads. It is a
// linear slice of key/value items rather than a Go map: node data
// must keep YAML declaration order through merges and back out to
// disk, and the maps involved are small enough that a linear scan
// wins over hashing anyway.
type Map struct {
	items []mapItem
}

type mapItem struct {
	Key   string
	Value Value
}

// NewMap returns an empty ordered map.
func NewMap() *Map {
	return &Map{}
}

// NewMapWithItems builds a map from already-ordered key/value pairs,
// e.g. as produced by the loader while decoding a YAML mapping.
func NewMapWithItems(keys []string, values []Value) *Map {
	m := &Map{items: make([]mapItem, 0, len(keys))}
	for i, k := range keys {
		m.Set(k, values[i])
	}
	return m
}

// Set inserts or updates key's value, preserving its original position
// on update and appending on first insertion.
func (m *Map) Set(key string, v Value) {
	for i, item := range m.items {
		if item.Key == key {
			m.items[i].Value = v
			return
		}
	}
	m.items = append(m.items, mapItem{key, v})
}

// Get returns the value stored under key and whether it was present.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	for _, item := range m.items {
		if item.Key == key {
			return item.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key if present, reporting whether it was removed.
func (m *Map) Delete(key string) bool {
	for i, item := range m.items {
		if item.Key == key {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true
		}
	}
	return false
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.items))
	for i, item := range m.items {
		keys[i] = item.Key
	}
	return keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.items)
}

// Iterate calls fn for every key/value pair in insertion order.
func (m *Map) Iterate(fn func(key string, v Value)) {
	if m == nil {
		return
	}
	for _, item := range m.items {
		fn(item.Key, item.Value)
	}
}

// IterateErr is like Iterate but stops and propagates the first error.
func (m *Map) IterateErr(fn func(key string, v Value) error) error {
	if m == nil {
		return nil
	}
	for _, item := range m.items {
		if err := fn(item.Key, item.Value); err != nil {
			return err
		}
	}
	return nil
}

func (*Map) sealed()    {}
func (*Map) Kind() Kind { return KindMap }

func (m *Map) String() string {
	out := "{"
	for i, item := range m.items {
		if i > 0 {
			out += ", "
		}
		out += item.Key + ": " + item.Value.String()
	}
	return out + "}"
}

// Clone performs a deep copy of the map and all contained values. This
// is the building block for the inheritance point: a child's starting
// data is Clone() of its parent's data.
func (m *Map) Clone() *Map {
	if m == nil {
		return NewMap()
	}
	out := &Map{items: make([]mapItem, len(m.items))}
	for i, item := range m.items {
		out.items[i] = mapItem{item.Key, DeepCopy(item.Value)}
	}
	return out
}

// SetEqual reports whether two maps hold the same set of key/value
// pairs, ignoring insertion order (semantic equality).
func (m *Map) SetEqual(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for _, item := range m.items {
		ov, ok := other.Get(item.Key)
		if !ok || !Equal(item.Value, ov) {
			return false
		}
	}
	return true
}

// OrderedEqual reports whether two maps hold the same key/value pairs
// in the same insertion order, the notion of equality used for
// round-trip verification.
func (m *Map) OrderedEqual(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i, item := range m.items {
		if item.Key != other.items[i].Key || !Equal(item.Value, other.items[i].Value) {
			return false
		}
	}
	return true
}

// Merge overwrites/sets every key from other into m in other's
// iteration order, without any operator semantics (plain last-write-
// wins update, used by directive-less plain replace).
func (m *Map) Merge(other *Map) {
	other.Iterate(func(k string, v Value) {
		m.Set(k, v)
	})
}
