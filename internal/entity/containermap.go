package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ContainerMap maps a container number to its items. Insertion order is
// preserved for both keys and items: item order is source row order and the
// reconciliation stage compares positions, and the first container key is
// used as the correlation hint for single-container invoices. A plain Go map
// would lose both guarantees, so JSON marshaling is implemented by hand.
type ContainerMap struct {
	keys  []string
	items map[string][]CanonicalItem
}

func NewContainerMap() *ContainerMap {
	return &ContainerMap{items: make(map[string][]CanonicalItem)}
}

// Append adds items to the container's sequence, registering the key on
// first use.
func (m *ContainerMap) Append(key string, items ...CanonicalItem) {
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = append(m.items[key], items...)
}

// Set replaces the container's sequence, keeping its original position.
func (m *ContainerMap) Set(key string, items []CanonicalItem) {
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = items
}

// Get returns the container's items, or nil when the key is unknown.
func (m *ContainerMap) Get(key string) []CanonicalItem {
	return m.items[key]
}

// Keys returns container numbers in insertion order.
func (m *ContainerMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// First returns the first container number, or "" when the map is empty.
func (m *ContainerMap) First() string {
	if len(m.keys) == 0 {
		return ""
	}
	return m.keys[0]
}

func (m *ContainerMap) Len() int {
	return len(m.keys)
}

// TotalItems counts items across all containers.
func (m *ContainerMap) TotalItems() int {
	n := 0
	for _, key := range m.keys {
		n += len(m.items[key])
	}
	return n
}

// SameKeys reports whether both maps hold exactly the same container-number
// set, ignoring order.
func (m *ContainerMap) SameKeys(other *ContainerMap) bool {
	if other == nil || len(m.keys) != len(other.keys) {
		return false
	}
	for _, key := range m.keys {
		if _, ok := other.items[key]; !ok {
			return false
		}
	}
	return true
}

// MarshalJSON writes a JSON object whose keys appear in insertion order.
func (m *ContainerMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(m.items[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving key order via the token
// stream.
func (m *ContainerMap) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.items = make(map[string][]CanonicalItem)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("containers: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("containers: expected string key, got %v", tok)
		}
		var items []CanonicalItem
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("containers[%s]: %w", key, err)
		}
		m.Set(key, items)
	}
	_, err = dec.Token() // closing brace
	return err
}
