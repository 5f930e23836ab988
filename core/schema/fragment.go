package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fragment is an insertion-ordered map from property name to descriptor.
// A module contributes one Fragment to the settings schema; an Object holds
// one as its property list. The zero value is an empty fragment and all
// read methods are safe on a nil *Fragment.
type Fragment struct {
	m *orderedmap.OrderedMap[string, Property]
}

// Entry is a name/descriptor pair used to build fragments.
type Entry struct {
	Name     string
	Property Property
}

// NewFragment returns a fragment holding entries in the given order.
// A repeated name keeps its first position and its last descriptor.
func NewFragment(entries ...Entry) *Fragment {
	f := &Fragment{m: orderedmap.New[string, Property]()}
	for _, e := range entries {
		f.Set(e.Name, e.Property)
	}
	return f
}

// P is shorthand for an Entry.
func P(name string, p Property) Entry {
	return Entry{Name: name, Property: p}
}

func (f *Fragment) init() {
	if f.m == nil {
		f.m = orderedmap.New[string, Property]()
	}
}

// Set stores p under name and reports whether an existing descriptor was
// replaced. A replaced name keeps its original position.
func (f *Fragment) Set(name string, p Property) bool {
	f.init()
	_, replaced := f.m.Set(name, p)
	return replaced
}

// Get returns the descriptor stored under name.
func (f *Fragment) Get(name string) (Property, bool) {
	if f == nil || f.m == nil {
		return nil, false
	}
	return f.m.Get(name)
}

// Has reports whether name is present.
func (f *Fragment) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

// Len returns the number of properties.
func (f *Fragment) Len() int {
	if f == nil || f.m == nil {
		return 0
	}
	return f.m.Len()
}

// Keys returns the property names in order.
func (f *Fragment) Keys() []string {
	keys := make([]string, 0, f.Len())
	for name := range f.All() {
		keys = append(keys, name)
	}
	return keys
}

// All iterates the properties in order.
func (f *Fragment) All() iter.Seq2[string, Property] {
	return func(yield func(string, Property) bool) {
		if f == nil || f.m == nil {
			return
		}
		for pair := f.m.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Clone returns a shallow copy; descriptors are shared.
func (f *Fragment) Clone() *Fragment {
	c := NewFragment()
	for name, p := range f.All() {
		c.Set(name, p)
	}
	return c
}

// Validate validates every descriptor in the fragment.
func (f *Fragment) Validate() error {
	return Object{Properties: f}.Validate()
}

// MarshalJSON encodes the fragment as a JSON object, preserving order.
func (f *Fragment) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	for name, p := range f.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if p == nil {
			buf.WriteString("null")
			continue
		}
		val, err := p.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal property %q: %w", name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
