package model

import (
	"encoding/json"
	"reflect"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Attributes is an insertion-ordered mapping from column name to value.
// Values are scalars, strings or nested mappings (*Attributes or map[string]any).
// The zero value is an empty, ready to use mapping.
type Attributes struct {
	values *orderedmap.OrderedMap[string, any]
}

func NewAttributes() *Attributes {
	return &Attributes{values: orderedmap.New[string, any]()}
}

// AttributesFromMap copies m into a new Attributes. Go maps carry no order, so
// keys are inserted in lexical order to keep the result deterministic.
func AttributesFromMap(m map[string]any) *Attributes {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	attrs := NewAttributes()
	for _, key := range keys {
		attrs.Set(key, m[key])
	}
	return attrs
}

// With sets name to value and returns the receiver, for building literals in order.
func (a *Attributes) With(name string, value any) *Attributes {
	a.Set(name, value)
	return a
}

func (a *Attributes) ordered() *orderedmap.OrderedMap[string, any] {
	if a.values == nil {
		a.values = orderedmap.New[string, any]()
	}
	return a.values
}

func (a *Attributes) Get(name string) (any, bool) {
	if a == nil || a.values == nil {
		return nil, false
	}
	return a.values.Get(name)
}

// Set assigns value to name. Existing keys keep their position.
func (a *Attributes) Set(name string, value any) {
	a.ordered().Set(name, value)
}

func (a *Attributes) Delete(name string) {
	if a == nil || a.values == nil {
		return
	}
	a.values.Delete(name)
}

func (a *Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

func (a *Attributes) Len() int {
	if a == nil || a.values == nil {
		return 0
	}
	return a.values.Len()
}

func (a *Attributes) Keys() []string {
	keys := make([]string, 0, a.Len())
	a.Each(func(name string, _ any) {
		keys = append(keys, name)
	})
	return keys
}

// Each calls fn for every entry in insertion order.
func (a *Attributes) Each(fn func(name string, value any)) {
	if a == nil || a.values == nil {
		return
	}
	for pair := a.values.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Merge copies every entry of other into the receiver, overwriting matching keys.
func (a *Attributes) Merge(other *Attributes) {
	other.Each(func(name string, value any) {
		a.Set(name, value)
	})
}

// Clone returns a deep copy: nested mappings and slices are copied too, so
// writes through the clone never reach the receiver.
func (a *Attributes) Clone() *Attributes {
	clone := NewAttributes()
	a.Each(func(name string, value any) {
		clone.Set(name, cloneValue(value))
	})
	return clone
}

// Map converts the receiver, nested mappings included, into plain Go maps.
func (a *Attributes) Map() map[string]any {
	out := make(map[string]any, a.Len())
	a.Each(func(name string, value any) {
		out[name] = plainValue(value)
	})
	return out
}

// Equal reports whether both mappings hold the same keys with equal values.
func (a *Attributes) Equal(other *Attributes) bool {
	return valuesEqual(a, other)
}

func (a *Attributes) MarshalJSON() ([]byte, error) {
	if a == nil || a.values == nil {
		return []byte("{}"), nil
	}
	return a.values.MarshalJSON()
}

func (a *Attributes) UnmarshalJSON(data []byte) error {
	return a.ordered().UnmarshalJSON(data)
}

var _ json.Marshaler = (*Attributes)(nil)

func cloneValue(value any) any {
	switch v := value.(type) {
	case *Attributes:
		return v.Clone()
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, nested := range v {
			out[key] = cloneValue(nested)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, nested := range v {
			out[i] = cloneValue(nested)
		}
		return out
	default:
		return value
	}
}

func plainValue(value any) any {
	switch v := value.(type) {
	case *Attributes:
		return v.Map()
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, nested := range v {
			out[key] = plainValue(nested)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, nested := range v {
			out[i] = plainValue(nested)
		}
		return out
	default:
		return value
	}
}

// valuesEqual compares two attribute values. Nested mappings are compared by
// content regardless of their concrete representation; anything else falls
// back to reflect.DeepEqual, so 10 and int64(10) are different values.
func valuesEqual(a, b any) bool {
	aMap, aIsMap := asMapping(a)
	bMap, bIsMap := asMapping(b)
	if aIsMap || bIsMap {
		if !aIsMap || !bIsMap || len(aMap) != len(bMap) {
			return false
		}
		for key, aValue := range aMap {
			bValue, ok := bMap[key]
			if !ok || !valuesEqual(aValue, bValue) {
				return false
			}
		}
		return true
	}

	aSlice, aIsSlice := a.([]any)
	bSlice, bIsSlice := b.([]any)
	if aIsSlice && bIsSlice {
		if len(aSlice) != len(bSlice) {
			return false
		}
		for i := range aSlice {
			if !valuesEqual(aSlice[i], bSlice[i]) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

// asMapping exposes the top level of a nested mapping without copying nested values.
func asMapping(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case *Attributes:
		if v == nil {
			return nil, false
		}
		out := make(map[string]any, v.Len())
		v.Each(func(name string, nested any) {
			out[name] = nested
		})
		return out, true
	case map[string]any:
		return v, true
	default:
		return nil, false
	}
}
