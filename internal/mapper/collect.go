package mapper

import (
	"fmt"
	"iter"
	"reflect"
	"slices"

	json "github.com/goccy/go-json"

	"github.com/JonMunkholm/rowmap/internal/table"
)

// MapAll maps every row of rs into a new T, keeping row order.
// The first failing row aborts the whole call. An empty result set yields an
// empty, non-nil slice.
func MapAll[T any](rs *table.ResultSet) ([]T, error) {
	fn, err := rowMapper[T]()
	if err != nil {
		return nil, err
	}
	if rs == nil {
		return []T{}, nil
	}

	out := make([]T, 0, rs.Len())
	for _, row := range rs.Rows() {
		v, err := fn(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// MapGrouped maps every row of rs and groups the results by the value of the
// exported field keyField. Keys keep the order in which they were first seen
// and rows keep their order within a key.
//
// The key field's type must be assignable to K. Pointer keys group by the value
// they point to and the group keeps the first pointer seen. Nil pointer or
// interface keys form their own group.
func MapGrouped[K comparable, T any](rs *table.ResultSet, keyField string) (*Groups[K, T], error) {
	fn, err := rowMapper[T]()
	if err != nil {
		return nil, err
	}

	t := reflect.TypeFor[T]()
	isPtr := t.Kind() == reflect.Pointer
	if isPtr {
		t = t.Elem()
	}

	sf, ok := t.FieldByName(keyField)
	if !ok || !sf.IsExported() {
		return nil, &MappingError{Type: t.String(), Field: keyField, Err: fmt.Errorf("%w: no exported field %q", ErrKeyField, keyField)}
	}

	kt := reflect.TypeFor[K]()
	if !sf.Type.AssignableTo(kt) {
		return nil, &MappingError{Type: t.String(), Field: keyField, Err: fmt.Errorf("%w: field type %s is not assignable to key type %s", ErrKeyField, sf.Type, kt)}
	}

	groups := newGroups[K, T]()
	if rs == nil {
		return groups, nil
	}

	for _, row := range rs.Rows() {
		v, err := fn(row)
		if err != nil {
			return nil, err
		}

		rv := reflect.ValueOf(v)
		if isPtr {
			rv = rv.Elem()
		}
		field, err := rv.FieldByIndexErr(sf.Index)
		if err != nil {
			return nil, &MappingError{Type: t.String(), Field: keyField, Err: fmt.Errorf("%w: %w", ErrKeyField, err)}
		}

		var key K
		reflect.ValueOf(&key).Elem().Set(field)
		if err := groups.add(key, v); err != nil {
			return nil, &MappingError{Type: t.String(), Field: keyField, Err: err}
		}
	}

	return groups, nil
}

// Groups is an insertion-ordered mapping from key to the rows sharing it.
type Groups[K comparable, T any] struct {
	keys []K
	ids  []any
	rows map[any][]T
}

func newGroups[K comparable, T any]() *Groups[K, T] {
	return &Groups[K, T]{rows: make(map[any][]T)}
}

func (g *Groups[K, T]) add(key K, v T) error {
	id, err := groupID(key)
	if err != nil {
		return err
	}
	if existing, ok := g.rows[id]; ok {
		g.rows[id] = append(existing, v)
		return nil
	}
	g.keys = append(g.keys, key)
	g.ids = append(g.ids, id)
	g.rows[id] = []T{v}
	return nil
}

// groupID is the value rows are grouped by: key with interfaces and pointers
// followed to the value they hold. A nil anywhere along the way yields nil.
func groupID(key any) (any, error) {
	v := reflect.ValueOf(key)
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, nil
	}
	if !v.Comparable() {
		return nil, fmt.Errorf("%w: value of type %s cannot be used as a key", ErrKeyField, v.Type())
	}
	return v.Interface(), nil
}

// Keys returns the keys in first-seen order.
func (g *Groups[K, T]) Keys() []K {
	if g == nil {
		return nil
	}
	return slices.Clone(g.keys)
}

// Get returns the rows for key, or nil when the key is absent.
func (g *Groups[K, T]) Get(key K) []T {
	if g == nil {
		return nil
	}
	id, err := groupID(key)
	if err != nil {
		return nil
	}
	return g.rows[id]
}

// Len returns the number of distinct keys.
func (g *Groups[K, T]) Len() int {
	if g == nil {
		return 0
	}
	return len(g.keys)
}

// All iterates over the groups in key order.
func (g *Groups[K, T]) All() iter.Seq2[K, []T] {
	return func(yield func(K, []T) bool) {
		if g == nil {
			return
		}
		for i, k := range g.keys {
			if !yield(k, g.rows[g.ids[i]]) {
				return
			}
		}
	}
}

// Map returns a copy of the groups as a plain map keyed by the first-seen
// keys. Key order is lost.
func (g *Groups[K, T]) Map() map[K][]T {
	out := make(map[K][]T, g.Len())
	for k, rows := range g.All() {
		out[k] = rows
	}
	return out
}

type groupJSON[K comparable, T any] struct {
	Key  K   `json:"key"`
	Rows []T `json:"rows"`
}

// MarshalJSON encodes the groups as an ordered array of {"key", "rows"} objects.
func (g *Groups[K, T]) MarshalJSON() ([]byte, error) {
	out := make([]groupJSON[K, T], 0, g.Len())
	for k, rows := range g.All() {
		out = append(out, groupJSON[K, T]{Key: k, Rows: rows})
	}
	return json.Marshal(out)
}
