package core

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/JonMunkholm/rowmap/internal/mapper"
	"github.com/JonMunkholm/rowmap/internal/table"
)

// Target binds a Go type to the mapper so that query definitions can refer to
// it without type parameters. Create one with Bind.
type Target struct {
	Name string

	typ        reflect.Type
	mapAll     func(*table.ResultSet) (any, error)
	mapOne     func(*table.ResultSet) (any, error)
	mapGrouped func(*table.ResultSet, string) (any, error)
}

// Bind creates a Target for T, a struct type or a pointer to one.
//
//	core.RegisterTarget(core.Bind[targets.Customer]("customer"))
func Bind[T any](name string) Target {
	return Target{
		Name: name,
		typ:  reflect.TypeFor[T](),
		mapAll: func(rs *table.ResultSet) (any, error) {
			return mapper.MapAll[T](rs)
		},
		mapOne: func(rs *table.ResultSet) (any, error) {
			return mapper.MapOne[T](rs)
		},
		mapGrouped: func(rs *table.ResultSet, field string) (any, error) {
			return mapper.MapGrouped[any, T](rs, field)
		},
	}
}

// Valid reports whether the target was created by Bind.
func (t Target) Valid() bool {
	return t.typ != nil && t.mapAll != nil
}

// Type returns the bound Go type.
func (t Target) Type() reflect.Type {
	return t.typ
}

// HasField reports whether the bound type has an exported field called name.
func (t Target) HasField(name string) bool {
	typ := t.typ
	if typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return false
	}
	sf, ok := typ.FieldByName(name)
	return ok && sf.IsExported()
}

// Map maps rs according to shape.
func (t Target) Map(rs *table.ResultSet, shape Shape, groupBy string) (any, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: target %q is not bound", ErrInvalidDefinition, t.Name)
	}

	switch shape {
	case ShapeOne:
		return t.mapOne(rs)
	case ShapeGrouped:
		return t.mapGrouped(rs, groupBy)
	default:
		return t.mapAll(rs)
	}
}

var (
	targets   = make(map[string]Target)
	targetsMu sync.RWMutex
)

// RegisterTarget makes a target available to query definition files by name.
// Panics if a target with the same name is already registered.
func RegisterTarget(t Target) {
	targetsMu.Lock()
	defer targetsMu.Unlock()

	if !t.Valid() || t.Name == "" {
		panic("target must be created with Bind and have a name")
	}
	if _, exists := targets[t.Name]; exists {
		panic(fmt.Sprintf("target already registered: %s", t.Name))
	}
	targets[t.Name] = t
}

// LookupTarget returns a registered target by name.
func LookupTarget(name string) (Target, bool) {
	targetsMu.RLock()
	defer targetsMu.RUnlock()

	t, ok := targets[name]
	return t, ok
}

// TargetNames returns the names of all registered targets, sorted.
func TargetNames() []string {
	targetsMu.RLock()
	defer targetsMu.RUnlock()

	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClearTargets removes all registered targets.
// Primarily useful for testing.
func ClearTargets() {
	targetsMu.Lock()
	defer targetsMu.Unlock()
	targets = make(map[string]Target)
}
