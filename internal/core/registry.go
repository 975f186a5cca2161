package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]QueryDefinition)
	registryMu sync.RWMutex
)

// Register adds a query definition to the registry.
// Panics if the definition is invalid or a query with the same key is already
// registered. Use RegisterDefinition to get an error instead.
func Register(def QueryDefinition) {
	if err := RegisterDefinition(def); err != nil {
		panic(err.Error())
	}
}

// RegisterDefinition validates def and adds it to the registry.
func RegisterDefinition(def QueryDefinition) error {
	def, err := normalizeDefinition(def)
	if err != nil {
		return err
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		return fmt.Errorf("%w: query already registered: %s", ErrInvalidDefinition, def.Info.Key)
	}

	registry[def.Info.Key] = def
	return nil
}

// normalizeDefinition fills defaults and checks that def can be run.
func normalizeDefinition(def QueryDefinition) (QueryDefinition, error) {
	if def.Info.Key == "" {
		return def, fmt.Errorf("%w: query key is required", ErrInvalidDefinition)
	}
	if def.SQL == "" {
		return def, fmt.Errorf("%w: query %s has no sql", ErrInvalidDefinition, def.Info.Key)
	}
	if !def.Target.Valid() {
		return def, fmt.Errorf("%w: query %s has no target", ErrInvalidDefinition, def.Info.Key)
	}

	shape, err := ParseShape(string(def.Shape))
	if err != nil {
		return def, fmt.Errorf("query %s: %w", def.Info.Key, err)
	}
	def.Shape = shape

	if def.Shape == ShapeGrouped && !def.Target.HasField(def.GroupBy) {
		return def, fmt.Errorf("%w: query %s groups by %q, which is not an exported field of %s",
			ErrInvalidDefinition, def.Info.Key, def.GroupBy, def.Target.Type())
	}

	params := make([]ParamSpec, len(def.Info.Params))
	for i, p := range def.Info.Params {
		if p.Name == "" {
			return def, fmt.Errorf("%w: query %s parameter %d has no name", ErrInvalidDefinition, def.Info.Key, i+1)
		}
		typ, err := ParseParamType(string(p.Type))
		if err != nil {
			return def, fmt.Errorf("query %s parameter %s: %w", def.Info.Key, p.Name, err)
		}
		params[i] = ParamSpec{Name: p.Name, Type: typ}
	}
	if len(params) > 0 {
		def.Info.Params = params
	}

	if def.Info.Label == "" {
		def.Info.Label = def.Info.Key
	}
	return def, nil
}

// Get returns a query definition by key.
// Returns false if not found.
func Get(key string) (QueryDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered query definitions.
// Sorted by group then by key for consistent ordering.
func All() []QueryDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]QueryDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Info.Group != result[j].Info.Group {
			return result[i].Info.Group < result[j].Info.Group
		}
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// ByGroup returns all query definitions for a specific group.
// Sorted by key for consistent ordering.
func ByGroup(group string) []QueryDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []QueryDefinition
	for _, def := range registry {
		if def.Info.Group == group {
			result = append(result, def)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// Groups returns all unique group names.
// Sorted alphabetically.
func Groups() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	for _, def := range registry {
		seen[def.Info.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}

	sort.Strings(groups)
	return groups
}

// QueryCount returns the number of registered queries.
func QueryCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered queries.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]QueryDefinition)
}
