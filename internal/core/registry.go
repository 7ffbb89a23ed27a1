package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registry   = make(map[EntityKind]TableDefinition)
	registryMu sync.RWMutex
)

// Register adds a table definition to the catalog.
// Panics if a table with the same kind is already registered.
func Register(def TableDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Kind]; exists {
		panic(fmt.Sprintf("table already registered: %s", def.Kind))
	}

	if def.Label == "" {
		def.Label = string(def.Kind)
	}

	registry[def.Kind] = def
}

// Get returns a table definition by kind.
// Returns false if not found.
func Get(kind EntityKind) (TableDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[kind]
	return def, ok
}

// Ordered returns all registered definitions in load order:
// by rank, then by order, then by kind.
func Ordered() []TableDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]TableDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Rank != result[j].Rank {
			return result[i].Rank < result[j].Rank
		}
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Kind < result[j].Kind
	})

	return result
}

// Stages groups the ordered definitions by rank. Tables inside one stage do
// not reference each other; every stage depends only on earlier stages.
func Stages() [][]TableDefinition {
	var stages [][]TableDefinition
	for _, def := range Ordered() {
		n := len(stages)
		if n > 0 && stages[n-1][0].Rank == def.Rank {
			stages[n-1] = append(stages[n-1], def)
			continue
		}
		stages = append(stages, []TableDefinition{def})
	}
	return stages
}

// TableCount returns the number of registered tables.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered tables.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[EntityKind]TableDefinition)
}

// ValidateCatalog checks the registered definitions for internal consistency.
// Returns an error describing all problems found.
func ValidateCatalog() error {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var errs []string

	for _, kind := range Kinds {
		if _, ok := registry[kind]; !ok {
			errs = append(errs, fmt.Sprintf("%s: not registered", kind))
		}
	}

	for kind, def := range registry {
		errs = append(errs, validateDefinition(kind, def)...)
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("invalid table catalog:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func validateDefinition(kind EntityKind, def TableDefinition) []string {
	var errs []string

	if def.SourceTable == "" {
		errs = append(errs, fmt.Sprintf("%s: missing source table", kind))
	}
	if def.DestTable == "" {
		errs = append(errs, fmt.Sprintf("%s: missing destination table", kind))
	}
	if def.Build == nil {
		errs = append(errs, fmt.Sprintf("%s: missing record builder", kind))
	}
	if len(def.FieldSpecs) == 0 {
		errs = append(errs, fmt.Sprintf("%s: no columns declared", kind))
		return errs
	}
	if def.FieldSpecs[0].Column != "id" || def.FieldSpecs[0].Type != FieldUUID {
		errs = append(errs, fmt.Sprintf("%s: first column must be the uuid id", kind))
	}

	seen := make(map[string]bool, len(def.FieldSpecs))
	for _, spec := range def.FieldSpecs {
		if spec.Column == "" {
			errs = append(errs, fmt.Sprintf("%s: column with empty name", kind))
			continue
		}
		if seen[spec.Column] {
			errs = append(errs, fmt.Sprintf("%s: duplicate column %q", kind, spec.Column))
		}
		seen[spec.Column] = true
	}

	return errs
}
