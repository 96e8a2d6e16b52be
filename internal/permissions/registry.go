package permissions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Permission identifies a company scoped capability.
type Permission string

// Definition describes a permission registered in the catalogue.
type Definition struct {
	ID          Permission
	Module      string
	DependsOn   []Permission
	Description string
}

type permissionRegistry struct {
	mu          sync.RWMutex
	permissions map[Permission]*Definition
}

var globalRegistry = &permissionRegistry{
	permissions: make(map[Permission]*Definition),
}

var (
	errNilDefinition  = errors.New("permission: nil definition")
	errEmptyID        = errors.New("permission: id is required")
	errDuplicateID    = errors.New("permission: already registered")
	errSelfDependency = errors.New("permission: cannot depend on itself")
)

// Register adds a permission definition to the global registry.
func Register(def *Definition) error {
	if def == nil {
		return errNilDefinition
	}

	id := Permission(strings.TrimSpace(string(def.ID)))
	if id == "" {
		return errEmptyID
	}

	cp := cloneDefinition(def)
	cp.ID = id
	cp.Module = strings.TrimSpace(cp.Module)

	depends, err := normaliseIDs(cp.DependsOn, id)
	if err != nil {
		return err
	}
	cp.DependsOn = depends

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.permissions[id]; exists {
		return fmt.Errorf("%w: %s", errDuplicateID, id)
	}

	globalRegistry.permissions[id] = cp
	return nil
}

// Get returns a copy of the permission definition when registered.
func Get(id Permission) (*Definition, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	def, ok := globalRegistry.permissions[id]
	if !ok {
		return nil, false
	}
	return cloneDefinition(def), true
}

// IsKnown reports whether id is part of the registered catalogue.
func IsKnown(id Permission) bool {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	_, ok := globalRegistry.permissions[id]
	return ok
}

// GetAll returns a copy of all registered permissions keyed by ID.
func GetAll() map[Permission]*Definition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make(map[Permission]*Definition, len(globalRegistry.permissions))
	for id, def := range globalRegistry.permissions {
		out[id] = cloneDefinition(def)
	}
	return out
}

// IDs returns every registered permission in lexical order.
func IDs() []Permission {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	ids := make([]Permission, 0, len(globalRegistry.permissions))
	for id := range globalRegistry.permissions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GetByModule gathers permissions registered under the specified module.
func GetByModule(module string) []*Definition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	module = strings.TrimSpace(module)
	var defs []*Definition
	for _, def := range globalRegistry.permissions {
		if def.Module == module {
			defs = append(defs, cloneDefinition(def))
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// ValidateDependencies ensures that all dependencies reference known permissions.
func ValidateDependencies() error {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	for _, def := range globalRegistry.permissions {
		for _, dep := range def.DependsOn {
			if _, ok := globalRegistry.permissions[dep]; !ok {
				return fmt.Errorf("permission: %s depends on unknown permission %s", def.ID, dep)
			}
		}
	}
	return nil
}

func cloneDefinition(def *Definition) *Definition {
	if def == nil {
		return nil
	}

	cp := *def
	if len(def.DependsOn) > 0 {
		cp.DependsOn = append([]Permission(nil), def.DependsOn...)
	}
	return &cp
}

func normaliseIDs(values []Permission, self Permission) ([]Permission, error) {
	if len(values) == 0 {
		return nil, nil
	}

	seen := make(map[Permission]struct{}, len(values))
	var result []Permission

	for _, value := range values {
		value = Permission(strings.TrimSpace(string(value)))
		if value == "" {
			continue
		}
		if value == self {
			return nil, errSelfDependency
		}
		if _, exists := seen[value]; exists {
			continue
		}

		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result, nil
}

// unregister removes a definition. Intended for tests that register temporary permissions.
func unregister(id Permission) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	delete(globalRegistry.permissions, id)
}
