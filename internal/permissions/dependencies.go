package permissions

import (
	"fmt"
	"sort"
)

var (
	// ErrUnknownPermission indicates a permission lookup failed because it has not been registered.
	ErrUnknownPermission = fmt.Errorf("permission: unknown permission")
	// ErrCircularDependency signals that a dependency graph contains a cycle.
	ErrCircularDependency = fmt.Errorf("permission: circular dependency detected")
)

// ResolveDependencies returns the full dependency chain for the specified permission.
func ResolveDependencies(permissionID Permission) ([]Permission, error) {
	defs := GetAll()

	root, ok := defs[permissionID]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPermission, permissionID)
	}

	visited := make(map[Permission]bool, len(defs))
	recStack := make(map[Permission]bool, len(defs))
	var resolved []Permission

	var walk func(Permission) error
	walk = func(current Permission) error {
		def, ok := defs[current]
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownPermission, current)
		}
		if recStack[current] {
			return fmt.Errorf("%w at %s", ErrCircularDependency, current)
		}
		if visited[current] {
			return nil
		}

		recStack[current] = true
		for _, dep := range def.DependsOn {
			if err := walk(dep); err != nil {
				return err
			}
		}
		recStack[current] = false
		visited[current] = true

		if current != permissionID {
			resolved = append(resolved, current)
		}

		return nil
	}

	for _, dep := range root.DependsOn {
		if err := walk(dep); err != nil {
			return nil, err
		}
	}

	return resolved, nil
}

// MissingDependencies lists, in lexical order, the dependencies of ids that ids does not contain.
// Unknown identifiers are reported through ErrUnknownPermission.
func MissingDependencies(ids []Permission) ([]Permission, error) {
	have := make(map[Permission]struct{}, len(ids))
	for _, id := range ids {
		have[id] = struct{}{}
	}

	missing := make(map[Permission]struct{})
	for _, id := range ids {
		deps, err := ResolveDependencies(id)
		if err != nil {
			return nil, err
		}
		for _, dep := range deps {
			if _, ok := have[dep]; !ok {
				missing[dep] = struct{}{}
			}
		}
	}

	out := make([]Permission, 0, len(missing))
	for id := range missing {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
