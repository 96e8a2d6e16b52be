package permissions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

// Set is an unordered collection of permissions.
type Set map[Permission]struct{}

// NewSet builds a set from ids.
func NewSet(ids ...Permission) Set {
	s := make(Set, len(ids))
	s.Add(ids...)
	return s
}

// Add inserts ids into the set.
func (s Set) Add(ids ...Permission) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Has reports whether id is in the set.
func (s Set) Has(id Permission) bool {
	_, ok := s[id]
	return ok
}

// Contains reports whether s is a superset of other.
func (s Set) Contains(other Set) bool {
	for id := range other {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the members of the set in lexical order.
func (s Set) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GetMemberPermissions computes the effective set of a membership. An attached custom role replaces
// the default role table entirely; extra permissions are always added. Identifiers outside the
// catalogue are dropped.
func GetMemberPermissions(member *models.CompanyMember) Set {
	set := make(Set)
	if member == nil {
		return set
	}

	switch {
	case member.CustomRole != nil:
		for _, id := range member.CustomRole.Permissions {
			set.Add(Permission(id))
		}
	case member.DefaultRole != nil:
		set.Add(staticRoleMap[*member.DefaultRole]...)
	}

	for _, id := range member.ExtraPermissions {
		set.Add(Permission(id))
	}

	for id := range set {
		if !IsKnown(id) {
			delete(set, id)
		}
	}
	return set
}

// Parse converts raw identifiers into a deduplicated, sorted permission list, rejecting unknown ids
// and sets that omit a dependency of one of their members.
func Parse(raw []string) ([]Permission, error) {
	set := make(Set, len(raw))
	for _, value := range raw {
		id := Permission(strings.ToUpper(strings.TrimSpace(value)))
		if id == "" {
			continue
		}
		if !IsKnown(id) {
			return nil, fmt.Errorf("%w %q", ErrUnknownPermission, value)
		}
		set.Add(id)
	}

	ids := set.Sorted()
	missing, err := MissingDependencies(ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &MissingDependencyError{Missing: missing}
	}
	return ids, nil
}

// MissingDependencyError lists the dependencies absent from a permission set.
type MissingDependencyError struct {
	Missing []Permission
}

func (e *MissingDependencyError) Error() string {
	names := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		names[i] = string(id)
	}
	return "permission: missing dependencies " + strings.Join(names, ", ")
}

// Strings converts ids to their string form, as stored in JSON columns.
func Strings(ids []Permission) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
