package role

import (
	"errors"
	"strings"
)

// Role is one of the closed set of roles a SmartFlex user can hold.
// The zero value None means the role is absent.
type Role string

const (
	None       Role = ""
	Member     Role = "member"
	Trainer    Role = "trainer"
	Admin      Role = "admin"
	Superadmin Role = "superadmin"
)

// ErrUnknownRole is returned by Parse for strings outside the role set.
var ErrUnknownRole = errors.New("role must be one of: member, trainer, admin, superadmin")

var all = []Role{Member, Trainer, Admin, Superadmin}

// All returns every known role in ascending privilege order.
func All() []Role {
	out := make([]Role, len(all))
	copy(out, all)
	return out
}

// Parse converts s into a Role. Surrounding whitespace and case are ignored.
// PRE: none
// POST: Returns a known role or ErrUnknownRole; empty input yields None, nil
func Parse(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return None, nil
	}
	r := Role(s)
	if !r.Valid() {
		return None, ErrUnknownRole
	}
	return r, nil
}

// Valid reports whether r is a known, non-absent role.
func (r Role) Valid() bool {
	for _, k := range all {
		if r == k {
			return true
		}
	}
	return false
}

// IsAbsent reports whether no role is set.
func (r Role) IsAbsent() bool {
	return r == None
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Label returns the human-readable role name shown in the shell header.
func (r Role) Label() string {
	switch r {
	case Member:
		return "Member"
	case Trainer:
		return "Trainer"
	case Admin:
		return "Admin"
	case Superadmin:
		return "Super Admin"
	}
	return ""
}

// Set is an immutable set of roles.
type Set struct {
	members map[Role]struct{}
}

// NewSet builds a Set from roles, ignoring absent ones.
func NewSet(roles ...Role) Set {
	m := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		if r.IsAbsent() {
			continue
		}
		m[r] = struct{}{}
	}
	return Set{members: m}
}

// Contains reports whether r is in the set.
func (s Set) Contains(r Role) bool {
	_, ok := s.members[r]
	return ok
}

// Len returns the number of roles in the set.
func (s Set) Len() int {
	return len(s.members)
}

// Roles returns the members in ascending privilege order.
func (s Set) Roles() []Role {
	out := make([]Role, 0, len(s.members))
	for _, r := range all {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}
