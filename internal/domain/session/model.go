package session

import "smartflex/internal/domain/role"

// Session is the client-held authentication state. Every field may be
// absent independently; the empty string (or role.None) means absent.
type Session struct {
	Credential  string
	Role        role.Role
	Branch      string
	DisplayName string
}

// HasCredential reports whether an opaque credential is present.
// INVARIANT: Session fields are not mutated
func (s Session) HasCredential() bool {
	return s.Credential != ""
}

// HasRole reports whether a role is present.
// INVARIANT: Session fields are not mutated
func (s Session) HasRole() bool {
	return !s.Role.IsAbsent()
}

// IsEmpty reports whether no field at all is present.
// INVARIANT: Session fields are not mutated
func (s Session) IsEmpty() bool {
	return s == Session{}
}

// FirstName returns the first word of the display name, used in greetings.
func (s Session) FirstName() string {
	for i, r := range s.DisplayName {
		if r == ' ' {
			return s.DisplayName[:i]
		}
	}
	return s.DisplayName
}
