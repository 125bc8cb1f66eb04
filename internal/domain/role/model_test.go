package role_test

import (
	"testing"

	"smartflex/internal/domain/role"
)

// TestParse tests conversion of raw strings into roles.
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    role.Role
		wantErr bool
	}{
		{name: "member", in: "member", want: role.Member},
		{name: "trainer", in: "trainer", want: role.Trainer},
		{name: "admin", in: "admin", want: role.Admin},
		{name: "superadmin", in: "superadmin", want: role.Superadmin},
		{name: "mixed case and spaces", in: "  SuperAdmin ", want: role.Superadmin},
		{name: "empty is absent", in: "", want: role.None},
		{name: "unknown", in: "coach", want: role.None, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := role.Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestRole_Valid tests that only the four known roles are valid.
func TestRole_Valid(t *testing.T) {
	for _, r := range role.All() {
		if !r.Valid() {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if role.None.Valid() {
		t.Error("absent role must not be valid")
	}
	if role.Role("owner").Valid() {
		t.Error("unknown role must not be valid")
	}
}

// TestSet tests membership and ordering of role sets.
func TestSet(t *testing.T) {
	s := role.NewSet(role.Superadmin, role.Member, role.None, role.Member)
	if s.Len() != 2 {
		t.Fatalf("expected 2 roles, got %d", s.Len())
	}
	if !s.Contains(role.Member) || !s.Contains(role.Superadmin) {
		t.Error("expected member and superadmin in set")
	}
	if s.Contains(role.None) {
		t.Error("absent role must never be a member")
	}
	got := s.Roles()
	if len(got) != 2 || got[0] != role.Member || got[1] != role.Superadmin {
		t.Errorf("unexpected order: %v", got)
	}
}

// TestRole_Label tests display names.
func TestRole_Label(t *testing.T) {
	if role.Superadmin.Label() != "Super Admin" {
		t.Errorf("unexpected label %q", role.Superadmin.Label())
	}
	if role.None.Label() != "" {
		t.Error("absent role has no label")
	}
}
