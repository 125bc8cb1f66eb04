package branch

import (
	"errors"
	"strings"
	"time"
)

// MaxNameLength bounds branch names.
const MaxNameLength = 80

var (
	ErrEmptyName   = errors.New("branch name cannot be empty")
	ErrNameTooLong = errors.New("branch name cannot exceed 80 characters")
)

// Branch is a gym location. Accounts are scoped to a branch by name.
type Branch struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
}

// Validate checks required fields for a Branch.
// PRE: Branch struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (b *Branch) Validate() error {
	name := strings.TrimSpace(b.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}
