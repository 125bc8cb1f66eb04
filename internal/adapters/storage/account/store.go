package account

import (
	"context"
	"errors"

	domain "smartflex/internal/domain/account"
	"smartflex/internal/domain/role"
)

// ErrNotFound is returned when no account or token matches.
var ErrNotFound = errors.New("account not found")

// ErrDuplicateEmail is returned when saving a second account with an existing email.
var ErrDuplicateEmail = errors.New("an account with this email already exists")

// Store persists Account state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Account, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	SaveVerificationToken(ctx context.Context, token domain.VerificationToken) error
	GetVerificationToken(ctx context.Context, token string) (domain.VerificationToken, error)
}

// ListFilter carries filtering parameters for List and Count.
// Zero values mean "no filter"; Limit 0 means no limit.
type ListFilter struct {
	Branch string
	Role   role.Role
	Search string // case-insensitive match on name or email
	Limit  int
	Offset int
}
