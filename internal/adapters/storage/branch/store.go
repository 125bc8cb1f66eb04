package branch

import (
	"context"
	"errors"

	domain "smartflex/internal/domain/branch"
)

var (
	ErrNotFound      = errors.New("branch not found")
	ErrDuplicateName = errors.New("a branch with this name already exists")
)

// Store persists Branch state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Branch, error)
	GetByName(ctx context.Context, name string) (domain.Branch, error)
	Save(ctx context.Context, value domain.Branch) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Branch, error)
}
