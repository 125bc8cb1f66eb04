package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartflex/internal/domain/branch"
)

// BranchStoreForCreate defines the store interface needed by CreateBranch.
type BranchStoreForCreate interface {
	Save(ctx context.Context, b branch.Branch) error
}

// CreateBranchInput carries input for the orchestrator.
type CreateBranchInput struct {
	Name    string
	Address string
}

// CreateBranchDeps holds dependencies for CreateBranch.
type CreateBranchDeps struct {
	BranchStore BranchStoreForCreate
}

// ExecuteCreateBranch validates and persists a new branch.
// PRE: Name is non-empty
// POST: Branch persisted with a fresh ID
// INVARIANT: Branch names are unique (enforced by store)
func ExecuteCreateBranch(ctx context.Context, input CreateBranchInput, deps CreateBranchDeps) (branch.Branch, error) {
	b := branch.Branch{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(input.Name),
		Address:   strings.TrimSpace(input.Address),
		CreatedAt: time.Now(),
	}
	if err := b.Validate(); err != nil {
		return branch.Branch{}, err
	}
	if err := deps.BranchStore.Save(ctx, b); err != nil {
		return branch.Branch{}, err
	}
	slog.Info("branch_event", "event", "branch_created", "name", b.Name)
	return b, nil
}
