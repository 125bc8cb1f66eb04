package orchestrators

import (
	"context"
	"errors"
	"testing"

	"smartflex/internal/domain/branch"
)

// TestExecuteCreateBranch verifies creation and validation.
func TestExecuteCreateBranch(t *testing.T) {
	store := newMockBranchStore()
	b, err := ExecuteCreateBranch(context.Background(), CreateBranchInput{Name: "  Bandra ", Address: "Hill Road"}, CreateBranchDeps{BranchStore: store})
	if err != nil {
		t.Fatalf("ExecuteCreateBranch: %v", err)
	}
	if b.ID == "" || b.Name != "Bandra" {
		t.Errorf("unexpected branch: %+v", b)
	}
	if _, err := store.GetByName(context.Background(), "bandra"); err != nil {
		t.Errorf("branch not saved: %v", err)
	}

	if _, err := ExecuteCreateBranch(context.Background(), CreateBranchInput{}, CreateBranchDeps{BranchStore: store}); !errors.Is(err, branch.ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}
