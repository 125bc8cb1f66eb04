package projections

import (
	"context"

	"smartflex/internal/adapters/storage/account"
	domainAccount "smartflex/internal/domain/account"
	domainBranch "smartflex/internal/domain/branch"
)

// AccountStore interface for account queries.
type AccountStore interface {
	List(ctx context.Context, filter account.ListFilter) ([]domainAccount.Account, error)
	Count(ctx context.Context, filter account.ListFilter) (int, error)
}

// BranchStore interface for branch queries.
type BranchStore interface {
	List(ctx context.Context) ([]domainBranch.Branch, error)
}
