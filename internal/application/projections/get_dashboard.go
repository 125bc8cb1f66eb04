package projections

import (
	"context"

	"smartflex/internal/adapters/storage/account"
	"smartflex/internal/domain/role"
)

// GetDashboardQuery carries query parameters.
type GetDashboardQuery struct {
	Role   role.Role
	Branch string
}

// GetDashboardResult carries the headline counts shown on the dashboard.
// Counts are only populated for roles that manage people.
type GetDashboardResult struct {
	ShowCounts bool
	Members    int
	Trainers   int
	Branches   int
}

// GetDashboardDeps holds dependencies for GetDashboard.
type GetDashboardDeps struct {
	AccountStore AccountStore
	BranchStore  BranchStore
}

// QueryGetDashboard computes dashboard counts. Admins see their branch,
// superadmins see every branch.
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (GetDashboardResult, error) {
	var scope string
	switch query.Role {
	case role.Admin:
		scope = query.Branch
	case role.Superadmin:
	default:
		return GetDashboardResult{}, nil
	}

	members, err := deps.AccountStore.Count(ctx, account.ListFilter{Branch: scope, Role: role.Member})
	if err != nil {
		return GetDashboardResult{}, err
	}
	trainers, err := deps.AccountStore.Count(ctx, account.ListFilter{Branch: scope, Role: role.Trainer})
	if err != nil {
		return GetDashboardResult{}, err
	}
	res := GetDashboardResult{ShowCounts: true, Members: members, Trainers: trainers}
	if query.Role == role.Superadmin {
		branches, err := deps.BranchStore.List(ctx)
		if err != nil {
			return GetDashboardResult{}, err
		}
		res.Branches = len(branches)
	}
	return res, nil
}
