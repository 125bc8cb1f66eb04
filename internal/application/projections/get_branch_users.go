package projections

import (
	"context"

	"smartflex/internal/adapters/storage/account"
	"smartflex/internal/application/listutil"
	"smartflex/internal/domain/role"
)

// GetBranchUsersQuery carries query parameters.
type GetBranchUsersQuery struct {
	Branch string
	Role   role.Role // None lists every role
	listutil.Params
}

// BranchUser is one row of the branch user list.
type BranchUser struct {
	ID       string
	Name     string
	Email    string
	Role     role.Role
	Verified bool
}

// GetBranchUsersResult carries the query result.
type GetBranchUsersResult struct {
	Users []BranchUser
	Page  listutil.PageInfo
}

// GetBranchUsersDeps holds dependencies for GetBranchUsers.
type GetBranchUsersDeps struct {
	AccountStore AccountStore
}

// QueryGetBranchUsers lists accounts belonging to one branch, one page at a time.
// PRE: query.Branch is non-empty
// POST: Returns at most PerPage users and pagination metadata
// INVARIANT: Users from other branches are never returned
func QueryGetBranchUsers(ctx context.Context, query GetBranchUsersQuery, deps GetBranchUsersDeps) (GetBranchUsersResult, error) {
	filter := account.ListFilter{Branch: query.Branch, Role: query.Role, Search: query.Search}
	if query.Branch == "" {
		return GetBranchUsersResult{Page: listutil.NewPageInfo(1, query.PerPage, 0)}, nil
	}

	total, err := deps.AccountStore.Count(ctx, filter)
	if err != nil {
		return GetBranchUsersResult{}, err
	}
	page := listutil.NewPageInfo(query.Page, query.PerPage, total)

	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	accounts, err := deps.AccountStore.List(ctx, filter)
	if err != nil {
		return GetBranchUsersResult{}, err
	}

	users := make([]BranchUser, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, BranchUser{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role, Verified: a.Verified})
	}
	return GetBranchUsersResult{Users: users, Page: page}, nil
}
