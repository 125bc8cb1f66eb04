package projections

import (
	"context"

	"smartflex/internal/adapters/storage/account"
	"smartflex/internal/domain/role"
)

// GetTrainersQuery carries query parameters. An empty Branch lists trainers
// from every branch.
type GetTrainersQuery struct {
	Branch string
}

// Trainer is one trainer card.
type Trainer struct {
	Name   string
	Email  string
	Branch string
}

// GetTrainersResult carries the query result.
type GetTrainersResult struct {
	Trainers []Trainer
}

// GetTrainersDeps holds dependencies for GetTrainers.
type GetTrainersDeps struct {
	AccountStore AccountStore
}

// QueryGetTrainers lists trainers, optionally scoped to a branch.
// POST: Returns trainers ordered by name
func QueryGetTrainers(ctx context.Context, query GetTrainersQuery, deps GetTrainersDeps) (GetTrainersResult, error) {
	accounts, err := deps.AccountStore.List(ctx, account.ListFilter{Branch: query.Branch, Role: role.Trainer})
	if err != nil {
		return GetTrainersResult{}, err
	}
	out := make([]Trainer, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, Trainer{Name: a.Name, Email: a.Email, Branch: a.Branch})
	}
	return GetTrainersResult{Trainers: out}, nil
}
