package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	accountStore "smartflex/internal/adapters/storage/account"
	"smartflex/internal/domain/account"
	"smartflex/internal/domain/branch"
	"smartflex/internal/domain/role"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// BranchLookup resolves a branch by name.
type BranchLookup interface {
	GetByName(ctx context.Context, name string) (branch.Branch, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email    string
	Name     string
	Password string
	Role     string
	Branch   string
	Verified bool
}

// CreateAccountDeps holds dependencies for CreateAccount.
// BranchStore may be nil, in which case the branch name is not checked.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	BranchStore  BranchLookup
}

var (
	ErrEmailAlreadyExists = errors.New("an account with this email already exists")
	ErrUnknownBranch      = errors.New("branch does not exist")
)

// ExecuteCreateAccount coordinates account creation.
// PRE: Valid email, name, password >= 8 chars, known role
// POST: Account created with hashed password
// INVARIANT: Email must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	r, err := role.Parse(input.Role)
	if err != nil || r.IsAbsent() {
		return "", account.ErrInvalidRole
	}

	acct := account.Account{
		ID:        uuid.New().String(),
		Email:     strings.TrimSpace(input.Email),
		Name:      strings.TrimSpace(input.Name),
		Role:      r,
		Branch:    strings.TrimSpace(input.Branch),
		Verified:  input.Verified,
		CreatedAt: time.Now(),
	}
	if err := acct.Validate(); err != nil {
		return "", err
	}

	if _, err := deps.AccountStore.GetByEmail(ctx, acct.Email); err == nil {
		return "", ErrEmailAlreadyExists
	}

	if acct.Branch != "" && deps.BranchStore != nil {
		b, err := deps.BranchStore.GetByName(ctx, acct.Branch)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrUnknownBranch, acct.Branch)
		}
		acct.Branch = b.Name
	}

	if err := acct.SetPassword(input.Password); err != nil {
		return "", err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", r.String(), "branch", acct.Branch)
	return acct.ID, nil
}

// AccountCounter counts accounts matching a filter.
type AccountCounter interface {
	Count(ctx context.Context, filter accountStore.ListFilter) (int, error)
}

// ExecuteSeedSuperadmin creates a verified superadmin if none exists.
// PRE: Database is initialized
// POST: A superadmin exists; nothing changes when one already did
func ExecuteSeedSuperadmin(ctx context.Context, counter AccountCounter, deps CreateAccountDeps, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	n, err := counter.Count(ctx, accountStore.ListFilter{Role: role.Superadmin})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	_, err = ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:    email,
		Name:     "Super Admin",
		Password: password,
		Role:     role.Superadmin.String(),
		Verified: true,
	}, deps)
	if err != nil {
		return err
	}

	slog.Info("auth_event", "event", "superadmin_seeded", "email", email)
	return nil
}
