package orchestrators

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"smartflex/internal/adapters/email"
	"smartflex/internal/domain/account"
	"smartflex/internal/domain/role"
)

// AccountStoreForRegister defines the store interface needed by Register.
type AccountStoreForRegister interface {
	AccountStoreForCreate
	GetByID(ctx context.Context, id string) (account.Account, error)
	SaveVerificationToken(ctx context.Context, t account.VerificationToken) error
}

// RegisterInput carries the self-service sign-up form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Branch   string
}

// RegisterDeps holds dependencies for Register.
type RegisterDeps struct {
	AccountStore AccountStoreForRegister
	BranchStore  BranchLookup
	Sender       email.Sender
	BaseURL      string
}

// ExecuteRegister creates an unverified member and emails a verification link.
// PRE: Name, email, password and an existing branch are provided
// POST: Unverified member account and a verification token exist
// INVARIANT: Self-service registration only ever creates members
func ExecuteRegister(ctx context.Context, input RegisterInput, deps RegisterDeps) (string, error) {
	id, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:    input.Email,
		Name:     input.Name,
		Password: input.Password,
		Role:     role.Member.String(),
		Branch:   input.Branch,
	}, CreateAccountDeps{AccountStore: deps.AccountStore, BranchStore: deps.BranchStore})
	if err != nil {
		return "", err
	}

	acct, err := deps.AccountStore.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("reload account: %w", err)
	}

	secret, err := generateToken()
	if err != nil {
		return "", err
	}
	tok := account.NewVerificationToken(uuid.New().String(), id, secret, time.Now())
	if err := deps.AccountStore.SaveVerificationToken(ctx, tok); err != nil {
		return "", fmt.Errorf("save verification token: %w", err)
	}

	req, err := email.VerificationRequest(acct.Email, acct.Name, acct.Branch, email.VerificationLink(deps.BaseURL, secret))
	if err != nil {
		return "", err
	}
	// The account exists either way; a failed send is recoverable by an admin.
	if _, err := deps.Sender.Send(ctx, req); err != nil {
		slog.Error("auth_event", "event", "verification_email_failed", "email", acct.Email, "error", err)
	}

	slog.Info("auth_event", "event", "member_registered", "email", acct.Email, "branch", acct.Branch)
	return id, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
