package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"smartflex/internal/domain/account"
)

// AccountStoreForVerify defines the store interface needed by VerifyEmail.
type AccountStoreForVerify interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	GetVerificationToken(ctx context.Context, token string) (account.VerificationToken, error)
	SaveVerificationToken(ctx context.Context, t account.VerificationToken) error
}

// VerifyEmailDeps holds dependencies for VerifyEmail.
type VerifyEmailDeps struct {
	AccountStore AccountStoreForVerify
}

var ErrInvalidVerificationToken = errors.New("verification link is invalid")

// ExecuteVerifyEmail redeems a verification token and marks its account verified.
// PRE: token is the secret from a verification link
// POST: Token is used and the account is verified
func ExecuteVerifyEmail(ctx context.Context, token string, deps VerifyEmailDeps) error {
	if token == "" {
		return ErrInvalidVerificationToken
	}
	tok, err := deps.AccountStore.GetVerificationToken(ctx, token)
	if err != nil {
		return ErrInvalidVerificationToken
	}
	if err := tok.Redeem(time.Now()); err != nil {
		return err
	}

	acct, err := deps.AccountStore.GetByID(ctx, tok.AccountID)
	if err != nil {
		return ErrInvalidVerificationToken
	}
	if err := acct.MarkVerified(); err != nil && !errors.Is(err, account.ErrAlreadyVerified) {
		return err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}
	if err := deps.AccountStore.SaveVerificationToken(ctx, tok); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "email_verified", "email", acct.Email)
	return nil
}
