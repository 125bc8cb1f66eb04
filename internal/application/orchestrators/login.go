package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"smartflex/internal/adapters/credential"
	"smartflex/internal/domain/account"
	"smartflex/internal/domain/session"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// CredentialIssuer signs the bearer credential handed out on login.
type CredentialIssuer interface {
	Issue(s credential.Subject) (string, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	Token   string
	Account account.Account
}

// Session returns the client session populated from the login payload.
func (r LoginResult) Session() session.Session {
	return session.Session{
		Credential:  r.Token,
		Role:        r.Account.Role,
		Branch:      r.Account.Branch,
		DisplayName: r.Account.Name,
	}
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Issuer       CredentialIssuer
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
	ErrNotVerified        = errors.New("email not verified, check your inbox for the verification link")
)

// ExecuteLogin validates credentials and issues a bearer credential.
// PRE: Valid email and password provided
// POST: Returns token and account on success, records failed login on failure
// INVARIANT: Locked and unverified accounts never receive a credential
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	now := time.Now()
	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin(now)
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("auth_event", "event", "record_failed_login", "email", email, "error", err)
		}
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	if !acct.Verified {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "not_verified")
		return LoginResult{}, ErrNotVerified
	}

	if acct.FailedLogins > 0 || !acct.LockedUntil.IsZero() {
		acct.ResetFailedLogins()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return LoginResult{}, err
		}
	}

	token, err := deps.Issuer.Issue(credential.Subject{
		AccountID: acct.ID,
		Role:      acct.Role,
		Branch:    acct.Branch,
		Name:      acct.Name,
	})
	if err != nil {
		return LoginResult{}, err
	}

	slog.Info("auth_event", "event", "login_success", "email", email, "role", acct.Role.String(), "branch", acct.Branch)
	return LoginResult{Token: token, Account: acct}, nil
}
