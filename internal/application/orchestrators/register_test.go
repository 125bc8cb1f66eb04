package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"smartflex/internal/adapters/email"
	"smartflex/internal/domain/account"
	"smartflex/internal/domain/role"
)

func registerDeps(store *mockAccountStore, sender email.Sender) RegisterDeps {
	return RegisterDeps{
		AccountStore: store,
		BranchStore:  newMockBranchStore("Andheri"),
		Sender:       sender,
		BaseURL:      "https://gym.example",
	}
}

// TestExecuteRegister_ThenVerify walks the full sign-up flow.
func TestExecuteRegister_ThenVerify(t *testing.T) {
	store := newMockAccountStore()
	sender := email.NewNoopSender()
	ctx := context.Background()

	id, err := ExecuteRegister(ctx, RegisterInput{Name: "Neha J", Email: "neha@x.in", Password: "long-enough", Branch: "Andheri"}, registerDeps(store, sender))
	if err != nil {
		t.Fatalf("ExecuteRegister: %v", err)
	}
	a, _ := store.GetByID(ctx, id)
	if a.Role != role.Member || a.Verified {
		t.Errorf("unexpected account: %+v", a)
	}

	tok := store.onlyToken()
	sent := sender.Sent()
	if len(sent) != 1 || !strings.Contains(sent[0].HTML, "https://gym.example/verify-email?token="+tok.Token) {
		t.Fatalf("verification email not sent with link: %+v", sent)
	}

	// Login is refused until verification.
	_, err = ExecuteLogin(ctx, LoginInput{Email: "neha@x.in", Password: "long-enough"}, LoginDeps{AccountStore: store, Issuer: &mockIssuer{}})
	if !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}

	if err := ExecuteVerifyEmail(ctx, tok.Token, VerifyEmailDeps{AccountStore: store}); err != nil {
		t.Fatalf("ExecuteVerifyEmail: %v", err)
	}
	if _, err := ExecuteLogin(ctx, LoginInput{Email: "neha@x.in", Password: "long-enough"}, LoginDeps{AccountStore: store, Issuer: &mockIssuer{}}); err != nil {
		t.Errorf("login after verify: %v", err)
	}

	// Tokens are single use.
	if err := ExecuteVerifyEmail(ctx, tok.Token, VerifyEmailDeps{AccountStore: store}); !errors.Is(err, account.ErrTokenUsed) {
		t.Errorf("expected ErrTokenUsed, got %v", err)
	}
}

// TestExecuteVerifyEmail_Invalid verifies unknown and expired tokens.
func TestExecuteVerifyEmail_Invalid(t *testing.T) {
	store := newMockAccountStore(account.Account{ID: "a1", Email: "a@b.in", Name: "A", Role: role.Member, Branch: "Andheri"})
	deps := VerifyEmailDeps{AccountStore: store}
	ctx := context.Background()

	if err := ExecuteVerifyEmail(ctx, "", deps); !errors.Is(err, ErrInvalidVerificationToken) {
		t.Errorf("empty: %v", err)
	}
	if err := ExecuteVerifyEmail(ctx, "missing", deps); !errors.Is(err, ErrInvalidVerificationToken) {
		t.Errorf("missing: %v", err)
	}

	old := account.NewVerificationToken("t1", "a1", "stale", time.Now().Add(-72*time.Hour))
	_ = store.SaveVerificationToken(ctx, old)
	if err := ExecuteVerifyEmail(ctx, "stale", deps); !errors.Is(err, account.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

// TestExecuteRegister_UnknownBranch verifies registration needs an existing branch.
func TestExecuteRegister_UnknownBranch(t *testing.T) {
	sender := email.NewNoopSender()
	_, err := ExecuteRegister(context.Background(), RegisterInput{Name: "N", Email: "n@x.in", Password: "long-enough", Branch: "Pune"},
		registerDeps(newMockAccountStore(), sender))
	if !errors.Is(err, ErrUnknownBranch) {
		t.Errorf("expected ErrUnknownBranch, got %v", err)
	}
	if len(sender.Sent()) != 0 {
		t.Error("email sent for failed registration")
	}
}
