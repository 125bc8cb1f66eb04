package orchestrators

import (
	"context"
	"errors"
	"strings"
	"sync"

	"smartflex/internal/adapters/credential"
	accountStore "smartflex/internal/adapters/storage/account"
	"smartflex/internal/domain/account"
	"smartflex/internal/domain/branch"
	"smartflex/internal/domain/role"
)

// --- Mock account store ---

type mockAccountStore struct {
	mu       sync.Mutex
	accounts map[string]account.Account
	tokens   map[string]account.VerificationToken
	saves    int
}

func newMockAccountStore(seed ...account.Account) *mockAccountStore {
	m := &mockAccountStore{
		accounts: make(map[string]account.Account),
		tokens:   make(map[string]account.VerificationToken),
	}
	for _, a := range seed {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, accountStore.ErrNotFound
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return account.Account{}, accountStore.ErrNotFound
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
	m.saves++
	return nil
}

func (m *mockAccountStore) Count(_ context.Context, f accountStore.ListFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.accounts {
		if f.Role != role.None && a.Role != f.Role {
			continue
		}
		if f.Branch != "" && a.Branch != f.Branch {
			continue
		}
		n++
	}
	return n, nil
}

func (m *mockAccountStore) SaveVerificationToken(_ context.Context, t account.VerificationToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.Token] = t
	return nil
}

func (m *mockAccountStore) GetVerificationToken(_ context.Context, token string) (account.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return account.VerificationToken{}, accountStore.ErrNotFound
	}
	return t, nil
}

func (m *mockAccountStore) onlyToken() account.VerificationToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		return t
	}
	return account.VerificationToken{}
}

// --- Mock branch store ---

type mockBranchStore struct {
	branches map[string]branch.Branch
}

func newMockBranchStore(names ...string) *mockBranchStore {
	m := &mockBranchStore{branches: make(map[string]branch.Branch)}
	for _, n := range names {
		m.branches[strings.ToLower(n)] = branch.Branch{ID: "b-" + n, Name: n}
	}
	return m
}

func (m *mockBranchStore) GetByName(_ context.Context, name string) (branch.Branch, error) {
	b, ok := m.branches[strings.ToLower(name)]
	if !ok {
		return branch.Branch{}, errors.New("not found")
	}
	return b, nil
}

func (m *mockBranchStore) Save(_ context.Context, b branch.Branch) error {
	key := strings.ToLower(b.Name)
	if existing, ok := m.branches[key]; ok && existing.ID != b.ID {
		return errors.New("duplicate")
	}
	m.branches[key] = b
	return nil
}

// --- Mock issuer ---

type mockIssuer struct {
	issued []credential.Subject
	err    error
}

func (m *mockIssuer) Issue(s credential.Subject) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.issued = append(m.issued, s)
	return "token-for-" + s.AccountID, nil
}

func accountFilterRole(r role.Role) accountStore.ListFilter {
	return accountStore.ListFilter{Role: r}
}
