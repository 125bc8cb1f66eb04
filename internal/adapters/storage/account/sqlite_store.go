package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"smartflex/internal/adapters/storage"
	domain "smartflex/internal/domain/account"
	"smartflex/internal/domain/role"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const accountColumns = "id, email, name, password_hash, role, branch, verified, created_at, failed_logins, locked_until"

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE id = ?", id)
	return scanOne(row)
}

// GetByEmail retrieves an Account by email, ignoring case.
// PRE: email is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE email = ? COLLATE NOCASE", strings.TrimSpace(email))
	return scanOne(row)
}

// Save persists an Account (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted; ErrDuplicateEmail if another account owns the email
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, "SELECT id FROM account WHERE email = ? COLLATE NOCASE", entity.Email).Scan(&owner)
	switch {
	case err == nil && owner != entity.ID:
		return ErrDuplicateEmail
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check email: %w", err)
	}

	query := `INSERT INTO account (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email=excluded.email,
			name=excluded.name,
			password_hash=excluded.password_hash,
			role=excluded.role,
			branch=excluded.branch,
			verified=excluded.verified,
			failed_logins=excluded.failed_logins,
			locked_until=excluded.locked_until`

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		strings.TrimSpace(entity.Email),
		entity.Name,
		entity.PasswordHash,
		string(entity.Role),
		entity.Branch,
		boolToInt(entity.Verified),
		storage.FormatTime(entity.CreatedAt),
		entity.FailedLogins,
		storage.FormatTime(entity.LockedUntil),
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return tx.Commit()
}

// Delete removes an Account and its verification tokens.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// List retrieves Accounts matching the filter ordered by name.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	where, args := filter.where()
	query := "SELECT " + accountColumns + " FROM account" + where + " ORDER BY name COLLATE NOCASE, email"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of accounts matching the filter (Limit/Offset ignored).
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account"+where, args...).Scan(&count)
	return count, err
}

// SaveVerificationToken persists a verification token (insert or update).
func (s *SQLiteStore) SaveVerificationToken(ctx context.Context, t domain.VerificationToken) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO verification_token (id, account_id, token, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET used=excluded.used`,
		t.ID, t.AccountID, t.Token, storage.FormatTime(t.ExpiresAt), boolToInt(t.Used), storage.FormatTime(t.CreatedAt),
	)
	return err
}

// GetVerificationToken looks up a token by its secret value.
func (s *SQLiteStore) GetVerificationToken(ctx context.Context, token string) (domain.VerificationToken, error) {
	var (
		t                    domain.VerificationToken
		expiresAt, createdAt string
		used                 int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, account_id, token, expires_at, used, created_at FROM verification_token WHERE token = ?", token,
	).Scan(&t.ID, &t.AccountID, &t.Token, &expiresAt, &used, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.VerificationToken{}, ErrNotFound
	}
	if err != nil {
		return domain.VerificationToken{}, err
	}
	t.ExpiresAt = storage.ParseTime(expiresAt)
	t.CreatedAt = storage.ParseTime(createdAt)
	t.Used = used != 0
	return t, nil
}

func (f ListFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Branch != "" {
		clauses = append(clauses, "branch = ?")
		args = append(args, f.Branch)
	}
	if f.Role != role.None {
		clauses = append(clauses, "role = ?")
		args = append(args, string(f.Role))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		clauses = append(clauses, "(name LIKE ? OR email LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanOne(row *sql.Row) (domain.Account, error) {
	entity, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	return entity, err
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var (
		entity      domain.Account
		roleStr     string
		verified    int
		createdAt   string
		lockedUntil sql.NullString
	)
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.Name,
		&entity.PasswordHash,
		&roleStr,
		&entity.Branch,
		&verified,
		&createdAt,
		&entity.FailedLogins,
		&lockedUntil,
	)
	if err != nil {
		return domain.Account{}, err
	}
	// Rows written by older builds may carry a role outside the enum; treat it as absent.
	entity.Role, _ = role.Parse(roleStr)
	entity.Verified = verified != 0
	entity.CreatedAt = storage.ParseTime(createdAt)
	if lockedUntil.Valid && lockedUntil.String != "" {
		entity.LockedUntil = storage.ParseTime(lockedUntil.String)
	}
	return entity, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
