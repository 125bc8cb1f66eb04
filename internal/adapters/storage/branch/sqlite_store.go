package branch

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"smartflex/internal/adapters/storage"
	domain "smartflex/internal/domain/branch"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new branch store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Branch by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Branch, error) {
	return s.getOne(ctx, "SELECT id, name, address, created_at FROM branch WHERE id = ?", id)
}

// GetByName retrieves a Branch by its unique name.
func (s *SQLiteStore) GetByName(ctx context.Context, name string) (domain.Branch, error) {
	return s.getOne(ctx, "SELECT id, name, address, created_at FROM branch WHERE name = ? COLLATE NOCASE", strings.TrimSpace(name))
}

// Save persists a Branch (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted; ErrDuplicateName when the name is taken
func (s *SQLiteStore) Save(ctx context.Context, b domain.Branch) error {
	existing, err := s.GetByName(ctx, b.Name)
	if err == nil && existing.ID != b.ID {
		return ErrDuplicateName
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO branch (id, name, address, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, address=excluded.address`,
		b.ID, strings.TrimSpace(b.Name), b.Address, storage.FormatTime(b.CreatedAt),
	)
	return err
}

// Delete removes a Branch.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM branch WHERE id = ?", id)
	return err
}

// List returns all branches ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Branch, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, address, created_at FROM branch ORDER BY name COLLATE NOCASE")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Branch
	for rows.Next() {
		b, err := scanBranch(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) getOne(ctx context.Context, query string, arg any) (domain.Branch, error) {
	b, err := scanBranch(s.db.QueryRowContext(ctx, query, arg).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Branch{}, ErrNotFound
	}
	return b, err
}

func scanBranch(scan func(dest ...any) error) (domain.Branch, error) {
	var b domain.Branch
	var createdAt string
	if err := scan(&b.ID, &b.Name, &b.Address, &createdAt); err != nil {
		return domain.Branch{}, err
	}
	b.CreatedAt = storage.ParseTime(createdAt)
	return b, nil
}
