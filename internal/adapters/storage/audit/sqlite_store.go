package audit

import (
	"context"
	"strings"

	"smartflex/internal/adapters/storage"
	domain "smartflex/internal/domain/audit"
)

const selectColumns = `SELECT id, timestamp, category, action, severity, actor_id, actor_email, actor_name, actor_role,
	branch, resource, description, ip_address, user_agent FROM audit_event`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (id, timestamp, category, action, severity, actor_id, actor_email, actor_name, actor_role,
			branch, resource, description, ip_address, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, storage.FormatTime(e.Timestamp), string(e.Category), string(e.Action), string(e.Severity),
		e.ActorID, strings.ToLower(e.ActorEmail), e.ActorName, e.ActorRole,
		e.Branch, e.Resource, e.Description, e.IPAddress, e.UserAgent)
	return err
}

// List returns matching events in reverse insertion order.
// POST: At most limit events; DefaultLimit when limit <= 0
func (s *SQLiteStore) List(ctx context.Context, f Filter, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	where, args := f.where()
	args = append(args, limit)

	// rowid follows insertion order; RFC3339Nano strings do not sort reliably.
	rows, err := s.db.QueryContext(ctx, selectColumns+where+" ORDER BY rowid DESC LIMIT ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Category, &e.Action, &e.Severity, &e.ActorID, &e.ActorEmail,
			&e.ActorName, &e.ActorRole, &e.Branch, &e.Resource, &e.Description, &e.IPAddress, &e.UserAgent); err != nil {
			return nil, err
		}
		e.Timestamp = storage.ParseTime(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (f Filter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(f.Action))
	}
	if f.ActorEmail != "" {
		clauses = append(clauses, "actor_email = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(f.ActorEmail)))
	}
	if f.Branch != "" {
		clauses = append(clauses, "branch = ? COLLATE NOCASE")
		args = append(args, f.Branch)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
