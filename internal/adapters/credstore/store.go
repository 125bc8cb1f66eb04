// Package credstore persists the client-held session fields over a simple
// key-value backend. Each field is written and removed individually.
package credstore

import (
	"errors"
	"fmt"

	"smartflex/internal/domain/role"
	"smartflex/internal/domain/session"
)

// Storage keys for the four session fields.
const (
	KeyToken    = "token"
	KeyRole     = "role"
	KeyBranch   = "branch"
	KeyUsername = "username"
)

// Keys lists every key the store owns, in write order.
var Keys = []string{KeyToken, KeyRole, KeyBranch, KeyUsername}

// KV is the backend the Store writes through.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Store reads and writes a session.Session over a KV backend.
type Store struct {
	kv KV
}

// New creates a Store over kv.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Write persists each field of s under its key. Absent fields are deleted.
// PRE: none
// POST: Every present field is stored; a failure leaves earlier fields written
func (s *Store) Write(sess session.Session) error {
	values := map[string]string{
		KeyToken:    sess.Credential,
		KeyRole:     sess.Role.String(),
		KeyBranch:   sess.Branch,
		KeyUsername: sess.DisplayName,
	}
	for _, k := range Keys {
		var err error
		if v := values[k]; v != "" {
			err = s.kv.Set(k, v)
		} else {
			err = s.kv.Delete(k)
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", k, err)
		}
	}
	return nil
}

// Read returns whichever fields are present. Missing fields are absent and
// a stored role outside the known set reads as absent.
func (s *Store) Read() session.Session {
	var sess session.Session
	sess.Credential, _ = s.kv.Get(KeyToken)
	if raw, ok := s.kv.Get(KeyRole); ok {
		if r, err := role.Parse(raw); err == nil {
			sess.Role = r
		}
	}
	sess.Branch, _ = s.kv.Get(KeyBranch)
	sess.DisplayName, _ = s.kv.Get(KeyUsername)
	return sess
}

// Clear removes all four keys, attempting every key even if one fails.
// POST: No key owned by the store remains readable
func (s *Store) Clear() error {
	var errs []error
	for _, k := range Keys {
		if err := s.kv.Delete(k); err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}
