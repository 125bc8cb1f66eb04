package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"smartflex/internal/domain/role"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MaxNameLength  = 120
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Lockout policy.
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

// VerificationTTL is how long an email verification link stays valid.
const VerificationTTL = 48 * time.Hour

// Domain errors
var (
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrNameTooLong      = errors.New("name cannot exceed 120 characters")
	ErrInvalidRole      = role.ErrUnknownRole
	ErrBranchRequired   = errors.New("branch is required for members, trainers and admins")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrAlreadyVerified  = errors.New("account is already verified")
	ErrTokenExpired     = errors.New("verification link has expired")
	ErrTokenUsed        = errors.New("verification link has already been used")
)

// Account is a person who can sign in: a member, trainer, branch admin or
// the superadmin. Trainers and users share one table, split by Role.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         role.Role
	Branch       string
	Verified     bool
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// VerificationToken is a single-use, time-limited email verification link.
type VerificationToken struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	email := strings.TrimSpace(a.Email)
	if email == "" {
		return ErrEmptyEmail
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !a.Role.Valid() {
		return ErrInvalidRole
	}
	// The superadmin spans every branch.
	if a.Role != role.Superadmin && strings.TrimSpace(a.Branch) == "" {
		return ErrBranchRequired
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is non-empty and >= MinPasswordLength characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true if the account is locked out at now.
// INVARIANT: Account fields are not mutated
func (a *Account) IsLocked(now time.Time) bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return now.Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account
// once MaxFailedLogins is reached.
// POST: FailedLogins incremented; LockedUntil set if >= MaxFailedLogins
func (a *Account) RecordFailedLogin(now time.Time) {
	a.FailedLogins++
	if a.FailedLogins >= MaxFailedLogins {
		a.LockedUntil = now.Add(LockoutDuration)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
// POST: FailedLogins is 0, LockedUntil is zero
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// MarkVerified flags the account's email as confirmed.
func (a *Account) MarkVerified() error {
	if a.Verified {
		return ErrAlreadyVerified
	}
	a.Verified = true
	return nil
}

// NewVerificationToken creates a token for accountID expiring VerificationTTL after now.
func NewVerificationToken(id, accountID, token string, now time.Time) VerificationToken {
	return VerificationToken{
		ID:        id,
		AccountID: accountID,
		Token:     token,
		ExpiresAt: now.Add(VerificationTTL),
		CreatedAt: now,
	}
}

// Redeem checks the token can be used at now and marks it used.
// POST: Used is true on success
func (t *VerificationToken) Redeem(now time.Time) error {
	if t.Used {
		return ErrTokenUsed
	}
	if now.After(t.ExpiresAt) {
		return ErrTokenExpired
	}
	t.Used = true
	return nil
}
