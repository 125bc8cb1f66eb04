// Package credential issues and verifies the opaque bearer credential handed
// to clients after login.
package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"smartflex/internal/domain/role"
)

const issuer = "smartflex"

// DefaultTTL is the credential lifetime when none is configured.
const DefaultTTL = 60 * time.Minute

var (
	ErrInvalidToken = errors.New("credential: invalid token")
	ErrEmptySecret  = errors.New("credential: signing secret is required")
)

// Claims carried inside the credential.
type Claims struct {
	jwt.RegisteredClaims

	Role   string `json:"role"`
	Branch string `json:"branch,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Subject is the identity extracted from a verified credential.
type Subject struct {
	AccountID string
	Role      role.Role
	Branch    string
	Name      string
	ExpiresAt time.Time
}

// Issuer signs and verifies HS256 credentials.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. A non-positive ttl selects DefaultTTL.
// PRE: secret is non-empty
func NewIssuer(secret []byte, ttl time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}, nil
}

// TTL returns the credential lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a credential for s. ExpiresAt on s is ignored.
// POST: Returns a compact JWS string
func (i *Issuer) Issue(s Subject) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Role:   s.Role.String(),
		Branch: s.Branch,
		Name:   s.Name,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign credential: %w", err)
	}
	return token, nil
}

// Verify checks the signature, issuer and expiry of token.
// POST: Returns the Subject or an error wrapping ErrInvalidToken
func (i *Issuer) Verify(token string) (Subject, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Subject{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	r, err := role.Parse(claims.Role)
	if err != nil || claims.Subject == "" {
		return Subject{}, ErrInvalidToken
	}
	s := Subject{
		AccountID: claims.Subject,
		Role:      r,
		Branch:    claims.Branch,
		Name:      claims.Name,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}
