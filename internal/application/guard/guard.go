// Package guard decides, for each navigation, whether a session may see a
// guarded view or must be redirected.
package guard

import (
	"errors"
	"log/slog"
	"strings"

	"smartflex/internal/application/policy"
	"smartflex/internal/domain/role"
	"smartflex/internal/domain/session"
)

// Redirect targets.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

var (
	ErrNoCredential   = errors.New("no credential present")
	ErrRoleNotAllowed = errors.New("role not allowed for this route")
)

// State is the outcome of evaluating one navigation.
type State int

const (
	// NotCovered means the path is outside the route table; callers render not-found.
	NotCovered State = iota
	Unauthenticated
	Unauthorized
	Authorized
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Unauthorized:
		return "unauthorized"
	case Authorized:
		return "authorized"
	}
	return "not_covered"
}

// Decision is the result of Evaluate.
type Decision struct {
	State State
	Path  string
	Route policy.Route
	// Redirect is set for Unauthenticated and Unauthorized.
	Redirect string
	Err      error
	// RoleAbsent marks an Authorized decision granted without a role check.
	RoleAbsent bool
	// Diagnosed is set by Navigator when this decision emitted a diagnostic.
	Diagnosed bool
}

// Allowed reports whether the view may be rendered.
func (d Decision) Allowed() bool {
	return d.State == Authorized
}

// Options tune the guard.
type Options struct {
	// StrictRoles treats a credential without a role as not allowed.
	StrictRoles bool
	Logger      *slog.Logger
}

// Guard evaluates navigations against a Policy.
type Guard struct {
	policy *policy.Policy
	strict bool
	logger *slog.Logger
}

// New creates a Guard.
// PRE: p is non-nil
func New(p *policy.Policy, opts Options) *Guard {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{policy: p, strict: opts.StrictRoles, logger: logger}
}

// Policy returns the route table the guard evaluates against.
func (g *Guard) Policy() *policy.Policy {
	return g.policy
}

// Evaluate decides a single navigation. It performs no I/O and never logs.
func (g *Guard) Evaluate(path string, sess session.Session) Decision {
	return evaluate(g.policy, path, sess, g.strict)
}

// Evaluate decides a navigation with the default (permissive on absent role)
// behaviour.
// PRE: p is non-nil
// POST: Exactly one State is returned; Redirect is set iff the state denies access
func Evaluate(p *policy.Policy, path string, sess session.Session) Decision {
	return evaluate(p, path, sess, false)
}

func evaluate(p *policy.Policy, path string, sess session.Session, strict bool) Decision {
	route, ok := p.Lookup(path)
	if !ok {
		return Decision{State: NotCovered, Path: path}
	}
	d := Decision{Path: path, Route: route}
	switch {
	case !sess.HasCredential():
		d.State = Unauthenticated
		d.Redirect = LoginPath
		d.Err = ErrNoCredential
	case !sess.HasRole() && !strict:
		d.State = Authorized
		d.RoleAbsent = true
	case !route.Allowed.Contains(sess.Role):
		d.State = Unauthorized
		d.Redirect = DashboardPath
		d.Err = ErrRoleNotAllowed
		// A role that cannot reach the dashboard would loop; send it to login.
		if path == DashboardPath {
			d.Redirect = LoginPath
		}
	default:
		d.State = Authorized
	}
	return d
}

// Message returns the diagnostic text for a denied decision.
func (d Decision) Message(r role.Role) string {
	switch d.State {
	case Unauthenticated:
		return "unauthorized access: no credential found"
	case Unauthorized:
		names := make([]string, 0, d.Route.Allowed.Len())
		for _, allowed := range d.Route.Allowed.Roles() {
			names = append(names, allowed.String())
		}
		got := r.String()
		if r.IsAbsent() {
			got = "none"
		}
		return "unauthorized access: role '" + got + "' not allowed, required: " + strings.Join(names, ", ")
	}
	return ""
}
