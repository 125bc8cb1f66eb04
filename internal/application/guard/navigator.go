package guard

import (
	"sync"

	"smartflex/internal/domain/session"
)

// Navigator evaluates a sequence of navigations from one client and emits at
// most one diagnostic per kind until the path changes.
// INVARIANT: authShown and permShown are both false right after a path change
type Navigator struct {
	g *Guard

	mu        sync.Mutex
	path      string
	authShown bool
	permShown bool
}

// NewNavigator creates a Navigator with no observed path.
func (g *Guard) NewNavigator() *Navigator {
	return &Navigator{g: g}
}

// Navigate evaluates path for sess, records it as the current path and logs
// a guard_denied diagnostic unless one of the same kind was already emitted
// for this path.
func (n *Navigator) Navigate(path string, sess session.Session) Decision {
	d := n.g.Evaluate(path, sess)

	n.mu.Lock()
	n.observeLocked(path)
	switch d.State {
	case Unauthenticated:
		d.Diagnosed = !n.authShown
		n.authShown = true
	case Unauthorized:
		d.Diagnosed = !n.permShown
		n.permShown = true
	}
	n.mu.Unlock()

	if d.Diagnosed {
		n.g.logger.Warn("guard_denied",
			"reason", d.State.String(),
			"path", path,
			"role", sess.Role.String(),
			"message", d.Message(sess.Role),
		)
	}
	if d.RoleAbsent {
		n.g.logger.Warn("guard_role_absent", "path", path, "branch", sess.Branch)
	}
	return d
}

// Observe records a navigation to a path the guard does not evaluate (login,
// register, not-found) so the de-duplication flags reset on every transition.
func (n *Navigator) Observe(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observeLocked(path)
}

// Path returns the last observed path.
func (n *Navigator) Path() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *Navigator) observeLocked(path string) {
	if path == n.path {
		return
	}
	n.path = path
	n.authShown = false
	n.permShown = false
}
