package web

import (
	"log/slog"
	"net/http"

	"smartflex/internal/adapters/http/middleware"
	"smartflex/internal/adapters/http/shell"
	"smartflex/internal/application/policy"
	"smartflex/internal/domain/session"
)

// viewHandler renders one guarded view for an authorized session.
type viewHandler func(w http.ResponseWriter, r *http.Request, route policy.Route, sess session.Session)

// registerRoutes maps public pages, the JSON API and one guarded handler per
// policy route onto mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	limit := middleware.RateLimit(s.deps.Limiter)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})
	mux.Handle("/login", limit(s.observed(http.HandlerFunc(s.handleLogin))))
	mux.HandleFunc("/logout", s.handleLogout)
	mux.Handle("/register", limit(s.observed(http.HandlerFunc(s.handleRegister))))
	mux.Handle("/verify-email", s.observed(http.HandlerFunc(s.handleVerifyEmail)))

	mux.Handle("/api/auth/login", limit(http.HandlerFunc(s.handleAPILogin)))
	mux.HandleFunc("/api/auth/me", s.handleAPIMe)

	views := map[string]viewHandler{
		"dashboard":       s.viewDashboard,
		"trainers":        s.viewTrainers,
		"branch_users":    s.viewBranchUsers,
		"manage_branches": s.viewManageBranches,
		"audit":           s.viewAudit,
	}
	for _, route := range s.deps.Guard.Policy().Routes() {
		view, ok := views[route.View]
		if !ok {
			view = s.viewContent
		}
		mux.Handle(route.Path, s.guarded(route, view))
	}

	mux.Handle("/", s.observed(http.HandlerFunc(s.notFound)))
}

// guarded runs the route guard for the client's navigator before the view.
// INVARIANT: view is only called for an Authorized decision
func (s *Server) guarded(route policy.Route, view viewHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFromContext(r.Context())
		d := s.navigators.For(w, r).Navigate(r.URL.Path, sess)
		if !d.Allowed() {
			s.auditDenied(r, d, sess)
			if d.Redirect == "" {
				s.notFound(w, r)
				return
			}
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
			return
		}
		switch r.Method {
		case http.MethodGet, http.MethodHead:
		case http.MethodPost:
			if route.View != "manage_branches" {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		view(w, r, route, sess)
	})
}

// observed records an unguarded navigation so the client's guard diagnostics
// reset when it moves between paths.
func (s *Server) observed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.navigators.For(w, r).Observe(r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// notFound renders the not-found page for any path outside the route table,
// regardless of role.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	slog.Debug("route_not_found", "path", r.URL.Path)
	page := publicPage(r, "Page not found")
	s.renderPublic(w, r, http.StatusNotFound, shell.PageNotFound, page)
}
