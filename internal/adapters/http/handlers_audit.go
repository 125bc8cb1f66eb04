package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"smartflex/internal/adapters/http/middleware"
	auditStore "smartflex/internal/adapters/storage/audit"
	"smartflex/internal/application/guard"
	"smartflex/internal/application/policy"
	"smartflex/internal/domain/account"
	"smartflex/internal/domain/audit"
	"smartflex/internal/domain/session"
)

type auditData struct {
	Enabled bool
	Events  []audit.Event
	Filter  auditStore.Filter
	Limit   int
}

// recordAudit stamps e with the request origin and saves it. A failed write
// is logged and never fails the request.
func (s *Server) recordAudit(r *http.Request, e audit.Event) {
	if s.deps.Stores.AuditStore == nil {
		return
	}
	e = e.WithRequest(middleware.ClientIP(r), r.UserAgent())
	if err := s.deps.Stores.AuditStore.Save(context.WithoutCancel(r.Context()), e); err != nil {
		slog.Warn("audit_write_failed", "action", string(e.Action), "error", err)
	}
}

func accountEvent(action audit.Action, a account.Account) audit.Event {
	return audit.NewEvent(audit.CategoryAccount, action).
		WithActor(a.ID, a.Email, a.Name, a.Role.String(), a.Branch)
}

func sessionEvent(category audit.Category, action audit.Action, sess session.Session) audit.Event {
	return audit.NewEvent(category, action).
		WithActor("", "", sess.DisplayName, sess.Role.String(), sess.Branch)
}

func loginFailedEvent(email string, err error) audit.Event {
	return audit.NewEvent(audit.CategoryAccount, audit.ActionLoginFailed).
		WithSeverity(audit.SeverityWarning).
		WithActor("", email, "", "", "").
		WithDescription(err.Error())
}

// auditDenied records a role denial once per diagnostic, so repeated renders
// of the same path do not flood the trail.
func (s *Server) auditDenied(r *http.Request, d guard.Decision, sess session.Session) {
	if d.State != guard.Unauthorized || !d.Diagnosed {
		return
	}
	s.recordAudit(r, sessionEvent(audit.CategorySecurity, audit.ActionDenied, sess).
		WithSeverity(audit.SeverityWarning).
		WithResource(d.Path).
		WithDescription(d.Message(sess.Role)))
}

// viewAudit lists the most recent audit events, filtered by query parameters.
func (s *Server) viewAudit(w http.ResponseWriter, r *http.Request, route policy.Route, sess session.Session) {
	page := s.shell.NewPage(route, sess)
	q := r.URL.Query()
	data := auditData{
		Enabled: s.deps.Stores.AuditStore != nil,
		Filter: auditStore.Filter{
			Category:   audit.Category(q.Get("category")),
			Action:     audit.Action(q.Get("action")),
			ActorEmail: q.Get("email"),
			Branch:     q.Get("branch"),
		},
		Limit: auditStore.DefaultLimit,
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && n <= 1000 {
		data.Limit = n
	}

	if data.Enabled {
		events, err := s.deps.Stores.AuditStore.List(r.Context(), data.Filter, data.Limit)
		if err != nil {
			internalError(w, err)
			return
		}
		data.Events = events
	} else {
		page.Flash = "The audit trail is not enabled on this server."
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		if data.Events == nil {
			data.Events = []audit.Event{}
		}
		writeJSON(w, http.StatusOK, data.Events)
		return
	}
	page.Data = data
	s.renderView(w, r, http.StatusOK, page)
}
