package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"smartflex/internal/adapters/credential"
	"smartflex/internal/adapters/credstore"
	"smartflex/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// CredentialVerifier checks a bearer credential.
type CredentialVerifier interface {
	Verify(token string) (credential.Subject, error)
}

// Session returns middleware that reads the session from the signed cookie
// Credential Store and injects it into the request context. A credential that
// no longer verifies (expired, re-keyed) is cleared and the request proceeds
// without a session.
// INVARIANT: with a verifier, role, branch and display name come from the
// verified claims; the separate cookie fields are never trusted for them
func Session(codec *credstore.CookieCodec, verifier CredentialVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := credstore.New(codec.Bind(w, r))
			sess := store.Read()
			if sess.HasCredential() && verifier != nil {
				subject, err := verifier.Verify(sess.Credential)
				if err != nil {
					slog.Info("auth_event", "event", "credential_rejected", "path", r.URL.Path, "error", err)
					if err := store.Clear(); err != nil {
						slog.Error("internal_error", "error", err.Error())
					}
					sess = session.Session{}
				} else {
					sess = fromSubject(sess, subject, r.URL.Path)
				}
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}

// fromSubject replaces the client-held fields of sess with the claims of its
// verified credential. A credential without a role claim yields an absent role.
func fromSubject(sess session.Session, subject credential.Subject, path string) session.Session {
	if sess.Role != subject.Role || sess.Branch != subject.Branch {
		slog.Warn("auth_event", "event", "session_fields_mismatch", "path", path,
			"cookie_role", sess.Role.String(), "claim_role", subject.Role.String())
	}
	return session.Session{
		Credential:  sess.Credential,
		Role:        subject.Role,
		Branch:      subject.Branch,
		DisplayName: subject.Name,
	}
}

// SessionFromContext returns the session injected by Session. The zero
// Session (nothing present) is returned when none was injected.
func SessionFromContext(ctx context.Context) session.Session {
	sess, _ := ctx.Value(sessionContextKey).(session.Session)
	return sess
}

// ContextWithSession returns a context carrying sess.
func ContextWithSession(ctx context.Context, sess session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
