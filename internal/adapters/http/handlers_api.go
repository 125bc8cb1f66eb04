package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	accountStore "smartflex/internal/adapters/storage/account"
	"smartflex/internal/application/orchestrators"
	"smartflex/internal/domain/account"
	"smartflex/internal/domain/audit"
)

// userData is the login payload that populates a client session.
type userData struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Branch string `json:"branch,omitempty"`
}

type tokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	UserData    userData `json:"user_data"`
}

func newUserData(a account.Account) userData {
	return userData{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role.String(), Branch: a.Branch}
}

// handleAPILogin handles POST /api/auth/login (JSON or form).
func (s *Server) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeInput(r, &req, func(r *http.Request) {
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
	}); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, s.loginDeps())
	if err != nil {
		status, msg, ok := loginStatus(err)
		if !ok {
			internalError(w, err)
			return
		}
		s.recordAudit(r, loginFailedEvent(req.Email, err))
		writeJSONError(w, status, msg)
		return
	}

	s.recordAudit(r, accountEvent(audit.ActionLogin, result.Account).WithResource("/api/auth/login"))
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		UserData:    newUserData(result.Account),
	})
}

// bearerToken extracts the credential from an Authorization: Bearer header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// handleAPIMe handles GET /api/auth/me for a bearer credential.
func (s *Server) handleAPIMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token, ok := bearerToken(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", `Bearer realm="smartflex"`)
		writeJSONError(w, http.StatusUnauthorized, "missing bearer credential")
		return
	}
	subject, err := s.deps.Issuer.Verify(token)
	if err != nil {
		slog.Info("auth_event", "event", "credential_rejected", "path", r.URL.Path, "error", err)
		w.Header().Set("WWW-Authenticate", `Bearer realm="smartflex", error="invalid_token"`)
		writeJSONError(w, http.StatusUnauthorized, "invalid credential")
		return
	}

	acct, err := s.deps.Stores.AccountStore.GetByID(r.Context(), subject.AccountID)
	if errors.Is(err, accountStore.ErrNotFound) {
		writeJSONError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserData(acct))
}
