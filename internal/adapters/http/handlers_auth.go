package web

import (
	"errors"
	"log/slog"
	"net/http"

	"smartflex/internal/adapters/credstore"
	"smartflex/internal/adapters/http/middleware"
	"smartflex/internal/adapters/http/shell"
	accountStore "smartflex/internal/adapters/storage/account"
	"smartflex/internal/application/guard"
	"smartflex/internal/application/orchestrators"
	"smartflex/internal/domain/account"
	"smartflex/internal/domain/audit"
	"smartflex/internal/domain/role"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Branch   string `json:"branch"`
}

// loginStatus maps a login failure to its HTTP status and user-facing message.
func loginStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password", true
	case errors.Is(err, orchestrators.ErrNotVerified):
		return http.StatusForbidden, "Email not verified. Check your inbox for the verification link.", true
	case errors.Is(err, orchestrators.ErrAccountLocked):
		return http.StatusLocked, "Account locked after too many failed attempts. Try again later.", true
	}
	return 0, "", false
}

// isRegistrationError reports whether err is a validation failure the user
// can fix by editing the form.
func isRegistrationError(err error) bool {
	for _, target := range []error{
		account.ErrEmptyEmail, account.ErrInvalidEmail, account.ErrEmailTooLong,
		account.ErrEmptyName, account.ErrNameTooLong, account.ErrBranchRequired,
		account.ErrEmptyPassword, account.ErrPasswordTooShort,
		orchestrators.ErrEmailAlreadyExists, orchestrators.ErrUnknownBranch,
		accountStore.ErrDuplicateEmail,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// signedIn reports whether the request's session may open the dashboard.
// A credential alone is not enough when strict roles reject it, otherwise
// /login and /dashboard would redirect to each other.
func (s *Server) signedIn(r *http.Request) bool {
	return s.deps.Guard.Evaluate(guard.DashboardPath, middleware.SessionFromContext(r.Context())).Allowed()
}

func (s *Server) loginDeps() orchestrators.LoginDeps {
	return orchestrators.LoginDeps{AccountStore: s.deps.Stores.AccountStore, Issuer: s.deps.Issuer}
}

// handleLogin handles GET (form) and POST (authenticate) for /login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		if s.signedIn(r) {
			http.Redirect(w, r, guard.DashboardPath, http.StatusSeeOther)
			return
		}
		s.renderPublic(w, r, http.StatusOK, shell.PageLogin, publicPage(r, "Log in"))
		return
	}

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeInput(r, &req, func(r *http.Request) {
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
	}); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
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
		page := publicPage(r, "Log in")
		page.Error = msg
		page.Email = req.Email
		s.renderPublic(w, r, status, shell.PageLogin, page)
		return
	}

	store := credstore.New(s.deps.Cookies.Bind(w, r))
	if err := store.Write(result.Session()); err != nil {
		internalError(w, err)
		return
	}
	s.recordAudit(r, accountEvent(audit.ActionLogin, result.Account))
	http.Redirect(w, r, guard.DashboardPath, http.StatusSeeOther)
}

// handleLogout handles POST /logout. Every session field is removed, so the
// next guarded navigation redirects to /login.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	if err := credstore.New(s.deps.Cookies.Bind(w, r)).Clear(); err != nil {
		internalError(w, err)
		return
	}
	slog.Info("auth_event", "event", "logout", "role", sess.Role.String(), "branch", sess.Branch)
	s.recordAudit(r, sessionEvent(audit.CategoryAccount, audit.ActionLogout, sess))
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
}

// handleRegister handles GET (form) and POST (create member) for /register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if s.signedIn(r) {
			http.Redirect(w, r, guard.DashboardPath, http.StatusSeeOther)
			return
		}
		s.renderRegister(w, r, http.StatusOK, registerRequest{}, "")
		return
	case http.MethodPost:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := decodeInput(r, &req, func(r *http.Request) {
		req.Name = r.FormValue("name")
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
		req.Branch = r.FormValue("branch")
	}); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	id, err := orchestrators.ExecuteRegister(r.Context(), orchestrators.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Branch:   req.Branch,
	}, orchestrators.RegisterDeps{
		AccountStore: s.deps.Stores.AccountStore,
		BranchStore:  s.deps.Stores.BranchStore,
		Sender:       s.deps.Sender,
		BaseURL:      s.deps.BaseURL,
	})
	if err != nil {
		if !isRegistrationError(err) {
			internalError(w, err)
			return
		}
		if isJSONRequest(r) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.renderRegister(w, r, http.StatusBadRequest, req, err.Error())
		return
	}

	s.recordAudit(r, audit.NewEvent(audit.CategoryAccount, audit.ActionRegister).
		WithActor(id, req.Email, req.Name, role.Member.String(), req.Branch))

	if isJSONRequest(r) {
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
		return
	}
	page := publicPage(r, "Check your inbox")
	page.Message = "We sent a verification link to " + req.Email + ". Open it to activate your account."
	s.renderPublic(w, r, http.StatusOK, shell.PageMessage, page)
}

func (s *Server) renderRegister(w http.ResponseWriter, r *http.Request, status int, req registerRequest, errMsg string) {
	branches, err := s.deps.Stores.BranchStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	page := publicPage(r, "Create your account")
	page.Error = errMsg
	page.Name = req.Name
	page.Email = req.Email
	page.Branch = req.Branch
	page.Branches = branches
	s.renderPublic(w, r, status, shell.PageRegister, page)
}

// handleVerifyEmail handles GET /verify-email?token=...
func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	err := orchestrators.ExecuteVerifyEmail(r.Context(), r.URL.Query().Get("token"), orchestrators.VerifyEmailDeps{
		AccountStore: s.deps.Stores.AccountStore,
	})
	page := publicPage(r, "Email verification")
	switch {
	case err == nil:
		s.recordAudit(r, audit.NewEvent(audit.CategoryAccount, audit.ActionVerify))
		page.Message = "Your email is verified. You can now log in."
		s.renderPublic(w, r, http.StatusOK, shell.PageMessage, page)
	case errors.Is(err, orchestrators.ErrInvalidVerificationToken),
		errors.Is(err, account.ErrTokenExpired),
		errors.Is(err, account.ErrTokenUsed),
		errors.Is(err, account.ErrAlreadyVerified):
		page.Message = err.Error()
		s.renderPublic(w, r, http.StatusBadRequest, shell.PageMessage, page)
	default:
		internalError(w, err)
	}
}
