package web

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"smartflex/internal/adapters/credential"
	"smartflex/internal/adapters/credstore"
	"smartflex/internal/adapters/email"
	"smartflex/internal/adapters/http/middleware"
	"smartflex/internal/adapters/http/shell"
	accountStore "smartflex/internal/adapters/storage/account"
	auditStore "smartflex/internal/adapters/storage/audit"
	branchStore "smartflex/internal/adapters/storage/branch"
	"smartflex/internal/application/guard"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore accountStore.Store
	BranchStore  branchStore.Store
	AuditStore   auditStore.Store // nil disables the audit trail
}

// Deps carries everything the HTTP layer needs. It replaces package-level
// state: two servers built from different Deps never share anything.
type Deps struct {
	Stores  Stores
	Guard   *guard.Guard
	Issuer  *credential.Issuer
	Cookies *credstore.CookieCodec
	Sender  email.Sender

	BaseURL string
	CSRFKey []byte
	Secure  bool // cookies carry the Secure flag; set in production

	Limiter            *middleware.RateLimiter // nil disables rate limiting
	SlowRequest        time.Duration
	NavigatorCacheSize int
}

var ErrMissingDeps = errors.New("web: stores, guard, issuer, cookie codec and CSRF key are required")

// Server is the SmartFlex HTTP application.
type Server struct {
	deps       Deps
	shell      *shell.Renderer
	navigators *middleware.Navigators
	handler    http.Handler
}

// NewServer wires routes and middleware.
// PRE: deps carries stores, guard, issuer, cookie codec and a 32-byte CSRF key
// POST: The returned server is safe for concurrent use
func NewServer(deps Deps) (*Server, error) {
	if deps.Stores.AccountStore == nil || deps.Stores.BranchStore == nil ||
		deps.Guard == nil || deps.Issuer == nil || deps.Cookies == nil || len(deps.CSRFKey) == 0 {
		return nil, ErrMissingDeps
	}
	if deps.Sender == nil {
		deps.Sender = email.NewNoopSender()
	}

	renderer, err := shell.New(deps.Guard.Policy())
	if err != nil {
		return nil, err
	}
	navigators, err := middleware.NewNavigators(deps.Guard, deps.NavigatorCacheSize, deps.Secure)
	if err != nil {
		return nil, err
	}

	s := &Server{deps: deps, shell: renderer, navigators: navigators}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	var trusted []string
	if u, err := url.Parse(deps.BaseURL); err == nil && u.Host != "" {
		trusted = append(trusted, u.Host)
	}

	// Apply middleware: Timing -> SecurityHeaders -> CSRF -> Session -> Mux
	s.handler = middleware.Chain(mux,
		middleware.Session(deps.Cookies, deps.Issuer),
		middleware.CSRF(deps.CSRFKey, deps.Secure, trusted),
		middleware.SecurityHeaders,
		middleware.Timing(deps.SlowRequest),
	)
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
