// Package apiclient talks to the SmartFlex JSON API, attaching the stored
// credential as a bearer token on every backend call.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"smartflex/internal/domain/role"
	"smartflex/internal/domain/session"
)

var (
	ErrNotLoggedIn  = errors.New("not logged in: no stored credential")
	ErrUnauthorized = errors.New("credential rejected by server")
)

// SessionStore is the Credential Store the client reads from and writes to.
type SessionStore interface {
	Write(sess session.Session) error
	Read() session.Session
	Clear() error
}

// UserData is the account payload returned by login and /api/auth/me.
type UserData struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Branch string `json:"branch,omitempty"`
}

type tokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	UserData    UserData `json:"user_data"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Unwrap maps 401 responses onto ErrUnauthorized.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// storeTokenSource reads the credential from the store on every request, so
// a login or logout in the same process takes effect immediately.
type storeTokenSource struct {
	store SessionStore
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	sess := s.store.Read()
	if !sess.HasCredential() {
		return nil, ErrNotLoggedIn
	}
	return &oauth2.Token{AccessToken: sess.Credential, TokenType: "Bearer"}, nil
}

// NewBearerTransport returns a RoundTripper that sets
// Authorization: Bearer <credential> from store. base may be nil.
func NewBearerTransport(store SessionStore, base http.RoundTripper) http.RoundTripper {
	return &oauth2.Transport{Source: storeTokenSource{store: store}, Base: base}
}

// Client calls the SmartFlex API.
type Client struct {
	baseURL string
	store   SessionStore
	plain   *http.Client // unauthenticated calls (login)
	authed  *http.Client // bearer calls
}

// New creates a Client for baseURL backed by store.
// PRE: baseURL is an absolute http(s) URL
func New(baseURL string, store SessionStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		plain:   &http.Client{Timeout: 15 * time.Second},
		authed:  &http.Client{Timeout: 15 * time.Second, Transport: NewBearerTransport(store, nil)},
	}
}

// Login authenticates and writes the returned session to the store.
// POST: On success the store holds credential, role, branch and display name
func (c *Client) Login(ctx context.Context, email, password string) (UserData, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return UserData{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return UserData{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var tok tokenResponse
	if err := c.do(c.plain, req, &tok); err != nil {
		return UserData{}, err
	}

	// An unrecognised role is stored as absent, the same as a missing one.
	r, _ := role.Parse(tok.UserData.Role)
	if err := c.store.Write(session.Session{
		Credential:  tok.AccessToken,
		Role:        r,
		Branch:      tok.UserData.Branch,
		DisplayName: tok.UserData.Name,
	}); err != nil {
		return UserData{}, fmt.Errorf("store session: %w", err)
	}
	return tok.UserData, nil
}

// Me returns the account behind the stored credential.
func (c *Client) Me(ctx context.Context) (UserData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return UserData{}, err
	}
	var me UserData
	if err := c.do(c.authed, req, &me); err != nil {
		return UserData{}, err
	}
	return me, nil
}

// Logout removes every stored session field.
func (c *Client) Logout() error {
	return c.store.Clear()
}

func (c *Client) do(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			return ErrNotLoggedIn
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &APIError{Status: resp.StatusCode, Message: body.Error}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
