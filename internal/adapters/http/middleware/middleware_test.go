package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"smartflex/internal/adapters/credential"
	"smartflex/internal/adapters/credstore"
	"smartflex/internal/application/guard"
	"smartflex/internal/application/policy"
	"smartflex/internal/domain/role"
	"smartflex/internal/domain/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestRateLimiter_AllowsBurstThenBlocks(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d", i)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "other IPs are independent")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"), "bucket refills after interval")
}

func TestRateLimiter_SweepDropsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.Allow("1.2.3.4")
	now = now.Add(staleAfter + time.Second)
	rl.sweep()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.visitors)
}

func TestRateLimiter_RunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewRateLimiter(1, time.Second).Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	h := RateLimit(NewRateLimiter(1, time.Hour))(http.HandlerFunc(ok))
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "9.9.9.9:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A nil limiter passes everything through.
	rec = httptest.NewRecorder()
	RateLimit(nil)(http.HandlerFunc(ok)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(ok)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestCSRF_RejectsFormWithoutToken_AllowsJSON(t *testing.T) {
	h := CSRF(bytes.Repeat([]byte("k"), 32), false, nil)(http.HandlerFunc(ok))

	form := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader("a=b"))
	form.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, form)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	js := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{}"))
	js.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, js)
	assert.Equal(t, http.StatusOK, rec.Code)

	// text/plain needs no preflight, so it stays protected.
	plain := httptest.NewRequest(http.MethodPost, "/manage-branches", strings.NewReader(`{"name":"x"}`))
	plain.Header.Set("Content-Type", "text/plain")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, plain)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTiming_SetsRequestIDAndStatus(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := Timing(time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
	assert.Contains(t, buf.String(), "msg=request")
	assert.Contains(t, buf.String(), "status=404")

	// Static assets are not timed.
	buf.Reset()
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	assert.Empty(t, rec.Header().Get(RequestIDHeader))
	assert.Empty(t, buf.String())
}

func TestTiming_SlowRequestWarns(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := Timing(time.Nanosecond)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Millisecond)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Contains(t, buf.String(), "msg=slow_request")
}

func TestSession_InjectsCookieSession(t *testing.T) {
	codec := credstore.NewCookieCodec(bytes.Repeat([]byte("c"), 32), nil, false)
	issuer, err := credential.NewIssuer([]byte("secret"), time.Hour)
	require.NoError(t, err)
	token, err := issuer.Issue(credential.Subject{AccountID: "a1", Role: role.Admin, Branch: "Andheri", Name: "Asha"})
	require.NoError(t, err)

	login := httptest.NewRecorder()
	want := session.Session{Credential: token, Role: role.Admin, Branch: "Andheri", DisplayName: "Asha"}
	require.NoError(t, credstore.New(codec.Bind(login, httptest.NewRequest(http.MethodPost, "/login", nil))).Write(want))

	var got session.Session
	h := Session(codec, issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, want, got)
}

func TestSession_ClaimsOverrideCookieFields(t *testing.T) {
	codec := credstore.NewCookieCodec(bytes.Repeat([]byte("c"), 32), nil, false)
	issuer, err := credential.NewIssuer([]byte("secret"), time.Hour)
	require.NoError(t, err)
	token, err := issuer.Issue(credential.Subject{AccountID: "m1", Role: role.Member, Branch: "Andheri", Name: "Mo"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		stored session.Session
	}{
		{"role removed", session.Session{Credential: token, Branch: "Andheri", DisplayName: "Mo"}},
		{"role raised", session.Session{Credential: token, Role: role.Superadmin, Branch: "Andheri", DisplayName: "Mo"}},
		{"branch swapped", session.Session{Credential: token, Role: role.Member, Branch: "Bandra", DisplayName: "Mo"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			login := httptest.NewRecorder()
			require.NoError(t, credstore.New(codec.Bind(login, httptest.NewRequest(http.MethodPost, "/login", nil))).Write(tc.stored))

			var got session.Session
			h := Session(codec, issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = SessionFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			for _, c := range login.Result().Cookies() {
				req.AddCookie(c)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, session.Session{Credential: token, Role: role.Member, Branch: "Andheri", DisplayName: "Mo"}, got)
		})
	}
}

func TestSession_RejectsUnverifiableCredential(t *testing.T) {
	codec := credstore.NewCookieCodec(bytes.Repeat([]byte("c"), 32), nil, false)
	issuer, err := credential.NewIssuer([]byte("secret"), time.Hour)
	require.NoError(t, err)

	login := httptest.NewRecorder()
	require.NoError(t, credstore.New(codec.Bind(login, httptest.NewRequest(http.MethodPost, "/login", nil))).Write(
		session.Session{Credential: "placeholder", Role: role.Member}))

	var got session.Session
	h := Session(codec, issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.True(t, got.IsEmpty())

	cleared := 0
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared++
		}
	}
	assert.Equal(t, len(credstore.Keys), cleared)
}

func TestSessionFromContext_Empty(t *testing.T) {
	assert.True(t, SessionFromContext(context.Background()).IsEmpty())
}

func TestNavigators_OnePerClient(t *testing.T) {
	navs, err := NewNavigators(guard.New(policy.MustDefault(), guard.Options{}), 2, false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	first := navs.For(rec, httptest.NewRequest(http.MethodGet, "/fees", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ClientCookie, cookies[0].Name)

	again := httptest.NewRequest(http.MethodGet, "/fees", nil)
	again.AddCookie(cookies[0])
	assert.Same(t, first, navs.For(httptest.NewRecorder(), again))

	// A forged, non-uuid id is replaced.
	forged := httptest.NewRequest(http.MethodGet, "/fees", nil)
	forged.AddCookie(&http.Cookie{Name: ClientCookie, Value: "../../etc"})
	assert.NotSame(t, first, navs.For(httptest.NewRecorder(), forged))

	// The cache stays bounded.
	navs.For(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 2, navs.Len())
}
