package browser_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	"smartflex/internal/adapters/credential"
	"smartflex/internal/adapters/credstore"
	web "smartflex/internal/adapters/http"
	"smartflex/internal/adapters/storage"
	accountStore "smartflex/internal/adapters/storage/account"
	branchStore "smartflex/internal/adapters/storage/branch"
	"smartflex/internal/application/guard"
	"smartflex/internal/application/orchestrators"
	"smartflex/internal/application/policy"
	"smartflex/internal/domain/role"
)

const testPassword = "TestPass123!"

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL  string
	Server   *http.Server
	PW       *playwright.Playwright
	Browser  playwright.Browser
	Accounts *accountStore.SQLiteStore
	Branches *branchStore.SQLiteStore
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	ctx := context.Background()
	if err := storage.InitDB(ctx, db); err != nil {
		t.Fatalf("failed to init test DB: %v", err)
	}

	accounts := accountStore.NewSQLiteStore(db)
	branches := branchStore.NewSQLiteStore(db)
	for _, name := range []string{"Andheri", "Bandra"} {
		if _, err := orchestrators.ExecuteCreateBranch(ctx, orchestrators.CreateBranchInput{Name: name},
			orchestrators.CreateBranchDeps{BranchStore: branches}); err != nil {
			t.Fatalf("failed to seed branch %s: %v", name, err)
		}
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	baseURL := fmt.Sprintf("http://%s", listener.Addr().String())

	issuer, err := credential.NewIssuer([]byte("browser-test"), time.Hour)
	if err != nil {
		t.Fatalf("failed to create issuer: %v", err)
	}
	handler, err := web.NewServer(web.Deps{
		Stores:  web.Stores{AccountStore: accounts, BranchStore: branches},
		Guard:   guard.New(policy.MustDefault(), guard.Options{}),
		Issuer:  issuer,
		Cookies: credstore.NewCookieCodec(bytes.Repeat([]byte("h"), 32), nil, false),
		BaseURL: baseURL,
		CSRFKey: bytes.Repeat([]byte("k"), 32),
	})
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			log.Printf("test server error: %v", err)
		}
	}()

	pw, err := playwright.Run()
	if err != nil {
		srv.Close()
		db.Close()
		t.Skipf("playwright driver unavailable: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		srv.Close()
		db.Close()
		t.Skipf("chromium unavailable: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return &testApp{
		BaseURL:  baseURL,
		Server:   srv,
		PW:       pw,
		Browser:  browser,
		Accounts: accounts,
		Branches: branches,
	}
}

// seed creates a verified account with the shared test password.
func (a *testApp) seed(t *testing.T, email, name string, r role.Role, branch string) {
	t.Helper()
	_, err := orchestrators.ExecuteCreateAccount(context.Background(), orchestrators.CreateAccountInput{
		Email:    email,
		Name:     name,
		Password: testPassword,
		Role:     r.String(),
		Branch:   branch,
		Verified: true,
	}, orchestrators.CreateAccountDeps{AccountStore: a.Accounts, BranchStore: a.Branches})
	if err != nil {
		t.Fatalf("failed to seed %s: %v", email, err)
	}
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login submits the login form and waits for the dashboard.
func (a *testApp) login(t *testing.T, page playwright.Page, email string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill(email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(testPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("form[action='/login'] button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	a.waitFor(t, page, "/dashboard")
}

func (a *testApp) waitFor(t *testing.T, page playwright.Page, path string) {
	t.Helper()
	if err := page.WaitForURL(a.BaseURL+path, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("expected %s, got %s: %v", path, page.URL(), err)
	}
}
