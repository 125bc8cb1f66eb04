package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"smartflex/cmd/smartflex/cmd/cmdutil"
	"smartflex/internal/adapters/credential"
	"smartflex/internal/adapters/credstore"
	"smartflex/internal/adapters/email"
	web "smartflex/internal/adapters/http"
	"smartflex/internal/adapters/http/middleware"
	"smartflex/internal/application/guard"
	"smartflex/internal/application/orchestrators"
	"smartflex/internal/application/policy"
)

// shutdownTimeout bounds the drain of in-flight requests on SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

var (
	addrFlag        string
	strictRolesFlag bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SmartFlex web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cmdutil.LoadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr = addrFlag
		}
		if cmd.Flags().Changed("strict-roles") {
			cfg.StrictRoles = strictRolesFlag
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stores, err := cmdutil.OpenStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer stores.Close()

		seedDeps := orchestrators.CreateAccountDeps{AccountStore: stores.Accounts, BranchStore: stores.Branches}
		if err := orchestrators.ExecuteSeedSuperadmin(ctx, stores.Accounts, seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to seed superadmin: %w", err)
		}

		routes, err := policy.Default()
		if err != nil {
			return fmt.Errorf("invalid route table: %w", err)
		}
		issuer, err := credential.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			return err
		}

		sender := email.New(cfg.ResendKey, cfg.EmailFrom)
		if cfg.ResendKey == "" && cfg.IsProduction() {
			slog.Warn("email_disabled", "note", "SMARTFLEX_RESEND_KEY is not set, verification emails are not delivered")
		}

		var limiter *middleware.RateLimiter
		if cfg.RateLimit > 0 {
			limiter = middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
		}

		srv, err := web.NewServer(web.Deps{
			Stores:      web.Stores{AccountStore: stores.Accounts, BranchStore: stores.Branches, AuditStore: stores.Audit},
			Guard:       guard.New(routes, guard.Options{StrictRoles: cfg.StrictRoles}),
			Issuer:      issuer,
			Cookies:     credstore.NewCookieCodec(cfg.CookieKey, nil, cfg.IsProduction()),
			Sender:      sender,
			BaseURL:     cfg.BaseURL,
			CSRFKey:     cfg.CSRFKey,
			Secure:      cfg.IsProduction(),
			Limiter:     limiter,
			SlowRequest: cfg.SlowRequest,
		})
		if err != nil {
			return err
		}

		httpSrv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           srv,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		if limiter != nil {
			g.Go(func() error {
				limiter.Run(gctx)
				return nil
			})
		}
		g.Go(func() error {
			slog.Info("server_start", "addr", cfg.Addr, "env", cfg.Env, "version", cmd.Root().Version,
				"strict_roles", cfg.StrictRoles, "routes", len(routes.Routes()))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			slog.Info("server_shutdown", "timeout", shutdownTimeout.String())
			return httpSrv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", ":8080", "Listen address (env: SMARTFLEX_ADDR)")
	serveCmd.Flags().BoolVar(&strictRolesFlag, "strict-roles", false, "Deny guarded views to sessions without a role (env: SMARTFLEX_STRICT_ROLES)")
}
