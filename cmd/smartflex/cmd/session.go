package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"smartflex/internal/adapters/apiclient"
	"smartflex/internal/adapters/credstore"
)

var (
	urlFlag         string
	sessionFileFlag string
	loginEmailFlag  string
	loginPassFlag   string
	loginStdinFlag  bool
)

func defaultURL() string {
	if v := os.Getenv("SMARTFLEX_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

// sessionStore opens the file Credential Store used by the client commands.
func sessionStore() (*credstore.Store, string, error) {
	path := sessionFileFlag
	if path == "" {
		var err error
		if path, err = credstore.DefaultSessionPath(); err != nil {
			return nil, "", err
		}
	}
	return credstore.New(credstore.NewFileKV(path)), path, nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to a SmartFlex server and store the session locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginEmailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		password := loginPassFlag
		if loginStdinFlag {
			scanner := bufio.NewScanner(cmd.InOrStdin())
			fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		store, path, err := sessionStore()
		if err != nil {
			return err
		}
		user, err := apiclient.New(urlFlag, store).Login(cmd.Context(), loginEmailFlag, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\nSession saved to %s\n", user.Name, user.Role, path)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account behind the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := sessionStore()
		if err != nil {
			return err
		}
		me, err := apiclient.New(urlFlag, store).Me(cmd.Context())
		if errors.Is(err, apiclient.ErrNotLoggedIn) {
			return fmt.Errorf("not logged in; run `smartflex login` first")
		}
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return fmt.Errorf("stored session was rejected (expired?); run `smartflex login` again")
		}
		if err != nil {
			return err
		}

		sess := store.Read()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:   %s\n", me.Name)
		fmt.Fprintf(out, "Email:  %s\n", me.Email)
		fmt.Fprintf(out, "Role:   %s\n", me.Role)
		if sess.Branch != "" {
			fmt.Fprintf(out, "Branch: %s\n", sess.Branch)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := sessionStore()
		if err != nil {
			return err
		}
		if err := apiclient.New(urlFlag, store).Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, whoamiCmd, logoutCmd} {
		c.Flags().StringVar(&sessionFileFlag, "session-file", "", "Session file (default: user config dir/smartflex/session.json)")
	}
	for _, c := range []*cobra.Command{loginCmd, whoamiCmd} {
		c.Flags().StringVar(&urlFlag, "url", defaultURL(), "Server base URL (env: SMARTFLEX_URL)")
	}
	loginCmd.Flags().StringVar(&loginEmailFlag, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassFlag, "password", "", "Account password (use --stdin to avoid shell history)")
	loginCmd.Flags().BoolVar(&loginStdinFlag, "stdin", false, "Read password from stdin")
}
