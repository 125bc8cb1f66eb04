package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"smartflex/cmd/smartflex/cmd/audit"
	"smartflex/cmd/smartflex/cmd/branches"
	"smartflex/cmd/smartflex/cmd/users"
)

var rootCmd = &cobra.Command{
	Use:   "smartflex",
	Short: "SmartFlex gym management server and client",
	Long: `SmartFlex serves the gym management web application and provides
administration and client commands for accounts, branches and sessions.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (env: SMARTFLEX_DB)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(users.UsersCmd)
	rootCmd.AddCommand(branches.BranchesCmd)
	rootCmd.AddCommand(audit.AuditCmd)
	rootCmd.AddCommand(loginCmd, whoamiCmd, logoutCmd)
}

// Execute runs the root command
func Execute(version string) {
	rootCmd.Version = version
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
