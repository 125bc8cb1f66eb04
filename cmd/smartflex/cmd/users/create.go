package users

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"smartflex/cmd/smartflex/cmd/cmdutil"
	"smartflex/internal/application/orchestrators"
)

var (
	emailFlag    string
	nameFlag     string
	passwordFlag string
	roleFlag     string
	branchFlag   string
	stdinFlag    bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a verified account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if nameFlag == "" {
			return fmt.Errorf("--name flag is required")
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
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

		cfg, err := cmdutil.LoadConfig(cmd)
		if err != nil {
			return err
		}
		stores, err := cmdutil.OpenStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer stores.Close()

		id, err := orchestrators.ExecuteCreateAccount(cmd.Context(), orchestrators.CreateAccountInput{
			Email:    emailFlag,
			Name:     nameFlag,
			Password: password,
			Role:     roleFlag,
			Branch:   branchFlag,
			Verified: true,
		}, orchestrators.CreateAccountDeps{AccountStore: stores.Accounts, BranchStore: stores.Branches})
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s account %s (%s)\n", roleFlag, emailFlag, id)
		return nil
	},
}
