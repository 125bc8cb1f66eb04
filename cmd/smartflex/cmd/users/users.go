package users

import "github.com/spf13/cobra"

// UsersCmd is the parent command for account management operations
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts",
	Long:  `Commands for managing member, trainer, admin and superadmin accounts directly in the database.`,
}

func init() {
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the account")
	createCmd.Flags().StringVar(&nameFlag, "name", "", "Display name of the account")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password (use --stdin to avoid shell history)")
	createCmd.Flags().StringVar(&roleFlag, "role", "member", "Role: member, trainer, admin or superadmin")
	createCmd.Flags().StringVar(&branchFlag, "branch", "", "Branch name (required for every role except superadmin)")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin instead of --password flag")

	UsersCmd.AddCommand(createCmd)
}
