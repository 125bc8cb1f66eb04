package branches

import "github.com/spf13/cobra"

// BranchesCmd is the parent command for branch management operations
var BranchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "Manage gym branches",
}

func init() {
	createCmd.Flags().StringVar(&nameFlag, "name", "", "Branch name (unique, case-insensitive)")
	createCmd.Flags().StringVar(&addressFlag, "address", "", "Street address")

	BranchesCmd.AddCommand(createCmd)
}
