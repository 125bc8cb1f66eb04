package audit

import "github.com/spf13/cobra"

// AuditCmd is the parent command for the security audit trail
var AuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the security audit trail",
}

func init() {
	listCmd.Flags().StringVar(&categoryFlag, "category", "", "Filter by category: account, security or branch")
	listCmd.Flags().StringVar(&actionFlag, "action", "", "Filter by action (login, login_failed, logout, denied, ...)")
	listCmd.Flags().StringVar(&emailFlag, "email", "", "Filter by actor email")
	listCmd.Flags().StringVar(&branchFlag, "branch", "", "Filter by branch")
	listCmd.Flags().IntVar(&limitFlag, "limit", 50, "Maximum number of events")
	listCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print events as JSON")

	AuditCmd.AddCommand(listCmd)
}
