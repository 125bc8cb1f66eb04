package branches

import (
	"fmt"

	"github.com/spf13/cobra"

	"smartflex/cmd/smartflex/cmd/cmdutil"
	"smartflex/internal/application/orchestrators"
)

var (
	nameFlag    string
	addressFlag string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		if nameFlag == "" {
			return fmt.Errorf("--name flag is required")
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

		b, err := orchestrators.ExecuteCreateBranch(cmd.Context(), orchestrators.CreateBranchInput{
			Name:    nameFlag,
			Address: addressFlag,
		}, orchestrators.CreateBranchDeps{BranchStore: stores.Branches})
		if err != nil {
			return fmt.Errorf("failed to create branch: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created branch %s (%s)\n", b.Name, b.ID)
		return nil
	},
}
