package audit

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smartflex/cmd/smartflex/cmd/cmdutil"
	auditStore "smartflex/internal/adapters/storage/audit"
	domain "smartflex/internal/domain/audit"
)

var (
	categoryFlag string
	actionFlag   string
	emailFlag    string
	branchFlag   string
	limitFlag    int
	jsonFlag     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit events, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cmdutil.LoadConfig(cmd)
		if err != nil {
			return err
		}
		stores, err := cmdutil.OpenStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer stores.Close()

		events, err := stores.Audit.List(cmd.Context(), auditStore.Filter{
			Category:   domain.Category(categoryFlag),
			Action:     domain.Action(actionFlag),
			ActorEmail: emailFlag,
			Branch:     branchFlag,
		}, limitFlag)
		if err != nil {
			return fmt.Errorf("failed to list audit events: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonFlag {
			if events == nil {
				events = []domain.Event{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(events)
		}
		if len(events) == 0 {
			fmt.Fprintln(out, "No audit events")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTION\tACTOR\tROLE\tBRANCH\tRESOURCE\tIP")
		for _, e := range events {
			actor := e.ActorEmail
			if actor == "" {
				actor = e.ActorName
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, actor, e.ActorRole, e.Branch, e.Resource, e.IPAddress)
		}
		return w.Flush()
	},
}
