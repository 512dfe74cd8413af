package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hance08/tally/internal/app"
	"github.com/hance08/tally/internal/prefmigrate"
	"github.com/hance08/tally/internal/ui/prompts"
	"github.com/hance08/tally/internal/ui/views"
)

func NewUpgradeCmd(lazy *app.Lazy) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Bring the ledger and the settings to this version",
		Long: `Run every pending ledger schema step and settings step, then show the upgrade
notices one at a time. The same steps also run before any command that opens the ledger.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := lazy.Get(cmd.Context())
			if err != nil {
				return err
			}
			if err := views.RenderUpgradeSummary(a.Versions); err != nil {
				return err
			}
			return showNotices(a.Notices)
		},
	}
}

// showNotices presents the queued notices; each acknowledgement advances the queue.
func showNotices(q *prefmigrate.Notices) error {
	for n, ok := q.Current(); ok; n, ok = q.Next() {
		views.RenderNotice(n)
		if err := prompts.PromptAcknowledge(); err != nil {
			return err
		}
	}
	return nil
}
