package export

import (
	"github.com/spf13/cobra"

	"github.com/hance08/tally/internal/app"
)

func NewExportCmd(lazy *app.Lazy) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export accounts as QIF or CSV, or the category tree as QIF.",
		Long:  `Export accounts as QIF or CSV, or the category tree as QIF.`,
	}

	exportCmd.AddCommand(NewAccountsCmd(lazy))
	exportCmd.AddCommand(NewCategoriesCmd(lazy))

	return exportCmd
}
