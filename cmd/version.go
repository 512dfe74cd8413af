package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hance08/tally/internal/constants"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the built-in version codes",
		Run: func(cmd *cobra.Command, args []string) {
			pterm.Printf("tally %d (ledger schema %d)\n", constants.AppVersion, constants.SchemaVersion)
		},
	}
}
