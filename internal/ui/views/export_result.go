package views

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/hance08/tally/internal/export"
	"github.com/hance08/tally/internal/ui"
)

func RenderExportResult(result *export.Result, format export.Format) error {
	ui.Separator()

	tableData := pterm.TableData{
		{pterm.Blue("Destination"), result.Destination},
		{pterm.Blue("Format"), string(format)},
		{pterm.Blue("Accounts"), fmt.Sprintf("%d", result.Accounts)},
		{pterm.Blue("Transactions"), fmt.Sprintf("%d", result.Transactions)},
		{pterm.Blue("Marked exported"), fmt.Sprintf("%d", result.Marked)},
	}

	if err := pterm.DefaultTable.WithData(tableData).Render(); err != nil {
		return err
	}

	if result.Transactions == 0 {
		pterm.Warning.Println("No transactions matched, the file only holds the headers.")
		return nil
	}
	pterm.Success.Println("Export finished successfully!")
	return nil
}

func RenderCategoryExport(destination string, count int) {
	ui.Separator()
	pterm.Success.Printf("Exported %d categories to %s\n", count, destination)
}
