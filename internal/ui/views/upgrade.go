package views

import (
	"github.com/pterm/pterm"

	"github.com/hance08/tally/internal/app"
	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/prefmigrate"
	"github.com/hance08/tally/internal/ui"
)

func RenderUpgradeSummary(v app.Versions) error {
	ui.PrintL1Title("Upgrade")

	schema := pterm.Green("up to date")
	if v.SchemaFrom < v.SchemaTo {
		schema = pterm.Sprintf("%d -> %d", v.SchemaFrom, v.SchemaTo)
	}
	prefs := pterm.Green("up to date")
	if v.SettingsFrom < constants.AppVersion {
		prefs = pterm.Sprintf("%d -> %d", v.SettingsFrom, constants.AppVersion)
	}

	tableData := pterm.TableData{
		{pterm.Blue("Ledger schema"), schema},
		{pterm.Blue("Settings"), prefs},
	}
	return pterm.DefaultTable.WithData(tableData).Render()
}

func RenderNotice(n prefmigrate.Notice) {
	ui.PrintL2Title("Notice %d of %d", n.Position, n.Count)
	pterm.DefaultBox.Println(n.Text)
}
