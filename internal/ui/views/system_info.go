package views

import (
	"fmt"

	"github.com/pterm/pterm"
)

type SystemInfoItem struct {
	ConfigPath      string
	DBPath          string
	DBExists        bool // true = Found, false = Not Found
	SchemaVersion   int
	BuiltinSchema   int
	SettingsPath    string
	SettingsVersion int64
	BuiltinSettings int
	UIPath          string
	DefaultCurrency string
	AppDataDir      string
}

func RenderSystemInfo(data SystemInfoItem) error {
	dbStatus := pterm.Green("Found")
	if !data.DBExists {
		dbStatus = pterm.Red("Not Found (Will be created)")
	}

	tableData := pterm.TableData{
		{"Configuration File", data.ConfigPath},
		{"Database Path", data.DBPath},
		{"Database Status", dbStatus},
		{"Schema Version", versionStatus(int64(data.SchemaVersion), int64(data.BuiltinSchema))},
		{"Settings File", data.SettingsPath},
		{"Settings Version", versionStatus(data.SettingsVersion, int64(data.BuiltinSettings))},
		{"UI Settings File", data.UIPath},
		{"Home Currency", data.DefaultCurrency},
		{"AppData Directory", data.AppDataDir},
	}

	return pterm.DefaultTable.WithData(tableData).Render()
}

func versionStatus(stored, builtin int64) string {
	switch {
	case stored == 0:
		return pterm.Gray(fmt.Sprintf("none (built-in %d)", builtin))
	case stored < builtin:
		return pterm.Yellow(fmt.Sprintf("%d (upgrade to %d pending)", stored, builtin))
	case stored > builtin:
		return pterm.Red(fmt.Sprintf("%d (newer than this build, %d)", stored, builtin))
	}
	return pterm.Green(fmt.Sprintf("%d", stored))
}
