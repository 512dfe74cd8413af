package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hance08/tally/internal/config"
	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/export"
	"github.com/hance08/tally/internal/service"
	"github.com/hance08/tally/internal/settings"
	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/store/storetest"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := config.NewDefault()
	cfg.Defaults.Currency = "EUR"
	cfg.Database.Path = filepath.Join(dir, "tally.db")
	cfg.Settings.Path = filepath.Join(dir, "settings.yaml")
	cfg.Settings.UIPath = filepath.Join(dir, "ui.yaml")
	return cfg
}

func TestNewAppFreshInstall(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, cleanup, err := NewApp(ctx, cfg, storetest.MigrationsFS(), storetest.Logger())
	require.NoError(t, err)

	assert.Equal(t, constants.BaselineVersion, a.Versions.SchemaFrom)
	assert.Equal(t, constants.SchemaVersion, a.Versions.SchemaTo)
	assert.Equal(t, constants.AppVersion, a.Versions.SettingsFrom)
	assert.Equal(t, 0, a.Notices.Len())
	assert.Equal(t, "EUR", a.Flat.GetString(constants.PrefHomeCurrency, ""))
	cleanup()

	version, err := store.PeekVersion(ctx, cfg.Database.Path)
	require.NoError(t, err)
	assert.Equal(t, constants.SchemaVersion, version)

	saved, err := settings.OpenFile(cfg.Settings.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(constants.AppVersion), saved.GetInt(constants.PrefCurrentVersion, 0))
	assert.NotEmpty(t, saved.GetString(constants.PrefInstallationID, ""))
}

func TestNewAppSecondStartIsNoop(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	_, cleanup, err := NewApp(ctx, cfg, storetest.MigrationsFS(), storetest.Logger())
	require.NoError(t, err)
	cleanup()

	a, cleanup, err := NewApp(ctx, cfg, storetest.MigrationsFS(), storetest.Logger())
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, constants.SchemaVersion, a.Versions.SchemaFrom)
	assert.Equal(t, constants.SchemaVersion, a.Versions.SchemaTo)
	assert.Equal(t, constants.AppVersion, a.Versions.SettingsFrom)
}

func TestResolvePathsDefaults(t *testing.T) {
	p, err := ResolvePaths(config.NewDefault())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(p.DataDir, "tally.db"), p.DBPath)
	assert.Equal(t, filepath.Join(p.DataDir, "settings.yaml"), p.SettingsPath)
	assert.Equal(t, filepath.Join(p.DataDir, "ui.yaml"), p.UIPath)
}

func TestExpandPath(t *testing.T) {
	got, err := ExpandPath("/abs/ledger.db")
	require.NoError(t, err)
	assert.Equal(t, "/abs/ledger.db", got)

	got, err = ExpandPath("~/ledger.db")
	require.NoError(t, err)
	assert.NotContains(t, got, "~")
	assert.Equal(t, "ledger.db", filepath.Base(got))
}

func TestLazyBuildsOnce(t *testing.T) {
	ctx := context.Background()
	l := NewLazy(testConfig(t), storetest.MigrationsFS(), storetest.Logger())
	defer l.Close()

	first, err := l.Get(ctx)
	require.NoError(t, err)
	second, err := l.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestUpgradedLedgerExports(t *testing.T) {
	ctx := context.Background()
	a, cleanup, err := NewApp(ctx, testConfig(t), storetest.MigrationsFS(), storetest.Logger())
	require.NoError(t, err)
	defer cleanup()
	require.Equal(t, constants.BaselineVersion, a.Versions.SchemaFrom)

	checking, err := a.Service.Account.CreateAccount(ctx, service.AccountInput{Label: "Checking", Type: constants.AccountTypeBank})
	require.NoError(t, err)
	savings, err := a.Service.Account.CreateAccount(ctx, service.AccountInput{Label: "Savings"})
	require.NoError(t, err)
	food, err := a.Service.Category.EnsurePath(ctx, "Food")
	require.NoError(t, err)

	date := time.Date(2017, time.December, 15, 12, 0, 0, 0, time.UTC).Unix()
	_, err = a.Service.Transaction.AddTransaction(ctx, service.TransactionInput{
		AccountID: checking.ID, Amount: -1250, Date: date, CategoryID: &food,
		Payee: "Market", Comment: "Weekly", CrStatus: constants.CrCleared, Number: "7",
	})
	require.NoError(t, err)
	_, _, err = a.Service.Transaction.AddTransfer(ctx, service.TransferInput{
		AccountID: checking.ID, PeerAccountID: savings.ID, Amount: -500, Date: date + 1,
	})
	require.NoError(t, err)

	dir := t.TempDir()
	opts := export.DefaultOptions()
	opts.Location = time.UTC

	qif := export.FileDestination{Path: filepath.Join(dir, "checking.qif")}
	result, err := a.Exporter.ExportAccounts(ctx, []int64{checking.ID}, opts, qif)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Transactions)
	data, err := os.ReadFile(qif.Path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"!Account", "NChecking", "TBank", "^",
		"!Type:Bank",
		"D15/12/2017", "T-12.50", "MWeekly", "LFood", "PMarket", "C*", "N7", "^",
		"D15/12/2017", "T-5.00", "L[Savings]", "^",
	}, "\n")+"\n", string(data))

	opts.Format = export.FormatCSV
	opts.OnlyNotExported = true
	csv := export.FileDestination{Path: filepath.Join(dir, "savings.csv")}
	result, err = a.Exporter.ExportAccounts(ctx, []int64{savings.ID}, opts, csv)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Transactions)
	data, err = os.ReadFile(csv.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"";"15/12/2017";"";"5.00";"0";"[Checking]";"";"";"";"";"";""`, lines[1])

	// the exported checking rows are skipped on a second not-yet-exported run
	result, err = a.Exporter.ExportAccounts(ctx, []int64{checking.ID}, opts, csv)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Transactions)
}
