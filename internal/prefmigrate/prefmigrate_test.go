package prefmigrate

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/model"
	"github.com/hance08/tally/internal/schema"
	"github.com/hance08/tally/internal/settings"
	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/store/storetest"
	"github.com/hance08/tally/internal/telemetry"
)

type fakeLedger struct {
	sequence       int64
	sequenceErr    error
	synced         int
	income         bool
	corrupted      []int64
	budgets        []int64
	codes          []string
	markCount      int64
	marked         []store.BudgetScope
	sortDirections map[string]string
}

func (f *fakeLedger) PurgeOrphanTransactions(context.Context) (int64, error) { return 0, nil }
func (f *fakeLedger) TransactionSequence(context.Context) (int64, error) {
	return f.sequence, f.sequenceErr
}
func (f *fakeLedger) CountSyncedAccounts(context.Context) (int, error) { return f.synced, nil }
func (f *fakeLedger) HasNonTransferIncome(context.Context) (bool, error) { return f.income, nil }
func (f *fakeLedger) CorruptedSplitIDs(context.Context) ([]int64, error) { return f.corrupted, nil }
func (f *fakeLedger) BudgetIDs(context.Context) ([]int64, error) { return f.budgets, nil }
func (f *fakeLedger) CurrencyCodes(context.Context) ([]string, error) { return f.codes, nil }
func (f *fakeLedger) MarkDefaultBudget(_ context.Context, _ int64, scope store.BudgetScope) (int64, error) {
	f.marked = append(f.marked, scope)
	return f.markCount, nil
}
func (f *fakeLedger) SetCurrencySortDirection(_ context.Context, code, direction string) (int64, error) {
	if f.sortDirections == nil {
		f.sortDirections = make(map[string]string)
	}
	f.sortDirections[code] = direction
	return 1, nil
}

type recordingReporter struct {
	errs []error
}

func (r *recordingReporter) Report(err error, _ map[string]string) {
	r.errs = append(r.errs, err)
}

type fixture struct {
	flat     *settings.FileStore
	ui       *settings.Structured
	ledger   *fakeLedger
	reporter *recordingReporter
	logs     *bytes.Buffer
	migrator *Migrator
}

func newFixture(values map[string]any) *fixture {
	f := &fixture{
		flat:     settings.NewMemory(values),
		ui:       settings.NewStructuredMemory(),
		ledger:   &fakeLedger{markCount: 1},
		reporter: &recordingReporter{},
		logs:     &bytes.Buffer{},
	}
	f.migrator = NewMigrator(&Env{
		Flat:         f.flat,
		UI:           f.ui,
		Ledger:       f.ledger,
		Reporter:     f.reporter,
		Logger:       slog.New(slog.NewTextHandler(f.logs, nil)),
		HomeCurrency: "EUR",
	})
	return f
}

func (f *fixture) migrate(t *testing.T, from int) {
	t.Helper()
	require.NoError(t, f.migrator.MigrateSettings(context.Background(), from))
}

func value(t *testing.T, flat settings.Flat, key string) any {
	t.Helper()
	v, ok := flat.Value(key)
	require.True(t, ok, "missing %s", key)
	return v
}

func TestRun_FreshInstall(t *testing.T) {
	f := newFixture(nil)

	from, err := f.migrator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, constants.AppVersion, from)
	assert.Equal(t, int64(constants.AppVersion), f.flat.GetInt(constants.PrefCurrentVersion, 0))
	assert.Equal(t, int64(constants.AppVersion), f.flat.GetInt(constants.PrefFirstInstallVersion, 0))
	assert.Equal(t, int64(constants.SchemaVersion), f.flat.GetInt(constants.PrefFirstInstallSchemaVersion, 0))
	assert.Equal(t, "EUR", f.flat.GetString(constants.PrefHomeCurrency, ""))
	_, err = uuid.Parse(f.flat.GetString(constants.PrefInstallationID, ""))
	assert.NoError(t, err)
	assert.Zero(t, f.migrator.Notices().Len())
}

func TestRun_UpToDateIsUntouched(t *testing.T) {
	f := newFixture(map[string]any{constants.PrefCurrentVersion: constants.AppVersion, "ftp_target": "x"})

	from, err := f.migrator.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, constants.AppVersion, from)
	assert.Equal(t, "x", f.flat.GetString("ftp_target", ""))
	assert.False(t, f.flat.Contains(constants.PrefInstallationID))
}

func TestRun_RecordsVersionAndInstallationID(t *testing.T) {
	f := newFixture(map[string]any{constants.PrefCurrentVersion: 565})

	from, err := f.migrator.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 565, from)
	assert.Equal(t, int64(constants.AppVersion), f.flat.GetInt(constants.PrefCurrentVersion, 0))
	assert.True(t, f.flat.Contains(constants.PrefInstallationID))
}

func TestShareTarget(t *testing.T) {
	f := newFixture(map[string]any{constants.PrefFtpTargetLegacy: "ftp://example.com/backup"})
	f.migrate(t, 18)

	assert.False(t, f.flat.Contains(constants.PrefFtpTargetLegacy))
	assert.Equal(t, true, value(t, f.flat, constants.PrefShareTarget))
}

func TestDelayContribReminder(t *testing.T) {
	f := newFixture(map[string]any{"x": 1})
	f.ledger.sequence = 100
	f.migrate(t, 39)

	assert.Equal(t, int64(123), f.flat.GetInt(constants.PrefNextReminder, 0))
}

func TestFailingStepIsReportedAndSkipped(t *testing.T) {
	f := newFixture(map[string]any{"x": 1})
	f.ledger.sequenceErr = errors.New("disk I/O error")
	f.migrate(t, 39)

	require.Len(t, f.reporter.errs, 1)
	var anomaly *SettingsAnomaly
	require.ErrorAs(t, f.reporter.errs[0], &anomaly)
	assert.Equal(t, 40, anomaly.Version)
	assert.False(t, f.flat.Contains(constants.PrefNextReminder))
	assert.Equal(t, int64(constants.AppVersion), f.flat.GetInt(constants.PrefCurrentVersion, 0))
}

func TestReencodeFilters(t *testing.T) {
	tests := []struct {
		name, key, in string
		want          any
	}{
		{"legacy order", "filter_payee_5", "Joe;Doe;3,4", `3,4;Joe\;Doe`},
		{"already migrated", "filter_cat_5", "3,4;Food", "3,4;Food"},
		{"ambiguous", "filter_cat_6", "3;4", "3;4"},
		{"clearing status index", "filter_cr_5", "2", constants.CrReconciled},
		{"clearing status name", "filter_cr_6", constants.CrCleared, constants.CrCleared},
		{"other filter", "filter_date_5", "whatever", "whatever"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(map[string]any{tt.key: tt.in})
			f.migrate(t, 198)
			assert.Equal(t, tt.want, value(t, f.flat, tt.key))
			assert.Empty(t, f.reporter.errs)
		})
	}
}

func TestReencodeFilters_MalformedRemoved(t *testing.T) {
	for _, in := range []string{"no separator", "a;b", "9"} {
		t.Run(in, func(t *testing.T) {
			key := "filter_method_1"
			if in == "9" {
				key = "filter_cr_1"
			}
			f := newFixture(map[string]any{key: in})
			f.migrate(t, 198)
			assert.False(t, f.flat.Contains(key))
			require.Len(t, f.reporter.errs, 1)
		})
	}
}

func TestReencodeFilters_Idempotent(t *testing.T) {
	f := newFixture(map[string]any{"filter_payee_5": "Joe;3,4"})
	f.migrate(t, 198)
	f.migrate(t, 198)
	assert.Equal(t, "3,4;Joe", f.flat.GetString("filter_payee_5", ""))
}

func TestAppDirURI(t *testing.T) {
	f := newFixture(map[string]any{constants.PrefAppDir: "/home/ana/tally"})
	f.migrate(t, 201)
	assert.Equal(t, "file:///home/ana/tally", f.flat.GetString(constants.PrefAppDir, ""))

	f.migrate(t, 201)
	assert.Equal(t, "file:///home/ana/tally", f.flat.GetString(constants.PrefAppDir, ""))
}

func TestCategorySortOrder(t *testing.T) {
	f := newFixture(map[string]any{"x": 1})
	f.migrate(t, 220)
	assert.Equal(t, "USAGES", f.flat.GetString(constants.PrefSortOrderLegacy, ""))

	f = newFixture(map[string]any{constants.PrefCategoriesSortByUsagesLegacy: false})
	f.migrate(t, 220)
	assert.Equal(t, "ALPHABETIC", f.flat.GetString(constants.PrefSortOrderLegacy, ""))
}

func TestAutoFill(t *testing.T) {
	f := newFixture(map[string]any{constants.PrefAutoFillLegacy: true})
	f.migrate(t, 302)

	assert.False(t, f.flat.Contains(constants.PrefAutoFillLegacy))
	for _, key := range autoFillKeys {
		assert.True(t, f.flat.GetBool(key, false), key)
	}
	assert.True(t, f.flat.GetBool(constants.PrefAutoFillSwitch, false))
}

func TestAutoFillSwitch(t *testing.T) {
	f := newFixture(map[string]any{constants.PrefAutoFillAccount: "never"})
	f.migrate(t, 485)
	assert.Equal(t, false, value(t, f.flat, constants.PrefAutoFillSwitch))

	f = newFixture(map[string]any{constants.PrefAutoFillAccount: "aggregate"})
	f.migrate(t, 485)
	assert.Equal(t, true, value(t, f.flat, constants.PrefAutoFillSwitch))
}

func TestHomeCurrencyKeepsExisting(t *testing.T) {
	f := newFixture(map[string]any{constants.PrefHomeCurrency: "JPY"})
	f.migrate(t, 315)
	assert.Equal(t, "JPY", f.flat.GetString(constants.PrefHomeCurrency, ""))

	f = newFixture(map[string]any{"x": 1})
	f.migrate(t, 315)
	assert.Equal(t, "EUR", f.flat.GetString(constants.PrefHomeCurrency, ""))
}

func TestIncomeSwitchDiscovered(t *testing.T) {
	f := newFixture(map[string]any{"x": 1})
	f.ledger.income = true
	f.migrate(t, 384)
	assert.True(t, f.flat.GetBool("discovered_expense_income_switch", false))
}

func TestSortTitleToLabel(t *testing.T) {
	f := newFixture(map[string]any{
		constants.PrefSortOrderAccounts:   "TITLE",
		constants.PrefSortOrderCategories: "USAGES",
	})
	f.migrate(t, 392)
	assert.Equal(t, "LABEL", f.flat.GetString(constants.PrefSortOrderAccounts, ""))
	assert.Equal(t, "USAGES", f.flat.GetString(constants.PrefSortOrderCategories, ""))
}

func TestDropInvalidDateFormat(t *testing.T) {
	f := newFixture(map[string]any{constants.PrefCustomDateFormat: "yyyy"})
	f.migrate(t, 416)
	assert.False(t, f.flat.Contains(constants.PrefCustomDateFormat))

	f = newFixture(map[string]any{constants.PrefCustomDateFormat: "dd.MM.yyyy"})
	f.migrate(t, 416)
	assert.Equal(t, "dd.MM.yyyy", f.flat.GetString(constants.PrefCustomDateFormat, ""))
}

func TestAggregateTypesDefault(t *testing.T) {
	f := newFixture(map[string]any{
		constants.PrefDistributionAggregateTypes: true,
		constants.PrefBudgetAggregateTypes:       false,
	})
	f.migrate(t, 517)
	assert.False(t, f.flat.Contains(constants.PrefDistributionAggregateTypes))
	assert.Equal(t, false, value(t, f.flat, constants.PrefBudgetAggregateTypes))
}

func TestCorruptedSplitsQueueNotice(t *testing.T) {
	f := newFixture(map[string]any{"x": 1})
	f.ledger.corrupted = []int64{4, 9}
	f.migrate(t, 538)

	n, ok := f.migrator.Notices().Current()
	require.True(t, ok)
	assert.Equal(t, NoticeCorrupted, n.Text)
	require.Len(t, f.reporter.errs, 1)
	assert.Contains(t, f.reporter.errs[0].Error(), "2 corrupted split transactions")
}

func TestStaleDefaultBudgetRemoved(t *testing.T) {
	f := newFixture(map[string]any{
		"defaultBudget_1_MONTH": 99,
		"defaultBudget_1_YEAR":  1,
	})
	f.ledger.budgets = []int64{1}
	f.migrate(t, 551)

	assert.False(t, f.flat.Contains("defaultBudget_1_MONTH"))
	assert.False(t, f.flat.Contains("defaultBudget_1_YEAR"))
	require.Len(t, f.ledger.marked, 1)
	assert.Equal(t, store.BudgetScope{Grouping: "YEAR", AccountID: 1}, f.ledger.marked[0])
	assert.Contains(t, f.logs.String(), "removing stale default budget entry")
	assert.Empty(t, f.reporter.errs)
}

func TestDefaultBudgetScopes(t *testing.T) {
	f := newFixture(map[string]any{
		"defaultBudget_-2147483648_MONTH": 2,
		"defaultBudget_-5_WEEK":           3,
		"defaultBudget_abc_WEEK":          4,
		"defaultBudget_rest":              "not an id",
	})
	f.ledger.markCount = 0
	f.migrate(t, 556)

	assert.ElementsMatch(t, []store.BudgetScope{
		{Grouping: "MONTH", Currency: constants.AggregateHomeCurrency},
		{Grouping: "WEEK", CurrencyID: 5},
	}, f.ledger.marked)
	// two zero update counts and one malformed key
	assert.Len(t, f.reporter.errs, 3)
	assert.False(t, f.flat.Contains("defaultBudget_abc_WEEK"))
	assert.True(t, f.flat.Contains("defaultBudget_rest"))
}

func TestStructuredUISettings(t *testing.T) {
	f := newFixture(map[string]any{
		"ACCOUNT_EXPANSION_3":                  false,
		"ACCOUNT_EXPANSION_4":                  true,
		"collapsedHeaders_1":                   "3,5",
		constants.PrefCollapsedHeadersCurrency: "9223372036854775807,69026,12",
		constants.PrefCriterionFuture:          "current",
		constants.PrefGroupHeader:              false,
	})
	f.ledger.codes = []string{"EUR", "USD"}
	f.migrate(t, 556)

	collapsed, ok := f.ui.StringSet(constants.UICollapsedAccounts)
	require.True(t, ok)
	assert.Equal(t, []string{"3"}, collapsed)

	headers, _ := f.ui.StringSet("collapsedHeaders_1")
	assert.Equal(t, []string{"3", "5"}, headers)
	currencies, _ := f.ui.StringSet(constants.PrefCollapsedHeadersCurrency)
	assert.Equal(t, []string{"EUR", "___"}, currencies)

	criterion, _ := f.ui.String(constants.PrefCriterionFuture)
	assert.Equal(t, "Current", criterion)
	groupHeader, ok := f.ui.Bool(constants.PrefGroupHeader)
	require.True(t, ok)
	assert.False(t, groupHeader)

	for _, key := range []string{"ACCOUNT_EXPANSION_3", "collapsedHeaders_1", constants.PrefCriterionFuture, constants.PrefGroupHeader} {
		assert.False(t, f.flat.Contains(key), key)
	}

	n, ok := f.migrator.Notices().Current()
	require.True(t, ok)
	assert.Equal(t, NoticeUISettings, n.Text)
}

func TestAggregateSortDirection(t *testing.T) {
	f := newFixture(map[string]any{
		"AGGREGATE_SORT_DIRECTION_EUR": "DESC",
		"AGGREGATE_SORT_DIRECTION____": "ASC",
	})
	f.migrate(t, 562)

	assert.Equal(t, map[string]string{"EUR": "DESC"}, f.ledger.sortDirections)
	assert.False(t, f.flat.Contains("AGGREGATE_SORT_DIRECTION_EUR"))
	assert.False(t, f.flat.Contains("AGGREGATE_SORT_DIRECTION____"))
}

func TestItemRendererRange(t *testing.T) {
	for _, tt := range []struct {
		from    int
		applied bool
	}{{557, false}, {558, true}, {567, true}} {
		f := newFixture(map[string]any{"x": 1})
		require.NoError(t, f.ui.Edit(func(e *settings.Editor) error {
			e.SetBool(constants.PrefItemRendererLegacy, true)
			return nil
		}))
		f.migrate(t, tt.from)

		_, ok := f.ui.Bool(constants.PrefItemRendererCategoryIcon)
		assert.Equal(t, tt.applied, ok, "from %d", tt.from)
	}
}

func TestNoticesQueue(t *testing.T) {
	f := newFixture(map[string]any{"x": 1})
	f.ledger.synced = 1
	f.ledger.corrupted = []int64{1}
	f.migrate(t, 353)

	var seen []Notice
	q := f.migrator.Notices()
	for n, ok := q.Current(); ok; n, ok = q.Next() {
		seen = append(seen, n)
	}
	require.Len(t, seen, 3)
	assert.Equal(t, Notice{Text: NoticeSyncStorage, Position: 1, Count: 3}, seen[0])
	assert.Equal(t, NoticeUISettings, seen[2].Text)
	_, ok := q.Current()
	assert.False(t, ok)
}

func TestJavaStringHash(t *testing.T) {
	assert.Equal(t, int32(69026), javaStringHash("EUR"))
	assert.Equal(t, int32(99162322), javaStringHash("hello"))
	assert.Equal(t, int32(-2147483648), javaStringHash("polygenelubricants"))
}

func TestDefaultBudgetsAgainstLedger(t *testing.T) {
	ctx := context.Background()
	s, path := storetest.Open(t)
	_, err := schema.NewMigrator(s, telemetry.Nop{}, storetest.Logger()).Upgrade(ctx, constants.BaselineVersion)
	require.NoError(t, err)
	db := storetest.Raw(t, path)

	accountID, err := s.CreateAccount(ctx, &model.Account{Label: "Cash", Currency: "EUR", Type: constants.AccountTypeCash})
	require.NoError(t, err)
	accountBudget, err := s.CreateBudget(ctx, &model.Budget{Title: "Groceries", Grouping: "MONTH", AccountID: &accountID})
	require.NoError(t, err)
	homeBudget, err := s.CreateBudget(ctx, &model.Budget{Title: "All", Grouping: "YEAR", Currency: constants.AggregateHomeCurrency})
	require.NoError(t, err)
	euroBudget, err := s.CreateBudget(ctx, &model.Budget{Title: "Euro", Grouping: "WEEK", Currency: "EUR"})
	require.NoError(t, err)
	var euroID int64
	require.NoError(t, db.QueryRow("SELECT _id FROM currency WHERE code = 'EUR'").Scan(&euroID))

	flat := settings.NewMemory(map[string]any{
		"defaultBudget_" + itoa(accountID) + "_MONTH": accountBudget,
		"defaultBudget_-2147483648_YEAR":              homeBudget,
		"defaultBudget_" + itoa(-euroID) + "_WEEK":    euroBudget,
		"defaultBudget_" + itoa(accountID) + "_DAY":   euroBudget,
		"AGGREGATE_SORT_DIRECTION_EUR":                "DESC",
	})
	reporter := &recordingReporter{}
	m := NewMigrator(&Env{Flat: flat, UI: settings.NewStructuredMemory(), Ledger: s, Reporter: reporter, Logger: storetest.Logger()})
	require.NoError(t, m.MigrateSettings(ctx, 551))

	for _, id := range []int64{accountBudget, homeBudget, euroBudget} {
		isDefault, err := s.IsDefaultBudget(ctx, id)
		require.NoError(t, err)
		assert.True(t, isDefault, "budget %d", id)
	}
	// the DAY marker names a budget of another grouping
	require.Len(t, reporter.errs, 1)

	var direction string
	require.NoError(t, db.QueryRow("SELECT sort_direction FROM currency WHERE code = 'EUR'").Scan(&direction))
	assert.Equal(t, "DESC", direction)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
