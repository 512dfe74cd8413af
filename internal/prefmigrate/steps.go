package prefmigrate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/settings"
	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/validation"
)

// Upgrade notices.
const (
	NoticeSyncStorage = "The storage format of synced accounts has changed. Open each synced account once on every device to convert it."
	NoticeCorrupted   = "Split transactions whose parts do not match their total were found. Please review your split transactions."
	NoticeUISettings  = "User interface preferences now live in a separate settings file. Review them after this upgrade."
)

func Steps() []Step {
	return []Step{
		{Version: 19, Name: "rename_share_target", Apply: renameShareTarget},
		{Version: 28, Name: "purge_orphan_transactions", Apply: purgeOrphanTransactions},
		{Version: 30, Name: "share_target_flag", Apply: shareTargetFlag},
		{Version: 40, Name: "delay_contrib_reminder", Apply: delayContribReminder},
		{Version: 163, Name: "drop_qif_encoding", Apply: remove(constants.PrefQifEncodingLegacy)},
		{Version: 199, Name: "reencode_filters", Apply: reencodeFilters},
		{Version: 202, Name: "app_dir_uri", Apply: appDirURI},
		{Version: 221, Name: "category_sort_order", Apply: categorySortOrder},
		{Version: 303, Name: "expand_auto_fill", Apply: expandAutoFill},
		{Version: 316, Name: "home_currency", Apply: homeCurrency},
		{Version: 354, Name: "sync_storage_notice", Apply: syncStorageNotice},
		{Version: 385, Name: "discover_income_switch", Apply: discoverIncomeSwitch},
		{Version: 393, Name: "sort_title_to_label", Apply: sortTitleToLabel},
		{Version: 417, Name: "drop_invalid_date_format", Apply: dropInvalidDateFormat},
		{Version: 429, Name: "ui_theme", Apply: uiTheme},
		{Version: 486, Name: "auto_fill_switch", Apply: autoFillSwitch},
		{Version: 518, Name: "aggregate_types_default", Apply: aggregateTypesDefault},
		{Version: 539, Name: "detect_corrupted_splits", Apply: detectCorruptedSplits},
		{Version: 552, Name: "drop_stale_default_budgets", Apply: dropStaleDefaultBudgets},
		{Version: 557, Name: "structured_ui_settings", Apply: structuredUISettings},
		{Version: 563, Name: "aggregate_sort_direction", Apply: aggregateSortDirection},
		{Version: 568, Since: 558, Name: "item_renderer_icon", Apply: itemRendererIcon},
	}
}

func remove(keys ...string) func(context.Context, *Env) error {
	return func(_ context.Context, env *Env) error {
		for _, key := range keys {
			env.Flat.Remove(key)
		}
		return nil
	}
}

func keysWithPrefix(flat settings.Flat, prefix string) []string {
	var keys []string
	for _, key := range flat.Keys() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	}
	return 0, false
}

func renameShareTarget(_ context.Context, env *Env) error {
	env.Flat.Put(constants.PrefShareTarget, env.Flat.GetString(constants.PrefFtpTargetLegacy, ""))
	env.Flat.Remove(constants.PrefFtpTargetLegacy)
	return nil
}

func purgeOrphanTransactions(ctx context.Context, env *Env) error {
	n, err := env.Ledger.PurgeOrphanTransactions(ctx)
	if err != nil {
		return err
	}
	env.Logger.Info("purged transactions without account", slog.Int64("rows", n))
	return nil
}

func shareTargetFlag(_ context.Context, env *Env) error {
	if v, ok := env.Flat.Value(constants.PrefShareTarget); ok {
		if s, isString := v.(string); isString && s != "" {
			env.Flat.Put(constants.PrefShareTarget, true)
		}
	}
	return nil
}

func delayContribReminder(ctx context.Context, env *Env) error {
	seq, err := env.Ledger.TransactionSequence(ctx)
	if err != nil {
		return err
	}
	env.Flat.Put(constants.PrefNextReminder, seq+23)
	return nil
}

// escapeSeparator neutralizes the criterion separator inside a label list.
func escapeSeparator(s string) string {
	return strings.ReplaceAll(s, ";", `\;`)
}

func isIDList(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ",") {
		if part == "" {
			return false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// reencodeFilters rewrites saved filters from "<labels>;<ids>" to "<ids>;<escaped labels>"
// and clearing-status filters from an ordinal to a name. Values already in the new shape
// are left alone.
func reencodeFilters(_ context.Context, env *Env) error {
	for _, key := range keysWithPrefix(env.Flat, constants.PrefFilterPrefix+"_") {
		parts := strings.Split(key, "_")
		if len(parts) < 2 {
			continue
		}
		value := env.Flat.GetString(key, "")
		switch parts[1] {
		case "method", "payee", "cat":
			reencodeCriterion(env, key, value)
		case "cr":
			reencodeCrStatus(env, key, value)
		}
	}
	return nil
}

func reencodeCriterion(env *Env, key, value string) {
	last := strings.LastIndex(value, ";")
	if last < 0 {
		env.Flat.Remove(key)
		env.anomaly(key, "filter value without separator", nil)
		return
	}
	legacy := isIDList(value[last+1:])
	migrated := isIDList(value[:strings.Index(value, ";")])

	switch {
	case legacy && !migrated:
		env.Flat.Put(key, value[last+1:]+";"+escapeSeparator(value[:last]))
	case migrated && !legacy:
		env.Logger.Debug("filter already migrated", slog.String("key", key))
	case migrated && legacy:
		env.Logger.Warn("ambiguous filter value left unchanged", slog.String("key", key), slog.String("value", value))
	default:
		env.Flat.Remove(key)
		env.anomaly(key, "malformed filter value", nil)
	}
}

func reencodeCrStatus(env *Env, key, value string) {
	if slices.Contains(constants.CrStatuses, value) {
		return
	}
	idx, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || idx < 0 || idx >= len(constants.CrStatuses) {
		env.Flat.Remove(key)
		env.anomaly(key, "invalid clearing status "+strconv.Quote(value), err)
		return
	}
	env.Flat.Put(key, constants.CrStatuses[idx])
}

func appDirURI(_ context.Context, env *Env) error {
	dir := env.Flat.GetString(constants.PrefAppDir, "")
	if dir == "" || strings.HasPrefix(dir, "file:") {
		return nil
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(dir)}
	env.Flat.Put(constants.PrefAppDir, u.String())
	return nil
}

func categorySortOrder(_ context.Context, env *Env) error {
	order := "ALPHABETIC"
	if env.Flat.GetBool(constants.PrefCategoriesSortByUsagesLegacy, true) {
		order = "USAGES"
	}
	env.Flat.Put(constants.PrefSortOrderLegacy, order)
	return nil
}

var autoFillKeys = []string{
	constants.PrefAutoFillAmount,
	constants.PrefAutoFillCategory,
	constants.PrefAutoFillComment,
	constants.PrefAutoFillMethod,
}

func expandAutoFill(_ context.Context, env *Env) error {
	if env.Flat.GetBool(constants.PrefAutoFillLegacy, false) {
		for _, key := range autoFillKeys {
			env.Flat.Put(key, true)
		}
	}
	env.Flat.Remove(constants.PrefAutoFillLegacy)
	return nil
}

func homeCurrency(_ context.Context, env *Env) error {
	if env.Flat.GetString(constants.PrefHomeCurrency, "") == "" && env.HomeCurrency != "" {
		env.Flat.Put(constants.PrefHomeCurrency, env.HomeCurrency)
	}
	return nil
}

func syncStorageNotice(ctx context.Context, env *Env) error {
	n, err := env.Ledger.CountSyncedAccounts(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		env.Notices.Add(NoticeSyncStorage)
	}
	return nil
}

func discoverIncomeSwitch(ctx context.Context, env *Env) error {
	has, err := env.Ledger.HasNonTransferIncome(ctx)
	if err != nil {
		return err
	}
	if has {
		env.Flat.Put(constants.PrefDiscoveredPrefix+"expense_income_switch", true)
	}
	return nil
}

func sortTitleToLabel(_ context.Context, env *Env) error {
	for _, key := range []string{
		constants.PrefSortOrderAccounts,
		constants.PrefSortOrderCategories,
		constants.PrefSortOrderBudgetCategories,
	} {
		if env.Flat.GetString(key, "") == "TITLE" {
			env.Flat.Put(key, "LABEL")
		}
	}
	return nil
}

func dropInvalidDateFormat(_ context.Context, env *Env) error {
	format, ok := env.Flat.Value(constants.PrefCustomDateFormat)
	if !ok {
		return nil
	}
	if err := validation.ValidateDateFormat(format); err != nil {
		env.Logger.Debug("removed erroneous date format", slog.Any("format", format), slog.Any("error", err))
		env.Flat.Remove(constants.PrefCustomDateFormat)
	}
	return nil
}

func uiTheme(_ context.Context, env *Env) error {
	env.Flat.Put(constants.PrefUITheme, "default")
	return nil
}

func autoFillSwitch(_ context.Context, env *Env) error {
	on := env.Flat.GetString(constants.PrefAutoFillAccount, "never") != "never"
	for _, key := range autoFillKeys {
		on = on || env.Flat.GetBool(key, false)
	}
	env.Flat.Put(constants.PrefAutoFillSwitch, on)
	return nil
}

// aggregateTypesDefault: true used to mean "aggregate", which is now expressed by the
// absence of the key.
func aggregateTypesDefault(_ context.Context, env *Env) error {
	for _, key := range []string{constants.PrefDistributionAggregateTypes, constants.PrefBudgetAggregateTypes} {
		if env.Flat.GetBool(key, true) {
			env.Flat.Remove(key)
		}
	}
	return nil
}

func detectCorruptedSplits(ctx context.Context, env *Env) error {
	ids, err := env.Ledger.CorruptedSplitIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		env.Notices.Add(NoticeCorrupted)
		env.Reporter.Report(fmt.Errorf("%d corrupted split transactions detected", len(ids)), map[string]string{
			"version": fmt.Sprint(env.version),
		})
	}
	return nil
}

func dropStaleDefaultBudgets(ctx context.Context, env *Env) error {
	ids, err := env.Ledger.BudgetIDs(ctx)
	if err != nil {
		return err
	}
	for _, key := range keysWithPrefix(env.Flat, constants.PrefDefaultBudgetPrefix) {
		budgetID := env.Flat.GetInt(key, 0)
		if !slices.Contains(ids, budgetID) {
			env.Logger.Warn("removing stale default budget entry, budget no longer exists",
				slog.String("key", key), slog.Int64("budget", budgetID))
			env.Flat.Remove(key)
		}
	}
	return nil
}

// structuredUISettings moves the default budget markers into the ledger and the view
// state preferences into the structured store.
func structuredUISettings(ctx context.Context, env *Env) error {
	migrateDefaultBudgets(ctx, env)

	codes, err := env.Ledger.CurrencyCodes(ctx)
	if err != nil {
		return err
	}

	expansionKeys := keysWithPrefix(env.Flat, constants.PrefAccountExpansionPrefix)
	var collapsed []string
	for _, key := range expansionKeys {
		if v, ok := env.Flat.Value(key); ok && v == false {
			collapsed = append(collapsed, key[strings.LastIndex(key, "_")+1:])
		}
	}

	headerKeys := keysWithPrefix(env.Flat, constants.PrefCollapsedHeadersPrefix)
	headers := make(map[string][]string)
	for _, key := range headerKeys {
		v, _ := env.Flat.Value(key)
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		var ids []string
		for _, headerID := range strings.Split(s, ",") {
			if key != constants.PrefCollapsedHeadersCurrency {
				ids = append(ids, headerID)
				continue
			}
			if code, ok := currencyForHeader(headerID, codes); ok {
				ids = append(ids, code)
			}
		}
		headers[key] = ids
	}

	criterion := "EndOfDay"
	if env.Flat.GetString(constants.PrefCriterionFuture, "end_of_day") == "current" {
		criterion = "Current"
	}
	groupHeader := env.Flat.GetBool(constants.PrefGroupHeader, true)

	err = env.UI.Edit(func(e *settings.Editor) error {
		if len(collapsed) > 0 {
			e.SetStringSet(constants.UICollapsedAccounts, collapsed)
		}
		for key, ids := range headers {
			e.SetStringSet(key, ids)
		}
		e.SetString(constants.PrefCriterionFuture, criterion)
		e.SetBool(constants.PrefGroupHeader, groupHeader)
		return nil
	})
	if err != nil {
		return err
	}

	for _, key := range slices.Concat(expansionKeys, headerKeys) {
		env.Flat.Remove(key)
	}
	env.Flat.Remove(constants.PrefCriterionFuture)
	env.Flat.Remove(constants.PrefGroupHeader)

	env.Notices.Add(NoticeUISettings)
	return nil
}

// migrateDefaultBudgets turns defaultBudget_<account>_<grouping> = <budget id> entries
// into the budget's is_default flag. A non-positive account id addresses an aggregate:
// the home aggregate id or the negated id of a currency.
func migrateDefaultBudgets(ctx context.Context, env *Env) {
	for _, key := range keysWithPrefix(env.Flat, constants.PrefDefaultBudgetPrefix) {
		v, _ := env.Flat.Value(key)
		budgetID, ok := asInt(v)
		if !ok {
			continue
		}
		env.Flat.Remove(key)

		parts := strings.Split(key, "_")
		if len(parts) < 3 {
			env.anomaly(key, "malformed default budget key", nil)
			continue
		}
		accountID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			env.anomaly(key, "malformed default budget key", err)
			continue
		}

		scope := store.BudgetScope{Grouping: parts[2]}
		switch {
		case accountID > 0:
			scope.AccountID = accountID
		case accountID == constants.HomeAggregateID:
			scope.Currency = constants.AggregateHomeCurrency
		default:
			scope.CurrencyID = -accountID
		}

		n, err := env.Ledger.MarkDefaultBudget(ctx, budgetID, scope)
		if err != nil {
			env.anomaly(key, "failed to mark default budget", err)
			continue
		}
		if n != 1 {
			env.anomaly(key, fmt.Sprintf("expected one budget to be updated, but update count is %d", n), nil)
		}
	}
}

// currencyForHeader decodes a collapsed currency header id: the home aggregate is stored
// as MaxInt64, other currencies as the 32-bit string hash of their code.
func currencyForHeader(headerID string, codes []string) (string, bool) {
	if headerID == strconv.FormatInt(math.MaxInt64, 10) {
		return constants.AggregateHomeCurrency, true
	}
	hash, err := strconv.ParseInt(headerID, 10, 32)
	if err != nil {
		return "", false
	}
	for _, code := range codes {
		if javaStringHash(code) == int32(hash) {
			return code, true
		}
	}
	return "", false
}

// javaStringHash is s[0]*31^(n-1) + ... + s[n-1] over UTF-16 code units with int32
// overflow.
func javaStringHash(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(u)
	}
	return h
}

func aggregateSortDirection(ctx context.Context, env *Env) error {
	for _, key := range keysWithPrefix(env.Flat, constants.PrefAggregateSortPrefix) {
		code := strings.TrimPrefix(key, constants.PrefAggregateSortPrefix)
		v, _ := env.Flat.Value(key)
		if direction, ok := v.(string); ok && code != constants.AggregateHomeCurrency && strings.TrimSpace(code) != "" {
			if _, err := env.Ledger.SetCurrencySortDirection(ctx, code, direction); err != nil {
				env.anomaly(key, "failed to set sort direction", err)
			}
		}
		env.Flat.Remove(key)
	}
	return nil
}

func itemRendererIcon(_ context.Context, env *Env) error {
	if legacy, ok := env.UI.Bool(constants.PrefItemRendererLegacy); ok && legacy {
		return env.UI.Edit(func(e *settings.Editor) error {
			e.SetBool(constants.PrefItemRendererCategoryIcon, false)
			return nil
		})
	}
	return nil
}
