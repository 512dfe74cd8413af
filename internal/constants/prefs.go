package constants

// Flat settings keys.
const (
	PrefCurrentVersion            = "current_version"
	PrefFirstInstallVersion       = "first_install_version"
	PrefFirstInstallSchemaVersion = "first_install_db_schema_version"
	PrefInstallationID            = "installation_id"

	PrefShareTarget       = "share_target"
	PrefFtpTargetLegacy   = "ftp_target"
	PrefNextReminder      = "nextReminderContrib"
	PrefQifEncodingLegacy = "qif_export_file_encoding"
	PrefAppDir            = "app_dir"

	PrefSortOrderLegacy              = "sort_order"
	PrefCategoriesSortByUsagesLegacy = "categories_sort_by_usages"
	PrefSortOrderAccounts            = "sort_order_accounts"
	PrefSortOrderCategories          = "sort_order_categories"
	PrefSortOrderBudgetCategories    = "sort_order_budget_categories"

	PrefAutoFillLegacy   = "auto_fill"
	PrefAutoFillSwitch   = "auto_fill_switch"
	PrefAutoFillAmount   = "auto_fill_amount"
	PrefAutoFillCategory = "auto_fill_category"
	PrefAutoFillComment  = "auto_fill_comment"
	PrefAutoFillMethod   = "auto_fill_method"
	PrefAutoFillAccount  = "auto_fill_account"

	PrefHomeCurrency     = "home_currency"
	PrefCustomDateFormat = "custom_date_format"
	PrefUITheme          = "ui_theme_key"

	PrefDistributionAggregateTypes = "distributionAggregateTypes"
	PrefBudgetAggregateTypes       = "budgetAggregateTypes"

	PrefCriterionFuture = "criterion_future"
	PrefGroupHeader     = "group_header"

	PrefDiscoveredPrefix = "discovered_"

	PrefItemRendererLegacy       = "ui_item_renderer_legacy"
	PrefItemRendererCategoryIcon = "ui_item_renderer_category_icon"
)

// Prefixes of keys that embed an entity id or a sub-type.
const (
	PrefFilterPrefix             = "filter"
	PrefDefaultBudgetPrefix      = "defaultBudget"
	PrefAccountExpansionPrefix   = "ACCOUNT_EXPANSION"
	PrefCollapsedHeadersPrefix   = "collapsedHeaders"
	PrefCollapsedHeadersCurrency = "collapsedHeadersDrawer_CURRENCY"
	PrefAggregateSortPrefix      = "AGGREGATE_SORT_DIRECTION_"
)

// Structured settings keys.
const (
	UICollapsedAccounts = "collapsedAccounts"
)
