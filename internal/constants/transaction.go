package constants

// transactions.status
const (
	StatusNone        = 0
	StatusExported    = 1
	StatusUncommitted = 2
)

// transactions.cr_status
const (
	CrUnreconciled = "UNRECONCILED"
	CrCleared      = "CLEARED"
	CrReconciled   = "RECONCILED"
	CrVoid         = "VOID"
)

// CrStatuses in ordinal order; legacy settings stored the index into this list.
var CrStatuses = []string{CrUnreconciled, CrCleared, CrReconciled, CrVoid}

const (
	DefaultDateFormat = "dd/MM/yyyy"
	CategorySeparator = ":"
)
