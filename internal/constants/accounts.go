package constants

const (
	MaxLabelLen       = 100
	DefaultMinorScale = 2
)

// Account types as stored in accounts.type.
const (
	AccountTypeCash      = "CASH"
	AccountTypeBank      = "BANK"
	AccountTypeCCard     = "CCARD"
	AccountTypeAsset     = "ASSET"
	AccountTypeLiability = "LIABILITY"
)

// Values of accounts.sealed. SealedTransient marks an account whose seal is lifted only
// for the duration of a data repair.
const (
	Unsealed        = 0
	Sealed          = 1
	SealedTransient = -1
)

// AggregateHomeCurrency is the pseudo currency code used for the home-currency aggregate.
const AggregateHomeCurrency = "___"

// HomeAggregateID is the pseudo account id of the home-currency aggregate.
const HomeAggregateID int64 = -2147483648
