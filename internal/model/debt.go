package model

type Debt struct {
	ID          int64
	PayeeID     int64
	Date        int64
	Label       string
	Amount      int64
	Currency    string
	Description string
	Sealed      bool
}

type Budget struct {
	ID        int64
	Title     string
	Grouping  string
	AccountID *int64
	Currency  string
	IsDefault bool
}
