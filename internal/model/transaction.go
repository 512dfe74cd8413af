package model

import "github.com/hance08/tally/internal/constants"

type Transaction struct {
	ID              int64
	AccountID       int64
	Amount          int64
	Date            int64
	CategoryID      *int64
	PayeeID         *int64
	Comment         string
	MethodID        *int64
	CrStatus        string
	Status          int
	Number          string
	PictureURI      string
	ParentID        *int64
	TransferPeer    *int64
	TransferAccount *int64
	DebtID          *int64
	UUID            string
}

func (t *Transaction) IsTransfer() bool {
	return t.TransferPeer != nil
}

// StatusSymbol is the one-character clearing marker shared by QIF and CSV.
func StatusSymbol(crStatus string) string {
	switch crStatus {
	case constants.CrCleared:
		return "*"
	case constants.CrReconciled:
		return "X"
	default:
		return ""
	}
}

type PaymentMethod struct {
	ID    int64
	Label string
}

// MethodDisplayName maps the predefined method labels to their display names and
// leaves user-defined labels unchanged.
func MethodDisplayName(label string) string {
	switch label {
	case "CHEQUE":
		return "Cheque"
	case "CREDITCARD":
		return "Credit card"
	case "DEPOSIT":
		return "Deposit"
	case "DIRECTDEBIT":
		return "Direct debit"
	default:
		return label
	}
}

type Tag struct {
	ID    int64
	Label string
}
