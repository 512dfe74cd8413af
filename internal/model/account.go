package model

import "github.com/hance08/tally/internal/constants"

type Account struct {
	ID              int64
	Label           string
	OpeningBalance  int64
	Description     string
	Currency        string
	Type            string
	SyncAccountName string
	Sealed          int
}

func (a *Account) IsSealed() bool {
	return a.Sealed == constants.Sealed
}

// QIFType returns the account type name used by the QIF format.
func QIFType(accType string) string {
	switch accType {
	case constants.AccountTypeBank:
		return "Bank"
	case constants.AccountTypeCCard:
		return "CCard"
	case constants.AccountTypeAsset:
		return "Oth A"
	case constants.AccountTypeLiability:
		return "Oth L"
	default:
		return "Cash"
	}
}
