package utils

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/hance08/tally/internal/constants"
)

// MinorScale returns the number of fraction digits of the currency, falling back to the
// default for codes unknown to ISO 4217 (including the aggregate pseudo code).
func MinorScale(code string) int32 {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return constants.DefaultMinorScale
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// FormatMinor renders an amount held in minor units with exactly scale fraction digits
// and decimalSep as the fraction separator.
func FormatMinor(minor int64, scale int32, decimalSep string) string {
	s := decimal.New(minor, -scale).StringFixed(scale)
	if decimalSep != "" && decimalSep != "." {
		s = strings.Replace(s, ".", decimalSep, 1)
	}
	return s
}
