package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// ValidateFieldSeparator accepts a single character other than a quote or line break.
func ValidateFieldSeparator(val any) error {
	sep, ok := val.(string)
	if !ok {
		return fmt.Errorf("separator must be a string")
	}
	if utf8.RuneCountInString(sep) != 1 {
		return fmt.Errorf("separator must be a single character")
	}
	if strings.ContainsAny(sep, "\"\r\n") {
		return fmt.Errorf("separator can't be a quote or a line break")
	}
	return nil
}

func ValidateDecimalSeparator(val any) error {
	sep, ok := val.(string)
	if !ok {
		return fmt.Errorf("decimal separator must be a string")
	}
	if sep != "." && sep != "," {
		return fmt.Errorf("decimal separator must be '.' or ','")
	}
	return nil
}

// ValidateEncoding accepts any WHATWG encoding label, e.g. UTF-8, ISO-8859-1, windows-1252.
func ValidateEncoding(val any) error {
	name, ok := val.(string)
	if !ok {
		return fmt.Errorf("encoding must be a string")
	}
	if _, err := htmlindex.Get(strings.TrimSpace(name)); err != nil {
		return fmt.Errorf("unknown encoding '%s'", name)
	}
	return nil
}

// ValidateCurrency validates a currency code format
func ValidateCurrency(val any) error {
	code, ok := val.(string)
	if !ok {
		return fmt.Errorf("currency code must be a string")
	}
	code = strings.TrimSpace(strings.ToUpper(code))
	if len(code) != 3 {
		return fmt.Errorf("currency code must be 3 characters (e.g. USD)")
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return fmt.Errorf("currency code must contain only letters")
		}
	}
	return nil
}
