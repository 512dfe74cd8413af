package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/validation"
)

type Format string

const (
	FormatQIF Format = "qif"
	FormatCSV Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatQIF, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format '%s', expected qif or csv", s)
}

type Options struct {
	Format          Format
	OnlyNotExported bool
	// Append writes after existing content; the CSV header is then omitted.
	Append bool
	// DateFormat is a SimpleDateFormat-style pattern. QIF always uses dd/MM/yyyy.
	DateFormat       string
	DecimalSeparator string
	FieldSeparator   string
	Encoding         string
	Location         *time.Location
	// WithAccountColumn adds a leading account label column to CSV rows.
	WithAccountColumn bool
}

func DefaultOptions() Options {
	return Options{
		Format:           FormatQIF,
		DateFormat:       constants.DefaultDateFormat,
		DecimalSeparator: ".",
		FieldSeparator:   ";",
		Encoding:         "UTF-8",
		Location:         time.Local,
	}
}

func (o Options) Validate() error {
	if _, err := ParseFormat(string(o.Format)); err != nil {
		return err
	}
	if err := validation.ValidateDateFormat(o.DateFormat); err != nil {
		return err
	}
	if err := validation.ValidateDecimalSeparator(o.DecimalSeparator); err != nil {
		return err
	}
	if err := validation.ValidateFieldSeparator(o.FieldSeparator); err != nil {
		return err
	}
	return validation.ValidateEncoding(o.Encoding)
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}
