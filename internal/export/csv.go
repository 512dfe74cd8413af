package export

import (
	"bufio"
	"path"
	"strings"

	"github.com/hance08/tally/internal/model"
	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/utils"
)

var csvColumns = []string{
	"Split transaction",
	"Date",
	"Payee",
	"Income",
	"Expense",
	"Category",
	"Comment",
	"Method",
	"Status",
	"Reference number",
	"Picture",
	"Tags",
}

const (
	splitMarkerParent = "*"
	splitMarkerPart   = "-"
)

// csvWriter writes every field quoted with embedded quotes doubled, which encoding/csv
// does not offer.
type csvWriter struct {
	*format
}

func (c *csvWriter) record(w *bufio.Writer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			w.WriteString(c.opts.FieldSeparator)
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}

func (c *csvWriter) header(w *bufio.Writer) {
	columns := csvColumns
	if c.opts.WithAccountColumn {
		columns = append([]string{"Account"}, columns...)
	}
	c.record(w, columns)
}

func (c *csvWriter) account(w *bufio.Writer, d *accountData) {
	for _, en := range d.entries {
		marker := ""
		if en.isSplit() {
			marker = splitMarkerParent
		}
		c.row(w, d, en.row, marker, c.entryLabel(en, nil))
		for _, part := range en.parts {
			c.row(w, d, part, splitMarkerPart, c.label(part, nil))
		}
	}
}

func (c *csvWriter) row(w *bufio.Writer, d *accountData, r *store.ExportRow, marker, label string) {
	income, expense := "0", "0"
	if r.Amount > 0 {
		income = utils.FormatMinor(r.Amount, d.scale, c.opts.DecimalSeparator)
	} else if r.Amount < 0 {
		expense = utils.FormatMinor(-r.Amount, d.scale, c.opts.DecimalSeparator)
	}

	picture := ""
	if r.PictureURI != "" {
		picture = path.Base(r.PictureURI)
	}

	fields := make([]string, 0, len(csvColumns)+1)
	if c.opts.WithAccountColumn {
		fields = append(fields, d.account.Label)
	}
	fields = append(fields,
		marker,
		c.date(r.Date),
		r.Payee,
		income,
		expense,
		label,
		r.Comment,
		model.MethodDisplayName(r.Method),
		model.StatusSymbol(r.CrStatus),
		r.Number,
		picture,
		joinTags(d.tags[r.ID]),
	)
	c.record(w, fields)
}

// joinTags separates labels with ", " and quotes a label that itself contains a comma.
func joinTags(labels []string) string {
	quoted := make([]string, len(labels))
	for i, label := range labels {
		if strings.Contains(label, ",") {
			label = "'" + label + "'"
		}
		quoted[i] = label
	}
	return strings.Join(quoted, ", ")
}
