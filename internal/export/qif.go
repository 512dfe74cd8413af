package export

import (
	"bufio"
	"strings"

	"github.com/hance08/tally/internal/model"
	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/utils"
)

var qifLabelEscaper = strings.NewReplacer(":", `\u003A`, "/", `\u002F`)

// SanitizeCategoryLabel escapes the characters QIF reads as category structure inside a
// single label component.
func SanitizeCategoryLabel(label string) string {
	return qifLabelEscaper.Replace(label)
}

// qifLineBreaks keeps a value on its line.
var qifLineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

type qifWriter struct {
	*format
}

func (q *qifWriter) header(*bufio.Writer) {}

func (q *qifWriter) line(w *bufio.Writer, code byte, value string) {
	w.WriteByte(code)
	w.WriteString(value)
	w.WriteByte('\n')
}

func (q *qifWriter) optional(w *bufio.Writer, code byte, value string) {
	if value != "" {
		q.line(w, code, qifLineBreaks.Replace(value))
	}
}

func (q *qifWriter) account(w *bufio.Writer, d *accountData) {
	qifType := model.QIFType(d.account.Type)
	w.WriteString("!Account\n")
	q.line(w, 'N', d.account.Label)
	q.line(w, 'T', qifType)
	w.WriteString("^\n")
	w.WriteString("!Type:" + qifType + "\n")

	for _, en := range d.entries {
		q.entry(w, d, en)
	}
}

func (q *qifWriter) entry(w *bufio.Writer, d *accountData, en entry) {
	r := en.row
	q.line(w, 'D', q.date(r.Date))
	q.line(w, 'T', utils.FormatMinor(r.Amount, d.scale, "."))
	q.optional(w, 'M', r.Comment)
	q.optional(w, 'L', q.entryLabel(en, SanitizeCategoryLabel))
	q.optional(w, 'P', r.Payee)
	q.optional(w, 'C', model.StatusSymbol(r.CrStatus))
	q.optional(w, 'N', r.Number)
	for _, part := range en.parts {
		q.split(w, d, part)
	}
	w.WriteString("^\n")
}

func (q *qifWriter) split(w *bufio.Writer, d *accountData, part *store.ExportRow) {
	q.line(w, 'S', q.label(part, SanitizeCategoryLabel))
	q.optional(w, 'E', part.Comment)
	q.line(w, '$', utils.FormatMinor(part.Amount, d.scale, "."))
}
