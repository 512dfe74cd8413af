// Package export renders ledger accounts as QIF or CSV and the category tree as a QIF
// category list.
package export

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/model"
	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/utils"
	"github.com/hance08/tally/internal/validation"
)

// Ledger is the read side of the store an export needs, plus marking rows exported.
type Ledger interface {
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	GetAllCategories(ctx context.Context) ([]*model.Category, error)
	EachExportRow(ctx context.Context, accountID int64, onlyNotExported bool, fn func(*store.ExportRow) error) error
	ExportSplitParts(ctx context.Context, accountID int64) (map[int64][]*store.ExportRow, error)
	TagLabels(ctx context.Context, accountID int64) (map[int64][]string, error)
	MarkExported(ctx context.Context, ids []int64) (int64, error)
}

var _ Ledger = (*store.Store)(nil)

type Exporter struct {
	ledger Ledger
	logger *slog.Logger
}

func NewExporter(ledger Ledger, logger *slog.Logger) *Exporter {
	return &Exporter{ledger: ledger, logger: logger}
}

type Result struct {
	Destination  string
	Accounts     int
	Transactions int
	Marked       int64
}

// entry is a top-level transaction together with its split parts.
type entry struct {
	row   *store.ExportRow
	parts []*store.ExportRow
}

func (en entry) isSplit() bool {
	return len(en.parts) > 0
}

type accountData struct {
	account *model.Account
	scale   int32
	entries []entry
	tags    map[int64][]string
}

// format holds what both writers share: the category tree and date rendering.
type format struct {
	opts   Options
	layout string
	tree   *model.CategoryTree
}

func (f *format) date(epoch int64) string {
	return time.Unix(epoch, 0).In(f.opts.location()).Format(f.layout)
}

// label is the category column of a row: the bracketed peer account for a transfer leg,
// otherwise the full category path.
func (f *format) label(r *store.ExportRow, escape func(string) string) string {
	if r.IsTransfer {
		return "[" + r.TransferAccountLabel + "]"
	}
	if r.CategoryID == nil {
		return ""
	}
	return f.tree.FullLabel(*r.CategoryID, constants.CategorySeparator, escape)
}

// entryLabel falls back to the first part's label for a split without own category.
func (f *format) entryLabel(en entry, escape func(string) string) string {
	label := f.label(en.row, escape)
	if label == "" && en.isSplit() {
		label = f.label(en.parts[0], escape)
	}
	return label
}

type ledgerWriter interface {
	header(w *bufio.Writer)
	account(w *bufio.Writer, data *accountData)
}

// ExportAccounts writes the accounts to dest in order. Only the first account honours
// opts.Append; the others follow it in the same output. Once dest is closed the written
// transactions are marked exported.
func (e *Exporter) ExportAccounts(ctx context.Context, ids []int64, opts Options, dest Destination) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	enc, err := htmlindex.Get(opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding '%s': %w", opts.Encoding, err)
	}

	categories, err := e.ledger.GetAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	f := &format{opts: opts, tree: model.NewCategoryTree(categories)}

	var lw ledgerWriter
	switch opts.Format {
	case FormatCSV:
		f.layout, err = validation.DateLayout(opts.DateFormat)
		lw = &csvWriter{format: f}
	default:
		f.layout, err = validation.DateLayout(constants.DefaultDateFormat)
		lw = &qifWriter{format: f}
	}
	if err != nil {
		return nil, err
	}

	data := make([]*accountData, 0, len(ids))
	for _, id := range ids {
		d, err := e.load(ctx, id, opts.OnlyNotExported)
		if err != nil {
			return nil, err
		}
		data = append(data, d)
	}

	err = write(dest, opts.Append, enc, func(w *bufio.Writer) {
		if !opts.Append {
			lw.header(w)
		}
		for _, d := range data {
			lw.account(w, d)
		}
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Destination: dest.Name(), Accounts: len(data)}
	var exported []int64
	for _, d := range data {
		result.Transactions += len(d.entries)
		exported = append(exported, e.markable(d)...)
	}
	result.Marked, err = e.ledger.MarkExported(ctx, exported)
	if err != nil {
		return result, err
	}

	e.logger.Info("exported transactions",
		slog.String("destination", result.Destination),
		slog.String("format", string(opts.Format)),
		slog.Int("accounts", result.Accounts),
		slog.Int("transactions", result.Transactions),
		slog.Int64("marked", result.Marked))
	return result, nil
}

func (e *Exporter) load(ctx context.Context, accountID int64, onlyNotExported bool) (*accountData, error) {
	account, err := e.ledger.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	parts, err := e.ledger.ExportSplitParts(ctx, accountID)
	if err != nil {
		return nil, err
	}
	tags, err := e.ledger.TagLabels(ctx, accountID)
	if err != nil {
		return nil, err
	}

	d := &accountData{account: account, scale: utils.MinorScale(account.Currency), tags: tags}
	err = e.ledger.EachExportRow(ctx, accountID, onlyNotExported, func(r *store.ExportRow) error {
		d.entries = append(d.entries, entry{row: r, parts: parts[r.ID]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// markable lists the written transactions except those tied to a sealed debt.
func (e *Exporter) markable(d *accountData) []int64 {
	var ids []int64
	sealed := 0
	add := func(r *store.ExportRow) {
		if r.DebtSealed {
			sealed++
			return
		}
		ids = append(ids, r.ID)
	}
	for _, en := range d.entries {
		add(en.row)
		for _, p := range en.parts {
			add(p)
		}
	}
	if sealed > 0 {
		e.logger.Warn("transactions of sealed debts are not marked exported",
			slog.String("account", d.account.Label), slog.Int("count", sealed))
	}
	return ids
}

// substituting encodes to enc, writing '?' for every rune enc has no byte for.
func substituting(enc encoding.Encoding) transform.Transformer {
	check := enc.NewEncoder()
	return transform.Chain(runes.Map(func(r rune) rune {
		if r < utf8.RuneSelf {
			return r
		}
		if _, err := check.String(string(r)); err != nil {
			return '?'
		}
		return r
	}), enc.NewEncoder())
}

// write opens dest, runs fn against an encoding buffered writer and closes dest on every
// path. The first failure among writing, flushing and closing is returned.
func write(dest Destination, appending bool, enc encoding.Encoding, fn func(w *bufio.Writer)) (err error) {
	out, err := dest.Open(appending)
	if err != nil {
		return &ExportError{Op: "open", Path: dest.Name(), Err: err}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = &ExportError{Op: "close", Path: dest.Name(), Err: cerr}
		}
	}()

	encoded := transform.NewWriter(out, substituting(enc))
	w := bufio.NewWriter(encoded)
	fn(w)
	if err := w.Flush(); err != nil {
		return &ExportError{Op: "write", Path: dest.Name(), Err: err}
	}
	if err := encoded.Close(); err != nil {
		return &ExportError{Op: "write", Path: dest.Name(), Err: err}
	}
	return nil
}
