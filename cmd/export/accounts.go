package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hance08/tally/internal/app"
	"github.com/hance08/tally/internal/config"
	"github.com/hance08/tally/internal/export"
	"github.com/hance08/tally/internal/model"
	"github.com/hance08/tally/internal/ui/prompts"
	"github.com/hance08/tally/internal/ui/views"
)

// accountsFlags are the command-line overrides of the export config.
type accountsFlags struct {
	format        string
	newOnly       bool
	appendTo      bool
	out           string
	dateFormat    string
	decimal       string
	separator     string
	encoding      string
	timezone      string
	accountColumn bool
}

type accountsRunner struct {
	lazy  *app.Lazy
	flags accountsFlags
}

func NewAccountsCmd(lazy *app.Lazy) *cobra.Command {
	r := &accountsRunner{lazy: lazy}

	cmd := &cobra.Command{
		Use:   "accounts [labels...]",
		Short: "Export the transactions of one or more accounts.",
		Long: `Export the transactions of the named accounts into one file. Without account labels
an interactive list lets you pick them. Exported transactions are marked and can be
skipped next time with --new-only.

Example: tally export accounts Checking Savings --format csv --out ~/ledger.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.Run(cmd.Context(), args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&r.flags.format, "format", "f", string(export.FormatQIF), "Output format: qif or csv")
	f.BoolVarP(&r.flags.newOnly, "new-only", "n", false, "Only transactions not exported before")
	f.BoolVarP(&r.flags.appendTo, "append", "a", false, "Append to the output file instead of replacing it")
	f.StringVarP(&r.flags.out, "out", "o", "", "Output file (defaults to the export directory)")
	f.StringVar(&r.flags.dateFormat, "date-format", "", "CSV date pattern, e.g. dd/MM/yyyy or M/d/yyyy")
	f.StringVar(&r.flags.decimal, "decimal", "", "CSV decimal separator: . or ,")
	f.StringVar(&r.flags.separator, "separator", "", "CSV field separator")
	f.StringVar(&r.flags.encoding, "encoding", "", "Output character set, e.g. UTF-8 or ISO-8859-1")
	f.StringVar(&r.flags.timezone, "timezone", "", "Time zone of the exported dates, e.g. Europe/Paris")
	f.BoolVar(&r.flags.accountColumn, "account-column", false, "Add a leading account column to CSV rows")

	return cmd
}

func (r *accountsRunner) Run(ctx context.Context, labels []string) error {
	cfg := r.lazy.Config()
	opts, err := buildOptions(cfg.Export, r.flags)
	if err != nil {
		return err
	}

	a, err := r.lazy.Get(ctx)
	if err != nil {
		return err
	}

	accounts, err := r.selectAccounts(ctx, a, labels)
	if err != nil {
		return err
	}

	out := r.flags.out
	if out == "" {
		out = defaultOutput(cfg.Export.Dir, accounts, opts.Format)
	}
	out, err = app.ExpandPath(out)
	if err != nil {
		return err
	}
	if !opts.Append {
		if _, err := os.Stat(out); err == nil {
			overwrite, err := prompts.PromptConfirm(fmt.Sprintf("%s exists, overwrite?", out), false)
			if err != nil {
				return err
			}
			if !overwrite {
				return fmt.Errorf("export cancelled, %s left unchanged", out)
			}
		}
	}

	ids := make([]int64, len(accounts))
	for i, acc := range accounts {
		ids[i] = acc.ID
	}

	result, err := a.Exporter.ExportAccounts(ctx, ids, opts, export.FileDestination{Path: out})
	if err != nil {
		return err
	}
	return views.RenderExportResult(result, opts.Format)
}

func (r *accountsRunner) selectAccounts(ctx context.Context, a *app.App, labels []string) ([]*model.Account, error) {
	if len(labels) == 0 {
		all, err := a.Service.Account.GetAllAccounts(ctx)
		if err != nil {
			return nil, err
		}
		return prompts.PromptExportAccounts(all)
	}

	accounts := make([]*model.Account, 0, len(labels))
	for _, label := range labels {
		acc, err := a.Service.Account.GetAccountByLabel(ctx, label)
		if err != nil {
			return nil, fmt.Errorf("account '%s': %w", label, err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// buildOptions layers the flags over the configured export defaults.
func buildOptions(ec config.ExportConfig, f accountsFlags) (export.Options, error) {
	opts := export.DefaultOptions()

	format, err := export.ParseFormat(f.format)
	if err != nil {
		return opts, err
	}
	opts.Format = format
	opts.OnlyNotExported = f.newOnly
	opts.Append = f.appendTo
	opts.WithAccountColumn = f.accountColumn

	opts.DateFormat = pick(f.dateFormat, ec.DateFormat, opts.DateFormat)
	opts.DecimalSeparator = pick(f.decimal, ec.DecimalSeparator, opts.DecimalSeparator)
	opts.FieldSeparator = pick(f.separator, ec.FieldSeparator, opts.FieldSeparator)
	opts.Encoding = pick(f.encoding, ec.Encoding, opts.Encoding)

	opts.Location, err = loadLocation(pick(f.timezone, ec.Timezone, "Local"))
	if err != nil {
		return opts, err
	}
	return opts, opts.Validate()
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func loadLocation(name string) (*time.Location, error) {
	if strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone '%s': %w", name, err)
	}
	return loc, nil
}

// defaultOutput names the file after the account when only one is exported.
func defaultOutput(dir string, accounts []*model.Account, format export.Format) string {
	name := "tally-export"
	if len(accounts) == 1 {
		name = fileSafe(accounts[0].Label)
	}
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name+"."+string(format))
}

func fileSafe(label string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(label))
	if safe == "" {
		return "account"
	}
	return safe
}
