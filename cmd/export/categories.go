package export

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hance08/tally/internal/app"
	"github.com/hance08/tally/internal/export"
	"github.com/hance08/tally/internal/ui/views"
)

func NewCategoriesCmd(lazy *app.Lazy) *cobra.Command {
	var out, encoding string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Export the category tree as QIF.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := lazy.Config()
			a, err := lazy.Get(cmd.Context())
			if err != nil {
				return err
			}

			if out == "" {
				dir := cfg.Export.Dir
				if dir == "" {
					dir = "."
				}
				out = filepath.Join(dir, "categories.qif")
			}
			out, err = app.ExpandPath(out)
			if err != nil {
				return err
			}

			count, err := a.Exporter.ExportCategories(cmd.Context(), pick(encoding, cfg.Export.Encoding, "UTF-8"), export.FileDestination{Path: out})
			if err != nil {
				return err
			}
			views.RenderCategoryExport(out, count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (defaults to categories.qif in the export directory)")
	cmd.Flags().StringVar(&encoding, "encoding", "", "Output character set, e.g. UTF-8 or ISO-8859-1")

	return cmd
}
