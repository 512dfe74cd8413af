package export

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/model"
)

// ExportCategories writes the category tree as a QIF category list, parents before their
// children and siblings by label.
func (e *Exporter) ExportCategories(ctx context.Context, encodingName string, dest Destination) (int, error) {
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return 0, fmt.Errorf("unknown encoding '%s': %w", encodingName, err)
	}
	categories, err := e.ledger.GetAllCategories(ctx)
	if err != nil {
		return 0, err
	}
	tree := model.NewCategoryTree(categories)

	count := 0
	err = write(dest, false, enc, func(w *bufio.Writer) {
		w.WriteString("!Type:Cat\n")
		tree.Walk(func(c *model.Category) error {
			w.WriteString("N" + tree.FullLabel(c.ID, constants.CategorySeparator, SanitizeCategoryLabel) + "\n")
			w.WriteString("^\n")
			count++
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	e.logger.Info("exported categories", slog.String("destination", dest.Name()), slog.Int("categories", count))
	return count, nil
}
