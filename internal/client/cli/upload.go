package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/pharmcart/internal/client/models"
)

// Upload sends a CSV file to the bulk inventory endpoint. mode is "set",
// "increment" or empty for the server default.
func (a *App) Upload(ctx context.Context, path, mode string) error {
	m := models.BulkUploadMode(mode)
	switch m {
	case "", models.BulkUploadSet, models.BulkUploadIncrement:
	default:
		return fmt.Errorf("unknown upload mode %q, want %q or %q", mode, models.BulkUploadSet, models.BulkUploadIncrement)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	res, err := a.api.UploadInventory(ctx, filepath.Base(path), f, m)
	if err != nil {
		return err
	}

	a.inventory.Invalidate()
	fmt.Fprintf(a.out, "Processed %d rows (mode %s).\n", res.Processed, orDash(sanitize(string(res.Mode))))
	return nil
}
