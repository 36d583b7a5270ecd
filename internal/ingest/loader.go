// Package ingest reads bank ledgers into transactions.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/Veraticus/spice-report/internal/model"
)

// Loader picks a reader for a ledger file based on its extension.
type Loader struct {
	logger *slog.Logger
	excel  *ExcelReader
	ofx    *OFXParser
}

// NewLoader creates a Loader. A nil logger discards output.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = common.DiscardLogger()
	}
	return &Loader{
		logger: logger,
		excel:  NewExcelReader(logger),
		ofx:    NewOFXParser(logger),
	}
}

// Load reads every transaction from the ledger at path.
func (l *Loader) Load(ctx context.Context, path string) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return l.excel.ReadFile(ctx, path)
	case ".ofx", ".qfx":
		f, err := os.Open(filepath.Clean(path)) // #nosec G304 -- ledger path supplied by the user
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				l.logger.Warn("failed to close ledger", "path", path, "error", cerr)
			}
		}()
		return l.ofx.ParseFile(ctx, f)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
}
