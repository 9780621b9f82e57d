package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/UnknownOlympus/meridian/internal/table"
)

// FileProvider reads a CSV export from disk.
type FileProvider struct {
	path string
	log  *slog.Logger
}

func NewFileProvider(path string, log *slog.Logger) *FileProvider {
	return &FileProvider{path: path, log: log}
}

// Load opens and parses the file. The file is re-read on every call.
func (fp *FileProvider) Load(ctx context.Context) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(fp.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open order file: %w", err)
	}
	defer file.Close()

	tbl, err := table.ParseCSV(file)
	if err != nil {
		return nil, err
	}

	fp.log.DebugContext(ctx, "Order file loaded", "path", fp.path, "rows", tbl.Len())
	return tbl, nil
}
