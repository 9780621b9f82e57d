package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/table"
	"github.com/xuri/excelize/v2"
)

// ErrEmptyWorkbook is returned for a workbook without sheets.
var ErrEmptyWorkbook = errors.New("workbook has no sheets")

// XLSXProvider reads one sheet of an Excel workbook. The first row is the header.
type XLSXProvider struct {
	path  string
	sheet string
	log   *slog.Logger
}

func NewXLSXProvider(path, sheet string, log *slog.Logger) *XLSXProvider {
	return &XLSXProvider{path: path, sheet: sheet, log: log}
}

func (xp *XLSXProvider) Load(ctx context.Context) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	book, err := excelize.OpenFile(xp.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := book.Close(); cerr != nil {
			xp.log.WarnContext(ctx, "Failed to close workbook", "path", xp.path, "error", cerr)
		}
	}()

	sheet := xp.sheet
	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyWorkbook
		}
		sheet = sheets[0]
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	tbl, err := table.FromRecords(rows)
	if err != nil {
		return nil, err
	}

	xp.log.DebugContext(ctx, "Workbook loaded", "path", xp.path, "sheet", sheet, "rows", tbl.Len())
	return tbl, nil
}
