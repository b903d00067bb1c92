package tabular

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/kailas-cloud/ragtools/internal/domain"
	"github.com/kailas-cloud/ragtools/internal/domain/table"
)

// readXLSX loads one worksheet (the first one unless WithSheet was given).
// The first row is the header.
func (r *Reader) readXLSX(ctx context.Context, path string) (*table.Table, error) {
	doc, err := excelize.OpenFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer doc.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := doc.GetSheetList()
		if len(sheets) == 0 {
			return nil, domain.ErrEmptySource
		}
		sheet = sheets[0]
	}

	rows, err := doc.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrEmptySource
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header := normalizeHeader(rows[0])
	records := make([][]table.Cell, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d: %w",
				len(records)+2, len(row), len(header), domain.ErrRaggedTable)
		}
		// GetRows drops trailing empty cells.
		cells := make([]table.Cell, len(header))
		for i := range cells {
			if i < len(row) {
				cells[i] = r.cell(row[i])
			} else {
				cells[i] = table.Null()
			}
		}
		records = append(records, cells)
	}

	return table.FromRecords(filepath.Base(path), header, records)
}
