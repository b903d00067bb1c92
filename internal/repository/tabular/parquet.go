package tabular

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/ragtools/internal/domain"
	"github.com/kailas-cloud/ragtools/internal/domain/table"
)

const parquetBatchRows = 512

// readParquet loads every row group of a parquet file. Leaf columns become table
// columns named by their dotted path; repeated values are joined with ", ".
// Cell text is taken verbatim, NA tokens do not apply to typed storage.
func (r *Reader) readParquet(ctx context.Context, path string) (*table.Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	leaves := pf.Schema().Columns()
	if len(leaves) == 0 {
		return nil, domain.ErrEmptySource
	}
	rawHeader := make([]string, len(leaves))
	for i, p := range leaves {
		rawHeader[i] = strings.Join(p, ".")
	}
	header := normalizeHeader(rawHeader)

	var records [][]table.Cell
	for _, rg := range pf.RowGroups() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := readRowGroup(rg, len(header))
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}

	return table.FromRecords(filepath.Base(path), header, records)
}

func readRowGroup(rg parquet.RowGroup, width int) ([][]table.Cell, error) {
	rows := parquet.NewRowGroupReader(rg)
	buf := make([]parquet.Row, parquetBatchRows)
	out := make([][]table.Cell, 0, rg.NumRows())

	for {
		n, readErr := rows.ReadRows(buf)
		for i := 0; i < n; i++ {
			out = append(out, rowCells(buf[i], width))
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read rows: %w", readErr)
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}

// rowCells flattens a generic parquet row into one cell per leaf column.
func rowCells(row parquet.Row, width int) []table.Cell {
	parts := make([][]string, width)
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= width || v.IsNull() {
			continue
		}
		parts[col] = append(parts[col], v.String())
	}

	cells := make([]table.Cell, width)
	for i, p := range parts {
		if len(p) == 0 {
			cells[i] = table.Null()
			continue
		}
		cells[i] = table.Value(strings.Join(p, ", "))
	}
	return cells
}
