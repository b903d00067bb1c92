package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/ragtools/internal/domain"
	"github.com/kailas-cloud/ragtools/internal/domain/table"
)

// ctxCheckEvery bounds how many records are parsed between cancellation checks.
const ctxCheckEvery = 1024

// readDelimited parses a delimited text file. The first record is the header.
// Short records are padded with nulls; long records are rejected.
func (r *Reader) readDelimited(ctx context.Context, path string, delim rune) (*table.Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rawHeader, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrEmptySource
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header := normalizeHeader(rawHeader)

	var records [][]table.Cell
	for n := 0; ; n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("expected %d fields in line %d, saw %d: %w",
				len(header), line, len(rec), domain.ErrRaggedTable)
		}

		cells := make([]table.Cell, len(header))
		for i := range cells {
			if i < len(rec) {
				cells[i] = r.cell(rec[i])
			} else {
				cells[i] = table.Null()
			}
		}
		records = append(records, cells)
	}

	return table.FromRecords(filepath.Base(path), header, records)
}
