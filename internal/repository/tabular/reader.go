package tabular

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kailas-cloud/ragtools/internal/domain"
	"github.com/kailas-cloud/ragtools/internal/domain/table"
)

// Format is a supported tabular file format.
type Format string

const (
	// FormatCSV is comma separated text.
	FormatCSV Format = "csv"
	// FormatTSV is tab separated text.
	FormatTSV Format = "tsv"
	// FormatXLSX is an Office Open XML workbook (first sheet).
	FormatXLSX Format = "xlsx"
	// FormatParquet is an Apache Parquet file with a flat schema.
	FormatParquet Format = "parquet"
)

// DefaultNAValues are the cell texts treated as missing.
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// FormatOf detects the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("extension %q: %w", ext, domain.ErrUnsupportedFormat)
	}
}

// mimeFormats maps sniffed content types to formats for files without a known extension.
var mimeFormats = []struct {
	mime   string
	format Format
}{
	{"text/csv", FormatCSV},
	{"text/tab-separated-values", FormatTSV},
	{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatXLSX},
	{"application/vnd.apache.parquet", FormatParquet},
}

// DetectFormat resolves the format from the extension, falling back to content sniffing.
func DetectFormat(path string) (Format, error) {
	format, extErr := FormatOf(path)
	if extErr == nil {
		return format, nil
	}

	mt, err := mimetype.DetectFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("detect format: %w", err)
	}
	for _, m := range mimeFormats {
		if mt.Is(m.mime) {
			return m.format, nil
		}
	}
	return "", fmt.Errorf("content %s: %w", mt.String(), extErr)
}

// Reader loads tabular files into tables, dispatching on the detected format.
// It implements usecase/chunking.TableReader.
type Reader struct {
	na    map[string]struct{}
	sheet string
}

// Option configures the Reader.
type Option func(*Reader)

// WithNAValues adds cell texts that are treated as missing on top of DefaultNAValues.
func WithNAValues(values ...string) Option {
	return func(r *Reader) {
		for _, v := range values {
			r.na[v] = struct{}{}
		}
	}
}

// WithSheet selects the worksheet read from workbooks. Defaults to the first sheet.
func WithSheet(name string) Option {
	return func(r *Reader) {
		r.sheet = name
	}
}

// New creates a tabular reader.
func New(opts ...Option) *Reader {
	r := &Reader{na: make(map[string]struct{}, len(DefaultNAValues))}
	for _, v := range DefaultNAValues {
		r.na[v] = struct{}{}
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Read loads the file at path. Every failure is returned as a *domain.ReadError.
func (r *Reader) Read(ctx context.Context, path string) (*table.Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, domain.NewReadError(path, err)
	}

	var t *table.Table
	switch format {
	case FormatCSV:
		t, err = r.readDelimited(ctx, path, ',')
	case FormatTSV:
		t, err = r.readDelimited(ctx, path, '\t')
	case FormatXLSX:
		t, err = r.readXLSX(ctx, path)
	case FormatParquet:
		t, err = r.readParquet(ctx, path)
	}
	if err != nil {
		return nil, domain.NewReadError(path, err)
	}
	return t, nil
}

// cell converts raw text into a table cell, honoring the NA set.
func (r *Reader) cell(raw string) table.Cell {
	if _, ok := r.na[raw]; ok {
		return table.Null()
	}
	return table.Value(raw)
}

// normalizeHeader names blank columns "Unnamed: i" and suffixes duplicates
// with ".1", ".2", ... in order of appearance.
func normalizeHeader(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]struct{}, len(raw))
	counts := make(map[string]int, len(raw))

	for i, name := range raw {
		name = strings.TrimPrefix(name, "\ufeff")
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for {
			if _, dup := used[candidate]; !dup {
				break
			}
			counts[name]++
			candidate = name + "." + strconv.Itoa(counts[name])
		}
		used[candidate] = struct{}{}
		out[i] = candidate
	}
	return out
}
