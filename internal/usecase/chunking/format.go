package chunking

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/ragtools/internal/domain/table"
)

// formatHeader renders the data set overview block.
func formatHeader(t *table.Table, maxSamples int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Medical Data: %s\n\n", t.Name())
	sb.WriteString("## Dataset Information\n")
	fmt.Fprintf(&sb, "- **Source**: %s\n", t.Source())
	fmt.Fprintf(&sb, "- **Total Records**: %d\n", t.RowCount())
	fmt.Fprintf(&sb, "- **Columns**: %s\n", strings.Join(t.ColumnNames(), ", "))
	sb.WriteString("- **Data Type**: Medical recommendations and information\n\n")
	sb.WriteString("## Column Descriptions\n")

	cols := t.Columns()
	for i := range cols {
		// The ellipsis is emitted even when the column has fewer samples.
		fmt.Fprintf(&sb, "- **%s**: %s...\n", cols[i].Name(), strings.Join(cols[i].Samples(maxSamples), ", "))
	}
	return sb.String()
}

// formatRow renders one record; null cells are omitted.
func formatRow(row table.Row, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Medical Record %d from %s\n\n", row.Index()+1, name)
	for _, f := range row.Fields() {
		if f.Cell.IsNull() {
			continue
		}
		fmt.Fprintf(&sb, "**%s**: %s\n", f.Name, f.Cell.String())
	}
	sb.WriteString("\n")
	return sb.String()
}

// formatSummary renders record totals and keyword-matched column statistics.
func formatSummary(t *table.Table, medicine, condition []string, maxUnique int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Summary Statistics for %s\n\n", t.Name())
	fmt.Fprintf(&sb, "- **Total medical records**: %d\n", t.RowCount())

	medCols := matchColumns(t, medicine)
	if len(medCols) > 0 {
		fmt.Fprintf(&sb, "- **Medicine/Drug columns**: %s\n", strings.Join(columnNames(medCols), ", "))
		for _, c := range medCols {
			unique := c.Distinct()
			if len(unique) <= maxUnique {
				fmt.Fprintf(&sb, "- **Unique %s**: %s\n", c.Name(), strings.Join(unique, ", "))
			} else {
				fmt.Fprintf(&sb, "- **Unique %s**: %d different entries\n", c.Name(), len(unique))
			}
		}
	}

	condCols := matchColumns(t, condition)
	if len(condCols) > 0 {
		fmt.Fprintf(&sb, "- **Condition columns**: %s\n", strings.Join(columnNames(condCols), ", "))
	}
	return sb.String()
}

// matchColumns returns columns whose lower-cased name contains any keyword.
func matchColumns(t *table.Table, keywords []string) []*table.Column {
	cols := t.Columns()
	var out []*table.Column
	for i := range cols {
		if containsAny(strings.ToLower(cols[i].Name()), keywords) {
			out = append(out, &cols[i])
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func columnNames(cols []*table.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name()
	}
	return names
}
