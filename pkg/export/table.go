// Package export renders schedule data into downloadable formats. The
// Table type is the shared input for both the CSV and PDF renderers.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Table is ordered tabular content. Column order follows Headers; rows
// shorter than the header line are padded with empty cells, longer rows
// are truncated.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends one row of cells in header order.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// CSV renders the table with a leading header line.
func (t Table) CSV() ([]byte, error) {
	if len(t.Headers) == 0 {
		return nil, fmt.Errorf("export: table has no headers")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Headers); err != nil {
		return nil, fmt.Errorf("export: write csv header: %w", err)
	}
	for _, row := range t.Rows {
		record := make([]string, len(t.Headers))
		copy(record, row)
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("export: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
