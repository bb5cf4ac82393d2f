package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/vitalsight/vitalsight/internal/analytics"
)

// syntheticStep spaces rows of files without a timestamp column.
const syntheticStep = time.Hour

// Table is a numeric CSV. When the first column holds RFC3339 timestamps they
// are split off into Timestamps and Rows holds the remaining columns.
type Table struct {
	Header     []string
	Timestamps []time.Time
	Rows       [][]float64
}

// ReadTable parses a CSV whose first row may be a header. Blank cells and
// rows of differing width are errors.
func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	t := &Table{}
	if !isDataRow(records[0]) {
		t.Header = records[0]
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no data rows")
	}

	_, tsErr := time.Parse(time.RFC3339, strings.TrimSpace(records[0][0]))
	withTime := tsErr == nil && len(records[0]) > 1

	for i, rec := range records {
		line := i + 1
		if t.Header != nil {
			line++
		}
		cells := rec
		if withTime {
			ts, err := time.Parse(time.RFC3339, strings.TrimSpace(rec[0]))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			t.Timestamps = append(t.Timestamps, ts)
			cells = rec[1:]
		}
		row := make([]float64, len(cells))
		for j, cell := range cells {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			row[j] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// isDataRow reports whether every cell is a number, except a leading timestamp
func isDataRow(rec []string) bool {
	for j, cell := range rec {
		cell = strings.TrimSpace(cell)
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			continue
		}
		if j == 0 {
			if _, err := time.Parse(time.RFC3339, cell); err == nil {
				continue
			}
		}
		return false
	}
	return true
}

// Column returns the values of numeric column col.
func (t *Table) Column(col int) ([]float64, error) {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		if col < 0 || col >= len(row) {
			return nil, fmt.Errorf("column %d out of range for row %d", col, i)
		}
		out[i] = row[col]
	}
	return out, nil
}

// Series pairs column col with the row timestamps, or with hourly synthetic
// timestamps from the Unix epoch when the file has none.
func (t *Table) Series(col int) ([]analytics.TimeSeriesPoint, error) {
	values, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	points := make([]analytics.TimeSeriesPoint, len(values))
	for i, v := range values {
		ts := time.Unix(0, 0).UTC().Add(time.Duration(i) * syntheticStep)
		if t.Timestamps != nil {
			ts = t.Timestamps[i]
		}
		points[i] = analytics.TimeSeriesPoint{Time: ts, Value: v}
	}
	return points, nil
}
