// Package dat reads classifier output files (".dat" files) into named-column rows.
//
// A file holds an optional first line with only the variable count, a header
// line of column names, and one whitespace-separated numeric row per line.
// This package has no dependencies on mvc/; it only produces rows.
package dat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Reserved column names shared by every classifier file.
const (
	ColumnIndex  = "index"
	ColumnGlitch = "i"
	ColumnWeight = "w"
	ColumnGPSSec = "GPS_s"
	ColumnGPSMs  = "GPS_ms"
)

// ReservedColumns lists the bookkeeping columns that are never copied as
// descriptive trigger fields.
var ReservedColumns = []string{ColumnIndex, ColumnGlitch, ColumnWeight, ColumnGPSSec, ColumnGPSMs}

// Rows is the content of one or more classifier files sharing a header.
type Rows struct {
	Columns []string
	Values  [][]float64

	index map[string]int
}

// NewRows creates an empty Rows with the given header.
func NewRows(columns []string) *Rows {
	r := &Rows{Columns: columns, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		r.index[c] = i
	}
	return r
}

// Len returns the number of data rows.
func (r *Rows) Len() int { return len(r.Values) }

// Col returns the position of a named column.
func (r *Rows) Col(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Require returns the positions of the named columns, or an error naming the first missing one.
func (r *Rows) Require(names ...string) ([]int, error) {
	pos := make([]int, len(names))
	for i, n := range names {
		c, ok := r.Col(n)
		if !ok {
			return nil, fmt.Errorf("missing column %q (have %v)", n, r.Columns)
		}
		pos[i] = c
	}
	return pos, nil
}

// GPS returns the trigger time of every row: GPS_s + GPS_ms*1e-3.
func (r *Rows) GPS() ([]float64, error) {
	pos, err := r.Require(ColumnGPSSec, ColumnGPSMs)
	if err != nil {
		return nil, err
	}
	times := make([]float64, len(r.Values))
	for i, v := range r.Values {
		times[i] = v[pos[0]] + v[pos[1]]*1e-3
	}
	return times, nil
}

// Append adds a row; the row width must match the header.
func (r *Rows) Append(values []float64) error {
	if len(values) != len(r.Columns) {
		return fmt.Errorf("row has %d values, header has %d columns", len(values), len(r.Columns))
	}
	r.Values = append(r.Values, values)
	return nil
}

// ReadFiles reads and concatenates classifier files in the given order.
// All files must carry the same header.
func ReadFiles(paths []string) (*Rows, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no classifier files given")
	}
	var all *Rows
	for _, path := range paths {
		rows, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		if all == nil {
			all = rows
			continue
		}
		if !sameHeader(all.Columns, rows.Columns) {
			return nil, fmt.Errorf("%s: header %v differs from %v", path, rows.Columns, all.Columns)
		}
		all.Values = append(all.Values, rows.Values...)
	}
	return all, nil
}

// ReadFile reads a single classifier file.
func ReadFile(path string) (*Rows, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening classifier file %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file
	return Read(f, path)
}

// Read parses classifier rows from r; name is only used in error messages.
func Read(r io.Reader, name string) (*Rows, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var rows *Rows
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if rows == nil {
			// Leading variable-count line.
			if len(fields) == 1 && isInteger(fields[0]) {
				continue
			}
			rows = NewRows(fields)
			continue
		}
		values := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: invalid value %q in column %q: %w",
					name, lineNo, f, rows.Columns[min(i, len(rows.Columns)-1)], err)
			}
			values[i] = v
		}
		if err := rows.Append(values); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if rows == nil {
		return nil, fmt.Errorf("%s: no header line", name)
	}
	return rows, nil
}

func isInteger(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func sameHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
