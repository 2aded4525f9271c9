// Package testutil provides shared test infrastructure for the mvc packages:
// classifier file fixtures and floating-point assertion helpers.
package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/auxmvc/auxmvc/mvc/dat"
)

// SampleRow is one trigger in a classifier fixture.
type SampleRow struct {
	Glitch bool
	GPS    float64 // split into GPS_s / GPS_ms when written
	Signif float64
	SNR    float64
	Rank   float64
}

// Header returns the fixture header for a classifier with the given rank column.
func Header(rankColumn string) []string {
	return []string{
		dat.ColumnIndex, dat.ColumnGlitch, dat.ColumnWeight, dat.ColumnGPSSec, dat.ColumnGPSMs,
		"signif", "SNR", rankColumn,
	}
}

// Rows builds in-memory classifier rows.
func Rows(rankColumn string, samples []SampleRow) *dat.Rows {
	rows := dat.NewRows(Header(rankColumn))
	for i, s := range samples {
		_ = rows.Append(values(i, s))
	}
	return rows
}

// WriteDat writes samples as a classifier .dat file under dir and returns its path.
func WriteDat(t *testing.T, dir, name, rankColumn string, samples []SampleRow) string {
	t.Helper()
	var b strings.Builder
	header := Header(rankColumn)
	fmt.Fprintf(&b, "%d\n%s\n", len(header), strings.Join(header, " "))
	for i, s := range samples {
		vals := values(i, s)
		strs := make([]string, len(vals))
		for j, v := range vals {
			strs[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		b.WriteString(strings.Join(strs, " ") + "\n")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
	return path
}

func values(i int, s SampleRow) []float64 {
	glitch := 0.0
	if s.Glitch {
		glitch = 1
	}
	sec := math.Floor(s.GPS)
	ms := math.Round((s.GPS - sec) * 1e3 * 1e6) / 1e6
	return []float64{float64(i), glitch, 1, sec, ms, s.Signif, s.SNR, s.Rank}
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == got {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
