// Package report writes the artifacts of a comparison run: the fused glitch
// and clean tables, the efficiency-at-FAP summary, the redundancy word counts,
// and an HTML index plus cache listing of the rendered figures.
//
// Figures themselves come from a Plotter; this package only records them.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/auxmvc/auxmvc/mvc"
)

// Figure is one rendered plot.
type Figure struct {
	Name  string // tag used in the file name, e.g. "roc"
	Title string
	File  string // file name relative to the output directory
	Thumb string // optional low-resolution preview, relative like File
}

// Plotter renders the figures of a run.
type Plotter interface {
	Plot(tbl *mvc.Table, kinds []mvc.Kind) ([]Figure, error)
}

// Writer writes report files named <Tag><suffix> under Dir.
type Writer struct {
	Dir   string
	Tag   string
	RunID string
}

// NewWriter creates a Writer and makes sure dir exists.
func NewWriter(dir, tag, runID string) (*Writer, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return &Writer{Dir: dir, Tag: tag, RunID: runID}, nil
}

// Path returns the full path of the report file with the given suffix.
func (w *Writer) Path(suffix string) string {
	return filepath.Join(w.Dir, w.Tag+suffix)
}

// FormatThreshold renders a FAP threshold the way it appears in file names.
func FormatThreshold(thr float64) string {
	return strconv.FormatFloat(thr, 'g', -1, 64)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// create opens path for writing and runs fill against a buffered writer.
func create(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := fill(bw); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteTable writes a header line of column names followed by one
// space-joined line per row.
func WriteTable(out io.Writer, tbl *mvc.Table, rows []*mvc.Trigger) error {
	if _, err := fmt.Fprintln(out, strings.Join(tbl.Columns(), " ")); err != nil {
		return err
	}
	fields := make([]string, 0, len(tbl.Columns()))
	for _, r := range rows {
		fields = fields[:0]
		for _, v := range tbl.Values(r) {
			fields = append(fields, formatValue(v))
		}
		if _, err := fmt.Fprintln(out, strings.Join(fields, " ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteData writes <tag>_glitch_data.dat and <tag>_clean_data.dat.
func (w *Writer) WriteData(tbl *mvc.Table) (glitchPath, cleanPath string, err error) {
	glitchPath = w.Path("_glitch_data.dat")
	cleanPath = w.Path("_clean_data.dat")
	if err := create(glitchPath, func(out io.Writer) error {
		return WriteTable(out, tbl, tbl.Glitches())
	}); err != nil {
		return "", "", err
	}
	if err := create(cleanPath, func(out io.Writer) error {
		return WriteTable(out, tbl, tbl.Cleans())
	}); err != nil {
		return "", "", err
	}
	return glitchPath, cleanPath, nil
}

// EfficiencyAtFAP vetoes the glitches of tbl at thr for every kind. For
// rank-based kinds it also finds the clean rank whose positive rate is thr.
func EfficiencyAtFAP(tbl *mvc.Table, kinds []mvc.Kind, thr float64) []mvc.VetoResult {
	glitches := tbl.Glitches()
	cleans := tbl.Cleans()
	results := make([]mvc.VetoResult, len(kinds))
	for i, k := range kinds {
		results[i] = mvc.VetoUnderFAP(glitches, k, thr)
		if k.RankBased() {
			ranks := mvc.Column(cleans, func(t *mvc.Trigger) float64 { return t.Score(k).Rank })
			results[i].CleanRank = mvc.PositiveRateToRank(ranks, thr)
		}
	}
	return results
}

// FormatEfficiency writes the efficiency-at-FAP summary.
func FormatEfficiency(out io.Writer, results []mvc.VetoResult, thr float64) error {
	if _, err := fmt.Fprintf(out, "Vetoed Results at FAP=%s\n", FormatThreshold(thr)); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(out, "%s Efficiency : %s, threshold rank :%s\n",
			r.Kind, formatValue(r.Efficiency), formatValue(r.RankThreshold)); err != nil {
			return err
		}
	}
	return nil
}

// WriteEfficiencySummary writes <tag>_efficiency_at_fap<thr>.txt.
func (w *Writer) WriteEfficiencySummary(results []mvc.VetoResult, thr float64) (string, error) {
	path := w.Path("_efficiency_at_fap" + FormatThreshold(thr) + ".txt")
	return path, create(path, func(out io.Writer) error {
		return FormatEfficiency(out, results, thr)
	})
}

// FormatRedundancy writes one "<word> <all> [<below> <above>]" line per
// redundancy word.
func FormatRedundancy(out io.Writer, rc mvc.RedundancyCounts) error {
	names := make([]string, len(rc.Kinds))
	for i, k := range rc.Kinds {
		names[i] = string(k)
	}
	if _, err := fmt.Fprintf(out, "# glitches removed at FAP=%s, bits: %s\n",
		FormatThreshold(rc.FAPThreshold), strings.Join(names, " ")); err != nil {
		return err
	}
	split := rc.Below != nil && rc.Above != nil
	columns := "# word all"
	if split {
		columns += fmt.Sprintf(" signif<=%s signif>=%s", formatValue(rc.Split), formatValue(rc.Split))
	}
	if _, err := fmt.Fprintln(out, columns); err != nil {
		return err
	}
	for word, n := range rc.All {
		line := fmt.Sprintf("%s %d", mvc.WordLabel(word, len(rc.Kinds)), n)
		if split {
			line += fmt.Sprintf(" %d %d", rc.Below[word], rc.Above[word])
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

// RedundancyOf counts the redundancy words of the glitches of tbl at
// mvc.RedundancyFAP. The significance split is skipped when signifColumn is
// not a column of tbl.
func RedundancyOf(tbl *mvc.Table, kinds []mvc.Kind, signifColumn string) mvc.RedundancyCounts {
	signif, err := tbl.Column(signifColumn)
	if err != nil {
		logrus.Debugf("redundancy without significance split: %v", err)
		signif = nil
	}
	return mvc.Redundancy(tbl.Glitches(), kinds, mvc.RedundancyFAP, signif, mvc.RedundancySignif)
}

// WriteRedundancy writes <tag>_redundancy_fap<RedundancyFAP>.txt.
func (w *Writer) WriteRedundancy(tbl *mvc.Table, kinds []mvc.Kind, signifColumn string) (string, error) {
	rc := RedundancyOf(tbl, kinds, signifColumn)
	path := w.Path("_redundancy_fap" + FormatThreshold(rc.FAPThreshold) + ".txt")
	return path, create(path, func(out io.Writer) error {
		return FormatRedundancy(out, rc)
	})
}

// WriteCache writes <tag>.cache listing one file per line.
func (w *Writer) WriteCache(files []string) (string, error) {
	path := w.Path(".cache")
	return path, create(path, func(out io.Writer) error {
		for _, f := range files {
			if _, err := fmt.Fprintln(out, f); err != nil {
				return err
			}
		}
		return nil
	})
}
