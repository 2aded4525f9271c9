package mvc

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/auxmvc/auxmvc/mvc/dat"
)

// DefaultRankColumns maps each rank-based classifier to the column of its
// output files holding the rank.
var DefaultRankColumns = map[Kind]string{
	MVSC: "Bagger",
	ANN:  "glitch-rank",
	SVM:  "SVMRank",
}

// LoadFunc reads the rows of one classifier's source files.
type LoadFunc func(files []string) (*dat.Rows, error)

// Merger aligns the outputs of several classifiers into one fused table.
//
// The first descriptor defines the trigger set. Later sources are not joined
// by key: after the same (glitch, GPS) sort their i-th clean row is copied onto
// the i-th clean row of the table, and likewise for glitches. Sources that miss
// a trigger, hold duplicates, or order ties differently therefore misalign
// within that partition. Count mismatches are logged per partition.
type Merger struct {
	load        LoadFunc
	rankColumns map[Kind]string
	reserved    []string
}

// NewMerger creates a Merger. A nil load defaults to dat.ReadFiles and a nil
// rankColumns to DefaultRankColumns.
func NewMerger(load LoadFunc, rankColumns map[Kind]string) *Merger {
	if load == nil {
		load = dat.ReadFiles
	}
	if rankColumns == nil {
		rankColumns = DefaultRankColumns
	}
	return &Merger{load: load, rankColumns: rankColumns, reserved: dat.ReservedColumns}
}

// rankedRow is the (time, glitch, rank) triple extracted from a secondary source.
type rankedRow struct {
	gps    float64
	glitch bool
	rank   float64
}

// Merge builds the fused table from descs. Auxiliary-veto descriptors are
// skipped here; their columns stay zero until ApplyVeto.
func (m *Merger) Merge(descs []Descriptor) (*Table, error) {
	if len(descs) == 0 {
		return nil, ErrNoClassifiers
	}
	seen := make(map[Kind]bool, len(descs))
	for _, d := range descs {
		if !IsValidKind(string(d.Kind)) || d.Kind == Combined {
			return nil, fmt.Errorf("invalid classifier kind %q", d.Kind)
		}
		if seen[d.Kind] {
			return nil, fmt.Errorf("classifier %q supplied twice", d.Kind)
		}
		seen[d.Kind] = true
	}
	primary := descs[0]
	if !primary.Kind.RankBased() {
		return nil, fmt.Errorf("primary classifier %q: %w", primary.Kind, ErrNotRankBased)
	}

	tbl, err := m.buildPrimary(primary)
	if err != nil {
		return nil, err
	}
	logrus.Infof("loaded %d triggers from %s (%d glitches)", tbl.Len(), primary.Kind, len(tbl.Glitches()))

	for _, d := range descs[1:] {
		if !d.Kind.RankBased() {
			continue
		}
		ranks, err := m.loadRanks(d)
		if err != nil {
			return nil, err
		}
		copyRanks(tbl, d.Kind, ranks)
	}
	return tbl, nil
}

// buildPrimary loads the primary source, fixes the schema from its header,
// fills time, glitch flag, shared fields and rank, and sorts the table.
func (m *Merger) buildPrimary(d Descriptor) (*Table, error) {
	rows, err := m.load(d.Files)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", d.Kind, err)
	}
	rankCol, err := m.rankColumn(d.Kind)
	if err != nil {
		return nil, err
	}
	pos, err := rows.Require(dat.ColumnGlitch, rankCol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Kind, err)
	}
	times, err := rows.GPS()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Kind, err)
	}

	reserved := make(map[string]bool, len(m.reserved)+1)
	for _, c := range m.reserved {
		reserved[c] = true
	}
	reserved[rankCol] = true
	var shared []string
	var sharedPos []int
	for i, c := range rows.Columns {
		if !reserved[c] {
			shared = append(shared, c)
			sharedPos = append(sharedPos, i)
		}
	}

	tbl := NewTable(shared)
	for i, v := range rows.Values {
		t := tbl.NewTrigger()
		t.Glitch = v[pos[0]] != 0
		t.GPS = times[i]
		for j, p := range sharedPos {
			t.Shared[j] = v[p]
		}
		t.Score(d.Kind).Rank = v[pos[1]]
	}
	tbl.SortByGlitchThenGPS()
	return tbl, nil
}

func (m *Merger) loadRanks(d Descriptor) ([]rankedRow, error) {
	rows, err := m.load(d.Files)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", d.Kind, err)
	}
	rankCol, err := m.rankColumn(d.Kind)
	if err != nil {
		return nil, err
	}
	pos, err := rows.Require(dat.ColumnGlitch, rankCol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Kind, err)
	}
	times, err := rows.GPS()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Kind, err)
	}
	ranks := make([]rankedRow, len(rows.Values))
	for i, v := range rows.Values {
		ranks[i] = rankedRow{
			gps:    times[i],
			glitch: v[pos[0]] != 0,
			rank:   v[pos[1]],
		}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return lessGlitchGPS(ranks[i].glitch, ranks[i].gps, ranks[j].glitch, ranks[j].gps)
	})
	return ranks, nil
}

func (m *Merger) rankColumn(k Kind) (string, error) {
	col, ok := m.rankColumns[k]
	if !ok || col == "" {
		return "", fmt.Errorf("no rank column configured for %s", k)
	}
	return col, nil
}

// copyRanks writes ranks onto the table positionally within each partition:
// the i-th clean rank goes to the i-th clean row, and likewise for glitches.
// Both tbl and ranks are sorted glitch-last.
func copyRanks(tbl *Table, k Kind, ranks []rankedRow) {
	split := sort.Search(len(ranks), func(i int) bool { return ranks[i].glitch })
	tblSplit := sort.Search(tbl.Len(), func(i int) bool { return tbl.Rows[i].Glitch })

	n := copyPartition(tbl.Rows[:tblSplit], k, ranks[:split], "clean")
	n += copyPartition(tbl.Rows[tblSplit:], k, ranks[split:], "glitch")
	logrus.Debugf("merged %d %s ranks", n, k)
}

func copyPartition(rows []*Trigger, k Kind, ranks []rankedRow, class string) int {
	if len(ranks) != len(rows) {
		logrus.Warnf("%s has %d %s triggers but the fused table has %d; ranks are aligned by position and may be misaligned",
			k, len(ranks), class, len(rows))
	}
	n := min(len(ranks), len(rows))
	for i := 0; i < n; i++ {
		rows[i].Score(k).Rank = ranks[i].rank
	}
	return n
}
