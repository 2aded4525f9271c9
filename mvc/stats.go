package mvc

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// OffScaleRank is the combined rank given to triggers whose best classifier
// has zero FAP (an infinite eff/fap ratio).
const OffScaleRank = 1000.0

// FractionAtOrAbove returns the fraction of sorted values that are >= r.
// sorted must be ascending. An empty sample yields 0.
func FractionAtOrAbove(sorted []float64, r float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	return float64(n-sort.SearchFloat64s(sorted, r)) / float64(n)
}

// sortedRanks returns the ascending ranks of kind k for glitch and clean rows.
func sortedRanks(tbl *Table, k Kind) (glitch, clean []float64) {
	for _, t := range tbl.Rows {
		if t.Glitch {
			glitch = append(glitch, t.Score(k).Rank)
		} else {
			clean = append(clean, t.Score(k).Rank)
		}
	}
	sort.Float64s(glitch)
	sort.Float64s(clean)
	return glitch, clean
}

// FAPAndEFF computes the empirical FAP (against clean ranks) and EFF
// (against glitch ranks) of kind k for every trigger.
func FAPAndEFF(tbl *Table, k Kind) error {
	if !k.RankBased() {
		return fmt.Errorf("computing FAP and efficiency for %s: %w", k, ErrNotRankBased)
	}
	glitchRanks, cleanRanks := sortedRanks(tbl, k)
	if len(cleanRanks) == 0 || len(glitchRanks) == 0 {
		logrus.Warnf("%s: %d glitch and %d clean samples; empty samples give zero FAP/EFF",
			k, len(glitchRanks), len(cleanRanks))
	}
	for _, t := range tbl.Rows {
		s := t.Score(k)
		s.FAP = FractionAtOrAbove(cleanRanks, s.Rank)
		s.EFF = FractionAtOrAbove(glitchRanks, s.Rank)
	}
	return nil
}

// EffOverFAP returns log10(eff/fap), or +Inf when fap is zero.
func EffOverFAP(s *Score) float64 {
	if s.FAP == 0 {
		return math.Inf(1)
	}
	return math.Log10(s.EFF / s.FAP)
}

// CombineRanks sets the combined rank of every trigger to the largest
// log10(eff/fap) over kinds, clamped to OffScaleRank when that is infinite.
func CombineRanks(tbl *Table, kinds []Kind) error {
	if len(kinds) == 0 {
		return fmt.Errorf("combining ranks: %w", ErrNoClassifiers)
	}
	for _, k := range kinds {
		if !k.RankBased() || k == Combined {
			return fmt.Errorf("combining ranks over %s: %w", k, ErrNotRankBased)
		}
	}
	offScale := 0
	for _, t := range tbl.Rows {
		best := math.Inf(-1)
		for _, k := range kinds {
			best = math.Max(best, EffOverFAP(t.Score(k)))
		}
		if math.IsInf(best, 1) {
			best = OffScaleRank
			offScale++
		}
		t.Score(Combined).Rank = best
	}
	logrus.Debugf("combined rank: %d of %d triggers off-scale", offScale, tbl.Len())
	return nil
}

// Transform computes FAP/EFF for every kind in kinds, the combined rank over
// them, and FAP/EFF of the combined rank.
func Transform(tbl *Table, kinds []Kind) error {
	for _, k := range kinds {
		if err := FAPAndEFF(tbl, k); err != nil {
			return err
		}
	}
	if err := CombineRanks(tbl, kinds); err != nil {
		return err
	}
	return FAPAndEFF(tbl, Combined)
}
