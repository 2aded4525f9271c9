package mvc

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Column extracts the values of acc over triggers.
func Column(triggers []*Trigger, acc Accessor) []float64 {
	vals := make([]float64, len(triggers))
	for i, t := range triggers {
		vals[i] = acc(t)
	}
	return vals
}

// Where returns the triggers for which keep is true.
func Where(triggers []*Trigger, keep func(*Trigger) bool) []*Trigger {
	var out []*Trigger
	for _, t := range triggers {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// PositiveRateToRank returns the smallest rank, in ascending order, at which
// the fraction of ranks at or above it is no more than rate. If no rank
// qualifies the largest rank is returned; an empty input yields NaN.
func PositiveRateToRank(ranks []float64, rate float64) float64 {
	if len(ranks) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), ranks...)
	sort.Float64s(sorted)
	for _, r := range sorted {
		if FractionAtOrAbove(sorted, r) <= rate {
			return r
		}
	}
	return sorted[len(sorted)-1]
}

// VetoResult summarizes vetoing glitches of one classifier at a FAP threshold.
type VetoResult struct {
	Kind          Kind
	FAPThreshold  float64
	Remaining     []*Trigger // glitches with fap above the threshold, i.e. not vetoed
	Efficiency    float64    // smallest eff among Remaining
	RankThreshold float64    // largest rank among Remaining
	CleanRank     float64    // clean rank whose positive rate falls to FAPThreshold; NaN if unknown
}

// VetoUnderFAP keeps the glitches of kind k whose FAP exceeds thr. With no
// remaining glitch, Efficiency and RankThreshold are NaN.
func VetoUnderFAP(glitches []*Trigger, k Kind, thr float64) VetoResult {
	res := VetoResult{Kind: k, FAPThreshold: thr, Efficiency: math.NaN(), RankThreshold: math.NaN(), CleanRank: math.NaN()}
	res.Remaining = Where(glitches, func(t *Trigger) bool { return t.Score(k).FAP > thr })
	if len(res.Remaining) == 0 {
		return res
	}
	res.Efficiency = floats.Min(Column(res.Remaining, func(t *Trigger) float64 { return t.Score(k).EFF }))
	res.RankThreshold = floats.Max(Column(res.Remaining, func(t *Trigger) float64 { return t.Score(k).Rank }))
	return res
}

// Redundancy words are evaluated at a fixed FAP, and the glitches are split at
// a fixed significance. Both bounds of the split are inclusive.
const (
	RedundancyFAP    = 0.01
	RedundancySignif = 25.0
)

// RedundancyWords encodes, per glitch, which classifiers remove it at fapThr.
// The first kind is the most significant bit.
func RedundancyWords(glitches []*Trigger, kinds []Kind, fapThr float64) []int {
	words := make([]int, len(glitches))
	for i, g := range glitches {
		w := 0
		for _, k := range kinds {
			w <<= 1
			if g.Score(k).FAP <= fapThr {
				w |= 1
			}
		}
		words[i] = w
	}
	return words
}

// RedundancyHistogram counts words over all 2^width values.
func RedundancyHistogram(words []int, width int) []int {
	counts := make([]int, 1<<width)
	for _, w := range words {
		counts[w]++
	}
	return counts
}

// RedundancyCounts holds redundancy word histograms over all glitches and
// over the glitches at or below and at or above a significance split.
type RedundancyCounts struct {
	Kinds        []Kind
	FAPThreshold float64
	Split        float64
	All          []int
	Below, Above []int // nil without a significance column
}

// Redundancy counts the redundancy words of glitches at fapThr. A nil signif
// leaves Below and Above unset.
func Redundancy(glitches []*Trigger, kinds []Kind, fapThr float64, signif Accessor, split float64) RedundancyCounts {
	rc := RedundancyCounts{
		Kinds:        kinds,
		FAPThreshold: fapThr,
		Split:        split,
		All:          RedundancyHistogram(RedundancyWords(glitches, kinds, fapThr), len(kinds)),
	}
	if signif == nil {
		return rc
	}
	below := Where(glitches, func(t *Trigger) bool { return signif(t) <= split })
	above := Where(glitches, func(t *Trigger) bool { return signif(t) >= split })
	rc.Below = RedundancyHistogram(RedundancyWords(below, kinds, fapThr), len(kinds))
	rc.Above = RedundancyHistogram(RedundancyWords(above, kinds, fapThr), len(kinds))
	return rc
}

// WordLabel renders a redundancy word as a zero-padded binary string.
func WordLabel(word, width int) string {
	return fmt.Sprintf("%0*b", width, word)
}

// RankRange is the nominal rank range of a kind, used for binning.
func RankRange(k Kind) (lo, hi float64) {
	switch k {
	case CVeto:
		return 0, 2
	case Combined:
		return 0, OffScaleRank
	default:
		return 0, 1
	}
}

// Bin holds summary statistics of the values falling in one rank bin.
type Bin struct {
	Lo, Hi float64
	N      int
	Mean   float64
	StdDev float64 // sample standard deviation
	StdErr float64 // StdDev / sqrt(N)
}

// Center is the bin midpoint.
func (b Bin) Center() float64 { return (b.Lo + b.Hi) / 2 }

// BinnedStats bins triggers by rank into nbins equal bins over [lo, hi] and
// computes statistics of value per bin. Bins are half-open except the last.
// Triggers outside the range are ignored.
func BinnedStats(triggers []*Trigger, rank, value Accessor, lo, hi float64, nbins int) []Bin {
	if nbins <= 0 || hi <= lo {
		return nil
	}
	width := (hi - lo) / float64(nbins)
	buckets := make([][]float64, nbins)
	for _, t := range triggers {
		r := rank(t)
		if r < lo || r > hi || math.IsNaN(r) {
			continue
		}
		i := int((r - lo) / width)
		if i >= nbins {
			i = nbins - 1
		}
		buckets[i] = append(buckets[i], value(t))
	}

	bins := make([]Bin, nbins)
	for i, b := range buckets {
		bins[i] = Bin{Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width, N: len(b)}
		switch len(b) {
		case 0:
		case 1:
			bins[i].Mean = b[0]
		default:
			mean, std := stat.MeanStdDev(b, nil)
			bins[i].Mean = mean
			bins[i].StdDev = std
			bins[i].StdErr = stat.StdErr(std, float64(len(b)))
		}
	}
	return bins
}
