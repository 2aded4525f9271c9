package mvc

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomTable builds a table with n glitches and n cleans whose ranks for
// kinds are drawn from a seeded source; glitches rank higher on average.
func randomTable(n int, seed int64, kinds ...Kind) *Table {
	rng := rand.New(rand.NewSource(seed))
	tbl := NewTable([]string{"signif"})
	for i := 0; i < 2*n; i++ {
		t := tbl.NewTrigger()
		t.Glitch = i < n
		t.GPS = float64(i)
		for _, k := range kinds {
			r := rng.Float64()
			if t.Glitch {
				r = math.Sqrt(r)
			}
			t.Score(k).Rank = math.Round(r*20) / 20 // coarse grid forces ties
		}
	}
	return tbl
}

func TestFractionAtOrAbove(t *testing.T) {
	sorted := []float64{0.1, 0.2, 0.2, 0.5}
	tests := []struct {
		r    float64
		want float64
	}{
		{0.0, 1.0},
		{0.1, 1.0},
		{0.2, 0.75},
		{0.3, 0.25},
		{0.5, 0.25},
		{0.6, 0.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FractionAtOrAbove(sorted, tt.r), "r=%v", tt.r)
	}
	assert.Equal(t, 0.0, FractionAtOrAbove(nil, 0.5))
}

func TestFAPAndEFF_BoundedAndMonotonic(t *testing.T) {
	// GIVEN a table of random ranks with ties
	tbl := randomTable(200, 7, MVSC)

	// WHEN FAP and EFF are computed
	require.NoError(t, FAPAndEFF(tbl, MVSC))

	// THEN both lie in [0,1]
	rows := append([]*Trigger(nil), tbl.Rows...)
	for _, r := range rows {
		s := r.Score(MVSC)
		assert.True(t, s.FAP >= 0 && s.FAP <= 1, "fap %v", s.FAP)
		assert.True(t, s.EFF >= 0 && s.EFF <= 1, "eff %v", s.EFF)
	}

	// AND both are non-increasing in rank
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score(MVSC).Rank < rows[j].Score(MVSC).Rank })
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1].Score(MVSC), rows[i].Score(MVSC)
		assert.LessOrEqual(t, cur.FAP, prev.FAP)
		assert.LessOrEqual(t, cur.EFF, prev.EFF)
	}
}

func TestFAPAndEFF_KnownValues(t *testing.T) {
	// GIVEN two glitches and two cleans
	tbl := NewTable(nil)
	for _, s := range []struct {
		glitch bool
		rank   float64
	}{{false, 0.1}, {false, 0.4}, {true, 0.3}, {true, 0.9}} {
		tr := tbl.NewTrigger()
		tr.Glitch = s.glitch
		tr.Score(ANN).Rank = s.rank
	}

	require.NoError(t, FAPAndEFF(tbl, ANN))

	// THEN the glitch ranked 0.3 has one of two cleans at or above it, and both glitches
	g := tbl.Rows[2].Score(ANN)
	assert.Equal(t, 0.5, g.FAP)
	assert.Equal(t, 1.0, g.EFF)
	// AND the glitch ranked 0.9 has no clean above it
	assert.Equal(t, 0.0, tbl.Rows[3].Score(ANN).FAP)
	assert.Equal(t, 0.5, tbl.Rows[3].Score(ANN).EFF)
}

func TestFAPAndEFF_AuxiliaryVeto_FailsFast(t *testing.T) {
	err := FAPAndEFF(NewTable(nil), CVeto)
	assert.True(t, errors.Is(err, ErrNotRankBased))
}

func TestCombineRanks(t *testing.T) {
	tests := []struct {
		name string
		mvsc Score
		ann  Score
		want float64
	}{
		{"max of log ratios", Score{EFF: 0.5, FAP: 0.1}, Score{EFF: 0.2, FAP: 0.2}, math.Log10(5)},
		{"zero fap is off-scale", Score{EFF: 0.5, FAP: 0}, Score{EFF: 0.9, FAP: 0.001}, OffScaleRank},
		{"zero eff ignored by max", Score{EFF: 0, FAP: 0.5}, Score{EFF: 0.3, FAP: 0.3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := NewTable(nil)
			tr := tbl.NewTrigger()
			*tr.Score(MVSC) = tt.mvsc
			*tr.Score(ANN) = tt.ann

			require.NoError(t, CombineRanks(tbl, []Kind{MVSC, ANN}))

			assert.InDelta(t, tt.want, tr.Score(Combined).Rank, 1e-12)
		})
	}
}

func TestCombineRanks_OffScaleOnlyWhenFAPIsZero(t *testing.T) {
	// GIVEN random ranks transformed to fap/eff
	tbl := randomTable(100, 11, MVSC, ANN, SVM)
	kinds := []Kind{MVSC, ANN, SVM}
	for _, k := range kinds {
		require.NoError(t, FAPAndEFF(tbl, k))
	}

	// WHEN combined
	require.NoError(t, CombineRanks(tbl, kinds))

	// THEN the sentinel appears exactly when some fap is zero
	for _, r := range tbl.Rows {
		zero := false
		best := math.Inf(-1)
		for _, k := range kinds {
			if r.Score(k).FAP == 0 {
				zero = true
			} else {
				best = math.Max(best, math.Log10(r.Score(k).EFF/r.Score(k).FAP))
			}
		}
		switch {
		case zero:
			assert.Equal(t, OffScaleRank, r.Score(Combined).Rank)
		case math.IsInf(best, -1):
			assert.True(t, math.IsInf(r.Score(Combined).Rank, -1))
		default:
			assert.InDelta(t, best, r.Score(Combined).Rank, 1e-12)
		}
	}
}

func TestCombineRanks_Errors(t *testing.T) {
	assert.True(t, errors.Is(CombineRanks(NewTable(nil), nil), ErrNoClassifiers))
	assert.True(t, errors.Is(CombineRanks(NewTable(nil), []Kind{CVeto}), ErrNotRankBased))
}

func TestTransform_CombinedFAPAndEFFBounded(t *testing.T) {
	tbl := randomTable(50, 3, MVSC, SVM)

	require.NoError(t, Transform(tbl, []Kind{MVSC, SVM}))

	for _, r := range tbl.Rows {
		c := r.Score(Combined)
		assert.True(t, c.FAP >= 0 && c.FAP <= 1)
		assert.True(t, c.EFF >= 0 && c.EFF <= 1)
	}
}
