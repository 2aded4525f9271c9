package mvc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Columns_SchemaOrder(t *testing.T) {
	tbl := NewTable([]string{"signif", "SNR"})

	want := []string{
		"GPS", "glitch", "signif", "SNR",
		"mvsc_rank", "mvsc_fap", "mvsc_eff",
		"ann_rank", "ann_fap", "ann_eff",
		"svm_rank", "svm_fap", "svm_eff",
		"cveto_rank", "cveto_fap", "cveto_eff",
		"cveto_chan", "combined_rank", "combined_eff", "combined_fap",
	}
	assert.Equal(t, want, tbl.Columns())
}

func TestTable_Values_MatchColumns(t *testing.T) {
	// GIVEN a populated trigger
	tbl := NewTable([]string{"signif"})
	tr := tbl.NewTrigger()
	tr.Glitch, tr.GPS, tr.Shared[0] = true, 12.5, 33
	*tr.Score(ANN) = Score{Rank: 0.4, FAP: 0.2, EFF: 0.7}
	*tr.Score(Combined) = Score{Rank: 3, FAP: 0.01, EFF: 0.9}
	tr.VetoChannel = -1

	vals := tbl.Values(tr)
	cols := tbl.Columns()
	require.Len(t, vals, len(cols))

	// THEN every named column accessor agrees with the positional value
	for i, c := range cols {
		acc, err := tbl.Column(c)
		require.NoError(t, err, c)
		assert.Equal(t, vals[i], acc(tr), c)
	}
	assert.Equal(t, 1.0, vals[1])
}

func TestTable_Column_Unknown(t *testing.T) {
	tbl := NewTable([]string{"signif"})
	for _, name := range []string{"SNR", "foo_rank", "mvsc_score", "_rank"} {
		_, err := tbl.Column(name)
		assert.True(t, errors.Is(err, ErrUnknownColumn), name)
	}
}

func TestTable_GlitchesAndCleans(t *testing.T) {
	tbl := NewTable(nil)
	for _, g := range []bool{true, false, true} {
		tbl.NewTrigger().Glitch = g
	}
	assert.Len(t, tbl.Glitches(), 2)
	assert.Len(t, tbl.Cleans(), 1)
}

func TestKind_RankBased(t *testing.T) {
	assert.True(t, MVSC.RankBased())
	assert.True(t, Combined.RankBased())
	assert.False(t, CVeto.RankBased())
	assert.False(t, IsValidKind("hveto"))
}

func TestReportKinds_AppendsCombined(t *testing.T) {
	descs := []Descriptor{{Kind: ANN}, {Kind: MVSC}, {Kind: CVeto}}
	assert.Equal(t, []Kind{ANN, MVSC, CVeto, Combined}, ReportKinds(descs))
	assert.Equal(t, []Kind{ANN, MVSC}, RankBasedKinds(descs))
}
