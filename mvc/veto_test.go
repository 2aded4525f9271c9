package mvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auxmvc/auxmvc/mvc/cveto"
	"github.com/auxmvc/auxmvc/mvc/trace"
)

func vetoEvent(tcent, rank float64, chanID int) cveto.Event {
	return cveto.Event{
		TCent:  tcent,
		Config: cveto.Config{Channel: chanID},
		Stats: cveto.Stats{
			CumVetoActivity: 2, CumNumGWTriggers: 10,
			CumClusterSeconds: 1, CumLivetime: 100,
			Rank: rank,
		},
	}
}

func TestApplyVeto_MatchedAndUnmatchedGlitches(t *testing.T) {
	// GIVEN a matched glitch, an unmatched glitch and a clean trigger at the event time
	tbl := NewTable(nil)
	matched := tbl.NewTrigger()
	matched.Glitch, matched.GPS = true, 100.001
	unmatched := tbl.NewTrigger()
	unmatched.Glitch, unmatched.GPS = true, 200
	clean := tbl.NewTrigger()
	clean.GPS = 100.0

	m := cveto.NewMatcher([]cveto.Event{vetoEvent(100.0, 1, 9), vetoEvent(300, 4, 2)})
	tr := trace.New(trace.TraceLevelDecisions)

	// WHEN the veto is applied
	stats := ApplyVeto(tbl, m, cveto.DefaultTolerance, tr)

	// THEN the matched glitch carries the event statistics
	s := matched.Score(CVeto)
	assert.InDelta(t, 0.2, s.EFF, 1e-12)
	assert.InDelta(t, 0.01, s.FAP, 1e-12)
	assert.InDelta(t, 2-1.0/4.0, s.Rank, 1e-12)
	assert.Equal(t, 9, matched.VetoChannel)

	// AND the unmatched glitch gets the worst-case sentinels
	assert.Equal(t, Score{EFF: 1, FAP: 1}, *unmatched.Score(CVeto))
	assert.Equal(t, -1, unmatched.VetoChannel)

	// AND clean triggers are untouched
	assert.Equal(t, Score{}, *clean.Score(CVeto))
	assert.Equal(t, 0, clean.VetoChannel)

	assert.Equal(t, VetoStats{Glitches: 2, Matched: 1, Ranked: 1}, stats)
	require.Len(t, tr.Matches, 2)
	assert.Equal(t, 0, tr.Matches[0].Chosen)
	assert.Equal(t, -1, tr.Matches[1].Chosen)
}

func TestApplyVeto_Ambiguous_CountsAndKeepsFirst(t *testing.T) {
	tbl := NewTable(nil)
	g := tbl.NewTrigger()
	g.Glitch, g.GPS = true, 50

	m := cveto.NewMatcher([]cveto.Event{vetoEvent(50.001, 2, 3), vetoEvent(49.999, 0, 4)})
	stats := ApplyVeto(tbl, m, cveto.DefaultTolerance, nil)

	assert.Equal(t, 1, stats.Ambiguous)
	assert.Equal(t, 3, g.VetoChannel)
}
