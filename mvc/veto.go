package mvc

import (
	"github.com/sirupsen/logrus"

	"github.com/auxmvc/auxmvc/mvc/cveto"
	"github.com/auxmvc/auxmvc/mvc/trace"
)

// Sentinels written to glitches the auxiliary veto has no event for.
const (
	UnmatchedVetoScore   = 1.0
	UnmatchedVetoChannel = -1
)

// VetoStats counts the outcome of ApplyVeto.
type VetoStats struct {
	Glitches  int
	Matched   int
	Ambiguous int
	Ranked    int // glitches left with cveto_rank > 0
}

// ApplyVeto fills the auxiliary-veto columns of every glitch trigger.
// Clean triggers are left untouched.
func ApplyVeto(tbl *Table, m *cveto.Matcher, tolerance float64, tr *trace.Trace) VetoStats {
	var stats VetoStats
	for _, t := range tbl.Rows {
		if !t.Glitch {
			continue
		}
		stats.Glitches++
		s := t.Score(CVeto)

		cands := m.Candidates(t.GPS, tolerance)
		rec := trace.MatchRecord{GPS: t.GPS, Chosen: -1}
		for _, c := range cands {
			rec.Candidates = append(rec.Candidates, c.TCent)
		}

		match, ok := cveto.Choose(t.GPS, cands)
		if ok {
			stats.Matched++
			if len(cands) > 1 {
				stats.Ambiguous++
			}
			rec.Chosen = 0
			s.EFF = match.EFF
			s.FAP = match.FAP
			s.Rank = match.Rank
			t.VetoChannel = match.Channel
		} else {
			s.EFF = UnmatchedVetoScore
			s.FAP = UnmatchedVetoScore
			t.VetoChannel = UnmatchedVetoChannel
		}
		tr.RecordMatch(rec)
	}

	for _, t := range tbl.Rows {
		if t.Score(CVeto).Rank > 0 {
			stats.Ranked++
		}
	}
	logrus.Infof("auxiliary veto: %d events (max raw rank %g), %d of %d glitches matched (%d ambiguous), %d with positive rank",
		m.Len(), m.MaxRank(), stats.Matched, stats.Glitches, stats.Ambiguous, stats.Ranked)
	return stats
}
