package cveto

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// Match is the veto information attached to a glitch trigger.
type Match struct {
	EFF     float64
	FAP     float64
	Rank    float64 // normalized: 2 - raw/max_raw
	Channel int
	TCent   float64
	Index   int // position of the event in the dataset
}

// Matcher answers time-window lookups over an immutable event dataset.
type Matcher struct {
	events  []Event
	byTime  []int // dataset indices ordered by TCent
	maxRank float64
}

// NewMatcher indexes events. The rank normalization constant is the maximum
// raw rank over the whole dataset, not only over matched events.
func NewMatcher(events []Event) *Matcher {
	m := &Matcher{events: events, byTime: make([]int, len(events))}
	for i, e := range events {
		m.byTime[i] = i
		if e.Stats.Rank > m.maxRank {
			m.maxRank = e.Stats.Rank
		}
	}
	sort.SliceStable(m.byTime, func(a, b int) bool {
		return events[m.byTime[a]].TCent < events[m.byTime[b]].TCent
	})
	return m
}

// Len returns the dataset size.
func (m *Matcher) Len() int { return len(m.events) }

// MaxRank returns the maximum raw rank over the dataset.
func (m *Matcher) MaxRank() float64 { return m.maxRank }

// NormalizeRank maps a raw rank index to 2 - raw/max. A dataset whose raw
// ranks are all zero maps every event to 2.
func (m *Matcher) NormalizeRank(raw float64) float64 {
	if m.maxRank <= 0 {
		return 2
	}
	return 2 - raw/m.maxRank
}

// Candidates returns every event with t-tol < tcent < t+tol, in dataset order.
func (m *Matcher) Candidates(t, tol float64) []Match {
	begin, end := t-tol, t+tol
	lo := sort.Search(len(m.byTime), func(i int) bool {
		return m.events[m.byTime[i]].TCent > begin
	})
	var idx []int
	for i := lo; i < len(m.byTime); i++ {
		e := m.events[m.byTime[i]]
		if e.TCent >= end {
			break
		}
		idx = append(idx, m.byTime[i])
	}
	sort.Ints(idx)

	matches := make([]Match, 0, len(idx))
	for _, i := range idx {
		e := m.events[i]
		matches = append(matches, Match{
			EFF:     e.Efficiency(),
			FAP:     e.FAP(),
			Rank:    m.NormalizeRank(e.Stats.Rank),
			Channel: e.Config.Channel,
			TCent:   e.TCent,
			Index:   i,
		})
	}
	return matches
}

// Match returns the event matched onto trigger time t.
func (m *Matcher) Match(t, tol float64) (Match, bool) {
	return Choose(t, m.Candidates(t, tol))
}

// Choose picks the match for a trigger at time t among its candidates. When
// several events fall within the tolerance there is not enough information to
// tell them apart: all candidates are logged and the first in dataset order
// is taken.
func Choose(t float64, cands []Match) (Match, bool) {
	if len(cands) == 0 {
		return Match{}, false
	}
	if len(cands) > 1 {
		logrus.Warnf("found %d auxiliary-veto events at GPS %.4f; using the first", len(cands), t)
		for _, c := range cands {
			logrus.Warnf("\tcandidate tcent=%.4f eff=%g fap=%g rank=%g chan=%d",
				c.TCent, c.EFF, c.FAP, c.Rank, c.Channel)
		}
	}
	return cands[0], true
}
