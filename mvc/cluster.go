package mvc

import (
	"fmt"
	"sort"

	"github.com/auxmvc/auxmvc/mvc/trace"
)

// Default clustering parameters.
const (
	DefaultClusterWindow = 1.0
	DefaultClusterRank   = "signif"
)

// Cluster suppresses glitch triggers that lie within window seconds of a
// neighbour with a higher value of rankField. Glitches are walked in time
// order and each is compared with the last survivor only: within the window
// the lower-ranked one is dropped (on a tie the earlier one), otherwise both
// survive. This is a single greedy pass, not a global maximum search.
//
// The result holds the surviving glitches in time order followed by the
// clean triggers in their original order; it is not globally time sorted.
// The number of removed glitches is returned.
func Cluster(tbl *Table, rankField string, window float64, tr *trace.Trace) (*Table, int, error) {
	rank, err := tbl.Column(rankField)
	if err != nil {
		return nil, 0, fmt.Errorf("cluster rank: %w", err)
	}

	glitches := tbl.Glitches()
	sort.SliceStable(glitches, func(i, j int) bool { return glitches[i].GPS < glitches[j].GPS })

	kept := make([]*Trigger, 0, len(glitches))
	for _, g := range glitches {
		if len(kept) == 0 {
			kept = append(kept, g)
			continue
		}
		last := kept[len(kept)-1]
		if g.GPS-last.GPS >= window {
			kept = append(kept, g)
			continue
		}
		if rank(g) >= rank(last) {
			kept[len(kept)-1] = g
			tr.RecordSuppression(suppression(g, last, rank))
		} else {
			tr.RecordSuppression(suppression(last, g, rank))
		}
	}

	rows := append(kept, tbl.Cleans()...)
	return tbl.WithRows(rows), len(glitches) - len(kept), nil
}

func suppression(kept, dropped *Trigger, rank Accessor) trace.SuppressionRecord {
	return trace.SuppressionRecord{
		KeptGPS:     kept.GPS,
		DroppedGPS:  dropped.GPS,
		KeptRank:    rank(kept),
		DroppedRank: rank(dropped),
	}
}
