package mvc

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/auxmvc/auxmvc/mvc/cveto"
	"github.com/auxmvc/auxmvc/mvc/trace"
)

// Options configures one fusion run.
type Options struct {
	RankColumns   map[Kind]string // nil means DefaultRankColumns
	Reserved      []string        // source columns never copied as shared fields; nil means dat.ReservedColumns
	VetoTolerance float64         // seconds
	Cluster       bool
	ClusterWindow float64 // seconds
	ClusterRank   string  // any table column name
}

// DefaultOptions returns the options of a standard run.
func DefaultOptions() Options {
	return Options{
		VetoTolerance: cveto.DefaultTolerance,
		Cluster:       true,
		ClusterWindow: DefaultClusterWindow,
		ClusterRank:   DefaultClusterRank,
	}
}

// Result is the output of a run.
type Result struct {
	Table       *Table
	RankKinds   []Kind // rank-based kinds that entered the combined rank
	ReportKinds []Kind // every supplied kind followed by Combined
	Veto        *VetoStats
	Removed     int // glitches removed by clustering
}

// EventLoadFunc reads auxiliary-veto event files.
type EventLoadFunc func(files []string) ([]cveto.Event, error)

// Pipeline runs merge, veto matching, FAP/EFF, combined rank and clustering,
// strictly in that order.
type Pipeline struct {
	opts       Options
	merger     *Merger
	loadEvents EventLoadFunc
	trace      *trace.Trace
}

// NewPipeline creates a Pipeline. Nil loaders default to the file readers.
func NewPipeline(opts Options, load LoadFunc, loadEvents EventLoadFunc, tr *trace.Trace) *Pipeline {
	if loadEvents == nil {
		loadEvents = cveto.LoadFiles
	}
	merger := NewMerger(load, opts.RankColumns)
	if opts.Reserved != nil {
		merger.reserved = opts.Reserved
	}
	return &Pipeline{
		opts:       opts,
		merger:     merger,
		loadEvents: loadEvents,
		trace:      tr,
	}
}

// Run fuses the classifier outputs described by descs.
func (p *Pipeline) Run(descs []Descriptor) (*Result, error) {
	tbl, err := p.merger.Merge(descs)
	if err != nil {
		return nil, err
	}
	if p.opts.Cluster {
		if _, err := tbl.Column(p.opts.ClusterRank); err != nil {
			return nil, fmt.Errorf("cluster rank: %w", err)
		}
	}

	res := &Result{
		RankKinds:   RankBasedKinds(descs),
		ReportKinds: ReportKinds(descs),
	}

	for _, d := range descs {
		if d.Kind != CVeto {
			continue
		}
		events, err := p.loadEvents(d.Files)
		if err != nil {
			return nil, err
		}
		stats := ApplyVeto(tbl, cveto.NewMatcher(events), p.opts.VetoTolerance, p.trace)
		res.Veto = &stats
	}

	if err := Transform(tbl, res.RankKinds); err != nil {
		return nil, err
	}

	if p.opts.Cluster {
		before := len(tbl.Glitches())
		tbl, res.Removed, err = Cluster(tbl, p.opts.ClusterRank, p.opts.ClusterWindow, p.trace)
		if err != nil {
			return nil, err
		}
		logrus.Infof("clustering on %s with %gs window: %d -> %d glitches",
			p.opts.ClusterRank, p.opts.ClusterWindow, before, before-res.Removed)
	}

	res.Table = tbl
	return res, nil
}
