// Package runmetrics exposes the outcome of a comparison run as Prometheus
// gauges and writes them to a node-exporter textfile.
package runmetrics

import (
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/auxmvc/auxmvc/mvc"
)

const namespace = "auxmvc"

// Metrics holds the gauges of one run in a private registry.
type Metrics struct {
	reg *prometheus.Registry

	runInfo        *prometheus.GaugeVec
	triggers       *prometheus.GaugeVec
	vetoMatches    *prometheus.GaugeVec
	clusterRemoved prometheus.Gauge
	efficiency     *prometheus.GaugeVec
}

// New creates the gauges of a run labelled with runID.
func New(runID string) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		runInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_info",
			Help:      "Constant 1, labelled with the run identifier",
		}, []string{"run_id"}),
		triggers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "triggers",
			Help:      "Triggers in the fused table after clustering",
		}, []string{"class"}),
		vetoMatches: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "veto_matches",
			Help:      "Glitches by auxiliary-veto lookup outcome",
		}, []string{"outcome"}),
		clusterRemoved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cluster_removed",
			Help:      "Glitches removed by temporal clustering",
		}),
		efficiency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "efficiency_at_fap",
			Help:      "Efficiency of each classifier at the configured FAP threshold",
		}, []string{"kind"}),
	}
	m.reg.MustRegister(m.runInfo, m.triggers, m.vetoMatches, m.clusterRemoved, m.efficiency)
	m.runInfo.WithLabelValues(runID).Set(1)
	return m
}

// Registry returns the registry holding the run gauges.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// ObserveResult records trigger counts, veto outcomes and clustering removals.
func (m *Metrics) ObserveResult(res *mvc.Result) {
	m.triggers.WithLabelValues("glitch").Set(float64(len(res.Table.Glitches())))
	m.triggers.WithLabelValues("clean").Set(float64(len(res.Table.Cleans())))
	m.clusterRemoved.Set(float64(res.Removed))
	if v := res.Veto; v != nil {
		m.vetoMatches.WithLabelValues("matched").Set(float64(v.Matched))
		m.vetoMatches.WithLabelValues("unmatched").Set(float64(v.Glitches - v.Matched))
		m.vetoMatches.WithLabelValues("ambiguous").Set(float64(v.Ambiguous))
	}
}

// ObserveEfficiency records the efficiency at FAP of every result. A kind
// whose glitches were all vetoed has no efficiency and is left unset.
func (m *Metrics) ObserveEfficiency(results []mvc.VetoResult) {
	for _, r := range results {
		if math.IsNaN(r.Efficiency) {
			continue
		}
		m.efficiency.WithLabelValues(string(r.Kind)).Set(r.Efficiency)
	}
}

// WriteTextfile writes the gauges to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
