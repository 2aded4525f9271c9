// Package mvc fuses the outputs of several glitch classifiers into one
// trigger table and derives comparable statistics from it.
//
// # Reading Guide
//
//   - kind.go, table.go: classifier kinds, score triples and the fused table schema
//   - merge.go: positional merge of classifier outputs onto the primary trigger set
//   - veto.go: auxiliary-veto columns, filled from mvc/cveto lookups
//   - stats.go: empirical FAP/EFF and the combined rank
//   - cluster.go: sliding-window suppression of redundant glitches
//   - analysis.go: veto-at-FAP, redundancy words and rank-binned statistics
//   - pipeline.go: the fixed order in which the above run
//
// # Sub-packages
//
//   - mvc/dat/: classifier .dat file reader
//   - mvc/cveto/: auxiliary-veto event dataset and time-window matcher
//   - mvc/trace/: decision trace of veto lookups and cluster suppressions
//   - mvc/report/: flat data files, summaries, HTML index
//   - mvc/figures/: diagnostic figures
//   - mvc/runmetrics/: Prometheus textfile export of run counters
package mvc
