package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/auxmvc/auxmvc/mvc"
	"github.com/auxmvc/auxmvc/mvc/figures"
	"github.com/auxmvc/auxmvc/mvc/report"
	"github.com/auxmvc/auxmvc/mvc/runmetrics"
	"github.com/auxmvc/auxmvc/mvc/trace"
)

var (
	// Classifier sources (glob patterns)
	annFiles   string // ANN ranked files
	mvscFiles  string // MVSC ranked files
	svmFiles   string // SVM ranked files
	cvetoFiles string // auxiliary-veto event files

	// Analysis
	fapThreshold  float64 // FAP at which efficiencies are reported
	clusterOn     bool    // Cluster glitches in time
	clusterWindow float64 // Clustering window (s)
	clusterRank   string  // Column maximized within a cluster

	// Output
	outputPath        string // Directory for every output file
	userTag           string // Prefix of every output file name
	enableOutput      bool   // Render figures, html index and cache
	figureResolution  int    // Thumbnail DPI
	writeCombinedData bool   // Write the fused glitch/clean tables
	defaultsFilePath  string // Path to defaults.yaml
	metricsTextfile   string // Prometheus textfile path, empty disables
	traceLevel        string // Decision trace level
)

// compareCmd fuses classifier outputs and writes the comparison report
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Fuse classifier outputs and report FAP, efficiency and redundancy",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfigOrBuiltin(defaultsFilePath, cmd.Flags().Changed("config"))
		if err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}

		descs, err := buildDescriptors(map[mvc.Kind]string{
			mvc.ANN: annFiles, mvc.MVSC: mvscFiles, mvc.SVM: svmFiles, mvc.CVeto: cvetoFiles,
		})
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		runID := uuid.NewString()
		logrus.Infof("Starting comparison run %s over %d classifier sources", runID, len(descs))

		opts := mvc.DefaultOptions()
		opts.RankColumns = cfg.RankColumns()
		opts.Reserved = cfg.ReservedColumns
		opts.VetoTolerance = cfg.VetoTolerance
		opts.Cluster = clusterOn
		opts.ClusterWindow = clusterWindow
		opts.ClusterRank = clusterRank

		tr := trace.New(trace.TraceLevel(traceLevel))
		res, err := mvc.NewPipeline(opts, nil, nil, tr).Run(descs)
		if err != nil {
			logrus.Fatalf("Comparison failed: %v", err)
		}

		files, err := writeReport(res, cfg, runID)
		if err != nil {
			logrus.Fatalf("Writing report: %v", err)
		}
		for _, f := range files {
			logrus.Debugf("wrote %s", f)
		}

		if tr != nil {
			s := trace.Summarize(tr)
			logrus.Infof("trace: %d veto lookups (%d matched, %d unmatched, %d ambiguous, max %d candidates), %d cluster suppressions (mean gap %.3fs, max %.3fs)",
				s.Lookups, s.Matched, s.Unmatched, s.Ambiguous, s.MaxCandidates, s.Suppressed, s.MeanGap, s.MaxGap)
		}

		logrus.Info("Comparison complete.")
	},
}

// buildDescriptors expands the glob pattern of every supplied classifier,
// in the fixed order ann, mvsc, svm, cveto. The first descriptor is primary.
func buildDescriptors(patterns map[mvc.Kind]string) ([]mvc.Descriptor, error) {
	var descs []mvc.Descriptor
	for _, k := range []mvc.Kind{mvc.ANN, mvc.MVSC, mvc.SVM, mvc.CVeto} {
		pattern := patterns[k]
		if pattern == "" {
			continue
		}
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%s files: %w", k, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%s files: no file matches %q", k, pattern)
		}
		sort.Strings(files)
		descs = append(descs, mvc.Descriptor{Kind: k, Files: files})
	}
	if len(descs) == 0 {
		return nil, mvc.ErrNoClassifiers
	}
	return descs, nil
}

// writeReport writes every enabled output of a run and returns their paths.
func writeReport(res *mvc.Result, cfg Config, runID string) ([]string, error) {
	w, err := report.NewWriter(outputPath, userTag, runID)
	if err != nil {
		return nil, err
	}
	var files []string

	if writeCombinedData {
		glitchPath, cleanPath, err := w.WriteData(res.Table)
		if err != nil {
			return nil, err
		}
		files = append(files, glitchPath, cleanPath)
	}

	results := report.EfficiencyAtFAP(res.Table, res.ReportKinds, fapThreshold)
	for _, r := range results {
		logrus.Infof("%s efficiency at FAP %g: %g (rank threshold %g, clean rank %g, %d glitches left)",
			r.Kind, fapThreshold, r.Efficiency, r.RankThreshold, r.CleanRank, len(r.Remaining))
	}
	effPath, err := w.WriteEfficiencySummary(results, fapThreshold)
	if err != nil {
		return nil, err
	}
	redPath, err := w.WriteRedundancy(res.Table, res.ReportKinds, cfg.Figures.SignifColumn)
	if err != nil {
		return nil, err
	}
	files = append(files, effPath, redPath)

	if enableOutput {
		figCfg := figures.Config{
			Width:        cfg.Figures.Width,
			Height:       cfg.Figures.Height,
			ThumbDPI:     figureResolution,
			FAPThreshold: fapThreshold,
			SignifColumn: cfg.Figures.SignifColumn,
		}
		var plotter report.Plotter = figures.NewPlotter(w.Dir, userTag, figCfg)
		figs, err := plotter.Plot(res.Table, res.ReportKinds)
		if err != nil {
			return nil, err
		}
		htmlPath, err := w.WriteIndex(figs, runComments(res))
		if err != nil {
			return nil, err
		}
		cached := []string{filepath.Base(htmlPath)}
		for _, f := range figs {
			cached = append(cached, f.File)
		}
		cachePath, err := w.WriteCache(cached)
		if err != nil {
			return nil, err
		}
		files = append(files, htmlPath, cachePath)
	}

	if metricsTextfile != "" {
		m := runmetrics.New(runID)
		m.ObserveResult(res)
		m.ObserveEfficiency(results)
		if err := m.WriteTextfile(metricsTextfile); err != nil {
			return nil, err
		}
		files = append(files, metricsTextfile)
	}
	return files, nil
}

func runComments(res *mvc.Result) []string {
	comments := []string{fmt.Sprintf("%d glitch and %d clean triggers", len(res.Table.Glitches()), len(res.Table.Cleans()))}
	if clusterOn {
		comments = append(comments, fmt.Sprintf("clustered on %s with a %gs window: %d glitches removed",
			clusterRank, clusterWindow, res.Removed))
	}
	if v := res.Veto; v != nil {
		comments = append(comments, fmt.Sprintf("auxiliary veto matched %d of %d glitches", v.Matched, v.Glitches))
	}
	return comments
}

func init() {
	compareCmd.Flags().StringVar(&annFiles, "ann-ranked-files", "", "Glob pattern of ANN ranked files")
	compareCmd.Flags().StringVar(&mvscFiles, "mvsc-ranked-files", "", "Glob pattern of MVSC ranked files")
	compareCmd.Flags().StringVar(&svmFiles, "svm-ranked-files", "", "Glob pattern of SVM ranked files")
	compareCmd.Flags().StringVar(&cvetoFiles, "cveto-ranked-files", "", "Glob pattern of auxiliary-veto event files (JSON)")

	compareCmd.Flags().Float64Var(&fapThreshold, "fap-threshold", 0.1, "FAP at which efficiencies are reported")
	compareCmd.Flags().BoolVar(&clusterOn, "cluster", true, "Cluster glitches in time before reporting")
	compareCmd.Flags().Float64Var(&clusterWindow, "cluster-window", mvc.DefaultClusterWindow, "Clustering window (s)")
	compareCmd.Flags().StringVar(&clusterRank, "cluster-rank", mvc.DefaultClusterRank, "Column whose maximum survives within a cluster")

	compareCmd.Flags().StringVarP(&outputPath, "output-path", "P", ".", "Directory for output files")
	compareCmd.Flags().StringVarP(&userTag, "user-tag", "u", "auxmvc", "Prefix of output file names")
	compareCmd.Flags().BoolVar(&enableOutput, "enable-output", true, "Render figures and write the html index and cache")
	compareCmd.Flags().IntVar(&figureResolution, "figure-resolution", 50, "Thumbnail resolution (DPI)")
	compareCmd.Flags().BoolVar(&writeCombinedData, "write-combined-data", true, "Write the fused glitch and clean tables")
	compareCmd.Flags().StringVar(&defaultsFilePath, "config", "defaults.yaml", "Path to defaults.yaml")
	compareCmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write run gauges to this Prometheus textfile")
	compareCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")
}
