package mvc

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auxmvc/auxmvc/mvc/cveto"
	"github.com/auxmvc/auxmvc/mvc/dat"
	"github.com/auxmvc/auxmvc/mvc/internal/testutil"
	"github.com/auxmvc/auxmvc/mvc/trace"
)

// writeClassifierPair writes mvsc and ann files over the same triggers:
// two glitches half a second apart and two cleans.
func writeClassifierPair(t *testing.T, dir string) []Descriptor {
	t.Helper()
	mvsc := []testutil.SampleRow{
		{Glitch: true, GPS: 10.0, Signif: 5, SNR: 6, Rank: 0.1},
		{Glitch: true, GPS: 10.5, Signif: 20, SNR: 9, Rank: 0.9},
		{Glitch: false, GPS: 100, Signif: 1, SNR: 2, Rank: 0.3},
		{Glitch: false, GPS: 200, Signif: 2, SNR: 3, Rank: 0.5},
	}
	ann := make([]testutil.SampleRow, len(mvsc))
	copy(ann, mvsc)
	for i, r := range []float64{0.2, 0.8, 0.4, 0.1} {
		ann[i].Rank = r
	}
	return []Descriptor{
		{Kind: MVSC, Files: []string{testutil.WriteDat(t, dir, "mvsc.dat", DefaultRankColumns[MVSC], mvsc)}},
		{Kind: ANN, Files: []string{testutil.WriteDat(t, dir, "ann.dat", DefaultRankColumns[ANN], ann)}},
	}
}

func TestPipeline_Run_MergeTransformCluster(t *testing.T) {
	// GIVEN two classifiers over the same triggers
	descs := writeClassifierPair(t, t.TempDir())

	// WHEN the pipeline runs with clustering on signif over a 1s window
	res, err := NewPipeline(DefaultOptions(), nil, nil, nil).Run(descs)

	// THEN the weaker of the two nearby glitches is removed
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
	glitches := res.Table.Glitches()
	require.Len(t, glitches, 1)
	assert.InDelta(t, 10.5, glitches[0].GPS, 1e-9)

	// AND the survivor keeps the ranks and FAP/EFF computed before clustering
	g := glitches[0]
	assert.Equal(t, 0.9, g.Score(MVSC).Rank)
	assert.Equal(t, 0.8, g.Score(ANN).Rank)
	assert.Equal(t, 0.0, g.Score(MVSC).FAP)
	assert.Equal(t, 0.5, g.Score(MVSC).EFF)
	assert.Equal(t, OffScaleRank, g.Score(Combined).Rank)

	// AND cleans are preserved in time order
	assert.Len(t, res.Table.Cleans(), 2)
	assert.Equal(t, []Kind{MVSC, ANN}, res.RankKinds)
	assert.Equal(t, []Kind{MVSC, ANN, Combined}, res.ReportKinds)
	assert.Nil(t, res.Veto)
	assert.Equal(t, []string{"signif", "SNR"}, res.Table.SharedFields)
}

func TestPipeline_Run_NoCluster_KeepsAllGlitches(t *testing.T) {
	descs := writeClassifierPair(t, t.TempDir())
	opts := DefaultOptions()
	opts.Cluster = false

	res, err := NewPipeline(opts, nil, nil, nil).Run(descs)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Removed)
	assert.Len(t, res.Table.Glitches(), 2)
}

func TestPipeline_Run_ExtraReservedColumn_NotShared(t *testing.T) {
	descs := writeClassifierPair(t, t.TempDir())
	opts := DefaultOptions()
	opts.Reserved = append(append([]string(nil), dat.ReservedColumns...), "SNR")

	res, err := NewPipeline(opts, nil, nil, nil).Run(descs)

	require.NoError(t, err)
	assert.Equal(t, []string{"signif"}, res.Table.SharedFields)
}

func TestPipeline_Run_WithAuxiliaryVeto(t *testing.T) {
	// GIVEN an event dataset matching the first glitch only
	dir := t.TempDir()
	descs := writeClassifierPair(t, dir)
	events := []cveto.Event{{
		TCent:  10.0005,
		Config: cveto.Config{Channel: 12},
		Stats:  cveto.Stats{CumVetoActivity: 1, CumNumGWTriggers: 4, CumClusterSeconds: 1, CumLivetime: 10, Rank: 2},
	}}
	data, err := json.Marshal(events)
	require.NoError(t, err)
	vetoFile := filepath.Join(dir, "cveto.json")
	require.NoError(t, os.WriteFile(vetoFile, data, 0o644))
	descs = append(descs, Descriptor{Kind: CVeto, Files: []string{vetoFile}})

	opts := DefaultOptions()
	opts.Cluster = false
	tr := trace.New(trace.TraceLevelDecisions)

	// WHEN the pipeline runs
	res, err := NewPipeline(opts, nil, nil, tr).Run(descs)

	// THEN the matched glitch carries the event and the other gets sentinels
	require.NoError(t, err)
	require.NotNil(t, res.Veto)
	assert.Equal(t, 1, res.Veto.Matched)
	glitches := res.Table.Glitches()
	require.Len(t, glitches, 2)
	assert.Equal(t, 12, glitches[0].VetoChannel)
	assert.InDelta(t, 0.25, glitches[0].Score(CVeto).EFF, 1e-12)
	assert.InDelta(t, 1.0, glitches[0].Score(CVeto).Rank, 1e-12)
	assert.Equal(t, UnmatchedVetoChannel, glitches[1].VetoChannel)

	// AND the auxiliary veto does not enter the combined rank
	assert.Equal(t, []Kind{MVSC, ANN}, res.RankKinds)
	assert.Equal(t, []Kind{MVSC, ANN, CVeto, Combined}, res.ReportKinds)
	assert.Len(t, tr.Matches, 2)
}

func TestPipeline_Run_Errors(t *testing.T) {
	dir := t.TempDir()
	descs := writeClassifierPair(t, dir)

	tests := []struct {
		name    string
		opts    func(*Options)
		descs   []Descriptor
		wantErr error
	}{
		{name: "no descriptors", descs: nil, wantErr: ErrNoClassifiers},
		{name: "unknown cluster column", opts: func(o *Options) { o.ClusterRank = "energy" }, descs: descs, wantErr: ErrUnknownColumn},
		{name: "auxiliary veto as primary", descs: []Descriptor{{Kind: CVeto}}, wantErr: ErrNotRankBased},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			_, err := NewPipeline(opts, nil, nil, nil).Run(tt.descs)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}
