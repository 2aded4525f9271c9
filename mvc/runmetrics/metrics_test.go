package runmetrics

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auxmvc/auxmvc/mvc"
)

func TestWriteTextfile_ContainsRunGauges(t *testing.T) {
	// GIVEN a result with one glitch, one clean and a veto pass
	tbl := mvc.NewTable(nil)
	tbl.NewTrigger().Glitch = true
	tbl.NewTrigger()
	res := &mvc.Result{
		Table:   tbl,
		Removed: 3,
		Veto:    &mvc.VetoStats{Glitches: 4, Matched: 3, Ambiguous: 1},
	}
	m := New("run-42")

	// WHEN observed and written
	m.ObserveResult(res)
	m.ObserveEfficiency([]mvc.VetoResult{
		{Kind: mvc.ANN, Efficiency: 0.25},
		{Kind: mvc.SVM, Efficiency: math.NaN()},
	})
	path := filepath.Join(t.TempDir(), "auxmvc.prom")
	require.NoError(t, m.WriteTextfile(path))

	// THEN the textfile holds every gauge
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `auxmvc_run_info{run_id="run-42"} 1`)
	assert.Contains(t, text, `auxmvc_triggers{class="glitch"} 1`)
	assert.Contains(t, text, `auxmvc_triggers{class="clean"} 1`)
	assert.Contains(t, text, `auxmvc_veto_matches{outcome="unmatched"} 1`)
	assert.Contains(t, text, `auxmvc_veto_matches{outcome="matched"} 3`)
	assert.Contains(t, text, "auxmvc_cluster_removed 3")
	assert.Contains(t, text, `auxmvc_efficiency_at_fap{kind="ann"} 0.25`)
	assert.NotContains(t, text, `kind="svm"`)
}

func TestObserveResult_NoVeto_LeavesVetoGaugesUnset(t *testing.T) {
	m := New("r")
	m.ObserveResult(&mvc.Result{Table: mvc.NewTable(nil)})

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		assert.NotEqual(t, "auxmvc_veto_matches", f.GetName())
	}
}
