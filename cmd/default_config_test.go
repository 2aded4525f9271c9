package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auxmvc/auxmvc/mvc"
	"github.com/auxmvc/auxmvc/mvc/cveto"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_ShippedDefaults_MatchBuiltin(t *testing.T) {
	// GIVEN the repository defaults.yaml
	path := "../defaults.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("defaults.yaml not found")
	}

	// WHEN loaded
	cfg, err := loadConfig(path)
	require.NoError(t, err)

	// THEN it agrees with the built-in defaults
	builtin := builtinConfig()
	assert.Equal(t, builtin.RankColumns(), cfg.RankColumns())
	assert.Equal(t, builtin.ReservedColumns, cfg.ReservedColumns)
	assert.Equal(t, cveto.DefaultTolerance, cfg.VetoTolerance)
	assert.Equal(t, builtin.Figures, cfg.Figures)
}

func TestLoadConfig_PartialFile_KeepsBuiltinSections(t *testing.T) {
	// GIVEN a file overriding only the svm rank column and the tolerance
	path := writeConfig(t, "classifiers:\n  svm:\n    rank_column: score\nveto_tolerance: 0.01\n")

	cfg, err := loadConfig(path)

	// THEN the override applies and the other kinds keep their columns
	require.NoError(t, err)
	cols := cfg.RankColumns()
	assert.Equal(t, "score", cols[mvc.SVM])
	assert.Equal(t, "Bagger", cols[mvc.MVSC])
	assert.Equal(t, 0.01, cfg.VetoTolerance)
	assert.Equal(t, 8.0, cfg.Figures.Width)
}

func TestLoadConfig_UnknownField_Rejected(t *testing.T) {
	path := writeConfig(t, "veto_tolerence: 0.01\n")

	_, err := loadConfig(path)

	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"auxiliary veto has no rank column", "classifiers:\n  cveto:\n    rank_column: r\n"},
		{"unknown classifier", "classifiers:\n  knn:\n    rank_column: r\n"},
		{"empty rank column", "classifiers:\n  ann:\n    rank_column: \"\"\n"},
		{"non-positive tolerance", "veto_tolerance: 0\n"},
		{"zero figure width", "figures:\n  width_in: 0\n  height_in: 6\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigOrBuiltin_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	// GIVEN the default path is absent, built-in values are used
	cfg, err := loadConfigOrBuiltin(missing, false)
	require.NoError(t, err)
	assert.Equal(t, cveto.DefaultTolerance, cfg.VetoTolerance)

	// AND an explicitly requested file must exist
	_, err = loadConfigOrBuiltin(missing, true)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
