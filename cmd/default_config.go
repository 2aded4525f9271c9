package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/auxmvc/auxmvc/mvc"
	"github.com/auxmvc/auxmvc/mvc/cveto"
	"github.com/auxmvc/auxmvc/mvc/dat"
	"github.com/auxmvc/auxmvc/mvc/figures"
)

// ClassifierConfig describes how to read one classifier's output files.
type ClassifierConfig struct {
	RankColumn string `yaml:"rank_column"`
}

// FigureConfig sets the geometry of the rendered figures.
type FigureConfig struct {
	Width        float64 `yaml:"width_in"`
	Height       float64 `yaml:"height_in"`
	SignifColumn string  `yaml:"signif_column"`
}

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version         string                      `yaml:"version"`
	Classifiers     map[string]ClassifierConfig `yaml:"classifiers"`
	ReservedColumns []string                    `yaml:"reserved_columns"`
	VetoTolerance   float64                     `yaml:"veto_tolerance"`
	Figures         FigureConfig                `yaml:"figures"`
}

// builtinConfig mirrors the shipped defaults.yaml.
func builtinConfig() Config {
	cfg := Config{
		Classifiers:     make(map[string]ClassifierConfig, len(mvc.DefaultRankColumns)),
		ReservedColumns: dat.ReservedColumns,
		VetoTolerance:   cveto.DefaultTolerance,
	}
	for k, col := range mvc.DefaultRankColumns {
		cfg.Classifiers[string(k)] = ClassifierConfig{RankColumn: col}
	}
	fc := figures.DefaultConfig()
	cfg.Figures = FigureConfig{Width: fc.Width, Height: fc.Height, SignifColumn: fc.SignifColumn}
	return cfg
}

// loadConfig parses a defaults file with strict field checking. Sections
// left out of the file keep their built-in values.
func loadConfig(path string) (Config, error) {
	cfg := builtinConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading defaults file %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing defaults file %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

// loadConfigOrBuiltin reads path, falling back to the built-in defaults when
// the file is absent and the path was not set explicitly.
func loadConfigOrBuiltin(path string, explicit bool) (Config, error) {
	cfg, err := loadConfig(path)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		return builtinConfig(), nil
	}
	return cfg, err
}

func (c Config) validate() error {
	for name, cc := range c.Classifiers {
		k := mvc.Kind(name)
		if !mvc.IsValidKind(name) || !k.RankBased() || k == mvc.Combined {
			return fmt.Errorf("classifiers: %q is not a rank-based classifier", name)
		}
		if cc.RankColumn == "" {
			return fmt.Errorf("classifiers.%s: rank_column is empty", name)
		}
	}
	if c.VetoTolerance <= 0 {
		return fmt.Errorf("veto_tolerance must be positive, got %g", c.VetoTolerance)
	}
	if c.Figures.Width <= 0 || c.Figures.Height <= 0 {
		return fmt.Errorf("figures: width_in and height_in must be positive")
	}
	return nil
}

// RankColumns returns the per-kind rank column map consumed by mvc.Merger.
func (c Config) RankColumns() map[mvc.Kind]string {
	cols := make(map[mvc.Kind]string, len(c.Classifiers))
	for name, cc := range c.Classifiers {
		cols[mvc.Kind(name)] = cc.RankColumn
	}
	return cols
}
