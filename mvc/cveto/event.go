// Package cveto loads the auxiliary-veto (CVeto) event dataset and matches
// its events onto glitch triggers by center time.
package cveto

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultTolerance is the half-width, in seconds, of the window used to match
// an event center time onto a trigger time.
const DefaultTolerance = 0.0015

// Config is the veto configuration that produced an event.
type Config struct {
	Channel   int     `json:"vchan"`
	Threshold float64 `json:"vthr"`
	Window    float64 `json:"vwin"`
}

// Stats holds the counters of the veto configuration. The c_ prefixed
// counters are cumulative over all configurations applied so far.
type Stats struct {
	Livetime          float64 `json:"livetime"`
	NumGWTriggers     float64 `json:"ngwtrg"`
	DeadSeconds       float64 `json:"dsec"`
	ClusterSeconds    float64 `json:"csec"`
	VetoActivity      float64 `json:"vact"`
	VetoSignificance  float64 `json:"vsig"`
	CumLivetime       float64 `json:"c_livetime"`
	CumNumGWTriggers  float64 `json:"c_ngwtrg"`
	CumDeadSeconds    float64 `json:"c_dsec"`
	CumClusterSeconds float64 `json:"c_csec"`
	CumVetoActivity   float64 `json:"c_vact"`
	Rank              float64 `json:"rank"` // row index of the configuration; normalized by Matcher
}

// Event is one vetoed glitch reported by the auxiliary-veto analysis.
type Event struct {
	TCent  float64 `json:"tcent"`
	Config Config  `json:"vconfig"`
	Stats  Stats   `json:"vstats"`
}

// Efficiency is the cumulative fraction of GW triggers vetoed: c_vact / c_ngwtrg.
// Zero when no GW triggers were counted.
func (e Event) Efficiency() float64 {
	if e.Stats.CumNumGWTriggers == 0 {
		return 0
	}
	return e.Stats.CumVetoActivity / e.Stats.CumNumGWTriggers
}

// FAP is the cumulative fraction of livetime vetoed: c_csec / c_livetime.
// Zero when no livetime was counted.
func (e Event) FAP() float64 {
	if e.Stats.CumLivetime == 0 {
		return 0
	}
	return e.Stats.CumClusterSeconds / e.Stats.CumLivetime
}

// LoadFiles reads and concatenates event datasets in the given order.
func LoadFiles(paths []string) ([]Event, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no auxiliary-veto files given")
	}
	var events []Event
	for _, path := range paths {
		ev, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		events = append(events, ev...)
	}
	return events, nil
}

// LoadFile reads one JSON array of events.
func LoadFile(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading auxiliary-veto file %s: %w", path, err)
	}
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parsing auxiliary-veto file %s: %w", path, err)
	}
	return events, nil
}
