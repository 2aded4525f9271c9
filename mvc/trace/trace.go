// Package trace records the decisions taken while fusing a trigger table:
// auxiliary-veto lookups and cluster suppressions.
// This package has no dependencies on mvc/ or mvc/cveto/; it stores pure data types.
package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every veto lookup and cluster suppression.
	TraceLevelDecisions TraceLevel = "decisions"
)

var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// New returns a Trace for the given level, or nil when tracing is disabled.
// All recording methods are safe on a nil *Trace.
func New(level TraceLevel) *Trace {
	if level == TraceLevelNone || level == "" {
		return nil
	}
	return &Trace{
		Level:        level,
		Matches:      make([]MatchRecord, 0),
		Suppressions: make([]SuppressionRecord, 0),
	}
}

// Trace collects decision records during one run.
type Trace struct {
	Level        TraceLevel
	Matches      []MatchRecord
	Suppressions []SuppressionRecord
}

// RecordMatch appends a veto lookup record.
func (t *Trace) RecordMatch(record MatchRecord) {
	if t == nil {
		return
	}
	t.Matches = append(t.Matches, record)
}

// RecordSuppression appends a cluster suppression record.
func (t *Trace) RecordSuppression(record SuppressionRecord) {
	if t == nil {
		return
	}
	t.Suppressions = append(t.Suppressions, record)
}
