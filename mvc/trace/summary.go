package trace

// TraceSummary aggregates statistics from a Trace.
type TraceSummary struct {
	Lookups       int
	Matched       int
	Unmatched     int
	Ambiguous     int
	MaxCandidates int
	Suppressed    int
	MeanGap       float64 // mean time gap of suppressed pairs
	MaxGap        float64
}

// Summarize computes aggregate statistics from a Trace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(t *Trace) *TraceSummary {
	summary := &TraceSummary{}
	if t == nil {
		return summary
	}

	summary.Lookups = len(t.Matches)
	for _, m := range t.Matches {
		if m.Chosen >= 0 {
			summary.Matched++
		} else {
			summary.Unmatched++
		}
		if m.Ambiguous() {
			summary.Ambiguous++
		}
		if len(m.Candidates) > summary.MaxCandidates {
			summary.MaxCandidates = len(m.Candidates)
		}
	}

	summary.Suppressed = len(t.Suppressions)
	if len(t.Suppressions) > 0 {
		total := 0.0
		for _, s := range t.Suppressions {
			gap := s.Gap()
			total += gap
			if gap > summary.MaxGap {
				summary.MaxGap = gap
			}
		}
		summary.MeanGap = total / float64(len(t.Suppressions))
	}
	return summary
}
