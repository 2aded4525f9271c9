package trace

// MatchRecord captures one auxiliary-veto lookup for a glitch trigger.
type MatchRecord struct {
	GPS        float64
	Candidates []float64 // center times of all events inside the tolerance, dataset order
	Chosen     int       // index into Candidates; -1 when nothing matched
}

// Ambiguous reports whether more than one event matched.
func (r MatchRecord) Ambiguous() bool { return len(r.Candidates) > 1 }

// SuppressionRecord captures one clustering removal.
type SuppressionRecord struct {
	KeptGPS     float64
	DroppedGPS  float64
	KeptRank    float64
	DroppedRank float64
}

// Gap is the absolute time separation of the two records.
func (r SuppressionRecord) Gap() float64 {
	if r.KeptGPS > r.DroppedGPS {
		return r.KeptGPS - r.DroppedGPS
	}
	return r.DroppedGPS - r.KeptGPS
}
