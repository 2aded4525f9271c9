package mvc

import (
	"fmt"
	"sort"
	"strings"
)

// Fixed column names of the fused table.
const (
	ColumnGPS         = "GPS"
	ColumnGlitch      = "glitch"
	ColumnVetoChannel = "cveto_chan"
)

// Trigger is one row of the fused table, identified by (Glitch, GPS).
type Trigger struct {
	Glitch      bool
	GPS         float64
	Shared      []float64 // aligned with Table.SharedFields
	VetoChannel int       // -1 when the auxiliary veto found no event

	scores [5]Score // indexed by Kind.index()
}

// Score returns the mutable score triple of kind k.
func (t *Trigger) Score(k Kind) *Score { return &t.scores[k.index()] }

// Accessor reads one column value from a trigger.
type Accessor func(*Trigger) float64

// Table is the fused trigger table. Its schema (the shared descriptive
// fields plus one score triple per kind in AllKinds) is fixed at construction.
type Table struct {
	SharedFields []string
	Rows         []*Trigger

	shared map[string]int
}

// NewTable creates an empty table with the given shared descriptive fields.
func NewTable(sharedFields []string) *Table {
	tb := &Table{SharedFields: sharedFields, shared: make(map[string]int, len(sharedFields))}
	for i, f := range sharedFields {
		tb.shared[f] = i
	}
	return tb
}

// NewTrigger appends a zero-filled trigger and returns it.
func (tb *Table) NewTrigger() *Trigger {
	t := &Trigger{Shared: make([]float64, len(tb.SharedFields))}
	tb.Rows = append(tb.Rows, t)
	return t
}

// WithRows returns a table with the same schema holding rows.
func (tb *Table) WithRows(rows []*Trigger) *Table {
	return &Table{SharedFields: tb.SharedFields, Rows: rows, shared: tb.shared}
}

// Len returns the number of rows.
func (tb *Table) Len() int { return len(tb.Rows) }

// Glitches returns the glitch rows in table order.
func (tb *Table) Glitches() []*Trigger { return tb.filter(true) }

// Cleans returns the clean rows in table order.
func (tb *Table) Cleans() []*Trigger { return tb.filter(false) }

func (tb *Table) filter(glitch bool) []*Trigger {
	var out []*Trigger
	for _, t := range tb.Rows {
		if t.Glitch == glitch {
			out = append(out, t)
		}
	}
	return out
}

// SortByGlitchThenGPS orders rows clean-first, then by time within each
// partition. The sort is stable so equal keys keep their source order.
func (tb *Table) SortByGlitchThenGPS() {
	sort.SliceStable(tb.Rows, func(i, j int) bool {
		return lessGlitchGPS(tb.Rows[i].Glitch, tb.Rows[i].GPS, tb.Rows[j].Glitch, tb.Rows[j].GPS)
	})
}

func lessGlitchGPS(gi bool, ti float64, gj bool, tj float64) bool {
	if gi != gj {
		return !gi
	}
	return ti < tj
}

// Columns returns the output column names in schema order.
func (tb *Table) Columns() []string {
	cols := []string{ColumnGPS, ColumnGlitch}
	cols = append(cols, tb.SharedFields...)
	for _, k := range []Kind{MVSC, ANN, SVM, CVeto} {
		cols = append(cols, string(k)+"_rank", string(k)+"_fap", string(k)+"_eff")
	}
	cols = append(cols, ColumnVetoChannel)
	return append(cols, "combined_rank", "combined_eff", "combined_fap")
}

// Values returns the column values of t in Columns order.
func (tb *Table) Values(t *Trigger) []float64 {
	vals := make([]float64, 0, 2+len(t.Shared)+16)
	glitch := 0.0
	if t.Glitch {
		glitch = 1
	}
	vals = append(vals, t.GPS, glitch)
	vals = append(vals, t.Shared...)
	for _, k := range []Kind{MVSC, ANN, SVM, CVeto} {
		s := t.Score(k)
		vals = append(vals, s.Rank, s.FAP, s.EFF)
	}
	vals = append(vals, float64(t.VetoChannel))
	c := t.Score(Combined)
	return append(vals, c.Rank, c.EFF, c.FAP)
}

// Column resolves a column name to an accessor.
func (tb *Table) Column(name string) (Accessor, error) {
	switch name {
	case ColumnGPS:
		return func(t *Trigger) float64 { return t.GPS }, nil
	case ColumnGlitch:
		return func(t *Trigger) float64 {
			if t.Glitch {
				return 1
			}
			return 0
		}, nil
	case ColumnVetoChannel:
		return func(t *Trigger) float64 { return float64(t.VetoChannel) }, nil
	}
	if i, ok := tb.shared[name]; ok {
		return func(t *Trigger) float64 { return t.Shared[i] }, nil
	}
	if cut := strings.LastIndexByte(name, '_'); cut > 0 && IsValidKind(name[:cut]) {
		k := Kind(name[:cut])
		switch name[cut+1:] {
		case "rank":
			return func(t *Trigger) float64 { return t.Score(k).Rank }, nil
		case "fap":
			return func(t *Trigger) float64 { return t.Score(k).FAP }, nil
		case "eff":
			return func(t *Trigger) float64 { return t.Score(k).EFF }, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownColumn, name)
}
