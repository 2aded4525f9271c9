package mvc

import (
	"errors"
	"fmt"
)

// Kind names a classifier. The set is fixed.
type Kind string

const (
	MVSC     Kind = "mvsc"
	ANN      Kind = "ann"
	SVM      Kind = "svm"
	CVeto    Kind = "cveto"
	Combined Kind = "combined"
)

// AllKinds is the schema order of the per-classifier column triples.
var AllKinds = []Kind{MVSC, ANN, SVM, CVeto, Combined}

var kindIndex = map[Kind]int{MVSC: 0, ANN: 1, SVM: 2, CVeto: 3, Combined: 4}

// Sentinel errors. The cmd layer treats all of them as fatal.
var (
	ErrNoClassifiers = errors.New("no classifier sources supplied")
	ErrNotRankBased  = errors.New("classifier is not rank based")
	ErrUnknownColumn = errors.New("unknown column")
)

// IsValidKind returns true if the given name is a recognized classifier kind.
func IsValidKind(name string) bool {
	_, ok := kindIndex[Kind(name)]
	return ok
}

// RankBased reports whether FAP/EFF of this kind derive from its rank
// distribution. The auxiliary-veto kind gets them directly from its dataset.
func (k Kind) RankBased() bool { return k != CVeto }

func (k Kind) index() int {
	i, ok := kindIndex[k]
	if !ok {
		panic(fmt.Sprintf("mvc: unknown classifier kind %q", string(k)))
	}
	return i
}

// Score is the (rank, fap, eff) triple of one classifier for one trigger.
type Score struct {
	Rank float64
	FAP  float64
	EFF  float64
}

// Descriptor pairs a classifier kind with its source files.
type Descriptor struct {
	Kind  Kind
	Files []string
}

// RankBasedKinds returns the rank-based kinds of descs, in descriptor order.
func RankBasedKinds(descs []Descriptor) []Kind {
	var kinds []Kind
	for _, d := range descs {
		if d.Kind.RankBased() && d.Kind != Combined {
			kinds = append(kinds, d.Kind)
		}
	}
	return kinds
}

// ReportKinds returns the kinds of descs in descriptor order followed by Combined.
func ReportKinds(descs []Descriptor) []Kind {
	kinds := make([]Kind, 0, len(descs)+1)
	for _, d := range descs {
		kinds = append(kinds, d.Kind)
	}
	return append(kinds, Combined)
}
