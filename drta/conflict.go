package drta

import (
	"github.com/projectdiscovery/gologger"

	"github.com/projectdiscovery/drtalearn/trace"
)

// ConflictStrategy resolves a single accept/reject conflict vertex (one
// present in both Acc and Rej after FromSnapshot) given the samples whose
// trace terminates there, split by their original label.
//
// Section 9 flags the original tie-breaker (ByTimePattern below) as an
// unresolved open question: is the 1.5x factor and second-timestamp-only
// heuristic intentional, or a placeholder? The strategy is exposed as a
// configurable policy rather than hard-coded so a caller can pick whichever
// answer it has settled on.
type ConflictStrategy interface {
	Resolve(positive, negative []trace.Sample) bool // true = accept
}

// ByTimePattern is the tie-breaker described in section 4.5: it compares the
// mean second timestamp of length-2 positive and negative traces reaching
// the conflict node, accepting when the positive mean exceeds 1.5x the
// negative mean.
type ByTimePattern struct{}

func (ByTimePattern) Resolve(positive, negative []trace.Sample) bool {
	posMean, posOK := secondTimestampMean(positive)
	negMean, negOK := secondTimestampMean(negative)

	switch {
	case posOK && negOK:
		return posMean > 1.5*negMean
	case posOK:
		return true
	case negOK:
		return false
	default:
		return false
	}
}

func secondTimestampMean(samples []trace.Sample) (float64, bool) {
	sum := 0.0
	n := 0
	for _, s := range samples {
		if len(s.Trace) == 2 {
			sum += s.Trace[1].Time
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// ByMajority accepts a conflict node iff more of the traces reaching it were
// labelled positive than negative, regardless of trace length or timing.
type ByMajority struct{}

func (ByMajority) Resolve(positive, negative []trace.Sample) bool {
	return len(positive) > len(negative)
}

// StrictRejectOnConflict always resolves a conflict as rejecting, treating
// any accept/reject disagreement as evidence the merge was too aggressive
// rather than something to average over.
type StrictRejectOnConflict struct{}

func (StrictRejectOnConflict) Resolve(positive, negative []trace.Sample) bool {
	return false
}

// ResolveConflicts mutates d.Acc/d.Rej in place: every vertex in both sets
// is reassigned to exactly one of them using strategy and the samples that
// terminate there (keyed by the same canonical vertex ids snap.Terminal
// uses).
func ResolveConflicts(d *DRTA, terminal map[VertexID][]trace.Sample, strategy ConflictStrategy) {
	if strategy == nil {
		strategy = ByTimePattern{}
	}

	for _, v := range d.Conflicts() {
		var positive, negative []trace.Sample
		for _, s := range terminal[v] {
			if s.Label {
				positive = append(positive, s)
			} else {
				negative = append(negative, s)
			}
		}

		accept := strategy.Resolve(positive, negative)
		if accept {
			d.Acc[v] = true
			delete(d.Rej, v)
		} else {
			d.Rej[v] = true
			delete(d.Acc, v)
		}
		gologger.Warning().Msgf("drta: resolved accept/reject conflict at vertex %d as accept=%v (%d positive, %d negative reaching samples)", v, accept, len(positive), len(negative))
	}
}
