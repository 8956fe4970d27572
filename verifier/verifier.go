// Package verifier replays input traces against an optimised DRTA and
// reports any trace whose outcome disagrees with its label.
package verifier

import (
	"fmt"

	"github.com/projectdiscovery/drtalearn/drta"
	"github.com/projectdiscovery/drtalearn/encoder"
	"github.com/projectdiscovery/drtalearn/partition"
	"github.com/projectdiscovery/drtalearn/trace"
)

// Automaton is the minimal, colour-indexed run target the verifier steps
// through: it wraps an encoder Model's colouring together with the
// partition optimiser's guard groups, rather than the raw DRTA multigraph
// the encoder consumed.
type Automaton struct {
	Root      int
	Accepting map[int]bool
	groups    map[groupKey]partition.Group
}

type groupKey struct {
	source int
	symbol string
}

// FromModelAndGroups builds a runnable Automaton from an encoder Model and
// the region-partition optimiser's output groups.
func FromModelAndGroups(d *drta.DRTA, model *encoder.Model, groups []partition.Group) *Automaton {
	a := &Automaton{
		Root:      model.NodeColour[d.Root],
		Accepting: model.Accepting,
		groups:    map[groupKey]partition.Group{},
	}
	for _, g := range groups {
		a.groups[groupKey{source: g.Source, symbol: g.Symbol}] = g
	}
	return a
}

// Mismatch describes one trace whose replayed outcome disagreed with its
// input label.
type Mismatch struct {
	Index    int
	Trace    trace.Trace
	Expected bool
	Got      bool
	Reason   string
}

// Result is the outcome of verifying a full sample set.
type Result struct {
	Total      int
	Mismatches []Mismatch
}

// Correct reports whether every sample's replayed outcome matched its label.
func (r Result) Correct() bool { return len(r.Mismatches) == 0 }

// Verify replays every sample against a, from its initial state, and
// collects every disagreement between the replayed outcome and the
// sample's label.
func Verify(a *Automaton, samples []trace.Sample) Result {
	result := Result{Total: len(samples)}
	for i, s := range samples {
		accepted, reason := a.run(s.Trace)
		if accepted != s.Label {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Index:    i,
				Trace:    s.Trace,
				Expected: s.Label,
				Got:      accepted,
				Reason:   reason,
			})
		}
	}
	return result
}

// run replays a single trace from the initial colour, returning whether it
// lands on an accepting colour and, when it does not run to completion, why.
func (a *Automaton) run(tr trace.Trace) (bool, string) {
	state := a.Root
	for i, ev := range tr {
		g, ok := a.groups[groupKey{source: state, symbol: ev.Symbol}]
		if !ok {
			return false, fmt.Sprintf("no guard group for colour %d on symbol %q at step %d", state, ev.Symbol, i)
		}
		target, ok := locate(g, ev.Time)
		if !ok {
			return false, fmt.Sprintf("no guard in colour %d's %q partition contains time %g at step %d", state, ev.Symbol, ev.Time, i)
		}
		state = target
	}
	return a.Accepting[state], ""
}

// locate finds the unique guard in g whose region contains t.
func locate(g partition.Group, t float64) (int, bool) {
	for _, guard := range g.Guards {
		if guard.Region.Contains(t) {
			return guard.Target, true
		}
	}
	return 0, false
}
