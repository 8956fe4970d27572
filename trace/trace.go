// Package trace defines the timed-trace sample format the learner operates
// on: ordered (symbol, timestamp) sequences labelled accept or reject.
package trace

import (
	"fmt"
	"math"
	"sort"
)

// Event is a single (symbol, timestamp) observation within a trace.
type Event struct {
	Symbol string
	Time   float64
}

// Trace is an ordered sequence of timed events.
type Trace []Event

// Sample pairs a trace with its ground-truth label.
type Sample struct {
	Trace Trace
	Label bool // true = accept, false = reject
}

// Validate rejects traces with negative or non-finite timestamps, per the
// MalformedInput error kind (section 7).
func (tr Trace) Validate() error {
	for i, ev := range tr {
		if ev.Time < 0 || math.IsNaN(ev.Time) || math.IsInf(ev.Time, 0) {
			return fmt.Errorf("trace: event %d symbol %q has negative or non-finite time %v", i, ev.Symbol, ev.Time)
		}
	}
	return nil
}

// Times returns every timestamp occurring in the sample, used by the region
// alphabet builder to compute kappa.
func Times(samples []Sample) []float64 {
	var out []float64
	for _, s := range samples {
		for _, ev := range s.Trace {
			out = append(out, ev.Time)
		}
	}
	return out
}

// Key renders the trace as a comparable, sortable string of its (symbol,
// time) pairs, used to sort traces into the deterministic lexicographic
// insertion order section 4.3 and section 5 require.
func (tr Trace) Key() string {
	out := ""
	for _, ev := range tr {
		out += fmt.Sprintf("%s@%024.6f|", ev.Symbol, ev.Time)
	}
	return out
}

// SortLexicographic sorts samples in place by their trace key, making build
// order a deterministic function of the input set rather than of slice
// iteration order.
func SortLexicographic(samples []Sample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Trace.Key() < samples[j].Trace.Key()
	})
}

// MaxTime returns the largest timestamp across samples, or 0 if empty.
func MaxTime(samples []Sample) float64 {
	max := 0.0
	for _, s := range samples {
		for _, ev := range s.Trace {
			if ev.Time > max {
				max = ev.Time
			}
		}
	}
	return max
}
