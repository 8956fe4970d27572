package verifier

import (
	"testing"

	"github.com/projectdiscovery/drtalearn/drta"
	"github.com/projectdiscovery/drtalearn/encoder"
	"github.com/projectdiscovery/drtalearn/partition"
	"github.com/projectdiscovery/drtalearn/region"
	"github.com/projectdiscovery/drtalearn/trace"
)

func TestVerifyAllMatchingSamples(t *testing.T) {
	groups := []partition.Group{
		{Source: 0, Symbol: "a", Guards: []partition.Guard{
			{Region: region.Region{Lo: 0, Hi: 1, LoClosed: true, HiClosed: false}, Target: 1},
			{Region: region.Unbounded(1, true), Target: 0},
		}},
	}
	a := &Automaton{Root: 0, Accepting: map[int]bool{1: true}}
	a.groups = map[groupKey]partition.Group{}
	for _, g := range groups {
		a.groups[groupKey{source: g.Source, symbol: g.Symbol}] = g
	}

	samples := []trace.Sample{
		{Trace: trace.Trace{{Symbol: "a", Time: 0.3}}, Label: true},
		{Trace: trace.Trace{{Symbol: "a", Time: 2}}, Label: false},
	}
	result := Verify(a, samples)
	if !result.Correct() {
		t.Fatalf("expected all samples to verify, got mismatches: %+v", result.Mismatches)
	}
}

func TestVerifyReportsMismatch(t *testing.T) {
	groups := []partition.Group{
		{Source: 0, Symbol: "a", Guards: []partition.Guard{
			{Region: region.Unbounded(0, true), Target: 1},
		}},
	}
	a := &Automaton{Root: 0, Accepting: map[int]bool{1: true}, groups: map[groupKey]partition.Group{}}
	for _, g := range groups {
		a.groups[groupKey{source: g.Source, symbol: g.Symbol}] = g
	}

	samples := []trace.Sample{
		{Trace: trace.Trace{{Symbol: "a", Time: 5}}, Label: false},
	}
	result := Verify(a, samples)
	if result.Correct() {
		t.Fatal("expected a mismatch")
	}
	if len(result.Mismatches) != 1 || result.Mismatches[0].Got != true {
		t.Fatalf("unexpected mismatch content: %+v", result.Mismatches)
	}
}

func TestVerifyMissingGuardGroup(t *testing.T) {
	a := &Automaton{Root: 0, Accepting: map[int]bool{}, groups: map[groupKey]partition.Group{}}
	samples := []trace.Sample{
		{Trace: trace.Trace{{Symbol: "missing", Time: 1}}, Label: true},
	}
	result := Verify(a, samples)
	if result.Correct() {
		t.Fatal("expected a mismatch when no guard group exists")
	}
	if result.Mismatches[0].Reason == "" {
		t.Fatal("expected a non-empty reason for the missing guard group")
	}
}

func TestFromModelAndGroups(t *testing.T) {
	d := &drta.DRTA{Root: 7}
	model := &encoder.Model{
		NodeColour: map[drta.VertexID]int{7: 1},
		Accepting:  map[int]bool{1: true},
	}
	groups := []partition.Group{
		{Source: 1, Symbol: "a", Guards: []partition.Guard{{Region: region.Unbounded(0, true), Target: 0}}},
	}
	a := FromModelAndGroups(d, model, groups)
	if a.Root != 1 {
		t.Fatalf("expected root colour 1 (the DRTA root's colour), got %d", a.Root)
	}
	if !a.Accepting[1] {
		t.Fatal("expected colour 1 to be accepting")
	}
	if _, ok := a.groups[groupKey{source: 1, symbol: "a"}]; !ok {
		t.Fatal("expected the (1, a) guard group to be indexed")
	}
}
