package minimizer

import (
	"testing"

	"github.com/projectdiscovery/drtalearn/trace"
)

func TestRegionForTimestampRules(t *testing.T) {
	cases := []struct {
		t, max float64
		want   string
	}{
		{2, 3, "[2,2]"},
		{3, 3, "[3,inf)"},
		{2.5, 3, "(2,3)"},
		{2.5, 2.5, "(2,inf)"},
	}
	for _, c := range cases {
		got := RegionForTimestamp(c.t, c.max).String()
		if got != c.want {
			t.Errorf("RegionForTimestamp(%v,%v) = %s, want %s", c.t, c.max, got, c.want)
		}
	}
}

func TestBuildFromSamplesSingleSymbol(t *testing.T) {
	samples := []trace.Sample{
		{Trace: trace.Trace{{Symbol: "a", Time: 0.2}}, Label: true},
		{Trace: trace.Trace{{Symbol: "a", Time: 1.3}}, Label: true},
	}
	b := BuildFromSamples(samples)
	if !b.NoTwoCanonicalNodesEquivalent() {
		t.Fatal("expected register canonicity after build")
	}
	snap := b.Snapshot()
	if !snap.Accept[snap.Root] && len(snap.Edges[snap.Root]) == 0 {
		t.Fatal("expected either an accepting root or outgoing edges from root")
	}
}

func TestBuildFromSamplesMergesEquivalentSuffixes(t *testing.T) {
	// Two traces with identical continuations after 'a' should merge into
	// the same canonical suffix node.
	samples := []trace.Sample{
		{Trace: trace.Trace{{Symbol: "a", Time: 1}, {Symbol: "b", Time: 1}}, Label: true},
		{Trace: trace.Trace{{Symbol: "a", Time: 2}, {Symbol: "b", Time: 1}}, Label: true},
	}
	b := BuildFromSamples(samples)
	if !b.NoTwoCanonicalNodesEquivalent() {
		t.Fatal("expected register canonicity")
	}
	snap := b.Snapshot()
	edges := snap.Edges[snap.Root]
	if len(edges) != 2 {
		t.Fatalf("expected two 'a' edges from root, got %d", len(edges))
	}
	if edges[0].Target != edges[1].Target {
		t.Fatalf("expected both 'a' edges to reach the same canonical node, got %d and %d", edges[0].Target, edges[1].Target)
	}
}

func TestAcceptRejectConflictAtMergedNode(t *testing.T) {
	// Scenario 5 from the spec: two traces reach a shared node post-merge
	// with conflicting labels (that node itself, not the conflict
	// resolution strategy, is exercised here).
	samples := []trace.Sample{
		{Trace: trace.Trace{{Symbol: "a", Time: 1}, {Symbol: "b", Time: 5}}, Label: true},
		{Trace: trace.Trace{{Symbol: "a", Time: 1}, {Symbol: "b", Time: 2}}, Label: false},
	}
	b := BuildFromSamples(samples)
	snap := b.Snapshot()
	conflict := false
	for _, id := range snap.CanonicalNodes {
		if snap.Accept[id] && snap.Reject[id] {
			conflict = true
		}
	}
	if !conflict {
		t.Fatal("expected at least one accept/reject conflict node in this scenario")
	}
}

func TestTwoSymbolInterleaving(t *testing.T) {
	positive := []trace.Trace{
		{{Symbol: "a", Time: 1}},
		{{Symbol: "a", Time: 1}, {Symbol: "b", Time: 2}, {Symbol: "b", Time: 1}},
		{{Symbol: "b", Time: 2}, {Symbol: "b", Time: 1}},
	}
	negative := []trace.Trace{
		{{Symbol: "a", Time: 1}, {Symbol: "b", Time: 1}, {Symbol: "a", Time: 1}},
		{{Symbol: "b", Time: 2}},
		{{Symbol: "b", Time: 1}, {Symbol: "b", Time: 1}},
	}
	var samples []trace.Sample
	for _, tr := range positive {
		samples = append(samples, trace.Sample{Trace: tr, Label: true})
	}
	for _, tr := range negative {
		samples = append(samples, trace.Sample{Trace: tr, Label: false})
	}

	b := BuildFromSamples(samples)
	if !b.NoTwoCanonicalNodesEquivalent() {
		t.Fatal("expected register canonicity")
	}
	snap := b.Snapshot()
	if len(snap.CanonicalNodes) < 2 {
		t.Fatalf("expected multiple canonical nodes, got %d", len(snap.CanonicalNodes))
	}
}
