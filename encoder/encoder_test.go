package encoder

import (
	"testing"

	"github.com/projectdiscovery/drtalearn/drta"
	"github.com/projectdiscovery/drtalearn/minimizer"
	"github.com/projectdiscovery/drtalearn/trace"
)

func TestLearnFindsConsistentColouring(t *testing.T) {
	samples := []trace.Sample{
		{Trace: trace.Trace{{Symbol: "a", Time: 0.2}}, Label: true},
		{Trace: trace.Trace{{Symbol: "a", Time: 1.3}}, Label: true},
	}
	b := minimizer.BuildFromSamples(samples)
	snap := b.Snapshot()
	d, err := drta.FromSnapshot(snap)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	drta.ResolveConflicts(d, snap.Terminal, drta.ByTimePattern{})

	model, err := Learn(d, 10)
	if err != nil {
		t.Fatalf("Learn: %v", err)
	}
	if !model.Accepting[model.NodeColour[d.Root]] {
		t.Fatal("root colour should be accepting given a positive sample")
	}
	// every DRTA edge must be realised by some transition in the model.
	for _, e := range d.Edges {
		c1 := model.NodeColour[e.Source]
		c2 := model.NodeColour[e.Target]
		found := false
		for _, tr := range model.Transitions {
			if tr.Symbol == e.Symbol && tr.Region.Equal(e.Region) && tr.Source == c1 && tr.Target == c2 {
				found = true
			}
		}
		if !found {
			t.Errorf("edge %v not realised by model transitions", e)
		}
	}
}

func TestLearnNoPositiveSamplesStillSatisfiable(t *testing.T) {
	samples := []trace.Sample{
		{Trace: trace.Trace{{Symbol: "a", Time: 1}}, Label: false},
	}
	b := minimizer.BuildFromSamples(samples)
	snap := b.Snapshot()
	d, err := drta.FromSnapshot(snap)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}

	model, err := Learn(d, 10)
	if err != nil {
		t.Fatalf("Learn: %v", err)
	}
	if model.Accepting[model.NodeColour[d.Root]] {
		t.Fatal("with no positive samples root colour need not be accepting")
	}
}
