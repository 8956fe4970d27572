package partition

import (
	"testing"

	"github.com/projectdiscovery/drtalearn/encoder"
	"github.com/projectdiscovery/drtalearn/region"
)

func TestOptimiseSingleTargetShortcut(t *testing.T) {
	model := &encoder.Model{
		Transitions: []encoder.Transition{
			{Symbol: "a", Region: region.Region{Lo: 0, Hi: 1, LoClosed: true, HiClosed: false}, Source: 0, Target: 1},
			{Symbol: "a", Region: region.Unbounded(1, true), Source: 0, Target: 1},
		},
	}
	groups := Optimise(model)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if len(g.Guards) != 1 {
		t.Fatalf("expected single-target shortcut to emit one guard, got %d", len(g.Guards))
	}
	if g.Guards[0].Target != 1 {
		t.Fatalf("expected target 1, got %d", g.Guards[0].Target)
	}
	if err := Validate(g); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestOptimiseMultiTargetCoversWholeLine(t *testing.T) {
	model := &encoder.Model{
		Transitions: []encoder.Transition{
			{Symbol: "a", Region: region.Region{Lo: 0, Hi: 1, LoClosed: true, HiClosed: false}, Source: 0, Target: 1},
			{Symbol: "a", Region: region.Point(1), Source: 0, Target: 2},
			{Symbol: "a", Region: region.Unbounded(1, false), Source: 0, Target: 1},
		},
	}
	groups := Optimise(model)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if err := Validate(groups[0]); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestOptimiseProtectedPointSurvivesMerge(t *testing.T) {
	model := &encoder.Model{
		Transitions: []encoder.Transition{
			{Symbol: "a", Region: region.Region{Lo: 0, Hi: 2, LoClosed: true, HiClosed: false}, Source: 0, Target: 1},
			{Symbol: "a", Region: region.Point(1), Source: 0, Target: 2},
			{Symbol: "a", Region: region.Unbounded(2, true), Source: 0, Target: 1},
		},
	}
	groups := Optimise(model)
	g := groups[0]
	if err := Validate(g); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	foundPoint := false
	for _, guard := range g.Guards {
		if guard.Region.IsPoint() && guard.Region.Lo == 1 {
			foundPoint = true
			if guard.Target != 2 {
				t.Fatalf("protected point at 1 should route to colour 2, got %d", guard.Target)
			}
		}
	}
	if !foundPoint {
		t.Fatal("expected the protected point [1,1] to survive as its own guard")
	}
}

func TestOptimiseDistinctGroupsPerSourceSymbol(t *testing.T) {
	model := &encoder.Model{
		Transitions: []encoder.Transition{
			{Symbol: "a", Region: region.Unbounded(0, true), Source: 0, Target: 1},
			{Symbol: "b", Region: region.Unbounded(0, true), Source: 0, Target: 2},
			{Symbol: "a", Region: region.Unbounded(0, true), Source: 1, Target: 1},
		},
	}
	groups := Optimise(model)
	if len(groups) != 3 {
		t.Fatalf("expected 3 distinct (source,symbol) groups, got %d", len(groups))
	}
}
