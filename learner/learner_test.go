package learner

import (
	"testing"

	"github.com/projectdiscovery/drtalearn/trace"
)

func TestLearnEndToEndSimpleThreshold(t *testing.T) {
	samples := []trace.Sample{
		{Trace: trace.Trace{{Symbol: "a", Time: 0.2}}, Label: true},
		{Trace: trace.Trace{{Symbol: "a", Time: 0.7}}, Label: true},
		{Trace: trace.Trace{{Symbol: "a", Time: 3}}, Label: false},
		{Trace: trace.Trace{{Symbol: "a", Time: 4}}, Label: false},
	}
	result, err := Learn(samples, Options{KMax: 10})
	if err != nil {
		t.Fatalf("Learn: %v", err)
	}
	if result.Model == nil || result.DRTA == nil || result.Minimal == nil {
		t.Fatal("expected populated model, intermediate DRTA, and minimal DRTA")
	}
	if len(result.Partitions) == 0 {
		t.Fatal("expected at least one partition group")
	}
	if !result.Correct() {
		t.Fatalf("expected all samples verified, got mismatches: %+v", result.Verify.Mismatches)
	}
}

// TestLearnEndToEndTwoSymbolInterleaving exercises the two-symbol
// interleaving scenario: k >= 3, all six traces verified.
func TestLearnEndToEndTwoSymbolInterleaving(t *testing.T) {
	samples := []trace.Sample{
		{Trace: trace.Trace{{Symbol: "a", Time: 1}}, Label: true},
		{Trace: trace.Trace{{Symbol: "a", Time: 1}, {Symbol: "b", Time: 2}, {Symbol: "b", Time: 1}}, Label: true},
		{Trace: trace.Trace{{Symbol: "b", Time: 2}, {Symbol: "b", Time: 1}}, Label: true},
		{Trace: trace.Trace{{Symbol: "a", Time: 1}, {Symbol: "b", Time: 1}, {Symbol: "a", Time: 1}}, Label: false},
		{Trace: trace.Trace{{Symbol: "b", Time: 2}}, Label: false},
		{Trace: trace.Trace{{Symbol: "b", Time: 1}, {Symbol: "b", Time: 1}}, Label: false},
	}
	result, err := Learn(samples, Options{KMax: 10})
	if err != nil {
		t.Fatalf("Learn: %v", err)
	}
	if result.Model.K < 3 {
		t.Fatalf("expected k >= 3, got k=%d", result.Model.K)
	}
	if !result.Correct() {
		t.Fatalf("expected all six traces verified, got mismatches: %+v", result.Verify.Mismatches)
	}
}

func TestLearnRejectsMalformedSample(t *testing.T) {
	samples := []trace.Sample{
		{Trace: trace.Trace{{Symbol: "a", Time: -1}}, Label: true},
	}
	if _, err := Learn(samples, Options{}); err == nil {
		t.Fatal("expected an error for a negative timestamp")
	}
}
