package automatonio

import (
	"strings"
	"testing"
)

func TestReadDecodesAutomaton(t *testing.T) {
	input := `{
		"name": "toy",
		"s": ["0", "1"],
		"sigma": ["a"],
		"init": "0",
		"accept": ["1"],
		"tran": {
			"0": ["0", "a", "[0,1)", "1"],
			"1": ["0", "a", "[1,inf)", "0"]
		}
	}`
	a, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if a.Name != "toy" || a.Initial != "0" {
		t.Fatalf("unexpected automaton: %+v", a)
	}
	if len(a.Transitions) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(a.Transitions))
	}
}

func TestReadRejectsMalformedTransition(t *testing.T) {
	input := `{"tran": {"0": ["0", "a"]}}`
	if _, err := Read(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for malformed transition")
	}
}

func TestReadRejectsBadInterval(t *testing.T) {
	input := `{"tran": {"0": ["0", "a", "not-an-interval", "1"]}}`
	if _, err := Read(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for unparsable interval")
	}
}
