// Package automatonio reads the JSON automaton format used as the optional
// trace-generation input: an object naming its states, alphabet, initial and
// accepting states, and a transition map keyed by arbitrary string ids.
package automatonio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/projectdiscovery/drtalearn/region"
)

// Transition is one decoded `[source, symbol, interval_string, target]`
// entry from the automaton's "tran" map.
type Transition struct {
	Source string
	Symbol string
	Region region.Region
	Target string
}

// Automaton is the decoded JSON automaton fixture.
type Automaton struct {
	Name        string
	States      []string
	Alphabet    []string
	Initial     string
	Accepting   []string
	Transitions []Transition
}

// wire mirrors the JSON field names exactly, per section 6.
type wire struct {
	Name   string              `json:"name"`
	States []string            `json:"s"`
	Sigma  []string            `json:"sigma"`
	Init   string              `json:"init"`
	Accept []string            `json:"accept"`
	Tran   map[string][]string `json:"tran"`
}

// Read decodes a JSON automaton fixture from r.
func Read(r io.Reader) (*Automaton, error) {
	var w wire
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("automatonio: decoding JSON: %w", err)
	}

	a := &Automaton{
		Name:      w.Name,
		States:    w.States,
		Alphabet:  w.Sigma,
		Initial:   w.Init,
		Accepting: w.Accept,
	}

	for id, entry := range w.Tran {
		if len(entry) != 4 {
			return nil, fmt.Errorf("automatonio: transition %q has %d fields, expected 4", id, len(entry))
		}
		r, err := region.Parse(entry[2])
		if err != nil {
			return nil, fmt.Errorf("automatonio: transition %q: %w", id, err)
		}
		a.Transitions = append(a.Transitions, Transition{
			Source: entry[0],
			Symbol: entry[1],
			Region: r,
			Target: entry[3],
		})
	}

	return a, nil
}
