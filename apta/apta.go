// Package apta builds the timed augmented prefix-tree automaton that seeds
// the Min-3RTA minimiser: one node per distinct prefix, one (symbol,region)
// edge per distinct continuation.
package apta

import (
	"fmt"

	"github.com/projectdiscovery/drtalearn/region"
	"github.com/projectdiscovery/drtalearn/trace"
)

// NodeID indexes into the APTA's node arena. Nodes never hold pointers to
// each other directly; every edge target is an id resolved through the
// arena, which keeps the structure free of reference cycles.
type NodeID int

const root NodeID = 0

type transKey struct {
	symbol string
	region string
}

// Node is a single APTA state: an accept/reject label plus its outgoing
// (symbol, region) -> child edges.
type Node struct {
	ID     NodeID
	Accept bool
	Reject bool
	trans  map[transKey]NodeID
}

func newNode(id NodeID) *Node {
	return &Node{ID: id, trans: map[transKey]NodeID{}}
}

// Transitions returns the node's outgoing edges as (symbol, region, target)
// triples, in no particular order.
func (n *Node) Transitions() []Edge {
	out := make([]Edge, 0, len(n.trans))
	for k, v := range n.trans {
		out = append(out, Edge{Symbol: k.symbol, Region: k.region, Target: v})
	}
	return out
}

// Edge is a materialised (symbol, region, target) outgoing transition.
type Edge struct {
	Symbol string
	Region string
	Target NodeID
}

// APTA is the prefix tree built over a labelled sample set.
type APTA struct {
	Alphabet *region.Alphabet
	nodes    []*Node
}

// Root returns the id of the tree root.
func (a *APTA) Root() NodeID { return root }

// Node returns the node stored at id.
func (a *APTA) Node(id NodeID) *Node { return a.nodes[id] }

// NumNodes reports the arena size.
func (a *APTA) NumNodes() int { return len(a.nodes) }

func (a *APTA) newNode() NodeID {
	id := NodeID(len(a.nodes))
	a.nodes = append(a.nodes, newNode(id))
	return id
}

// Build constructs the APTA for the given labelled samples. Samples are
// consumed in the order given; callers that need the deterministic ordering
// of section 5 must sort with trace.SortLexicographic first (the builder
// reuses the caller's alphabet so that APTA and Min-3RTA insertion agree on
// region boundaries for tests that compare them directly, though the two
// components use distinct region mappings per section 4.3).
func Build(alphabet *region.Alphabet, samples []trace.Sample) (*APTA, error) {
	a := &APTA{Alphabet: alphabet}
	a.newNode() // root

	for _, s := range samples {
		if err := s.Trace.Validate(); err != nil {
			return nil, err
		}
		cur := root
		for _, ev := range s.Trace {
			r, ok := alphabet.Locate(ev.Time)
			if !ok {
				return nil, fmt.Errorf("apta: no region covers time %v for symbol %q", ev.Time, ev.Symbol)
			}
			key := transKey{symbol: ev.Symbol, region: r.Key()}
			node := a.nodes[cur]
			next, exists := node.trans[key]
			if !exists {
				next = a.newNode()
				node.trans[key] = next
			}
			cur = next
		}
		terminal := a.nodes[cur]
		if s.Label {
			terminal.Accept = true
		} else {
			terminal.Reject = true
		}
	}

	return a, nil
}
