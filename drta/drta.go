// Package drta builds the DRTA intermediate representation from a minimised
// prefix-DAG: a labelled multigraph with an alphabet id-map and accept/reject
// vertex sets, ready for SMT encoding.
package drta

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/projectdiscovery/drtalearn/internal/dedupe"
	"github.com/projectdiscovery/drtalearn/minimizer"
	"github.com/projectdiscovery/drtalearn/region"
)

// VertexID is a canonical Min-3RTA node id reused as a DRTA vertex id.
type VertexID = minimizer.NodeID

// Edge is a labelled multigraph edge: a (symbol, region) guarded transition
// from Source to Target.
type Edge struct {
	Source VertexID
	Target VertexID
	Symbol string
	Region region.Region
}

// DRTA is the multigraph intermediate structure of section 4.4.
type DRTA struct {
	Vertices []VertexID
	Edges    []Edge
	Root     VertexID
	SymbolID map[string]int
	Acc      map[VertexID]bool
	Rej      map[VertexID]bool
}

// FromSnapshot builds a DRTA from a Min-3RTA snapshot: one vertex per
// canonical node, one deduplicated edge per distinct (source, target,
// symbol, region) quadruple.
func FromSnapshot(snap *minimizer.Snapshot) (*DRTA, error) {
	d := &DRTA{
		Root:     snap.Root,
		SymbolID: map[string]int{},
		Acc:      map[VertexID]bool{},
		Rej:      map[VertexID]bool{},
	}
	d.Vertices = append(d.Vertices, snap.CanonicalNodes...)
	for v, ok := range snap.Accept {
		if ok {
			d.Acc[v] = true
		}
	}
	for v, ok := range snap.Reject {
		if ok {
			d.Rej[v] = true
		}
	}

	seen := dedupe.NewMapBackend()
	symbols := map[string]bool{}

	for _, src := range snap.CanonicalNodes {
		for _, e := range snap.Edges[src] {
			r, err := region.Parse(e.Region)
			if err != nil {
				return nil, fmt.Errorf("drta: malformed region %q on edge from node %d: %w", e.Region, src, err)
			}
			key := fmt.Sprintf("%d|%d|%s|%s", src, e.Target, e.Symbol, r.Key())
			if seen.SeenOrAdd(key) {
				continue
			}
			d.Edges = append(d.Edges, Edge{Source: src, Target: e.Target, Symbol: e.Symbol, Region: r})
			symbols[e.Symbol] = true
		}
	}

	names := make([]string, 0, len(symbols))
	for s := range symbols {
		names = append(names, s)
	}
	sort.Strings(names)
	for i, s := range names {
		d.SymbolID[s] = i
	}

	return d, nil
}

// FromColouring builds the minimal, colour-indexed DRTA that is the actual
// learning deliverable: vertices are the k colours 0..k-1 found by the SMT
// search, edges are the region-partition optimiser's guards (already a
// total disjoint cover per (colour, symbol)), and the accept set is the
// model's accepting colour set. Unlike FromSnapshot's multigraph, this
// DRTA satisfies section 8's totality and determinism properties directly.
func FromColouring(k int, initial VertexID, accepting map[int]bool, edges []Edge, symbolID map[string]int) *DRTA {
	d := &DRTA{
		Root:     initial,
		Edges:    edges,
		SymbolID: symbolID,
		Acc:      map[VertexID]bool{},
		Rej:      map[VertexID]bool{},
	}
	for c := 0; c < k; c++ {
		d.Vertices = append(d.Vertices, VertexID(c))
	}
	for c, ok := range accepting {
		if ok {
			d.Acc[VertexID(c)] = true
		}
	}
	return d
}

// EdgesFrom returns every outgoing edge from v, optionally filtered to a
// single symbol when symbol != "".
func (d *DRTA) EdgesFrom(v VertexID, symbol string) []Edge {
	var out []Edge
	for _, e := range d.Edges {
		if e.Source != v {
			continue
		}
		if symbol != "" && e.Symbol != symbol {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Conflicts returns the vertices present in both Acc and Rej.
func (d *DRTA) Conflicts() []VertexID {
	var out []VertexID
	for v := range d.Acc {
		if d.Rej[v] {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// jsonDRTA is the wire shape for the section 6 output contract: vertices,
// edges, accept-set, initial-vertex, symbol-id map.
type jsonDRTA struct {
	Vertices []int        `json:"vertices"`
	Edges    []jsonEdge   `json:"edges"`
	Accept   []int        `json:"accept"`
	Initial  int          `json:"initial"`
	Symbols  map[string]int `json:"symbols"`
}

type jsonEdge struct {
	Source int    `json:"source"`
	Target int    `json:"target"`
	Symbol string `json:"symbol"`
	Region string `json:"region"`
}

// MarshalJSON renders the DRTA per the section 6 output contract.
func (d *DRTA) MarshalJSON() ([]byte, error) {
	out := jsonDRTA{
		Initial: int(d.Root),
		Symbols: d.SymbolID,
	}
	for _, v := range d.Vertices {
		out.Vertices = append(out.Vertices, int(v))
	}
	for v := range d.Acc {
		out.Accept = append(out.Accept, int(v))
	}
	sort.Ints(out.Accept)
	for _, e := range d.Edges {
		out.Edges = append(out.Edges, jsonEdge{
			Source: int(e.Source),
			Target: int(e.Target),
			Symbol: e.Symbol,
			Region: e.Region.String(),
		})
	}
	return json.Marshal(out)
}
