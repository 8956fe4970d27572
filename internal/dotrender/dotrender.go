// Package dotrender renders a learned DRTA as GraphViz DOT text. Image
// rendering of the DOT graph is out of scope; this package stops at the
// text form, which is enough to pipe into `dot` separately.
package dotrender

import (
	"fmt"
	"sort"
	"strings"

	"github.com/projectdiscovery/drtalearn/drta"
)

// Render writes d as a DOT digraph: accepting vertices are drawn as double
// circles, the root is marked with an incoming arrow from a point-shaped
// start node, and each edge is labelled "symbol region".
func Render(d *drta.DRTA) string {
	var b strings.Builder
	b.WriteString("digraph DRTA {\n")
	b.WriteString("\trankdir=LR;\n")
	b.WriteString("\t__start__ [shape=point];\n")
	fmt.Fprintf(&b, "\t__start__ -> %d;\n", d.Root)

	vertices := append([]drta.VertexID(nil), d.Vertices...)
	sort.Slice(vertices, func(i, j int) bool { return vertices[i] < vertices[j] })
	for _, v := range vertices {
		shape := "circle"
		if d.Acc[v] {
			shape = "doublecircle"
		}
		fmt.Fprintf(&b, "\t%d [shape=%s];\n", v, shape)
	}

	edges := append([]drta.Edge(nil), d.Edges...)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		if edges[i].Symbol != edges[j].Symbol {
			return edges[i].Symbol < edges[j].Symbol
		}
		return edges[i].Region.Key() < edges[j].Region.Key()
	})
	for _, e := range edges {
		fmt.Fprintf(&b, "\t%d -> %d [label=%q];\n", e.Source, e.Target, e.Symbol+" "+e.Region.String())
	}

	b.WriteString("}\n")
	return b.String()
}
