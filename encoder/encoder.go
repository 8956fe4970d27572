// Package encoder implements the propositional ("SMT" in the spec's
// terminology, though every clause in section 4.6 is boolean) colouring
// encoding that searches for the minimum-state consistent DRTA.
package encoder

import (
	"fmt"
	"sort"

	"github.com/projectdiscovery/gologger"

	"github.com/projectdiscovery/drtalearn/drta"
	"github.com/projectdiscovery/drtalearn/internal/satsolver"
	"github.com/projectdiscovery/drtalearn/region"
)

// DefaultKMax is the section 4.6 iteration ceiling past which the search is
// abandoned as InfeasibleLearning.
const DefaultKMax = 100

// Transition is one candidate y_{symbol,region,c1,c2} that the model set to
// true: a source colour may realise it on (symbol, region) transitioning to
// a target colour. The region-partition optimiser consumes these.
type Transition struct {
	Symbol  string
	Region  region.Region
	Source  int
	Target  int
}

// Model is an extracted satisfying colouring for a given colour count k.
type Model struct {
	K           int
	NodeColour  map[drta.VertexID]int
	Accepting   map[int]bool
	Transitions []Transition
}

// symbolRegion is a (symbol, region) pair appearing on at least one DRTA
// edge.
type symbolRegion struct {
	symbol string
	region region.Region
}

// Learn searches k = 2, 3, ... kMax for the smallest colour count admitting
// a consistent, deterministic colouring of d, returning the first
// satisfying model. It reports an error if no k up to kMax is satisfiable
// (InfeasibleLearning / NOSOLUTION per section 7).
func Learn(d *drta.DRTA, kMax int) (*Model, error) {
	if kMax <= 0 {
		kMax = DefaultKMax
	}

	hasPositive := false
	for range d.Acc {
		hasPositive = true
		break
	}

	pairs := distinctSymbolRegions(d)

	for k := 2; k <= kMax; k++ {
		gologger.Info().Msgf("encoder: attempting k=%d colours", k)
		model, sat := encodeAndSolve(d, pairs, k, hasPositive)
		if sat {
			return model, nil
		}
	}

	return nil, fmt.Errorf("encoder: no consistent DRTA found up to k=%d colours (NOSOLUTION)", kMax)
}

func distinctSymbolRegions(d *drta.DRTA) []symbolRegion {
	seen := map[string]symbolRegion{}
	for _, e := range d.Edges {
		key := e.Symbol + "|" + e.Region.Key()
		seen[key] = symbolRegion{symbol: e.Symbol, region: e.Region}
	}
	out := make([]symbolRegion, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].symbol != out[j].symbol {
			return out[i].symbol < out[j].symbol
		}
		return out[i].region.Key() < out[j].region.Key()
	})
	return out
}

func encodeAndSolve(d *drta.DRTA, pairs []symbolRegion, k int, hasPositive bool) (*Model, bool) {
	t := newTable()
	s := satsolver.New(0)

	colours := make([]int, k)
	for c := range colours {
		colours[c] = c
	}

	// 1. initial colour pinning: x_{root,0}
	s.AddClause(satsolver.Literal(t.nodeColour(d.Root, 0)))

	// 2. one-hot colour per node.
	for _, n := range d.Vertices {
		atLeast := make(satsolver.Clause, 0, k)
		for _, c := range colours {
			atLeast = append(atLeast, satsolver.Literal(t.nodeColour(n, c)))
		}
		s.AddClause(atLeast...)
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				s.AddClause(neg(t.nodeColour(n, i)), neg(t.nodeColour(n, j)))
			}
		}
	}

	// 3. accept/reject consistency.
	for n := range d.Acc {
		for _, c := range colours {
			s.AddClause(neg(t.nodeColour(n, c)), satsolver.Literal(t.accepting(c)))
		}
	}
	for n := range d.Rej {
		for _, c := range colours {
			s.AddClause(neg(t.nodeColour(n, c)), neg(t.accepting(c)))
		}
	}

	// 4. positive-sample root-accept.
	if hasPositive {
		s.AddClause(satsolver.Literal(t.accepting(0)))
	}

	// 5. edge realisation.
	for _, e := range d.Edges {
		for _, c1 := range colours {
			for _, c2 := range colours {
				s.AddClause(
					neg(t.nodeColour(e.Source, c1)),
					neg(t.trans(e.Symbol, e.Region.Key(), c1, c2)),
					satsolver.Literal(t.nodeColour(e.Target, c2)),
				)
			}
		}
	}

	// 6. determinism: transitions on (possibly) intersecting regions of the
	// same symbol and source colour cannot diverge to different targets.
	bySymbol := map[string][]region.Region{}
	for _, p := range pairs {
		bySymbol[p.symbol] = append(bySymbol[p.symbol], p.region)
	}
	for symbol, regions := range bySymbol {
		for i := 0; i < len(regions); i++ {
			for j := i; j < len(regions); j++ {
				r1, r2 := regions[i], regions[j]
				if !region.MayIntersect(r1.Key(), r2.Key()) {
					continue
				}
				sameRegion := i == j
				for _, c1 := range colours {
					for a := 0; a < k; a++ {
						for b := 0; b < k; b++ {
							if a == b {
								continue
							}
							// Same (region,colour) pair: (a,b) and (b,a)
							// name the same clause, so only emit a<b.
							if sameRegion && b < a {
								continue
							}
							s.AddClause(
								neg(t.trans(symbol, r1.Key(), c1, a)),
								neg(t.trans(symbol, r2.Key(), c1, b)),
							)
						}
					}
				}
			}
		}
	}

	// 7. existence per symbol/region.
	for _, p := range pairs {
		var cl satsolver.Clause
		for _, c1 := range colours {
			for _, c2 := range colours {
				cl = append(cl, satsolver.Literal(t.trans(p.symbol, p.region.Key(), c1, c2)))
			}
		}
		s.AddClause(cl...)
	}

	// 8. edge coverage, via an auxiliary "this edge is realised by (c1,c2)"
	// variable per edge/colour-pair: the OR-of-ANDs in section 4.6 needs a
	// Tseitin-style auxiliary to stay in CNF.
	for edgeIdx, e := range d.Edges {
		var cl satsolver.Clause
		for _, c1 := range colours {
			for _, c2 := range colours {
				aux := t.edgeRealised(edgeIdx, c1, c2)
				s.AddClause(neg(aux), satsolver.Literal(t.nodeColour(e.Source, c1)))
				s.AddClause(neg(aux), satsolver.Literal(t.trans(e.Symbol, e.Region.Key(), c1, c2)))
				s.AddClause(neg(aux), satsolver.Literal(t.nodeColour(e.Target, c2)))
				cl = append(cl, satsolver.Literal(aux))
			}
		}
		s.AddClause(cl...)
	}

	// 9. per-state symbol/region coverage.
	for _, p := range pairs {
		for _, c1 := range colours {
			cl := satsolver.Clause{neg(t.used(c1))}
			for _, c2 := range colours {
				cl = append(cl, satsolver.Literal(t.trans(p.symbol, p.region.Key(), c1, c2)))
			}
			s.AddClause(cl...)
		}
	}

	// used_c <-> OR_n x_{n,c}
	for _, c := range colours {
		var anyTrue satsolver.Clause
		anyTrue = append(anyTrue, neg(t.used(c)))
		for _, n := range d.Vertices {
			anyTrue = append(anyTrue, satsolver.Literal(t.nodeColour(n, c)))
			s.AddClause(neg(t.nodeColour(n, c)), satsolver.Literal(t.used(c)))
		}
		s.AddClause(anyTrue...)
	}

	s.EnsureVar(t.next - 1)

	model, ok := s.Solve()
	if !ok {
		return nil, false
	}

	return extractModel(t, model, d, pairs, k), true
}

func neg(id int) satsolver.Literal { return satsolver.Literal(-id) }

func extractModel(t *table, model satsolver.Model, d *drta.DRTA, pairs []symbolRegion, k int) *Model {
	out := &Model{K: k, NodeColour: map[drta.VertexID]int{}, Accepting: map[int]bool{}}

	for _, n := range d.Vertices {
		for c := 0; c < k; c++ {
			if model.True(t.id(Var{Kind: KindNodeColour, Node: n, Colour: c})) {
				out.NodeColour[n] = c
				break
			}
		}
	}
	for c := 0; c < k; c++ {
		if model.True(t.id(Var{Kind: KindAccepting, Colour: c})) {
			out.Accepting[c] = true
		}
	}
	for _, p := range pairs {
		for c1 := 0; c1 < k; c1++ {
			for c2 := 0; c2 < k; c2++ {
				if model.True(t.id(Var{Kind: KindTrans, Symbol: p.symbol, Region: p.region.Key(), Colour: c1, Colour2: c2})) {
					out.Transitions = append(out.Transitions, Transition{Symbol: p.symbol, Region: p.region, Source: c1, Target: c2})
				}
			}
		}
	}
	return out
}
