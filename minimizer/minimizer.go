// Package minimizer implements Min-3RTA, the incremental replace-or-register
// minimiser that folds a timed prefix tree into a canonical prefix-DAG while
// it is built.
package minimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/projectdiscovery/gologger"

	"github.com/projectdiscovery/drtalearn/region"
	"github.com/projectdiscovery/drtalearn/trace"
)

// NodeID indexes into the minimiser's node arena. As with the APTA, children
// are referenced by id rather than by pointer so the register can redirect
// an edge by rewriting a single map entry instead of chasing live pointers.
type NodeID int

// Root is always the first node allocated by New.
const Root NodeID = 0

// MaxRecursionDepth bounds replace-or-register recursion (section 9): past
// this depth the build is assumed to have hit a cycle bug upstream and the
// current branch is abandoned rather than silently looping.
const MaxRecursionDepth = 1000

type transKey struct {
	symbol string
	region string // canonical Region.Key()
}

type node struct {
	id       NodeID
	accept   bool
	reject   bool
	children []NodeID // insertion order; children[len-1] is the pending "last child"
	trans    map[transKey]NodeID
	merged   bool
	terminal []trace.Sample
}

func newNode(id NodeID) *node {
	return &node{id: id, trans: map[transKey]NodeID{}}
}

// Builder owns the node arena and the canonicalisation register.
type Builder struct {
	arena          []*node
	register       map[NodeID]NodeID
	canonicalOrder []NodeID
	globalMax      float64
}

// New creates a Builder with a single, self-canonical root node.
func New() *Builder {
	b := &Builder{register: map[NodeID]NodeID{}}
	b.allocNode()
	b.registerCanonical(Root)
	return b
}

func (b *Builder) allocNode() NodeID {
	id := NodeID(len(b.arena))
	b.arena = append(b.arena, newNode(id))
	return id
}

// RegionForTimestamp implements the section 4.3 insertion-time mapping,
// distinct from the section 4.1 canonical alphabet: it is keyed off whether
// t is an integer and whether t equals the sample's global maximum.
func RegionForTimestamp(t, globalMax float64) region.Region {
	isInt := t == math.Trunc(t)
	atMax := t == globalMax
	switch {
	case isInt && atMax:
		return region.Unbounded(t, true)
	case isInt:
		return region.Point(t)
	case atMax:
		return region.Unbounded(math.Floor(t), false)
	default:
		floor := math.Floor(t)
		return region.Region{Lo: floor, Hi: floor + 1}
	}
}

// BuildFromSamples sorts samples lexicographically (section 5: insertion
// order is observable, so it must be a deterministic function of the input),
// inserts them one by one, and runs a final replace-or-register pass from
// the root.
func BuildFromSamples(samples []trace.Sample) *Builder {
	ordered := append([]trace.Sample(nil), samples...)
	trace.SortLexicographic(ordered)

	b := New()
	b.globalMax = trace.MaxTime(ordered)
	for _, s := range ordered {
		b.add(s)
	}
	b.replaceOrRegister(Root, map[NodeID]bool{}, 0)
	return b
}

// add walks the longest matching prefix of s, selecting the most specific
// region at each step, resolves any pending last child at the landing node,
// then extends with fresh nodes for the unmatched suffix.
func (b *Builder) add(s trace.Sample) {
	cur := Root
	for _, ev := range s.Trace {
		n := b.arena[cur]
		if target, ok := b.mostSpecificMatch(n, ev.Symbol, ev.Time); ok {
			cur = target
			continue
		}

		if len(n.children) > 0 {
			b.replaceOrRegister(cur, map[NodeID]bool{}, 0)
		}

		r := RegionForTimestamp(ev.Time, b.globalMax)
		next := b.allocNode()
		n.trans[transKey{ev.Symbol, r.Key()}] = next
		n.children = append(n.children, next)
		cur = next
	}

	term := b.arena[cur]
	term.terminal = append(term.terminal, s)
	if s.Label {
		term.accept = true
	} else {
		term.reject = true
	}
}

// mostSpecificMatch returns the narrowest existing (symbol, region) edge at
// n whose region contains t, preferring point intervals (range zero) and
// breaking ties deterministically by region key.
func (b *Builder) mostSpecificMatch(n *node, symbol string, t float64) (NodeID, bool) {
	var bestKey transKey
	var bestTarget NodeID
	bestRange := math.Inf(1)
	found := false

	for k, v := range n.trans {
		if k.symbol != symbol {
			continue
		}
		r, err := region.Parse(k.region)
		if err != nil || !r.Contains(t) {
			continue
		}
		rng := r.Hi - r.Lo
		if !found || rng < bestRange || (rng == bestRange && k.region < bestKey.region) {
			found = true
			bestRange = rng
			bestKey = k
			bestTarget = v
		}
	}
	return bestTarget, found
}

// canonical resolves id through the register, path-compressing as it goes.
func (b *Builder) canonical(id NodeID) NodeID {
	c, ok := b.register[id]
	if !ok || c == id {
		return id
	}
	root := b.canonical(c)
	b.register[id] = root
	return root
}

func (b *Builder) registerCanonical(id NodeID) {
	b.register[id] = id
	b.canonicalOrder = append(b.canonicalOrder, id)
}

// replaceOrRegister resolves parent's pending last child: it recurses into
// any unresolved grandchildren first, then either folds the child into an
// equivalent canonical node or promotes it to canonical status itself.
func (b *Builder) replaceOrRegister(parent NodeID, visited map[NodeID]bool, depth int) {
	if depth > MaxRecursionDepth {
		gologger.Warning().Msgf("minimizer: replace-or-register exceeded depth %d at node %d, aborting branch (suspected cycle)", MaxRecursionDepth, parent)
		return
	}

	pn := b.arena[parent]
	if len(pn.children) == 0 {
		return
	}
	lastIdx := len(pn.children) - 1
	lc := pn.children[lastIdx]

	if visited[lc] {
		gologger.Warning().Msgf("minimizer: cycle detected revisiting node %d during replace-or-register, aborting branch", lc)
		return
	}
	visited[lc] = true

	lcNode := b.arena[lc]
	if len(lcNode.children) > 0 {
		b.replaceOrRegister(lc, visited, depth+1)
	}

	match, ok := b.findEquivalent(lc)
	if !ok {
		b.registerCanonical(lc)
		return
	}

	matchNode := b.arena[match]
	if matchNode.accept != lcNode.accept || matchNode.reject != lcNode.reject {
		gologger.Warning().Msgf("minimizer: register-hit between node %d and %d rolled back (accept/reject label conflict); keeping %d distinct", lc, match, lc)
		b.registerCanonical(lc)
		return
	}

	for k, v := range pn.trans {
		if v == lc {
			pn.trans[k] = match
		}
	}
	pn.children[lastIdx] = match
	b.register[lc] = match
	lcNode.merged = true
	b.mergeTransitionsInto(match, lcNode)
}

// mergeTransitionsInto folds absorbed's outgoing transitions into canon's,
// merging regions when an edge to the same canonical target under the same
// symbol already exists (section 4.3.1).
func (b *Builder) mergeTransitionsInto(canon NodeID, absorbed *node) {
	cn := b.arena[canon]

	for k, target := range absorbed.trans {
		targetCanon := b.canonical(target)
		newR, err := region.Parse(k.region)
		if err != nil {
			continue
		}

		var existingKey transKey
		var existingR region.Region
		found := false
		for ck, ct := range cn.trans {
			if ck.symbol != k.symbol || b.canonical(ct) != targetCanon {
				continue
			}
			r, err := region.Parse(ck.region)
			if err != nil {
				continue
			}
			existingKey, existingR, found = ck, r, true
			break
		}

		if !found {
			cn.trans[transKey{k.symbol, newR.Key()}] = targetCanon
			continue
		}

		merged, ok := region.Merge(existingR, newR)
		if !ok {
			cn.trans[transKey{k.symbol, newR.Key()}] = targetCanon
			continue
		}
		delete(cn.trans, existingKey)
		cn.trans[transKey{k.symbol, merged.Key()}] = targetCanon
	}
}

// findEquivalent searches the canonical register for a node equivalent to
// target under the section 4.3 equivalence relation.
func (b *Builder) findEquivalent(target NodeID) (NodeID, bool) {
	for _, c := range b.canonicalOrder {
		if c == target {
			continue
		}
		if b.equivalent(c, target) {
			return c, true
		}
	}
	return 0, false
}

func (b *Builder) equivalent(u, v NodeID) bool {
	nu, nv := b.arena[u], b.arena[v]
	if nu.accept != nv.accept || nu.reject != nv.reject {
		return false
	}

	su, sv := b.symbols(nu), b.symbols(nv)
	if len(su) != len(sv) {
		return false
	}
	for s := range su {
		if !sv[s] {
			return false
		}
	}

	for s := range su {
		eu := b.resolvedEdgeSet(nu, s)
		ev := b.resolvedEdgeSet(nv, s)
		if len(eu) != len(ev) {
			return false
		}
		for k := range eu {
			if !ev[k] {
				return false
			}
		}
	}
	return true
}

func (b *Builder) symbols(n *node) map[string]bool {
	out := map[string]bool{}
	for k := range n.trans {
		out[k.symbol] = true
	}
	return out
}

// resolvedEdgeSet returns the set of "target.id:regionKey" strings for a
// node's transitions on a given symbol, resolving each target through the
// register so that equivalence compares canonical identity, not raw ids.
func (b *Builder) resolvedEdgeSet(n *node, symbol string) map[string]bool {
	out := map[string]bool{}
	for k, v := range n.trans {
		if k.symbol != symbol {
			continue
		}
		out[fmt.Sprintf("%d:%s", b.canonical(v), k.region)] = true
	}
	return out
}

// Edge is a materialised, canonicalised outgoing transition.
type Edge struct {
	Symbol string
	Region string
	Target NodeID
}

// Snapshot is the read-only view of the minimised prefix-DAG that the DRTA
// builder consumes.
type Snapshot struct {
	Root           NodeID
	CanonicalNodes []NodeID
	Accept         map[NodeID]bool
	Reject         map[NodeID]bool
	Edges          map[NodeID][]Edge
	Terminal       map[NodeID][]trace.Sample
}

// Snapshot aggregates accept/reject labels and terminating samples across
// every original node that canonicalised to a given id, and reads outgoing
// edges only from canonical nodes (absorbed nodes already folded their
// edges into their canonical representative at merge time).
func (b *Builder) Snapshot() *Snapshot {
	snap := &Snapshot{
		Root:     b.canonical(Root),
		Accept:   map[NodeID]bool{},
		Reject:   map[NodeID]bool{},
		Edges:    map[NodeID][]Edge{},
		Terminal: map[NodeID][]trace.Sample{},
	}

	canonSet := map[NodeID]bool{}
	for i := range b.arena {
		id := NodeID(i)
		c := b.canonical(id)
		canonSet[c] = true
		n := b.arena[id]
		if n.accept {
			snap.Accept[c] = true
		}
		if n.reject {
			snap.Reject[c] = true
		}
		if len(n.terminal) > 0 {
			snap.Terminal[c] = append(snap.Terminal[c], n.terminal...)
		}
	}

	for c := range canonSet {
		snap.CanonicalNodes = append(snap.CanonicalNodes, c)
		cn := b.arena[c]
		for k, target := range cn.trans {
			snap.Edges[c] = append(snap.Edges[c], Edge{Symbol: k.symbol, Region: k.region, Target: b.canonical(target)})
		}
	}
	sort.Slice(snap.CanonicalNodes, func(i, j int) bool { return snap.CanonicalNodes[i] < snap.CanonicalNodes[j] })

	return snap
}

// Canonical exposes the register's resolution for a raw node id; mainly
// useful to tests that inspect specific nodes created during Build.
func (b *Builder) Canonical(id NodeID) NodeID { return b.canonical(id) }

// NoTwoCanonicalNodesEquivalent checks the replace-or-register canonicity
// property from section 8: after a full build, no two canonical nodes
// should be equivalent under the section 4.3 relation.
func (b *Builder) NoTwoCanonicalNodesEquivalent() bool {
	for i, u := range b.canonicalOrder {
		for _, v := range b.canonicalOrder[i+1:] {
			if b.equivalent(u, v) {
				return false
			}
		}
	}
	return true
}

// Dump renders the canonicalised tree as indented text, in the spirit of
// the debug tree-dump helpers used while stabilising the build algorithm.
func (b *Builder) Dump() string {
	snap := b.Snapshot()
	out := ""
	visited := map[NodeID]bool{}
	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		if visited[id] {
			out += fmt.Sprintf("%s(node %d, already visited)\n", indent(depth), id)
			return
		}
		visited[id] = true
		label := ""
		if snap.Accept[id] {
			label += "+"
		}
		if snap.Reject[id] {
			label += "-"
		}
		out += fmt.Sprintf("%snode %d %s\n", indent(depth), id, label)
		edges := append([]Edge(nil), snap.Edges[id]...)
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].Symbol != edges[j].Symbol {
				return edges[i].Symbol < edges[j].Symbol
			}
			return edges[i].Region < edges[j].Region
		})
		for _, e := range edges {
			out += fmt.Sprintf("%s  --%s,%s-->\n", indent(depth), e.Symbol, e.Region)
			walk(e.Target, depth+2)
		}
	}
	walk(snap.Root, 0)
	return out
}

func indent(depth int) string {
	out := ""
	for i := 0; i < depth; i++ {
		out += " "
	}
	return out
}
