// Package partition implements the region-partition optimiser: it turns the
// encoder's candidate (symbol, region, source-colour, target-colour)
// transitions into a total, disjoint guarded partition of [0,inf) per
// (source-colour, symbol) group.
package partition

import (
	"fmt"
	"math"
	"sort"

	"github.com/projectdiscovery/gologger"

	"github.com/projectdiscovery/drtalearn/encoder"
	"github.com/projectdiscovery/drtalearn/region"
)

// Guard is one emitted piece of a group's final partition: region routes to
// Target under the group's (source colour, symbol).
type Guard struct {
	Region region.Region
	Target int
}

// Group is one finished (source colour, symbol) partition: a disjoint cover
// of [0,inf) by Guards.
type Group struct {
	Source int
	Symbol string
	Guards []Guard
}

// groupKey identifies a (source colour, symbol) pair being partitioned.
type groupKey struct {
	source int
	symbol string
}

// protectedPoint is an exact-point region already pinned to a colour in the
// model; it must not be relabelled by merging or gap-filling.
type protectedPoint struct {
	value float64
	owner int
}

// Optimise groups model.Transitions by (Source, Symbol) and produces a total
// disjoint partition for each group, per section 4.7.
func Optimise(model *encoder.Model) []Group {
	groups := map[groupKey][]encoder.Transition{}
	var order []groupKey
	for _, tr := range model.Transitions {
		k := groupKey{source: tr.Source, symbol: tr.Symbol}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], tr)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].source != order[j].source {
			return order[i].source < order[j].source
		}
		return order[i].symbol < order[j].symbol
	})

	protected := protectedPoints(model)

	out := make([]Group, 0, len(order))
	for _, k := range order {
		out = append(out, Group{
			Source: k.source,
			Symbol: k.symbol,
			Guards: optimiseGroup(groups[k], protected),
		})
	}
	return out
}

// protectedPoints collects every exact-point region assigned in the model,
// keeping the lowest colour id when more than one target claims the same
// point (section 4.7 step 3).
func protectedPoints(model *encoder.Model) map[float64]int {
	out := map[float64]int{}
	for _, tr := range model.Transitions {
		if !tr.Region.IsPoint() {
			continue
		}
		if owner, ok := out[tr.Region.Lo]; !ok || tr.Target < owner {
			out[tr.Region.Lo] = tr.Target
		}
	}
	return out
}

func optimiseGroup(transitions []encoder.Transition, protected map[float64]int) []Guard {
	targets := map[int]bool{}
	for _, tr := range transitions {
		targets[tr.Target] = true
	}

	// Step 1: single-target shortcut.
	if len(targets) == 1 {
		var only int
		for t := range targets {
			only = t
		}
		lo, loClosed := 0.0, true
		if owner, ok := protected[0]; ok && owner != only {
			loClosed = false
		}
		return []Guard{{Region: region.Unbounded(lo, loClosed), Target: only}}
	}

	// Step 2: group candidate regions by target, splitting around points
	// protected by a different colour (step 4).
	byTarget := map[int][]region.Region{}
	for _, tr := range transitions {
		for _, piece := range splitAroundForeignPoints(tr.Region, tr.Target, protected) {
			byTarget[tr.Target] = append(byTarget[tr.Target], piece)
		}
	}

	// Step 5: merge adjacent regions per target, refusing to absorb a
	// protected point belonging to another target.
	merged := map[int][]region.Region{}
	for target, regions := range byTarget {
		merged[target] = mergeRegions(regions, target, protected)
	}

	// Step 6: gap-fill the union of all regions across all targets.
	guards := gapFill(merged, protected)

	sort.Slice(guards, func(i, j int) bool { return guards[i].Region.Lo < guards[j].Region.Lo })
	return guards
}

// splitAroundForeignPoints breaks r into half-open pieces that exclude any
// protected point owned by a colour other than owner.
func splitAroundForeignPoints(r region.Region, owner int, protected map[float64]int) []region.Region {
	pieces := []region.Region{r}
	for p, pOwner := range protected {
		if pOwner == owner {
			continue
		}
		var next []region.Region
		for _, piece := range pieces {
			next = append(next, splitOne(piece, p)...)
		}
		pieces = next
	}
	return pieces
}

// splitOne removes the single point p from r, returning the (up to two)
// remaining half-open pieces; when p is a closed boundary of r, that
// boundary is opened instead. If r does not contain p, or r is the point
// [p,p] itself, r is returned unchanged.
func splitOne(r region.Region, p float64) []region.Region {
	if !r.Contains(p) || (p == r.Lo && r.IsPoint()) {
		return []region.Region{r}
	}
	var out []region.Region
	if p > r.Lo || (p == r.Lo && r.LoClosed) {
		left := region.Region{Lo: r.Lo, Hi: p, LoClosed: r.LoClosed, HiClosed: false}
		if left.Lo < left.Hi {
			out = append(out, left)
		}
	}
	if math.IsInf(r.Hi, 1) || p < r.Hi || (p == r.Hi && r.HiClosed) {
		right := region.Region{Lo: p, Hi: r.Hi, LoClosed: false, HiClosed: r.HiClosed}
		if right.Lo < right.Hi || math.IsInf(right.Hi, 1) {
			out = append(out, right)
		}
	}
	return out
}

// mergeRegions folds overlapping/adjacent regions together, skipping a merge
// that would swallow a protected point owned by a different colour.
func mergeRegions(regions []region.Region, owner int, protected map[float64]int) []region.Region {
	sort.Slice(regions, func(i, j int) bool { return regions[i].Lo < regions[j].Lo })

	var out []region.Region
	for _, r := range regions {
		if len(out) == 0 {
			out = append(out, r)
			continue
		}
		last := out[len(out)-1]
		candidate, ok := region.Merge(last, r)
		if ok && !spansForeignProtectedPoint(candidate, owner, protected) {
			out[len(out)-1] = candidate
			continue
		}
		out = append(out, r)
	}
	return out
}

func spansForeignProtectedPoint(r region.Region, owner int, protected map[float64]int) bool {
	for p, pOwner := range protected {
		if pOwner == owner {
			continue
		}
		if r.Contains(p) && !(r.IsPoint() && r.Lo == p) {
			return true
		}
	}
	return false
}

// gapFill computes the gaps left over after every target's merged regions
// and assigns each gap to the best-matching neighbouring target, refusing to
// bridge a protected point belonging to a different colour.
func gapFill(merged map[int][]region.Region, protected map[float64]int) []Guard {
	type placed struct {
		region region.Region
		target int
	}
	var all []placed
	for target, regions := range merged {
		for _, r := range regions {
			all = append(all, placed{region: r, target: target})
		}
	}
	// Break ties at equal lower bounds by span: a protected point always
	// sorts before a wider region that opens immediately past it, so the
	// point is already in `guards` by the time the wider region's gap (if
	// any) is considered — otherwise gap-filling can rediscover the same
	// point as a spurious gap before the real point guard is appended.
	sort.Slice(all, func(i, j int) bool {
		if all[i].region.Lo != all[j].region.Lo {
			return all[i].region.Lo < all[j].region.Lo
		}
		return regionSpan(all[i].region) < regionSpan(all[j].region)
	})

	var guards []Guard
	for _, p := range all {
		guards = append(guards, Guard{Region: p.region, Target: p.target})
	}

	cursor := 0.0
	cursorClosed := true
	var filled []Guard
	for _, g := range guards {
		if g.Region.Lo > cursor || (g.Region.Lo == cursor && !g.Region.LoClosed && cursorClosed) {
			gapLo, gapLoClosed := cursor, cursorClosed
			gapHi, gapHiClosed := g.Region.Lo, !g.Region.LoClosed
			if gapLo < gapHi || (gapLo == gapHi && gapLoClosed && gapHiClosed) {
				gap := region.Region{Lo: gapLo, Hi: gapHi, LoClosed: gapLoClosed, HiClosed: gapHiClosed}
				filled = append(filled, fillGap(gap, guards, protected)...)
			}
		}
		filled = append(filled, g)
		if math.IsInf(g.Region.Hi, 1) {
			cursor = math.Inf(1)
			break
		}
		cursor = g.Region.Hi
		cursorClosed = !g.Region.HiClosed
	}
	if !math.IsInf(cursor, 1) {
		tail := region.Unbounded(cursor, cursorClosed)
		filled = append(filled, fillGap(tail, guards, protected)...)
	}

	if len(filled) == 0 {
		gologger.Warning().Msg("partition: group produced no transitions to gap-fill; leaving [0,inf) unassigned")
	}
	return filled
}

// fillGap assigns gap to whichever existing guard's region is adjacent to
// it with the best adjacency score, splitting around any protected point
// belonging to a different colour than the chosen target.
func fillGap(gap region.Region, existing []Guard, protected map[float64]int) []Guard {
	best := -1
	bestScore := -1
	for i, g := range existing {
		score := adjacencyScore(gap, g.Region)
		if score > bestScore || (score == bestScore && best >= 0 && smallerRegion(g.Region, existing[best].Region)) {
			bestScore = score
			best = i
		}
	}
	target := 0
	if best >= 0 {
		target = existing[best].Target
	}

	var out []Guard
	for _, piece := range splitAroundForeignPoints(gap, target, protected) {
		out = append(out, Guard{Region: piece, Target: target})
	}
	if gap.Lo == 0 && len(out) > 0 {
		out[0].Region.LoClosed = true
	}
	return out
}

// adjacencyScore implements section 4.7 step 6's tie-break: 2 for matching
// the gap's lower boundary, 1 for the upper, else the negative of the
// minimum boundary distance (so closer candidates still compare higher).
func adjacencyScore(gap, candidate region.Region) int {
	if !math.IsInf(candidate.Hi, 1) && candidate.Hi == gap.Lo {
		return 2
	}
	if candidate.Lo == gap.Hi {
		return 1
	}
	dist := math.Min(math.Abs(candidate.Lo-gap.Hi), boundaryDistance(candidate.Hi, gap.Lo))
	return -int(dist * 1000)
}

func boundaryDistance(a, b float64) float64 {
	if math.IsInf(a, 1) || math.IsInf(b, 1) {
		return math.Inf(1)
	}
	return math.Abs(a - b)
}

func smallerRegion(a, b region.Region) bool {
	return regionSpan(a) < regionSpan(b)
}

func regionSpan(r region.Region) float64 {
	if math.IsInf(r.Hi, 1) {
		return math.Inf(1)
	}
	return r.Hi - r.Lo
}

// Validate checks the section 4.7 step 7 post-conditions: the union of a
// group's guards covers [0,inf) and no two guards overlap except possibly
// at a protected point.
func Validate(g Group) error {
	sorted := append([]Guard(nil), g.Guards...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Region.Lo < sorted[j].Region.Lo })

	if len(sorted) == 0 {
		return fmt.Errorf("partition: group (colour %d, symbol %q) has no guards", g.Source, g.Symbol)
	}
	if sorted[0].Region.Lo != 0 || !sorted[0].Region.LoClosed {
		return fmt.Errorf("partition: group (colour %d, symbol %q) does not start at 0", g.Source, g.Symbol)
	}
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1].Region, sorted[i].Region
		if prev.Overlaps(cur) && !(prev.IsPoint() || cur.IsPoint()) {
			return fmt.Errorf("partition: group (colour %d, symbol %q) has overlapping guards %s and %s", g.Source, g.Symbol, prev, cur)
		}
		if !region.Adjacent(prev, cur) && !prev.Overlaps(cur) {
			return fmt.Errorf("partition: group (colour %d, symbol %q) has a gap between %s and %s", g.Source, g.Symbol, prev, cur)
		}
	}
	last := sorted[len(sorted)-1].Region
	if !math.IsInf(last.Hi, 1) {
		return fmt.Errorf("partition: group (colour %d, symbol %q) does not extend to infinity", g.Source, g.Symbol)
	}
	return nil
}
