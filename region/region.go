// Package region implements the guard intervals used to label DRTA
// transitions: closed/open/half-open sub-intervals of [0,inf).
package region

import (
	"fmt"
	"math"
)

// Region is a sub-interval of [0,inf) with explicit boundary closure.
//
// Boundaries are always non-negative; Hi may be +Inf to represent an
// unbounded upper end, in which case HiClosed must be false. A point
// interval (Lo == Hi) must have both boundaries closed.
type Region struct {
	Lo       float64
	Hi       float64
	LoClosed bool
	HiClosed bool
}

// Point returns the degenerate region [p,p].
func Point(p float64) Region {
	return Region{Lo: p, Hi: p, LoClosed: true, HiClosed: true}
}

// Unbounded returns the region [lo, +inf) when loClosed is true, and
// (lo, +inf) otherwise.
func Unbounded(lo float64, loClosed bool) Region {
	return Region{Lo: lo, Hi: math.Inf(1), LoClosed: loClosed, HiClosed: false}
}

// Valid reports whether r satisfies the structural invariants from the data
// model: Lo <= Hi, a point interval is doubly closed, and +Inf is never
// closed.
func (r Region) Valid() bool {
	if r.Lo < 0 || math.IsNaN(r.Lo) || math.IsNaN(r.Hi) {
		return false
	}
	if r.Lo > r.Hi {
		return false
	}
	if r.Lo == r.Hi && !(r.LoClosed && r.HiClosed) {
		return false
	}
	if math.IsInf(r.Hi, 1) && r.HiClosed {
		return false
	}
	return true
}

// IsPoint reports whether r is a degenerate [p,p] region.
func (r Region) IsPoint() bool {
	return r.Lo == r.Hi
}

// Contains reports whether t falls inside r under r's open/closed semantics.
func (r Region) Contains(t float64) bool {
	if t < r.Lo || (t == r.Lo && !r.LoClosed) {
		return false
	}
	if math.IsInf(r.Hi, 1) {
		return true
	}
	if t > r.Hi || (t == r.Hi && !r.HiClosed) {
		return false
	}
	return true
}

// Overlaps reports whether r and o share at least one point.
func (r Region) Overlaps(o Region) bool {
	// Disjoint iff r ends strictly before o starts, or o ends strictly
	// before r starts (accounting for shared boundary closure).
	if r.before(o) || o.before(r) {
		return false
	}
	return true
}

// before reports whether r lies entirely before o with no shared point,
// i.e. r.Hi < o.Lo, or r.Hi == o.Lo and at least one of the two boundaries
// at that point is open.
func (r Region) before(o Region) bool {
	if math.IsInf(r.Hi, 1) {
		return false
	}
	if r.Hi < o.Lo {
		return true
	}
	if r.Hi == o.Lo && !(r.HiClosed && o.LoClosed) {
		return true
	}
	return false
}

// Adjacent reports whether r and o touch at exactly one boundary point
// with exactly one side closed there. Regions that are both closed at the
// shared point overlap there and are not adjacent.
func Adjacent(r, o Region) bool {
	touch := func(a, b Region) bool {
		return !math.IsInf(a.Hi, 1) && a.Hi == b.Lo && (a.HiClosed || b.LoClosed)
	}
	if r.Overlaps(o) {
		return false
	}
	return touch(r, o) || touch(o, r)
}

// Merge returns the smallest region containing both r and o. It is only
// defined when r and o overlap or are adjacent; ok is false otherwise.
// At a shared boundary the result's closure is the union (closed wins) of
// whichever source attains that bound.
func Merge(r, o Region) (Region, bool) {
	if !r.Overlaps(o) && !Adjacent(r, o) {
		return Region{}, false
	}

	var lo float64
	var loClosed bool
	switch {
	case r.Lo < o.Lo:
		lo, loClosed = r.Lo, r.LoClosed
	case o.Lo < r.Lo:
		lo, loClosed = o.Lo, o.LoClosed
	default:
		lo, loClosed = r.Lo, r.LoClosed || o.LoClosed
	}

	var hi float64
	var hiClosed bool
	switch {
	case math.IsInf(r.Hi, 1) || math.IsInf(o.Hi, 1):
		hi, hiClosed = math.Inf(1), false
	case r.Hi > o.Hi:
		hi, hiClosed = r.Hi, r.HiClosed
	case o.Hi > r.Hi:
		hi, hiClosed = o.Hi, o.HiClosed
	default:
		hi, hiClosed = r.Hi, r.HiClosed || o.HiClosed
	}

	return Region{Lo: lo, Hi: hi, LoClosed: loClosed, HiClosed: hiClosed}, true
}

// Equal reports structural equality over all four fields.
func (r Region) Equal(o Region) bool {
	return r.Lo == o.Lo && r.Hi == o.Hi && r.LoClosed == o.LoClosed && r.HiClosed == o.HiClosed
}

// Key returns a canonical hashable string form, used as a map key wherever
// Regions are compared structurally instead of by parsing strings back.
func (r Region) Key() string {
	return r.String()
}

// String renders r using the conventional interval notation, e.g. "[1,2)",
// "(0,inf)", "[3,3]".
func (r Region) String() string {
	lo := "("
	if r.LoClosed {
		lo = "["
	}
	hi := ")"
	if r.HiClosed {
		hi = "]"
	}
	hiStr := formatBound(r.Hi)
	return fmt.Sprintf("%s%s,%s%s", lo, formatBound(r.Lo), hiStr, hi)
}

func formatBound(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
