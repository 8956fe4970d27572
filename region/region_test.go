package region

import (
	"math"
	"testing"
)

func TestContains(t *testing.T) {
	r := Region{Lo: 1, Hi: 2, LoClosed: true, HiClosed: false}
	cases := []struct {
		t    float64
		want bool
	}{
		{0.9, false},
		{1, true},
		{1.5, true},
		{2, false},
		{2.1, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.t); got != c.want {
			t.Errorf("Contains(%v) = %v, want %v", c.t, got, c.want)
		}
	}
}

func TestUnboundedContainsEverythingAboveLo(t *testing.T) {
	r := Unbounded(3, false)
	if r.Contains(3) {
		t.Fatal("(3,inf) should not contain 3")
	}
	if !r.Contains(1000) {
		t.Fatal("(3,inf) should contain 1000")
	}
}

func TestMergeIdempotent(t *testing.T) {
	r := Region{Lo: 1, Hi: 2, LoClosed: true, HiClosed: false}
	m, ok := Merge(r, r)
	if !ok || !m.Equal(r) {
		t.Fatalf("Merge(R,R) = %v, want %v", m, r)
	}
}

func TestMergeCommutative(t *testing.T) {
	a := Region{Lo: 0, Hi: 1, LoClosed: true, HiClosed: false}
	b := Point(1)
	m1, ok1 := Merge(a, b)
	m2, ok2 := Merge(b, a)
	if !ok1 || !ok2 || !m1.Equal(m2) {
		t.Fatalf("merge not commutative: %v vs %v", m1, m2)
	}
}

func TestMergeAdjacentClosure(t *testing.T) {
	a := Region{Lo: 0, Hi: 1, LoClosed: true, HiClosed: false}
	b := Point(1)
	m, ok := Merge(a, b)
	if !ok {
		t.Fatal("expected adjacent regions to merge")
	}
	want := Region{Lo: 0, Hi: 1, LoClosed: true, HiClosed: true}
	if !m.Equal(want) {
		t.Errorf("Merge([0,1),[1,1]) = %v, want %v", m, want)
	}
}

func TestMergeUndefinedWhenDisjoint(t *testing.T) {
	a := Point(0)
	b := Point(2)
	if _, ok := Merge(a, b); ok {
		t.Fatal("expected merge of disjoint non-adjacent regions to be undefined")
	}
}

func TestContainmentDuality(t *testing.T) {
	a := Region{Lo: 0, Hi: 1, LoClosed: true, HiClosed: false}
	b := Point(1)
	m, ok := Merge(a, b)
	if !ok {
		t.Fatal("merge should be defined")
	}
	for _, tv := range []float64{-0.1, 0, 0.5, 1, 1.1} {
		got := m.Contains(tv)
		want := a.Contains(tv) || b.Contains(tv)
		if got != want {
			t.Errorf("containment duality failed at t=%v: merge=%v, union=%v", tv, got, want)
		}
	}
}

func TestAdjacentRequiresClosure(t *testing.T) {
	a := Region{Lo: 0, Hi: 1, LoClosed: true, HiClosed: false}
	b := Region{Lo: 1, Hi: 2, LoClosed: false, HiClosed: false}
	if Adjacent(a, b) {
		t.Fatal("(0,1) open-open boundary at 1 should not be adjacent")
	}
}

func TestValidRejectsBadPoint(t *testing.T) {
	bad := Region{Lo: 1, Hi: 1, LoClosed: true, HiClosed: false}
	if bad.Valid() {
		t.Fatal("point interval must be doubly closed")
	}
}

func TestValidRejectsClosedInfinity(t *testing.T) {
	bad := Region{Lo: 0, Hi: math.Inf(1), LoClosed: true, HiClosed: true}
	if bad.Valid() {
		t.Fatal("+inf upper bound must never be closed")
	}
}

func TestStringRoundTrip(t *testing.T) {
	cases := []Region{
		Point(2),
		{Lo: 0, Hi: 1, LoClosed: false, HiClosed: false},
		Unbounded(3, false),
	}
	for _, r := range cases {
		s := r.String()
		parsed, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", s, err)
		}
		if !parsed.Equal(r) {
			t.Errorf("round trip mismatch: %v -> %q -> %v", r, s, parsed)
		}
	}
}
