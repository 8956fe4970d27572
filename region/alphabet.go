package region

import (
	"math"
	"sort"
)

// Alphabet is the canonical region set derived from a sample's maximal
// timestamp kappa: {[0,0], (0,1), [1,1], ..., [kappa,kappa], (kappa,inf)}.
type Alphabet struct {
	Kappa   int
	Regions []Region // sorted ascending, covering [0,inf) with no gaps
}

// BuildAlphabet computes kappa = ceil(max timestamp in times) and enumerates
// the canonical region list. An empty times slice yields kappa=0 and the
// two-region alphabet {[0,0], (0,inf)}.
func BuildAlphabet(times []float64) *Alphabet {
	max := 0.0
	for _, t := range times {
		if t > max {
			max = t
		}
	}
	kappa := int(math.Ceil(max))

	regions := make([]Region, 0, 2*kappa+1)
	for i := 0; i < kappa; i++ {
		regions = append(regions, Point(float64(i)))
		regions = append(regions, Region{Lo: float64(i), Hi: float64(i + 1)})
	}
	regions = append(regions, Point(float64(kappa)))
	regions = append(regions, Unbounded(float64(kappa), false))

	return &Alphabet{Kappa: kappa, Regions: regions}
}

// Locate returns the unique canonical region containing t, using a binary
// search over the sorted, gap-free region list built by BuildAlphabet.
func (a *Alphabet) Locate(t float64) (Region, bool) {
	idx := sort.Search(len(a.Regions), func(i int) bool {
		r := a.Regions[i]
		return math.IsInf(r.Hi, 1) || t <= r.Hi
	})
	if idx >= len(a.Regions) {
		return Region{}, false
	}
	r := a.Regions[idx]
	if r.Contains(t) {
		return r, true
	}
	// t could equal the open upper bound of regions[idx] because of the <=
	// comparison above; the point region [t,t] that follows then holds it.
	if idx+1 < len(a.Regions) && a.Regions[idx+1].Contains(t) {
		return a.Regions[idx+1], true
	}
	return Region{}, false
}
