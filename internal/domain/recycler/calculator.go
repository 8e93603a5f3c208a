package recycler

import (
	"math"
	"math/big"
)

// Compute converts a waste mix into an energy yield. Unknown types and non-positive
// percentages contribute nothing.
func Compute(mix WasteMix, totalWeight float64) ConversionResult {
	var energy float64
	byproducts := newOrderedSet()

	for _, entry := range mix.entries {
		info, ok := Lookup(entry.Type)
		if !ok || !(entry.Percentage > 0) {
			continue
		}
		energy += (entry.Percentage / 100) * totalWeight * info.Efficiency
		byproducts.add(info.Byproducts...)
	}

	return ConversionResult{
		InputWeight: totalWeight,
		EnergyKWh:   roundTo(energy, 3),
		Byproducts:  byproducts.values(),
	}
}

// roundTo rounds the exact binary value of v to places decimals, ties away from zero.
// Scaling the float first would round 1.0005 (stored as 1.000499...) up.
func roundTo(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	exact := new(big.Rat).SetFloat64(v)
	negative := exact.Sign() < 0
	exact.Abs(exact)

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	exact.Mul(exact, new(big.Rat).SetInt(scale))

	// floor(x + 1/2) == (2*num + den) / (2*den) for x >= 0.
	num := new(big.Int).Mul(exact.Num(), big.NewInt(2))
	num.Add(num, exact.Denom())
	den := new(big.Int).Mul(exact.Denom(), big.NewInt(2))
	n := num.Quo(num, den)
	if negative {
		n.Neg(n)
	}

	out, _ := new(big.Rat).SetFrac(n, scale).Float64()
	return out
}

// orderedSet keeps the first insertion position of each member.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{items: []string{}, seen: make(map[string]struct{})}
}

func (s *orderedSet) add(values ...string) {
	for _, v := range values {
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.items = append(s.items, v)
	}
}

func (s *orderedSet) values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
