package recycler

// catalog is the fixed table of waste conversion parameters. Order is part of the API.
var catalog = []WasteType{
	{Type: "organic", Efficiency: 0.4, Byproducts: []string{"water", "CO2"}},
	{Type: "plastics", Efficiency: 0.3, Byproducts: []string{"syngas", "char"}},
	{Type: "metals", Efficiency: 0.1, Byproducts: []string{"slag"}},
	{Type: "glass", Efficiency: 0.05, Byproducts: []string{"slag"}},
	{Type: "textiles", Efficiency: 0.35, Byproducts: []string{"syngas", "char"}},
	{Type: "electronics", Efficiency: 0.25, Byproducts: []string{"rare metals", "toxic residue"}},
	{Type: "other", Efficiency: 0.2, Byproducts: []string{"mixed residue"}},
}

var catalogIndex = func() map[string]int {
	idx := make(map[string]int, len(catalog))
	for i, wt := range catalog {
		idx[wt.Type] = i
	}
	return idx
}()

// Lookup returns the catalog entry for a waste type key.
func Lookup(wasteType string) (WasteType, bool) {
	i, ok := catalogIndex[wasteType]
	if !ok {
		return WasteType{}, false
	}
	return catalog[i].clone(), true
}

// All returns a copy of the catalog in table order.
func All() []WasteType {
	out := make([]WasteType, 0, len(catalog))
	for _, wt := range catalog {
		out = append(out, wt.clone())
	}
	return out
}

func (w WasteType) clone() WasteType {
	byproducts := make([]string, len(w.Byproducts))
	copy(byproducts, w.Byproducts)
	w.Byproducts = byproducts
	return w
}
