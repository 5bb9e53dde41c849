package graph

// StateCounts tallies indexed selections by color.
func (g *Graph) StateCounts(pairID string) map[LinkState]int {
	counts := make(map[LinkState]int)
	if g == nil {
		return counts
	}
	for _, s := range g.States(pairID) {
		counts[s.State]++
	}
	return counts
}

// DanglingCounts tallies unresolved edges by kind.
func (g *Graph) DanglingCounts() map[EdgeKind]int {
	counts := make(map[EdgeKind]int)
	if g == nil {
		return counts
	}
	for _, e := range g.Dangling {
		counts[e.Kind]++
	}
	return counts
}
