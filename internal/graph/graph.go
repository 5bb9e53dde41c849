// Package graph is a read-only view of the link graph over the annotation
// index, used for status display and impact analysis.
package graph

import (
	"sort"

	"github.com/MrSavageBanana/Study-Assistant/internal/annotation"
	"github.com/MrSavageBanana/Study-Assistant/internal/links"
)

// Graph manages selections and the links between them.
type Graph struct {
	Nodes map[string]*Node
	Edges []Edge

	// Dangling holds edges whose target is not in the index.
	Dangling []Edge

	// order is the index scan order, for stable listings.
	order []string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
		Edges: []Edge{},
	}
}

// AddSelection adds an indexed selection. A repeated ID keeps its first
// location.
func (g *Graph) AddSelection(e annotation.Entry) {
	if n, ok := g.Nodes[e.SelectionID]; ok {
		if !n.Indexed {
			n.Location = e.Location
			n.Indexed = true
			g.order = append(g.order, e.SelectionID)
		}
		return
	}
	g.Nodes[e.SelectionID] = &Node{ID: e.SelectionID, Location: e.Location, Indexed: true}
	g.order = append(g.order, e.SelectionID)
}

// LinkRecords attaches link records and rebuilds every edge.
func (g *Graph) LinkRecords(records map[string]links.Record) {
	g.Edges = []Edge{}
	g.Dangling = nil
	for _, n := range g.Nodes {
		n.Record = nil
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		rec := records[id]
		g.node(id).Record = &rec
		if a := rec.AnswerID(); a != "" {
			g.addEdge(Edge{From: id, To: a, Kind: EdgeAnswer})
		}
		if s := rec.StemID(); s != "" {
			g.addEdge(Edge{From: id, To: s, Kind: EdgeStem})
		}
	}
}

func (g *Graph) addEdge(e Edge) {
	g.Edges = append(g.Edges, e)
	if !g.node(e.To).Indexed {
		g.Dangling = append(g.Dangling, e)
	}
}

// node returns the node for id, creating an unindexed one if needed.
func (g *Graph) node(id string) *Node {
	n, ok := g.Nodes[id]
	if !ok {
		n = &Node{ID: id}
		g.Nodes[id] = n
	}
	return n
}

// GetDependencies returns the targets of id's outgoing edges.
func (g *Graph) GetDependencies(id string) []*Node {
	var deps []*Node
	for _, edge := range g.Edges {
		if edge.From == id {
			if node, ok := g.Nodes[edge.To]; ok {
				deps = append(deps, node)
			}
		}
	}
	return deps
}

// GetDependents returns the sources of edges pointing at id.
func (g *Graph) GetDependents(id string) []*Node {
	var deps []*Node
	for _, edge := range g.Edges {
		if edge.To == id {
			if node, ok := g.Nodes[edge.From]; ok {
				deps = append(deps, node)
			}
		}
	}
	return deps
}

// EdgesTo returns the edges pointing at id.
func (g *Graph) EdgesTo(id string) []Edge {
	var out []Edge
	for _, edge := range g.Edges {
		if edge.To == id {
			out = append(out, edge)
		}
	}
	return out
}

// State returns the color of an indexed selection. Questions are colored by
// their own record; answers are green when any question links to them.
func (g *Graph) State(id string) LinkState {
	n, ok := g.Nodes[id]
	if !ok || !n.Indexed {
		return StateUnlinked
	}

	if n.Location.Side == annotation.SideAnswer {
		for _, e := range g.EdgesTo(id) {
			if e.Kind == EdgeAnswer {
				return StateAnswered
			}
		}
		return StateUnlinked
	}

	rec := n.Record
	switch {
	case rec == nil:
		return StateUnlinked
	case rec.IsStem:
		return StateStem
	case rec.Stem != nil && rec.Answer != nil:
		return StateMemberAnswered
	case rec.Stem != nil:
		return StateMemberOpen
	case rec.Answer != nil:
		return StateAnswered
	}
	return StateUnlinked
}

// States lists every indexed selection in scan order. A non-empty pairID
// restricts the listing to that pair.
func (g *Graph) States(pairID string) []SelectionState {
	var out []SelectionState
	for _, id := range g.order {
		n := g.Nodes[id]
		if pairID != "" && n.Location.PairID != pairID {
			continue
		}
		out = append(out, SelectionState{ID: id, Location: n.Location, State: g.State(id)})
	}
	return out
}
