package graph

import (
	"github.com/MrSavageBanana/Study-Assistant/internal/annotation"
	"github.com/MrSavageBanana/Study-Assistant/internal/links"
)

// Build assembles a graph from the annotation index and a record snapshot.
func Build(idx *annotation.Index, records map[string]links.Record) *Graph {
	g := NewGraph()
	for _, e := range idx.ListAll() {
		g.AddSelection(e)
	}
	g.LinkRecords(records)
	return g
}

// FromStore is Build over the current state of a link store.
func FromStore(idx *annotation.Index, s *links.Store) *Graph {
	return Build(idx, s.Snapshot())
}
