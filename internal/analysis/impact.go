// Package analysis reports which link records a deletion would break.
package analysis

import (
	"sort"

	"github.com/MrSavageBanana/Study-Assistant/internal/annotation"
	"github.com/MrSavageBanana/Study-Assistant/internal/graph"
)

// ImpactReport summarizes the link records affected by deleting selections.
type ImpactReport struct {
	// Deleted is the set of selection IDs being removed, sorted.
	Deleted []string
	// DirectlyAffected are records keyed by a deleted selection.
	DirectlyAffected []*graph.Node
	// IndirectlyAffected are surviving records that reference a deleted
	// selection as answer or stem.
	IndirectlyAffected []*graph.Node
	// Broken lists the edges that would dangle.
	Broken []graph.Edge
}

// Empty reports whether the deletion leaves every record intact.
func (r *ImpactReport) Empty() bool {
	return len(r.DirectlyAffected) == 0 && len(r.IndirectlyAffected) == 0
}

// Analyzer performs impact analysis on the link graph.
type Analyzer struct {
	g *graph.Graph
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(g *graph.Graph) *Analyzer {
	return &Analyzer{g: g}
}

// AnalyzeImpact identifies the records affected by deleting ids.
func (a *Analyzer) AnalyzeImpact(ids []string) *ImpactReport {
	deleted := make(map[string]bool, len(ids))
	for _, id := range ids {
		deleted[id] = true
	}

	report := &ImpactReport{
		Deleted:            make([]string, 0, len(deleted)),
		DirectlyAffected:   []*graph.Node{},
		IndirectlyAffected: []*graph.Node{},
	}
	for id := range deleted {
		report.Deleted = append(report.Deleted, id)
	}
	sort.Strings(report.Deleted)

	seenIndirect := make(map[string]bool)
	for _, id := range report.Deleted {
		if node, ok := a.g.Nodes[id]; ok && node.Record != nil {
			report.DirectlyAffected = append(report.DirectlyAffected, node)
		}

		for _, edge := range a.g.EdgesTo(id) {
			if deleted[edge.From] {
				continue
			}
			report.Broken = append(report.Broken, edge)
			if !seenIndirect[edge.From] {
				report.IndirectlyAffected = append(report.IndirectlyAffected, a.g.Nodes[edge.From])
				seenIndirect[edge.From] = true
			}
		}
	}

	sort.Slice(report.IndirectlyAffected, func(i, j int) bool {
		return report.IndirectlyAffected[i].ID < report.IndirectlyAffected[j].ID
	})
	return report
}

// PairDeletion is the impact of deleting every annotation of a pair.
func (a *Analyzer) PairDeletion(doc *annotation.Document, pairID string) *ImpactReport {
	return a.AnalyzeImpact(doc.SelectionIDs(pairID))
}

// SelectionDeletion is the impact of deleting one annotation.
func (a *Analyzer) SelectionDeletion(id string) *ImpactReport {
	return a.AnalyzeImpact([]string{id})
}
