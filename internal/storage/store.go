package storage

import (
	"context"
	"sort"

	"github.com/MrSavageBanana/Study-Assistant/internal/annotation"
	"github.com/MrSavageBanana/Study-Assistant/internal/graph"
	"github.com/MrSavageBanana/Study-Assistant/internal/links"
)

// Store persists queryable snapshots of pairs, selections and links.
type Store interface {
	SnapshotStore
	Close() error
}

// SnapshotStore defines operations for mirroring the JSON files.
type SnapshotStore interface {
	// SaveSnapshot replaces the stored state with s in one transaction.
	SaveSnapshot(ctx context.Context, s *Snapshot) error

	// LoadSnapshot reads the stored state back.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)

	// GetSelection retrieves the first stored location of a selection.
	GetSelection(ctx context.Context, id string) (*SelectionRow, error)

	// FindSelectionsByPair retrieves all selections of one pair.
	FindSelectionsByPair(ctx context.Context, pairID string) ([]SelectionRow, error)

	// History lists previous snapshots, newest first.
	History(ctx context.Context) ([]SnapshotInfo, error)
}

type PairRow struct {
	PairID      string
	Name        string
	Description string
	PDF1Path    string
	PDF2Path    string
	CreatedAt   string
	UpdatedAt   string
}

type SelectionRow struct {
	SelectionID string
	PairID      string
	Side        annotation.Side
	Page        int
	X, Y        float64
	Width       float64
	Height      float64
	State       graph.LinkState
}

type LinkRow struct {
	QuestionID string
	AnswerID   string
	StemID     string
	IsStem     bool
}

// Snapshot is the full state written by SaveSnapshot.
type Snapshot struct {
	Pairs      []PairRow
	Selections []SelectionRow
	Links      []LinkRow
}

// SnapshotInfo describes one SaveSnapshot call.
type SnapshotInfo struct {
	ID         int64
	TakenAt    string
	Pairs      int
	Selections int
	Links      int
}

// NewSnapshot flattens the two JSON documents into rows. Selections keep
// index scan order; links are sorted by question ID.
func NewSnapshot(doc *annotation.Document, records map[string]links.Record) *Snapshot {
	g := graph.Build(doc.Index(), records)
	s := &Snapshot{}

	for _, id := range doc.PairIDs() {
		p := doc.Pairs[id]
		s.Pairs = append(s.Pairs, PairRow{
			PairID:      id,
			Name:        p.Name,
			Description: p.Description,
			PDF1Path:    p.PDF1Path,
			PDF2Path:    p.PDF2Path,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})

		for _, side := range []annotation.Side{annotation.SideQuestion, annotation.SideAnswer} {
			for _, a := range p.Annotations(side) {
				if a.SelectionID == "" {
					continue
				}
				s.Selections = append(s.Selections, SelectionRow{
					SelectionID: a.SelectionID,
					PairID:      id,
					Side:        side,
					Page:        a.Page,
					X:           a.Coordinates.X,
					Y:           a.Coordinates.Y,
					Width:       a.Coordinates.Width,
					Height:      a.Coordinates.Height,
					State:       g.State(a.SelectionID),
				})
			}
		}
	}

	qids := make([]string, 0, len(records))
	for id := range records {
		qids = append(qids, id)
	}
	sort.Strings(qids)
	for _, id := range qids {
		rec := records[id]
		s.Links = append(s.Links, LinkRow{
			QuestionID: id,
			AnswerID:   rec.AnswerID(),
			StemID:     rec.StemID(),
			IsStem:     rec.IsStem,
		})
	}
	return s
}
