package annotation

import (
	"fmt"

	"github.com/MrSavageBanana/Study-Assistant/internal/selection"
)

// Side identifies which PDF of a pair an annotation lives on.
type Side string

const (
	SideQuestion Side = "pdf1"
	SideAnswer   Side = "pdf2"
)

// Annotation is one rectangular selection on one page.
type Annotation struct {
	SelectionID string         `json:"selection_id"`
	Page        int            `json:"page"`
	Coordinates selection.Rect `json:"coordinates"`
}

// Pages maps a 0-based page index (as a string) to the annotations drawn on
// that page, in drawing order.
type Pages map[string][]Annotation

// Pair is a question PDF and an answer PDF studied together.
type Pair struct {
	PairID          string `json:"pair_id,omitempty"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	PDF1Path        string `json:"pdf1_path"`
	PDF2Path        string `json:"pdf2_path"`
	PDF1Annotations Pages  `json:"pdf1_annotations"`
	PDF2Annotations Pages  `json:"pdf2_annotations"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// Side returns the page map for s.
func (p *Pair) Side(s Side) Pages {
	switch s {
	case SideQuestion:
		return p.PDF1Annotations
	case SideAnswer:
		return p.PDF2Annotations
	}
	return nil
}

// Annotations flattens one side of a pair in page order.
func (p *Pair) Annotations(s Side) []Annotation {
	pages := p.Side(s)
	var out []Annotation
	for _, key := range sortedPageKeys(pages) {
		out = append(out, pages[key]...)
	}
	return out
}

func (p *Pair) setSide(s Side, pages Pages) {
	switch s {
	case SideQuestion:
		p.PDF1Annotations = pages
	case SideAnswer:
		p.PDF2Annotations = pages
	}
}

// Location is where a selection ID resolves to.
type Location struct {
	PairID string `json:"pair_id"`
	Side   Side   `json:"side"`
	Page   int    `json:"page"`
}

func (l Location) String() string {
	return fmt.Sprintf("Pair %s, %s, page %d", l.PairID, l.Side, l.Page)
}

// Entry is one row of Index.ListAll.
type Entry struct {
	SelectionID string
	Location
}
