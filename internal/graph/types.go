package graph

import (
	"github.com/MrSavageBanana/Study-Assistant/internal/annotation"
	"github.com/MrSavageBanana/Study-Assistant/internal/links"
)

type EdgeKind string

const (
	EdgeAnswer EdgeKind = "answer"
	EdgeStem   EdgeKind = "stem"
)

// LinkState is the color a selection is drawn with.
type LinkState string

const (
	StateUnlinked       LinkState = "red"
	StateAnswered       LinkState = "green"
	StateStem           LinkState = "magenta"
	StateMemberAnswered LinkState = "dark_green"
	StateMemberOpen     LinkState = "dark_red"
)

// Node is one selection. Indexed is false for IDs that only appear in
// links.json.
type Node struct {
	ID       string              `json:"id"`
	Location annotation.Location `json:"location"`
	Indexed  bool                `json:"indexed"`
	Record   *links.Record       `json:"record,omitempty"`
}

// Edge points from a question to its answer or stem.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// SelectionState is one row of the status listing.
type SelectionState struct {
	ID       string              `json:"id"`
	Location annotation.Location `json:"location"`
	State    LinkState           `json:"state"`
}
