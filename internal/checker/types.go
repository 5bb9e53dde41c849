package checker

import "github.com/MrSavageBanana/Study-Assistant/internal/annotation"

// Kind classifies a reported defect.
type Kind string

const (
	KindInvalidLink       Kind = "invalid_link"
	KindDuplicateID       Kind = "duplicate_id"
	KindDuplicateQuestion Kind = "duplicate_question"
	KindDuplicateAnswer   Kind = "duplicate_answer"
	KindDuplicateStem     Kind = "duplicate_stem"
	KindWrongPDFType      Kind = "wrong_pdf_type"
	KindPairMismatch      Kind = "pair_mismatch"
	KindMissingIsStem     Kind = "missing_isStem"
	KindViolation         Kind = "violation"
)

var kindLabels = map[Kind]string{
	KindInvalidLink:       "Invalid Link",
	KindDuplicateID:       "Duplicate ID",
	KindDuplicateQuestion: "Duplicate Question",
	KindDuplicateAnswer:   "Duplicate Answer",
	KindDuplicateStem:     "Duplicate Stem",
	KindWrongPDFType:      "Wrong PDF Type",
	KindPairMismatch:      "Pair Mismatch",
	KindMissingIsStem:     "Missing isStem",
	KindViolation:         "Rule Violation",
}

// Label is the human-readable kind name.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// Issue is one defect with a suggested fix. Optional fields are left empty
// when they do not apply to the kind.
type Issue struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
	// Issue is a one-line description, set for invalid links and violations.
	Issue string `json:"issue,omitempty"`

	Locations       []annotation.Location `json:"locations,omitempty"`
	Current         annotation.Side       `json:"current,omitempty"`
	Location        string                `json:"location,omitempty"`
	RelatedLocation string                `json:"related_location,omitempty"`
	QuestionPair    string                `json:"question_pair,omitempty"`
	OtherPair       string                `json:"other_pair,omitempty"`
	LinkedFrom      string                `json:"linked_from,omitempty"`

	Suggestion string `json:"suggestion"`
}

// Report groups issues into the three triage buckets.
type Report struct {
	// NothingToValidate is set when links.json has no question records.
	NothingToValidate bool `json:"nothing_to_validate,omitempty"`

	InvalidLinks []Issue `json:"invalid_links"`
	Warnings     []Issue `json:"warnings"`
	Violations   []Issue `json:"violations"`
}

// Counts returns the size of each bucket.
func (r *Report) Counts() (invalid, warnings, violations int) {
	return len(r.InvalidLinks), len(r.Warnings), len(r.Violations)
}

// Clean reports whether no issue was found.
func (r *Report) Clean() bool {
	return len(r.InvalidLinks) == 0 && len(r.Warnings) == 0 && len(r.Violations) == 0
}

// ByKind returns all issues of one kind across buckets.
func (r *Report) ByKind(k Kind) []Issue {
	var out []Issue
	for _, bucket := range [][]Issue{r.InvalidLinks, r.Warnings, r.Violations} {
		for _, is := range bucket {
			if is.Kind == k {
				out = append(out, is)
			}
		}
	}
	return out
}
