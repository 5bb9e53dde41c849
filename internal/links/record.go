package links

// Role is how a question record participates in the link graph.
type Role int

const (
	// RolePlain is an independent question, answered or not.
	RolePlain Role = iota
	// RoleStem is a shared prompt other questions point at.
	RoleStem
	// RoleLinkedToStem is a question whose prompt comes from a stem.
	RoleLinkedToStem
)

func (r Role) String() string {
	switch r {
	case RoleStem:
		return "stem"
	case RoleLinkedToStem:
		return "linked_to_stem"
	default:
		return "plain"
	}
}

// Record is one entry of links.json, keyed by a question selection ID.
type Record struct {
	Answer *string `json:"answer"`
	Stem   *string `json:"stem,omitempty"`
	IsStem bool    `json:"isStem,omitempty"`
}

// Role derives the record's role. isStem wins over a stem reference; a
// record carrying both breaks invariant 2 and is treated as a stem.
func (r Record) Role() Role {
	switch {
	case r.IsStem:
		return RoleStem
	case r.Stem != nil:
		return RoleLinkedToStem
	default:
		return RolePlain
	}
}

// AnswerID returns the linked answer or "".
func (r Record) AnswerID() string {
	if r.Answer == nil {
		return ""
	}
	return *r.Answer
}

// StemID returns the referenced stem or "".
func (r Record) StemID() string {
	if r.Stem == nil {
		return ""
	}
	return *r.Stem
}

// HasAnswer reports whether an answer is linked.
func (r Record) HasAnswer() bool { return r.Answer != nil }

// Empty reports whether the record carries nothing and should be pruned.
func (r Record) Empty() bool {
	return r.Answer == nil && r.Stem == nil && !r.IsStem
}

func (r Record) clone() Record {
	out := Record{IsStem: r.IsStem}
	if r.Answer != nil {
		out.Answer = strPtr(*r.Answer)
	}
	if r.Stem != nil {
		out.Stem = strPtr(*r.Stem)
	}
	return out
}

func strPtr(s string) *string { return &s }

// normalize treats empty-string references as unset.
func (r *Record) normalize() {
	if r.Answer != nil && *r.Answer == "" {
		r.Answer = nil
	}
	if r.Stem != nil && *r.Stem == "" {
		r.Stem = nil
	}
}
