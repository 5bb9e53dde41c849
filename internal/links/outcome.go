package links

// Code classifies the result of an engine operation.
type Code string

const (
	CodeOK       Code = "ok"
	CodeNoChange Code = "no_change"

	CodeUnknownSelection   Code = "unknown_selection"
	CodeWrongSide          Code = "wrong_side"
	CodePairMismatch       Code = "pair_mismatch"
	CodeStemCannotLink     Code = "stem_cannot_link"
	CodeNotLinked          Code = "not_linked"
	CodeAlreadyStem        Code = "already_stem"
	CodeLinkedCannotBeStem Code = "linked_cannot_be_stem"
	CodeNotAStem           Code = "not_a_stem"
	CodeStemCannotJoinStem Code = "stem_cannot_join_stem"
	CodeCircularReference  Code = "circular_reference"
	CodeNotLinkedToStem    Code = "not_linked_to_stem"
)

// Outcome is the user-facing result of one engine operation. Rejections are
// outcomes, not errors, so a UI can show Message as a status line.
type Outcome struct {
	Code    Code
	Message string
	// Changed is true when the store was modified.
	Changed bool
	// Corrections lists side effects applied to keep the invariants, such as
	// dropping a stem membership before marking a question as a stem.
	Corrections []string
}

// Rejected reports whether the operation was refused.
func (o Outcome) Rejected() bool {
	return o.Code != CodeOK && o.Code != CodeNoChange
}

func (o Outcome) String() string {
	return o.Message
}

func rejected(code Code, msg string) Outcome {
	return Outcome{Code: code, Message: msg}
}
