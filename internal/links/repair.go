package links

import (
	"fmt"

	"go.uber.org/zap"
)

// Rule names the invariant a repair restored.
type Rule string

const (
	RuleStemHasAnswer Rule = "stem_has_answer"
	RuleStemHasStem   Rule = "stem_has_stem"
	RuleCircularStem  Rule = "circular_stem"
	RuleEmptyRecord   Rule = "empty_record"
)

// Correction is one change made by Repair.
type Correction struct {
	ID     string
	Rule   Rule
	Detail string
}

func (c Correction) String() string {
	return fmt.Sprintf("%s: %s", c.ID, c.Detail)
}

// Repair re-checks every record and fixes invariant violations left by
// manual edits: answers and stem references on stems are cleared, stem
// references that close a cycle are cleared, and empty records are pruned.
// Records are visited in sorted order so the result is deterministic, and a
// second run finds nothing to do. The store is flushed once if anything
// changed.
func (s *Store) Repair() ([]Correction, error) {
	var fixes []Correction

	for _, id := range s.IDs() {
		rec := s.questions[id]
		if rec.IsStem && rec.Answer != nil {
			fixes = append(fixes, Correction{ID: id, Rule: RuleStemHasAnswer,
				Detail: fmt.Sprintf("stem had answer %s, removed answer", *rec.Answer)})
			rec.Answer = nil
		}
		if rec.IsStem && rec.Stem != nil {
			fixes = append(fixes, Correction{ID: id, Rule: RuleStemHasStem,
				Detail: fmt.Sprintf("stem was linked to stem %s, removed stem link", *rec.Stem)})
			rec.Stem = nil
		}
	}

	for _, id := range s.IDs() {
		rec := s.questions[id]
		if rec.Stem == nil {
			continue
		}
		if chainReturns(s.stemOf, id) {
			fixes = append(fixes, Correction{ID: id, Rule: RuleCircularStem,
				Detail: fmt.Sprintf("circular stem reference via %s, removed stem link", *rec.Stem)})
			rec.Stem = nil
		}
	}

	for _, id := range s.IDs() {
		if s.questions[id].Empty() {
			delete(s.questions, id)
			fixes = append(fixes, Correction{ID: id, Rule: RuleEmptyRecord, Detail: "removed empty question entry"})
		}
	}

	if len(fixes) == 0 {
		return nil, nil
	}
	for _, f := range fixes {
		s.logger.Warn("link rule violation repaired",
			zap.String("id", f.ID),
			zap.String("rule", string(f.Rule)),
			zap.String("detail", f.Detail),
		)
	}
	if err := s.flush(); err != nil {
		return fixes, err
	}
	return fixes, nil
}
