// Package checker reconciles links.json against pdf_pairs.json and reports
// every inconsistency with a suggested fix.
package checker

import (
	"fmt"
	"sort"

	"github.com/MrSavageBanana/Study-Assistant/internal/annotation"
	"github.com/MrSavageBanana/Study-Assistant/internal/links"
)

// Validate checks every link record against the annotation index.
// Records are visited in sorted ID order so the report is stable.
func Validate(idx *annotation.Index, records map[string]links.Record) *Report {
	r := &Report{
		InvalidLinks: []Issue{},
		Warnings:     []Issue{},
		Violations:   []Issue{},
	}

	for _, id := range idx.Duplicates() {
		r.Warnings = append(r.Warnings, Issue{
			Kind:       KindDuplicateID,
			ID:         id,
			Locations:  idx.Locations(id),
			Suggestion: fmt.Sprintf("Resolve duplicates for %s. Ensure unique IDs across all pairs.", id),
		})
	}

	if len(records) == 0 {
		r.NothingToValidate = true
		return r
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, qID := range ids {
		r.checkRecord(idx, records, qID, records[qID])
	}
	return r
}

// ValidateStore is Validate over the current state of a link store.
func ValidateStore(idx *annotation.Index, s *links.Store) *Report {
	return Validate(idx, s.Snapshot())
}

func (r *Report) checkRecord(idx *annotation.Index, records map[string]links.Record, qID string, rec links.Record) {
	qLocs := idx.Locations(qID)
	if len(qLocs) == 0 {
		r.InvalidLinks = append(r.InvalidLinks, Issue{
			Kind:       KindInvalidLink,
			ID:         qID,
			Issue:      "Missing question ID in annotations.",
			Suggestion: fmt.Sprintf("Remove entry for %s from links.json or add missing annotation.", qID),
		})
		return
	}

	qLoc := qLocs[0]
	qWhere := fmt.Sprintf("Pair %s, pdf1, page %d", qLoc.PairID, qLoc.Page)
	if len(qLocs) > 1 {
		r.Warnings = append(r.Warnings, Issue{
			Kind:       KindDuplicateQuestion,
			ID:         qID,
			Locations:  qLocs,
			Suggestion: fmt.Sprintf("Resolve duplicate locations for question %s.", qID),
		})
	}
	if qLoc.Side != annotation.SideQuestion {
		r.Warnings = append(r.Warnings, wrongSide(qID, qLoc,
			fmt.Sprintf("Move %s to pdf1 or update link.", qID)))
	}

	if aID := rec.AnswerID(); aID != "" {
		r.checkReference(idx, qID, qLoc, qWhere, aID, "answer", annotation.SideAnswer, KindDuplicateAnswer)
	}

	if sID := rec.StemID(); sID != "" {
		if sLoc, ok := r.checkReference(idx, qID, qLoc, qWhere, sID, "stem", annotation.SideQuestion, KindDuplicateStem); ok {
			if stem := records[sID]; !stem.IsStem {
				r.Warnings = append(r.Warnings, Issue{
					Kind:       KindMissingIsStem,
					ID:         sID,
					LinkedFrom: qID,
					Location:   fmt.Sprintf("Pair %s, pdf1, page %d", sLoc.PairID, sLoc.Page),
					Suggestion: fmt.Sprintf("Add 'isStem': true to %s in links.json.", sID),
				})
			}
		}
	}

	if rec.Role() == links.RoleStem {
		if aID := rec.AnswerID(); aID != "" {
			r.Violations = append(r.Violations, Issue{
				Kind:       KindViolation,
				ID:         qID,
				Issue:      fmt.Sprintf("Stem has answer %s.", aID),
				Location:   qWhere,
				Suggestion: fmt.Sprintf("Remove 'answer' from stem %s in links.json.", qID),
			})
		}
		if sID := rec.StemID(); sID != "" {
			r.Violations = append(r.Violations, Issue{
				Kind:       KindViolation,
				ID:         qID,
				Issue:      fmt.Sprintf("Stem linked to another stem %s.", sID),
				Location:   qWhere,
				Suggestion: fmt.Sprintf("Remove 'stem' from %s in links.json.", qID),
			})
		}
	}

	if rec.Stem != nil && links.OnCycle(records, qID) {
		r.Violations = append(r.Violations, Issue{
			Kind:       KindViolation,
			ID:         qID,
			Issue:      fmt.Sprintf("Circular stem chain through %s.", rec.StemID()),
			Location:   qWhere,
			Suggestion: fmt.Sprintf("Remove 'stem' from %s in links.json or run repair.", qID),
		})
	}
}

// checkReference validates an answer or stem reference from question qID.
// It returns the first location of the target when it resolves.
func (r *Report) checkReference(idx *annotation.Index, qID string, qLoc annotation.Location, qWhere, targetID, role string, want annotation.Side, dupKind Kind) (annotation.Location, bool) {
	locs := idx.Locations(targetID)
	if len(locs) == 0 {
		r.InvalidLinks = append(r.InvalidLinks, Issue{
			Kind:            KindInvalidLink,
			ID:              targetID,
			Issue:           fmt.Sprintf("Missing %s ID linked from question %s.", role, qID),
			RelatedLocation: qWhere,
			Suggestion:      fmt.Sprintf("Remove '%s' from %s in links.json or add missing annotation.", role, qID),
		})
		return annotation.Location{}, false
	}

	loc := locs[0]
	if len(locs) > 1 {
		r.Warnings = append(r.Warnings, Issue{
			Kind:       dupKind,
			ID:         targetID,
			Locations:  locs,
			Suggestion: fmt.Sprintf("Resolve duplicates for %s %s linked from %s.", role, targetID, qID),
		})
	}
	if loc.Side != want {
		r.Warnings = append(r.Warnings, wrongSide(targetID, loc,
			fmt.Sprintf("Move %s %s to %s or update link for question %s.", role, targetID, want, qID)))
	}
	if loc.PairID != qLoc.PairID {
		r.Warnings = append(r.Warnings, Issue{
			Kind:         KindPairMismatch,
			ID:           targetID,
			QuestionPair: qLoc.PairID,
			OtherPair:    loc.PairID,
			Suggestion:   fmt.Sprintf("Move %s %s to pair %s or update link.", role, targetID, qLoc.PairID),
		})
	}
	return loc, true
}

func wrongSide(id string, loc annotation.Location, suggestion string) Issue {
	return Issue{
		Kind:       KindWrongPDFType,
		ID:         id,
		Current:    loc.Side,
		Location:   fmt.Sprintf("Pair %s, page %d", loc.PairID, loc.Page),
		Suggestion: suggestion,
	}
}
