package links

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/MrSavageBanana/Study-Assistant/internal/annotation"
)

// CreateLink points question q at answer a. Re-linking to the same answer
// is a no-op; linking to a different answer replaces the old one.
func (s *Store) CreateLink(q, a string) (Outcome, error) {
	qLoc, out, ok := s.locate(q, annotation.SideQuestion, "question")
	if !ok {
		return out, nil
	}
	aLoc, out, ok := s.locate(a, annotation.SideAnswer, "answer")
	if !ok {
		return out, nil
	}
	if s.resolver != nil && qLoc.PairID != aLoc.PairID {
		return rejected(CodePairMismatch, fmt.Sprintf("Answer %s belongs to pair %s, question %s to pair %s", a, aLoc.PairID, q, qLoc.PairID)), nil
	}

	rec := s.questions[q]
	if rec != nil && rec.IsStem {
		return rejected(CodeStemCannotLink, fmt.Sprintf("Cannot link stem %s to an answer - stems cannot have answers", q)), nil
	}
	if rec != nil && rec.AnswerID() == a {
		return Outcome{Code: CodeNoChange, Message: fmt.Sprintf("Question %s is already linked to %s", q, a)}, nil
	}

	prev := ""
	if rec == nil {
		rec = &Record{}
		s.questions[q] = rec
	} else {
		prev = rec.AnswerID()
	}
	rec.Answer = strPtr(a)

	msg := fmt.Sprintf("Linked question %s to answer %s", q, a)
	if prev != "" {
		msg = fmt.Sprintf("%s (was %s)", msg, prev)
	}
	return s.commit("create_link", Outcome{Code: CodeOK, Message: msg, Changed: true},
		zap.String("question", q), zap.String("answer", a), zap.String("previous", prev))
}

// Unlink removes the link held by id. For a question the whole record goes
// (answer, stem membership and stem flag). For an answer the record of the
// first question linked to it goes. With a resolver, an ID on the answer side
// is always treated as an answer, even if it is also a record key.
func (s *Store) Unlink(id string) (Outcome, error) {
	_, keyed := s.questions[id]
	if keyed && !s.onSide(id, annotation.SideAnswer) {
		return s.unlinkQuestion(id)
	}
	if q, ok := s.QuestionForAnswer(id); ok {
		delete(s.questions, q)
		return s.commit("unlink", Outcome{Code: CodeOK, Message: fmt.Sprintf("Unlinked question %s from answer %s", q, id), Changed: true},
			zap.String("question", q), zap.String("answer", id))
	}
	if keyed {
		return s.unlinkQuestion(id)
	}
	return rejected(CodeNotLinked, fmt.Sprintf("No link found for %s", id)), nil
}

func (s *Store) unlinkQuestion(q string) (Outcome, error) {
	delete(s.questions, q)
	return s.commit("unlink", Outcome{Code: CodeOK, Message: fmt.Sprintf("Unlinked %s", q), Changed: true},
		zap.String("question", q))
}

// onSide reports whether the resolver places id on side. Without a resolver
// it is always false.
func (s *Store) onSide(id string, side annotation.Side) bool {
	if s.resolver == nil {
		return false
	}
	loc, ok := s.resolver.Resolve(id)
	return ok && loc.Side == side
}

// MarkAsStem flags q as a stem. A stem cannot be a member of another stem,
// so an existing stem reference on q is dropped and reported.
func (s *Store) MarkAsStem(q string) (Outcome, error) {
	if _, out, ok := s.locate(q, annotation.SideQuestion, "question"); !ok {
		return out, nil
	}

	rec := s.questions[q]
	if rec != nil && rec.IsStem {
		return rejected(CodeAlreadyStem, fmt.Sprintf("Selection %s is already marked as Stem", q)), nil
	}
	if rec != nil && rec.HasAnswer() {
		return rejected(CodeLinkedCannotBeStem, "Cannot mark linked Question as Stem"), nil
	}

	out := Outcome{Code: CodeOK, Message: fmt.Sprintf("Marked %s as Stem", q), Changed: true}
	if rec == nil {
		rec = &Record{}
		s.questions[q] = rec
	}
	if rec.Stem != nil {
		out.Corrections = append(out.Corrections, fmt.Sprintf("Removed stem link to %s before marking as stem", *rec.Stem))
		rec.Stem = nil
	}
	rec.IsStem = true
	return s.commit("mark_stem", out, zap.String("question", q))
}

// UnmarkStem clears the stem flag on q. Members keep pointing at q; the
// validator reports them if q stays unmarked.
func (s *Store) UnmarkStem(q string) (Outcome, error) {
	rec := s.questions[q]
	if rec == nil || !rec.IsStem {
		return rejected(CodeNotAStem, fmt.Sprintf("Selection %s is not marked as Stem", q)), nil
	}
	rec.IsStem = false
	if rec.Empty() {
		delete(s.questions, q)
	}

	msg := fmt.Sprintf("Unmarked %s as Stem", q)
	if n := len(s.MembersOf(q)); n > 0 {
		msg = fmt.Sprintf("%s (%d questions still reference it)", msg, n)
	}
	return s.commit("unmark_stem", Outcome{Code: CodeOK, Message: msg, Changed: true}, zap.String("question", q))
}

// AddQuestionToStem makes stemID the stem of q, replacing any previous stem.
func (s *Store) AddQuestionToStem(q, stemID string) (Outcome, error) {
	qLoc, out, ok := s.locate(q, annotation.SideQuestion, "question")
	if !ok {
		return out, nil
	}
	sLoc, out, ok := s.locate(stemID, annotation.SideQuestion, "stem")
	if !ok {
		return out, nil
	}
	if s.resolver != nil && qLoc.PairID != sLoc.PairID {
		return rejected(CodePairMismatch, fmt.Sprintf("Stem %s belongs to pair %s, question %s to pair %s", stemID, sLoc.PairID, q, qLoc.PairID)), nil
	}

	if stem := s.questions[stemID]; stem == nil || !stem.IsStem {
		return rejected(CodeNotAStem, fmt.Sprintf("Selection %s is not marked as Stem", stemID)), nil
	}
	if q == stemID {
		return rejected(CodeCircularReference, "Cannot add stem to itself"), nil
	}
	rec := s.questions[q]
	if rec != nil && rec.IsStem {
		return rejected(CodeStemCannotJoinStem, fmt.Sprintf("Cannot add stem %s to another stem", q)), nil
	}
	if s.WouldCycle(q, stemID) {
		return rejected(CodeCircularReference, fmt.Sprintf("Cannot add %s to stem %s - would create circular reference", q, stemID)), nil
	}
	if rec != nil && rec.StemID() == stemID {
		return Outcome{Code: CodeNoChange, Message: fmt.Sprintf("Question %s is already linked to this stem", q)}, nil
	}

	out = Outcome{Code: CodeOK, Message: fmt.Sprintf("Added question %s to stem %s", q, stemID), Changed: true}
	if rec == nil {
		rec = &Record{}
		s.questions[q] = rec
	}
	if old := rec.StemID(); old != "" {
		out.Message = fmt.Sprintf("Replaced stem link: %s now linked to %s (was %s)", q, stemID, old)
		out.Corrections = append(out.Corrections, fmt.Sprintf("Question %s was linked to stem %s, now linked to %s", q, old, stemID))
	}
	rec.Stem = strPtr(stemID)
	return s.commit("add_to_stem", out, zap.String("question", q), zap.String("stem", stemID))
}

// RemoveQuestionFromStem drops q's stem reference.
func (s *Store) RemoveQuestionFromStem(q string) (Outcome, error) {
	rec := s.questions[q]
	if rec == nil || rec.Stem == nil {
		return rejected(CodeNotLinkedToStem, "Question is not linked to any stem"), nil
	}
	old := *rec.Stem
	rec.Stem = nil
	if rec.Empty() {
		delete(s.questions, q)
	}
	return s.commit("remove_from_stem", Outcome{Code: CodeOK, Message: fmt.Sprintf("Removed question %s from stem %s", q, old), Changed: true},
		zap.String("question", q), zap.String("stem", old))
}

// locate checks that id exists on the wanted side. Without a resolver every
// ID is accepted.
func (s *Store) locate(id string, want annotation.Side, role string) (annotation.Location, Outcome, bool) {
	if s.resolver == nil {
		return annotation.Location{}, Outcome{}, true
	}
	loc, ok := s.resolver.Resolve(id)
	if !ok {
		return loc, rejected(CodeUnknownSelection, fmt.Sprintf("Selection ID %s not found in pdf_pairs.json", id)), false
	}
	if loc.Side != want {
		return loc, rejected(CodeWrongSide, fmt.Sprintf("%s %s is on %s, expected %s", role, id, loc.Side, want)), false
	}
	return loc, Outcome{}, true
}

// commit flushes after a successful mutation. A failed write is returned as
// is; the in-memory change stays applied.
func (s *Store) commit(op string, out Outcome, fields ...zap.Field) (Outcome, error) {
	fields = append([]zap.Field{zap.String("op", op)}, fields...)
	if len(out.Corrections) > 0 {
		fields = append(fields, zap.Strings("corrections", out.Corrections))
	}
	s.logger.Info("link graph updated", fields...)
	if err := s.flush(); err != nil {
		return out, err
	}
	return out, nil
}
