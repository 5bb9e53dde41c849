package links

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), DefaultFile), WithResolver(testIndex()))
}

// mustOK takes an operation's results directly:
//
//	mustOK(t)(s.CreateLink("Q1", "A1"))
func mustOK(t *testing.T) func(Outcome, error) Outcome {
	t.Helper()
	return func(out Outcome, err error) Outcome {
		t.Helper()
		require.NoError(t, err)
		require.Equal(t, CodeOK, out.Code, out.Message)
		return out
	}
}

func TestCreateLink(t *testing.T) {
	s := newTestStore(t)

	out := mustOK(t)(s.CreateLink("Q1", "A1"))
	assert.True(t, out.Changed)
	rec, _ := s.Get("Q1")
	assert.Equal(t, "A1", rec.AnswerID())

	t.Run("idempotent", func(t *testing.T) {
		out, err := s.CreateLink("Q1", "A1")
		require.NoError(t, err)
		assert.Equal(t, CodeNoChange, out.Code)
		assert.False(t, out.Changed)
	})

	t.Run("overwrite", func(t *testing.T) {
		out := mustOK(t)(s.CreateLink("Q1", "A2"))
		assert.Contains(t, out.Message, "(was A1)")
		rec, _ := s.Get("Q1")
		assert.Equal(t, "A2", rec.AnswerID())
	})

	t.Run("write-through", func(t *testing.T) {
		again, err := Load(s.Path())
		require.NoError(t, err)
		assert.Equal(t, s.Snapshot(), again.Snapshot())
	})
}

func TestCreateLink_Rejections(t *testing.T) {
	s := newTestStore(t)
	mustOK(t)(s.MarkAsStem("S1"))
	before := s.Snapshot()

	cases := []struct {
		name string
		q, a string
		code Code
	}{
		{"unknown question", "Q9", "A1", CodeUnknownSelection},
		{"unknown answer", "Q1", "A9", CodeUnknownSelection},
		{"question on answer side", "A1", "A2", CodeWrongSide},
		{"answer on question side", "Q1", "Q2", CodeWrongSide},
		{"cross pair", "Q1", "RA", CodePairMismatch},
		{"stem cannot link", "S1", "A1", CodeStemCannotLink},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := s.CreateLink(tc.q, tc.a)
			require.NoError(t, err)
			assert.Equal(t, tc.code, out.Code)
			assert.True(t, out.Rejected())
			assert.NotEmpty(t, out.Message)
			assert.Equal(t, before, s.Snapshot(), "rejected operations leave the store unchanged")
		})
	}
}

func TestUnlink(t *testing.T) {
	t.Run("question removes the whole record", func(t *testing.T) {
		s := newTestStore(t)
		mustOK(t)(s.MarkAsStem("S1"))
		mustOK(t)(s.CreateLink("Q1", "A1"))
		mustOK(t)(s.AddQuestionToStem("Q1", "S1"))

		mustOK(t)(s.Unlink("Q1"))
		_, ok := s.Get("Q1")
		assert.False(t, ok)
	})

	t.Run("answer removes the linked question", func(t *testing.T) {
		s := newTestStore(t)
		mustOK(t)(s.CreateLink("Q2", "A2"))

		out := mustOK(t)(s.Unlink("A2"))
		assert.Contains(t, out.Message, "Q2")
		_, ok := s.Get("Q2")
		assert.False(t, ok)
	})

	t.Run("answer side ID wins over a stray record key", func(t *testing.T) {
		path := writeLinks(t, `{"questions": {"A1": {"answer": "Q2"}, "Q1": {"answer": "A1"}}}`)
		s, err := Load(path, WithResolver(testIndex()))
		require.NoError(t, err)

		out := mustOK(t)(s.Unlink("A1"))
		assert.Equal(t, "Unlinked question Q1 from answer A1", out.Message)
		assert.Equal(t, []string{"A1"}, s.IDs())

		out = mustOK(t)(s.Unlink("A1"))
		assert.Equal(t, "Unlinked A1", out.Message, "with nothing linking to it the stray record goes")
		assert.Empty(t, s.IDs())
	})

	t.Run("nothing to unlink", func(t *testing.T) {
		s := newTestStore(t)
		out, err := s.Unlink("Q3")
		require.NoError(t, err)
		assert.Equal(t, CodeNotLinked, out.Code)
	})
}

func TestMarkAsStem(t *testing.T) {
	s := newTestStore(t)

	mustOK(t)(s.MarkAsStem("S1"))
	rec, _ := s.Get("S1")
	assert.True(t, rec.IsStem)
	assert.Equal(t, RoleStem, rec.Role())

	out, err := s.MarkAsStem("S1")
	require.NoError(t, err)
	assert.Equal(t, CodeAlreadyStem, out.Code)

	mustOK(t)(s.CreateLink("Q1", "A1"))
	out, err = s.MarkAsStem("Q1")
	require.NoError(t, err)
	assert.Equal(t, CodeLinkedCannotBeStem, out.Code)

	out, err = s.MarkAsStem("A1")
	require.NoError(t, err)
	assert.Equal(t, CodeWrongSide, out.Code)
}

func TestMarkAsStem_DropsExistingMembership(t *testing.T) {
	s := newTestStore(t)
	mustOK(t)(s.MarkAsStem("S1"))
	mustOK(t)(s.AddQuestionToStem("S2", "S1"))

	out := mustOK(t)(s.MarkAsStem("S2"))
	require.Len(t, out.Corrections, 1)
	assert.Contains(t, out.Corrections[0], "S1")

	rec, _ := s.Get("S2")
	assert.True(t, rec.IsStem)
	assert.Nil(t, rec.Stem, "a stem never keeps a stem reference")
}

func TestUnmarkStem(t *testing.T) {
	s := newTestStore(t)

	out, err := s.UnmarkStem("S1")
	require.NoError(t, err)
	assert.Equal(t, CodeNotAStem, out.Code)

	mustOK(t)(s.MarkAsStem("S1"))
	mustOK(t)(s.AddQuestionToStem("Q1", "S1"))

	out = mustOK(t)(s.UnmarkStem("S1"))
	assert.Contains(t, out.Message, "1 questions still reference it")
	_, ok := s.Get("S1")
	assert.False(t, ok, "emptied stem record is pruned")

	rec, _ := s.Get("Q1")
	assert.Equal(t, "S1", rec.StemID(), "members are not relinked")

	mustOK(t)(s.MarkAsStem("S1"))
	rec, _ = s.Get("Q1")
	assert.Equal(t, "S1", rec.StemID())
}

func TestAddQuestionToStem_Exclusivity(t *testing.T) {
	s := newTestStore(t)
	mustOK(t)(s.MarkAsStem("S1"))
	mustOK(t)(s.MarkAsStem("S2"))

	mustOK(t)(s.AddQuestionToStem("Q1", "S1"))
	out := mustOK(t)(s.AddQuestionToStem("Q1", "S2"))
	assert.Contains(t, out.Message, "(was S1)")
	require.Len(t, out.Corrections, 1)

	rec, _ := s.Get("Q1")
	assert.Equal(t, "S2", rec.StemID())
	assert.Empty(t, s.MembersOf("S1"))

	out, err := s.AddQuestionToStem("Q1", "S2")
	require.NoError(t, err)
	assert.Equal(t, CodeNoChange, out.Code)
}

func TestAddQuestionToStem_Rejections(t *testing.T) {
	s := newTestStore(t)
	mustOK(t)(s.MarkAsStem("S1"))
	mustOK(t)(s.MarkAsStem("S2"))
	before := s.Snapshot()

	cases := []struct {
		name    string
		q, stem string
		code    Code
	}{
		{"target not a stem", "Q1", "Q2", CodeNotAStem},
		{"self", "S1", "S1", CodeCircularReference},
		{"stem into stem", "S2", "S1", CodeStemCannotJoinStem},
		{"answer as stem", "Q1", "A1", CodeWrongSide},
		{"unknown stem", "Q1", "S9", CodeUnknownSelection},
		{"cross pair", "RQ", "S1", CodePairMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := s.AddQuestionToStem(tc.q, tc.stem)
			require.NoError(t, err)
			assert.Equal(t, tc.code, out.Code, out.Message)
			assert.Equal(t, before, s.Snapshot())
		})
	}
}

func TestAddQuestionToStem_RejectsCycleFromEditedFile(t *testing.T) {
	// S1 is a stem that, through a hand edit, points at Q1.
	s, err := Parse([]byte(`{"questions": {
		"S1": {"answer": null, "isStem": true, "stem": "Q1"}
	}}`), WithResolver(testIndex()))
	require.NoError(t, err)
	before := s.Snapshot()

	out, err := s.AddQuestionToStem("Q1", "S1")
	require.NoError(t, err)
	assert.Equal(t, CodeCircularReference, out.Code)
	assert.Equal(t, before, s.Snapshot())
}

func TestRemoveQuestionFromStem(t *testing.T) {
	s := newTestStore(t)
	mustOK(t)(s.MarkAsStem("S1"))

	out, err := s.RemoveQuestionFromStem("Q1")
	require.NoError(t, err)
	assert.Equal(t, CodeNotLinkedToStem, out.Code)

	mustOK(t)(s.CreateLink("Q1", "A1"))
	mustOK(t)(s.AddQuestionToStem("Q1", "S1"))
	mustOK(t)(s.AddQuestionToStem("Q2", "S1"))

	mustOK(t)(s.RemoveQuestionFromStem("Q1"))
	rec, ok := s.Get("Q1")
	require.True(t, ok, "record with an answer survives")
	assert.Nil(t, rec.Stem)

	mustOK(t)(s.RemoveQuestionFromStem("Q2"))
	_, ok = s.Get("Q2")
	assert.False(t, ok, "emptied record is pruned")
}

func TestPruning_UnlinkThenUnmark(t *testing.T) {
	s := newTestStore(t)
	mustOK(t)(s.MarkAsStem("S1"))
	mustOK(t)(s.UnmarkStem("S1"))
	_, ok := s.Get("S1")
	assert.False(t, ok)

	mustOK(t)(s.CreateLink("Q1", "A1"))
	mustOK(t)(s.Unlink("Q1"))
	assert.Equal(t, 0, s.Len())
}

func TestNoStemOfStem_AfterOperationSequence(t *testing.T) {
	s := newTestStore(t)
	steps := []func() (Outcome, error){
		func() (Outcome, error) { return s.MarkAsStem("S1") },
		func() (Outcome, error) { return s.AddQuestionToStem("S2", "S1") },
		func() (Outcome, error) { return s.MarkAsStem("S2") },
		func() (Outcome, error) { return s.AddQuestionToStem("S1", "S2") },
		func() (Outcome, error) { return s.AddQuestionToStem("Q1", "S2") },
		func() (Outcome, error) { return s.CreateLink("S1", "A1") },
		func() (Outcome, error) { return s.UnmarkStem("S2") },
		func() (Outcome, error) { return s.AddQuestionToStem("S2", "S1") },
	}
	for _, step := range steps {
		_, err := step()
		require.NoError(t, err)
		for id, rec := range s.Snapshot() {
			if rec.IsStem {
				assert.Nil(t, rec.Stem, "stem %s has a stem reference", id)
				assert.Nil(t, rec.Answer, "stem %s has an answer", id)
			}
			assert.False(t, rec.Empty(), "empty record %s left behind", id)
		}
	}
}

func TestEngine_WithoutResolverSkipsLocationChecks(t *testing.T) {
	s := New("")
	mustOK(t)(s.CreateLink("anything", "else"))
	mustOK(t)(s.MarkAsStem("stem"))
	mustOK(t)(s.AddQuestionToStem("q", "stem"))
}

func TestEngine_FlushFailureKeepsMemoryState(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	// The parent "directory" is a regular file, so every write fails.
	s := New(filepath.Join(blocker, DefaultFile), WithResolver(testIndex()))
	out, err := s.CreateLink("Q1", "A1")
	require.Error(t, err)
	assert.Equal(t, CodeOK, out.Code)

	rec, ok := s.Get("Q1")
	require.True(t, ok)
	assert.Equal(t, "A1", rec.AnswerID())
}
