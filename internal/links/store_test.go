package links

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSavageBanana/Study-Assistant/internal/annotation"
)

func testIndex() *annotation.Index {
	doc := annotation.NewDocument()
	doc.Pairs["P"] = &annotation.Pair{
		PDF1Annotations: annotation.Pages{"0": {
			{SelectionID: "Q1", Page: 1},
			{SelectionID: "Q2", Page: 1},
			{SelectionID: "Q3", Page: 1},
			{SelectionID: "S1", Page: 1},
			{SelectionID: "S2", Page: 1},
		}},
		PDF2Annotations: annotation.Pages{"0": {
			{SelectionID: "A1", Page: 1},
			{SelectionID: "A2", Page: 1},
		}},
	}
	doc.Pairs["R"] = &annotation.Pair{
		PDF1Annotations: annotation.Pages{"0": {{SelectionID: "RQ", Page: 1}}},
		PDF2Annotations: annotation.Pages{"0": {{SelectionID: "RA", Page: 1}}},
	}
	return doc.Index()
}

func writeLinks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, path, s.Path())
	assert.JSONEq(t, `{}`, string(s.Stems()))
}

func TestLoad_ParsesRecords(t *testing.T) {
	path := writeLinks(t, `{
		"questions": {
			"Q1": {"answer": "A1"},
			"S1": {"answer": null, "isStem": true},
			"Q2": {"answer": null, "stem": "S1"},
			"Q3": {"answer": ""}
		},
		"stems": {"legacy": [1, 2]}
	}`)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Q1", "Q2", "Q3", "S1"}, s.IDs())

	q1, ok := s.Get("Q1")
	require.True(t, ok)
	assert.Equal(t, "A1", q1.AnswerID())
	assert.Equal(t, RolePlain, q1.Role())

	s1, _ := s.Get("S1")
	assert.Equal(t, RoleStem, s1.Role())

	q2, _ := s.Get("Q2")
	assert.Equal(t, RoleLinkedToStem, q2.Role())

	q3, _ := s.Get("Q3")
	assert.False(t, q3.HasAnswer(), "empty string answer is treated as unset")

	assert.JSONEq(t, `{"legacy": [1, 2]}`, string(s.Stems()))
}

func TestLoad_RejectsBadShapes(t *testing.T) {
	cases := map[string]string{
		"unknown record key":   `{"questions": {"Q1": {"answer": "A1", "note": "x"}}}`,
		"answer wrong type":    `{"questions": {"Q1": {"answer": 5}}}`,
		"isStem wrong type":    `{"questions": {"Q1": {"isStem": "yes"}}}`,
		"record not an object": `{"questions": {"Q1": "A1"}}`,
		"unknown top level":    `{"questions": {}, "extra": true}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeLinks(t, content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		path := writeLinks(t, `{"questions": `)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})
}

func TestSave_RoundTrip(t *testing.T) {
	path := writeLinks(t, `{
		"questions": {
			"Q1": {"answer": "A1", "stem": "S1"},
			"S1": {"answer": null, "isStem": true}
		},
		"stems": {"kept": {"a": "b"}}
	}`)
	s, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, s.Save())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), again.Snapshot())
	assert.JSONEq(t, `{"kept": {"a": "b"}}`, string(again.Stems()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Contains(t, raw, "questions")
	assert.Contains(t, raw, "stems")
}

func TestSnapshot_IsACopy(t *testing.T) {
	s, err := Parse([]byte(`{"questions": {"Q1": {"answer": "A1"}}}`))
	require.NoError(t, err)

	snap := s.Snapshot()
	*snap["Q1"].Answer = "changed"

	q1, _ := s.Get("Q1")
	assert.Equal(t, "A1", q1.AnswerID())
}

func TestLookups(t *testing.T) {
	s, err := Parse([]byte(`{"questions": {
		"Q1": {"answer": "A1", "stem": "S1"},
		"Q2": {"answer": null, "stem": "S1"},
		"S1": {"answer": null, "isStem": true}
	}}`))
	require.NoError(t, err)

	q, ok := s.QuestionForAnswer("A1")
	assert.True(t, ok)
	assert.Equal(t, "Q1", q)

	_, ok = s.QuestionForAnswer("A9")
	assert.False(t, ok)

	assert.Equal(t, []string{"Q1", "Q2"}, s.MembersOf("S1"))
}
