package links

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRepair_FixesEveryRule(t *testing.T) {
	path := writeLinks(t, `{"questions": {
		"S1": {"answer": "A1", "isStem": true},
		"S2": {"answer": null, "isStem": true, "stem": "S1"},
		"Q1": {"answer": null, "stem": "Q2"},
		"Q2": {"answer": null, "stem": "Q1"},
		"Q3": {"answer": null},
		"Q4": {"answer": "A2"}
	}}`)
	core, logs := observer.New(zap.WarnLevel)
	s, err := Load(path, WithLogger(zap.New(core)))
	require.NoError(t, err)

	fixes, err := s.Repair()
	require.NoError(t, err)

	rules := map[string][]Rule{}
	for _, f := range fixes {
		rules[f.ID] = append(rules[f.ID], f.Rule)
	}
	assert.Equal(t, []Rule{RuleStemHasAnswer}, rules["S1"])
	assert.Equal(t, []Rule{RuleStemHasStem}, rules["S2"])
	assert.Equal(t, []Rule{RuleCircularStem, RuleEmptyRecord}, rules["Q1"], "first record of the loop loses its link")
	assert.Empty(t, rules["Q2"])
	assert.Equal(t, []Rule{RuleEmptyRecord}, rules["Q3"])
	assert.Empty(t, rules["Q4"])
	assert.Equal(t, len(fixes), logs.Len())

	assert.Equal(t, []string{"Q2", "Q4", "S1", "S2"}, s.IDs())
	q2, _ := s.Get("Q2")
	assert.Equal(t, "Q1", q2.StemID())

	t.Run("idempotent", func(t *testing.T) {
		again, err := s.Repair()
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("flushed", func(t *testing.T) {
		reloaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, s.Snapshot(), reloaded.Snapshot())
	})
}

func TestRepair_SelfLoop(t *testing.T) {
	s, err := Parse([]byte(`{"questions": {"Q1": {"answer": "A1", "stem": "Q1"}}}`))
	require.NoError(t, err)

	fixes, err := s.Repair()
	require.NoError(t, err)
	require.Len(t, fixes, 1)
	assert.Equal(t, RuleCircularStem, fixes[0].Rule)

	rec, ok := s.Get("Q1")
	require.True(t, ok)
	assert.Nil(t, rec.Stem)
}

func TestRepair_ChainIntoLoopKeepsTail(t *testing.T) {
	// D only runs into the A<->B loop; it is not part of it.
	s, err := Parse([]byte(`{"questions": {
		"0D": {"answer": null, "stem": "A"},
		"A": {"answer": null, "stem": "B"},
		"B": {"answer": null, "stem": "A"}
	}}`))
	require.NoError(t, err)

	fixes, err := s.Repair()
	require.NoError(t, err)
	require.Len(t, fixes, 2)
	assert.Equal(t, "A", fixes[0].ID)

	d, _ := s.Get("0D")
	assert.Equal(t, "A", d.StemID())
}

func TestRepair_CleanStoreDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	s := New(path)
	fixes, err := s.Repair()
	require.NoError(t, err)
	assert.Empty(t, fixes)
	assert.NoFileExists(t, path)
}

func TestWouldCycle(t *testing.T) {
	records := map[string]Record{
		"A": {Stem: strPtr("B")},
		"B": {Stem: strPtr("C")},
		"X": {Stem: strPtr("Y")},
		"Y": {Stem: strPtr("X")},
	}
	assert.True(t, WouldCycle(records, "C", "A"), "C -> A -> B -> C")
	assert.False(t, WouldCycle(records, "Q", "A"))
	assert.True(t, WouldCycle(records, "Q", "Q"))
	assert.True(t, WouldCycle(records, "Q", "X"), "walk must terminate on a pre-existing loop")

	assert.True(t, OnCycle(records, "X"))
	assert.False(t, OnCycle(records, "A"))
}
