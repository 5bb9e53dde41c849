package jsonfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_ReplacesWholeDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")

	require.NoError(t, Write(path, map[string]int{"a": 1}))
	require.NoError(t, Write(path, map[string]int{"b": 2}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 2\n}\n", string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWrite_EncodeErrorKeepsOldFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, Write(path, map[string]int{"a": 1}))

	err := Write(path, map[string]any{"bad": make(chan int)})
	require.Error(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "\"a\": 1")
}
