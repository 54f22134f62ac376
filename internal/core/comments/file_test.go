package comments_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/colonyops/dock/internal/core/comments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threads.json")
	body := `[
  {
    "id": "t1",
    "resource": "file:///a.go",
    "range": {"start_line": 3, "start_column": 1, "end_line": 3, "end_column": 10},
    "comments": [
      {"author": "kai", "body": "should this be exported?"},
      {"author": "ren", "body": "no, keep it internal"}
    ]
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	threads, err := comments.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "t1", threads[0].ID)
	assert.Equal(t, 3, threads[0].Range.StartLine)
	assert.Len(t, threads[0].Comments, 2)
}

func TestLoadFile_MissingIsEmpty(t *testing.T) {
	threads, err := comments.LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, threads)
}

func TestLoadFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))

	_, err := comments.LoadFile(path)
	assert.Error(t, err)
}
