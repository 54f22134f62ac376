package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/colonyops/dock/internal/core/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ScopesAreIsolated(t *testing.T) {
	s := storage.NewMemory()

	require.NoError(t, s.Store("layout", "a", storage.ScopeGlobal))
	require.NoError(t, s.Store("layout", "b", storage.ScopeWorkspace))

	assert.Equal(t, "a", s.Get("layout", storage.ScopeGlobal, ""))
	assert.Equal(t, "b", s.Get("layout", storage.ScopeWorkspace, ""))
}

func TestMemory_GetDefault(t *testing.T) {
	s := storage.NewMemory()
	assert.Equal(t, "[]", s.Get("missing", storage.ScopeGlobal, "[]"))
}

func TestFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := storage.NewFile(dir)

	require.NoError(t, s.Store("layout", `[{"id":"x"}]`, storage.ScopeWorkspace))

	// A fresh store over the same directory sees the value.
	again := storage.NewFile(dir)
	assert.Equal(t, `[{"id":"x"}]`, again.Get("layout", storage.ScopeWorkspace, ""))

	// Scopes land in separate files.
	_, err := os.Stat(filepath.Join(dir, "workspace.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "global.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestFile_MissingFileReturnsDefault(t *testing.T) {
	s := storage.NewFile(t.TempDir())
	assert.Equal(t, "fallback", s.Get("anything", storage.ScopeGlobal, "fallback"))
}

func TestFile_CorruptFileReturnsDefaultAndRecoversOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "global.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := storage.NewFile(dir)
	assert.Equal(t, "def", s.Get("k", storage.ScopeGlobal, "def"))

	require.NoError(t, s.Store("k", "v", storage.ScopeGlobal))
	assert.Equal(t, "v", s.Get("k", storage.ScopeGlobal, "def"))
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "global", storage.ScopeGlobal.String())
	assert.Equal(t, "workspace", storage.ScopeWorkspace.String())
}
