package definitions

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefinition(t *testing.T, dir, filename, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644))
}

const coderDoc = `
name: coder
steps:
  plan: {}
  reflect: {}
`

func TestDir_Load(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "coder.yaml", coderDoc)

	loader := NewDir(dir)
	def, ok := loader.Load(context.Background(), "coder")
	require.True(t, ok)
	assert.Equal(t, "coder", def.Name())
}

func TestDir_LoadYmlExtension(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "coder.yml", coderDoc)

	loader := NewDir(dir)
	_, ok := loader.Load(context.Background(), "coder")
	assert.True(t, ok)
}

func TestDir_LoadMissing(t *testing.T) {
	loader := NewDir(t.TempDir())
	_, ok := loader.Load(context.Background(), "coder")
	assert.False(t, ok)

	_, ok = loader.Load(context.Background(), "")
	assert.False(t, ok)
}

func TestDir_LoadInvalidDocumentIsMiss(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "coder.yaml", "name: coder")

	loader := NewDir(dir)
	_, ok := loader.Load(context.Background(), "coder")
	assert.False(t, ok)
}

func TestDir_NameMismatchIsMiss(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "other.yaml", coderDoc)

	loader := NewDir(dir)
	_, ok := loader.Load(context.Background(), "other")
	assert.False(t, ok)
}

func TestDir_CacheAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "coder.yaml", coderDoc)

	loader := NewDir(dir)
	_, ok := loader.Load(context.Background(), "coder")
	require.True(t, ok)

	// Cached: deleting the file does not affect loads until invalidation.
	require.NoError(t, os.Remove(filepath.Join(dir, "coder.yaml")))
	_, ok = loader.Load(context.Background(), "coder")
	assert.True(t, ok)

	loader.Invalidate("coder")
	_, ok = loader.Load(context.Background(), "coder")
	assert.False(t, ok)
}

func TestDir_Names(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "coder.yaml", coderDoc)
	writeDefinition(t, dir, "hooks.yml", "")
	writeDefinition(t, dir, "README.md", "not a workflow")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755))

	loader := NewDir(dir)
	names, err := loader.Names()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"coder", "hooks"}, names)
}

func TestStatic_Load(t *testing.T) {
	def, err := Decode([]byte(coderDoc))
	require.NoError(t, err)

	loader := NewStatic(def)
	got, ok := loader.Load(context.Background(), "coder")
	require.True(t, ok)
	assert.Equal(t, def, got)

	_, ok = loader.Load(context.Background(), "missing")
	assert.False(t, ok)
}
