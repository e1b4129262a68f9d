package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_ReadsTxtAndMarkdownSorted(t *testing.T) {
	// Given: a corpus directory with mixed content
	dir := t.TempDir()
	writeFile(t, dir, "zz-remote.md", "Remote work policy.")
	writeFile(t, dir, "aa-leave.txt", "Leave policy.")
	writeFile(t, dir, "notes.pdf", "binary-ish")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))
	writeFile(t, filepath.Join(dir, "archive"), "old.txt", "ignored")

	// When: loading
	docs, err := Load(dir)
	require.NoError(t, err)

	// Then: only top-level .txt/.md files load, in filename order
	require.Len(t, docs, 2)
	assert.Equal(t, "aa-leave.txt", docs[0].Source)
	assert.Equal(t, "Leave policy.", docs[0].Text)
	assert.Equal(t, "zz-remote.md", docs[1].Source)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestLoad_OnlyUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scan.pdf", "x")
	writeFile(t, dir, "data.json", "{}")

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestLoad_UppercaseExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "POLICY.TXT", "Shouting policy.")

	docs, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "POLICY.TXT", docs[0].Source)
}
