package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/variantlab/codesim/domain"
)

func createFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, path := range paths {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("x = 1\n"), 0644))
	}
}

func TestCollectVariantFilesRecursive(t *testing.T) {
	root := t.TempDir()
	createFiles(t, root, "a.py", "notes.txt", "sub/b.py", ".hidden/c.py", "__pycache__/d.py")

	files, err := NewFileReader().CollectVariantFiles([]string{root}, true, nil, nil)
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Contains(t, files, filepath.Join(root, "a.py"))
	assert.Contains(t, files, filepath.Join(root, "sub", "b.py"))
}

func TestCollectVariantFilesNonRecursive(t *testing.T) {
	root := t.TempDir()
	createFiles(t, root, "a.py", "sub/b.py")

	files, err := NewFileReader().CollectVariantFiles([]string{root}, false, nil, nil)
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Contains(t, files, filepath.Join(root, "a.py"))
}

func TestCollectVariantFilesSinglePath(t *testing.T) {
	root := t.TempDir()
	createFiles(t, root, "a.py")

	files, err := NewFileReader().CollectVariantFiles([]string{filepath.Join(root, "a.py")}, false, nil, nil)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestCollectVariantFilesMissingPath(t *testing.T) {
	_, err := NewFileReader().CollectVariantFiles([]string{"/nonexistent/path"}, true, nil, nil)

	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeFileNotFound, domain.ErrorCode(err))
}

func TestExcludePatterns(t *testing.T) {
	root := t.TempDir()
	createFiles(t, root, "variant_1.py", "variant_2.py", "test_helpers.py")

	files, err := NewFileReader().CollectVariantFiles(
		[]string{root}, true, nil, []string{"test_*.py"})
	require.NoError(t, err)

	require.Len(t, files, 2)
	for _, file := range files {
		assert.NotContains(t, file, "test_helpers")
	}
}

func TestIncludePatternsGlobstar(t *testing.T) {
	root := t.TempDir()
	createFiles(t, root, "gen/variant_1.py", "gen/other.py")

	files, err := NewFileReader().CollectVariantFiles(
		[]string{root}, true, []string{"**/variant_*.py"}, nil)
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Contains(t, files[0], "variant_1.py")
}

func TestIsValidVariantFile(t *testing.T) {
	reader := NewFileReader()

	assert.True(t, reader.IsValidVariantFile("a.py"))
	assert.True(t, reader.IsValidVariantFile("a.PY"))
	assert.True(t, reader.IsValidVariantFile("stubs.pyi"))
	assert.False(t, reader.IsValidVariantFile("a.txt"))
	assert.False(t, reader.IsValidVariantFile("a"))
}

func TestReadFile(t *testing.T) {
	root := t.TempDir()
	createFiles(t, root, "a.py")

	content, err := NewFileReader().ReadFile(filepath.Join(root, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(content))

	_, err = NewFileReader().ReadFile(filepath.Join(root, "missing.py"))
	assert.Error(t, err)
}
