package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), mode))
	require.NoError(t, fs.Chmod(path, mode))
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestCopyFile_PreservesMode(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/src/run.sh", "#!/bin/sh\n", 0755)

	require.NoError(t, CopyFile(fs, "/src/run.sh", "/dst/nested/run.sh"))

	assert.Equal(t, "#!/bin/sh\n", readFile(t, fs, "/dst/nested/run.sh"))
	info, err := fs.Stat("/dst/nested/run.sh")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestCopyFile_OverwritesExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/src/a.txt", "new", 0600)
	writeFile(t, fs, "/dst/a.txt", "old content", 0644)

	require.NoError(t, CopyFile(fs, "/src/a.txt", "/dst/a.txt"))

	assert.Equal(t, "new", readFile(t, fs, "/dst/a.txt"))
	info, err := fs.Stat("/dst/a.txt")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestCopyFile_RejectsDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src/dir", 0755))

	err := CopyFile(fs, "/src/dir", "/dst/dir")
	assert.Error(t, err)
}

func TestReplaceFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/w/tool", "old", 0700)

	require.NoError(t, ReplaceFile(fs, "/w/tool", []byte("rendered"), 0700))

	assert.Equal(t, "rendered", readFile(t, fs, "/w/tool"))
	info, err := fs.Stat("/w/tool")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestCopyTree(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/src/.git/HEAD", "ref: refs/heads/main\n", 0644)
	writeFile(t, fs, "/src/.git/hooks/pre-commit", "#!/bin/sh\n", 0755)

	require.NoError(t, CopyTree(fs, "/src/.git", "/dst/.git"))

	assert.Equal(t, "ref: refs/heads/main\n", readFile(t, fs, "/dst/.git/HEAD"))
	info, err := fs.Stat("/dst/.git/hooks/pre-commit")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestMergeDir_KeepsExistingEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/src/a.txt", "from src", 0644)
	writeFile(t, fs, "/src/sub/b.txt", "b", 0644)
	writeFile(t, fs, "/dst/keep.txt", "keep", 0644)
	writeFile(t, fs, "/dst/a.txt", "stale", 0644)

	require.NoError(t, MergeDir(fs, "/src", "/dst"))

	assert.Equal(t, "from src", readFile(t, fs, "/dst/a.txt"))
	assert.Equal(t, "b", readFile(t, fs, "/dst/sub/b.txt"))
	assert.Equal(t, "keep", readFile(t, fs, "/dst/keep.txt"))
}

func TestMergeDir_FileReplacesDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/src/conf", "file now", 0644)
	writeFile(t, fs, "/dst/conf/old.txt", "old", 0644)

	require.NoError(t, MergeDir(fs, "/src", "/dst"))

	assert.Equal(t, "file now", readFile(t, fs, "/dst/conf"))
}

func TestMove(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/w/a.txt.hop.tmpl", "content", 0640)

		require.NoError(t, Move(fs, "/w/a.txt.hop.tmpl", "/w/a.txt"))

		assert.False(t, Exists(fs, "/w/a.txt.hop.tmpl"))
		assert.Equal(t, "content", readFile(t, fs, "/w/a.txt"))
	})

	t.Run("directory merges into existing target", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/w/src/new.txt", "new", 0644)
		writeFile(t, fs, "/w/dst/existing.txt", "existing", 0644)

		require.NoError(t, Move(fs, "/w/src", "/w/dst"))

		assert.False(t, Exists(fs, "/w/src"))
		assert.Equal(t, "new", readFile(t, fs, "/w/dst/new.txt"))
		assert.Equal(t, "existing", readFile(t, fs, "/w/dst/existing.txt"))
	})

	t.Run("same path is a no-op", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/w/a.txt", "content", 0644)

		require.NoError(t, Move(fs, "/w/a.txt", "/w/./a.txt"))
		assert.Equal(t, "content", readFile(t, fs, "/w/a.txt"))
	})
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		path     string
		expected bool
	}{
		{"same", "/w", "/w", true},
		{"child", "/w", "/w/a/b", true},
		{"sibling", "/w", "/other", false},
		{"parent", "/w/a", "/w", false},
		{"dotdot prefix name", "/w", "/w/..foo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsWithin(tt.root, tt.path))
		})
	}
}
