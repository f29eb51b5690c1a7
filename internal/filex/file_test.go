package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesNestedDirectories(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "data", "holder", "holder.db")

	got, err := EnsureParentDir(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmp, "data", "holder"), got)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}

	// idempotent
	_, err = EnsureParentDir(path)
	require.NoError(t, err)
}

func TestEnsureParentDir_BareFileName(t *testing.T) {
	got, err := EnsureParentDir("holder.db")
	require.NoError(t, err)
	assert.Equal(t, ".", got)
}

func TestEnsureParentDir_ErrorWhenParentIsFile(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := EnsureParentDir(filepath.Join(blocker, "sub", "holder.db"))
	require.Error(t, err)
}

func TestReadFileLimited(t *testing.T) {
	tmp := t.TempDir()
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	path := filepath.Join(tmp, "a.png")
	require.NoError(t, os.WriteFile(path, png, 0o600))

	data, ct, err := ReadFileLimited(path, 1024)
	require.NoError(t, err)
	assert.Equal(t, png, data)
	assert.Equal(t, "image/png", ct)

	_, _, err = ReadFileLimited(path, 8)
	require.ErrorIs(t, err, ErrTooLarge)

	_, _, err = ReadFileLimited(filepath.Join(tmp, "missing"), 8)
	require.Error(t, err)
}
