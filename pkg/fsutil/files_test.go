package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	tests := []struct {
		name     string
		existing string
	}{
		{name: "creates new file"},
		{name: "replaces existing file", existing: "an older and much longer body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "nested", "Utilla.dll")
			if tt.existing != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
				require.NoError(t, os.WriteFile(path, []byte(tt.existing), 0o644))
			}

			require.NoError(t, WriteFileAtomic(path, []byte("new"), FileModeDefault))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "new", string(content))

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temporary file must not be left behind")

			if runtime.GOOS != "windows" {
				info, err := os.Stat(path)
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(FileModeDefault), info.Mode().Perm())
			}
		})
	}
}

func TestWriteFileAtomic_EmptyPath(t *testing.T) {
	err := WriteFileAtomic("", []byte("x"), FileModeDefault)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.dll")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	require.NoError(t, RemoveIfExists(path))
	assert.NoFileExists(t, path)

	// second removal is a no-op
	require.NoError(t, RemoveIfExists(path))
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.dll")

	ok, err := Exists(path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
	ok, err = Exists(path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetLogFilePath(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache")

	path, err := GetLogFilePath(cacheDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cacheDir, LogFileName), path)
	assert.DirExists(t, cacheDir)
}

func TestGetConfigPath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, AppName, ConfigFileName), path)
}
