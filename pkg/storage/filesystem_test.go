package storage

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("schedule_S001.csv", []byte("day,time\n"))
	require.NoError(t, err)

	file, err := store.Open("schedule_S001.csv")
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "day,time\n", string(data))
	assert.Equal(t, filepath.Join(dir, "schedule_S001.csv"), store.Path("schedule_S001.csv"))
}

func TestLocalStorageConfinesPathsToBaseDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	for _, name := range []string{
		"../escape.csv",
		"a/../../escape.csv",
		"/etc/escape.csv",
	} {
		path := store.Path(name)
		assert.Equal(t, filepath.Join(dir, "escape.csv"), path, "name %q", name)
		assert.True(t, strings.HasPrefix(path, dir))
	}

	// Writes through a traversal name stay inside the base directory too.
	_, err = store.Save("../escape.csv", []byte("x"))
	require.NoError(t, err)
	file, err := store.Open("escape.csv")
	require.NoError(t, err)
	file.Close() //nolint:errcheck
}
