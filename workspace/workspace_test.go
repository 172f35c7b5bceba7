package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	assert := assert.New(t)

	base := t.TempDir()

	first, err := Create(base)
	assert.NoError(err)
	t.Cleanup(func() { first.Remove() })

	second, err := Create(base)
	assert.NoError(err)
	t.Cleanup(func() { second.Remove() })

	assert.NotEqual(first.Path, second.Path)
	assert.True(strings.HasPrefix(filepath.Base(first.Path), ".pgbackup"))

	info, err := os.Stat(first.Path)
	assert.NoError(err)
	assert.True(info.IsDir())
}

func TestCreateMissingBaseDir(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	assert := assert.New(t)

	w, err := Create(t.TempDir())
	assert.NoError(err)
	t.Cleanup(func() { w.Remove() })

	assert.Equal(filepath.Join(w.Path, "app.sql"), w.DumpFilePath("app"))

	ts := time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)
	assert.Equal(filepath.Join(w.Path, "pg_backup_20240102_150405.tar.gz"), w.ArchivePath(ts))
}

func TestDumpFiles(t *testing.T) {
	assert := assert.New(t)

	w, err := Create(t.TempDir())
	assert.NoError(err)
	t.Cleanup(func() { w.Remove() })

	require.NoError(t, os.WriteFile(w.DumpFilePath("metrics"), []byte("-- dump"), 0644))
	require.NoError(t, os.WriteFile(w.DumpFilePath("app"), []byte("-- dump"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(w.Path, "other.txt"), []byte("x"), 0644))

	files, err := w.DumpFiles()
	assert.NoError(err)
	assert.Equal([]string{w.DumpFilePath("app"), w.DumpFilePath("metrics")}, files)
}

func TestRemoveIsIdempotent(t *testing.T) {
	assert := assert.New(t)

	w, err := Create(t.TempDir())
	assert.NoError(err)

	assert.NoError(w.Remove())

	_, err = os.Stat(w.Path)
	assert.True(os.IsNotExist(err))

	// removing an already removed workspace is safe
	assert.NoError(w.Remove())

	var nilWorkspace *Workspace
	assert.NoError(nilWorkspace.Remove())
}
