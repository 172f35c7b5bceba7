package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, targetDir string, keep int) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := fmt.Sprintf(`
basedir: %s
targetdir: %s
logfile: %s
keep: %d
`, t.TempDir(), targetDir, filepath.Join(dir, "pg_backup.log"), keep)

	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRootCmdMissingConfigFile(t *testing.T) {
	assert := assert.New(t)

	rootCmd.SetErr(bytes.NewBufferString(""))
	rootCmd.SetArgs([]string{"-f", "/nonexistent/config.yaml"})

	err := rootCmd.Execute()
	assert.ErrorContains(err, "fail to read config file")
}

func TestCheckCmd(t *testing.T) {
	assert := assert.New(t)

	targetDir := t.TempDir()
	configFile := writeConfigFile(t, filepath.Join(targetDir, "missing"), 3)

	rootCmd.SetErr(bytes.NewBufferString(""))
	rootCmd.SetArgs([]string{"check", "-f", configFile})

	err := rootCmd.Execute()
	assert.ErrorContains(err, "not accessible")
}

func TestPruneCmd(t *testing.T) {
	assert := assert.New(t)

	targetDir := t.TempDir()
	configFile := writeConfigFile(t, targetDir, 1)

	oldest := filepath.Join(targetDir, "pg_backup_20240101_010101.tar.gz")
	newest := filepath.Join(targetDir, "pg_backup_20240201_010101.tar.gz")

	for i, name := range []string{oldest, newest} {
		require.NoError(t, os.WriteFile(name, []byte("x"), 0644))
		mtime := time.Now().Add(-time.Duration(2-i) * time.Hour)
		require.NoError(t, os.Chtimes(name, mtime, mtime))
	}

	rootCmd.SetErr(bytes.NewBufferString(""))
	rootCmd.SetArgs([]string{"prune", "-f", configFile})

	err := rootCmd.Execute()
	assert.NoError(err)

	_, err = os.Stat(oldest)
	assert.True(os.IsNotExist(err))

	_, err = os.Stat(newest)
	assert.NoError(err)
}
