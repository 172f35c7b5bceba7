// Package workspace manages the per-run temporary directory that holds
// dump files and the in-progress archive before relocation.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/liweiyi88/pgbackup/filenaming"
)

const dirPrefix = ".pgbackup"

type Workspace struct {
	Path string
}

// Create makes a uniquely named directory under baseDir. The base directory
// must already exist, a missing or unwritable base directory fails the run.
func Create(baseDir string) (*Workspace, error) {
	path, err := os.MkdirTemp(baseDir, dirPrefix)
	if err != nil {
		return nil, fmt.Errorf("fail to create workspace under %s, error: %w", baseDir, err)
	}

	return &Workspace{Path: path}, nil
}

// DumpFilePath returns the path of the dump file for a database.
func (w *Workspace) DumpFilePath(database string) string {
	return filepath.Join(w.Path, filenaming.DumpFileName(database))
}

// ArchivePath returns the path of the archive for a run started at t.
func (w *Workspace) ArchivePath(t time.Time) string {
	return filepath.Join(w.Path, filenaming.ArchiveName(t))
}

// DumpFiles returns the sorted paths of all dump files currently in the workspace.
func (w *Workspace) DumpFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(w.Path, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("fail to list dump files in workspace %s, error: %w", w.Path, err)
	}

	sort.Strings(files)
	return files, nil
}

// Remove deletes the workspace and everything in it. It is registered to
// run on every exit path and is safe to call more than once.
func (w *Workspace) Remove() error {
	if w == nil || w.Path == "" {
		return nil
	}

	return os.RemoveAll(w.Path)
}
