// Package local owns the durable target directory: it receives verified
// archives from the workspace and applies the retention policy.
package local

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/liweiyi88/pgbackup/filenaming"
)

type Local struct {
	Path string `yaml:"path"`
}

func New(path string) *Local {
	return &Local{Path: path}
}

func (local *Local) Save(reader io.Reader, filename string) error {
	path := filepath.Join(local.Path, filename)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fail to create local file %s, error: %w", path, err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("fail to close local file", slog.Any("path", path), slog.Any("error", err))
		}
	}()

	if _, err = io.Copy(file, reader); err != nil {
		return fmt.Errorf("fail to write local file %s, error: %w", path, err)
	}

	return nil
}

// Move relocates src into the target directory keeping its base name. It
// tries a rename first and falls back to copy-then-remove when the
// workspace and the target directory live on different devices. The
// fallback writes to a hidden temp name and renames it into place so a
// partially copied archive never appears under its final name.
func (local *Local) Move(src string) (string, error) {
	dest := filepath.Join(local.Path, filepath.Base(src))

	if err := os.Rename(src, dest); err == nil {
		return dest, nil
	}

	if err := local.copy(src, dest); err != nil {
		return "", err
	}

	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("fail to remove source file %s after copy, error: %w", src, err)
	}

	return dest, nil
}

func (local *Local) copy(src, dest string) error {
	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("fail to open source file %s, error: %w", src, err)
	}

	defer func() {
		if err := source.Close(); err != nil {
			slog.Error("fail to close source file", slog.Any("path", src), slog.Any("error", err))
		}
	}()

	tmp := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".partial")

	target, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("fail to create target file %s, error: %w", tmp, err)
	}

	if _, err = io.Copy(target, source); err != nil {
		target.Close()
		os.Remove(tmp)
		return fmt.Errorf("fail to copy %s to %s, error: %w", src, tmp, err)
	}

	if err = target.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("fail to close target file %s, error: %w", tmp, err)
	}

	if err = os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("fail to rename %s to %s, error: %w", tmp, dest, err)
	}

	return nil
}

// Prune removes archives beyond the keep newest ones, newest first by
// modification time. Each deletion is attempted independently, failures
// are collected rather than aborting the remaining deletions. Checksum
// sidecars are removed together with their archive.
func (local *Local) Prune(keep int) ([]string, error) {
	entries, err := os.ReadDir(local.Path)
	if err != nil {
		return nil, fmt.Errorf("fail to list target directory %s, error: %w", local.Path, err)
	}

	type archive struct {
		name    string
		modTime int64
	}

	var archives []archive
	for _, entry := range entries {
		if entry.IsDir() || !filenaming.IsArchiveName(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("fail to stat %s, error: %w", entry.Name(), err)
		}

		archives = append(archives, archive{name: entry.Name(), modTime: info.ModTime().UnixNano()})
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].modTime > archives[j].modTime
	})

	if keep < 0 {
		keep = 0
	}

	if len(archives) <= keep {
		return nil, nil
	}

	var removed []string
	var errs error

	for _, old := range archives[keep:] {
		path := filepath.Join(local.Path, old.name)

		if err := os.Remove(path); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("fail to remove old archive %s, error: %w", path, err))
			continue
		}

		sidecar := filepath.Join(local.Path, filenaming.ChecksumName(old.name))
		if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
			errs = multierror.Append(errs, fmt.Errorf("fail to remove checksum sidecar %s, error: %w", sidecar, err))
		}

		removed = append(removed, old.name)
	}

	return removed, errs
}
