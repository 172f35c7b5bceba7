// Package archive creates and verifies the gzip-compressed tar archive
// that bundles all dump files of a run.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

var ErrNoFiles = errors.New("no files to archive")

// Create packages files into a gzip-compressed tar archive at archivePath.
// Entries carry base names only so extracting never writes outside the
// extraction directory.
func Create(archivePath string, files []string) error {
	if len(files) == 0 {
		return ErrNoFiles
	}

	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("fail to create archive file %s, error: %w", archivePath, err)
	}

	gzipWriter := gzip.NewWriter(archiveFile)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, file := range files {
		if err := addFile(tarWriter, file); err != nil {
			tarWriter.Close()
			gzipWriter.Close()
			archiveFile.Close()
			os.Remove(archivePath)
			return err
		}
	}

	// Close order matters: tar footer, then gzip trailer, then the file.
	if err := tarWriter.Close(); err != nil {
		archiveFile.Close()
		return fmt.Errorf("fail to finalize tar archive %s, error: %w", archivePath, err)
	}

	if err := gzipWriter.Close(); err != nil {
		archiveFile.Close()
		return fmt.Errorf("fail to finalize gzip stream %s, error: %w", archivePath, err)
	}

	if err := archiveFile.Close(); err != nil {
		return fmt.Errorf("fail to close archive file %s, error: %w", archivePath, err)
	}

	return nil
}

func addFile(tarWriter *tar.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("fail to open %s for archiving, error: %w", path, err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("fail to close archived file", slog.Any("path", path), slog.Any("error", err))
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("fail to stat %s, error: %w", path, err)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("fail to build tar header for %s, error: %w", path, err)
	}

	header.Name = filepath.Base(path)

	if err := tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("fail to write tar header for %s, error: %w", path, err)
	}

	if _, err := io.Copy(tarWriter, file); err != nil {
		return fmt.Errorf("fail to write %s into archive, error: %w", path, err)
	}

	return nil
}

// List reads the full table of contents of the archive and returns the
// entry names. It is the structural integrity check that gates relocation:
// a truncated or corrupt archive fails here.
func List(archivePath string) ([]string, error) {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("fail to open archive %s, error: %w", archivePath, err)
	}

	defer func() {
		if err := archiveFile.Close(); err != nil {
			slog.Error("fail to close archive", slog.Any("path", archivePath), slog.Any("error", err))
		}
	}()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return nil, fmt.Errorf("fail to read gzip stream of %s, error: %w", archivePath, err)
	}

	defer func() {
		if err := gzipReader.Close(); err != nil {
			slog.Error("fail to close gzip reader", slog.Any("path", archivePath), slog.Any("error", err))
		}
	}()

	tarReader := tar.NewReader(gzipReader)

	var names []string
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("fail to read archive %s, error: %w", archivePath, err)
		}

		// Drain the entry so the gzip stream is fully decompressed and a
		// truncated archive is detected, not just a broken header.
		if _, err := io.Copy(io.Discard, tarReader); err != nil {
			return nil, fmt.Errorf("fail to read archive entry %s of %s, error: %w", header.Name, archivePath, err)
		}

		names = append(names, header.Name)
	}

	return names, nil
}
