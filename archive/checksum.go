package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/liweiyi88/pgbackup/filenaming"
)

// Checksum computes the sha256 hex digest of the file at path.
func Checksum(path string) (string, error) {
	hasher := sha256.New()

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("fail to open file %s to compute checksum, error: %v", path, err)
	}

	defer func() {
		if err = file.Close(); err != nil {
			slog.Error("fail to close file", slog.Any("filename", file.Name()), slog.Any("error", err))
		}
	}()

	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("fail to copy content to hasher, error: %v", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// WriteChecksum writes a sha256sum-compatible sidecar file next to the
// archive and returns its path.
func WriteChecksum(archivePath string) (string, error) {
	checksum, err := Checksum(archivePath)
	if err != nil {
		return "", err
	}

	name := filepath.Base(archivePath)
	sidecar := filepath.Join(filepath.Dir(archivePath), filenaming.ChecksumName(name))

	content := fmt.Sprintf("%s  %s\n", checksum, name)
	if err := os.WriteFile(sidecar, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("fail to write checksum sidecar %s, error: %v", sidecar, err)
	}

	return sidecar, nil
}
