package filenaming

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	archivePrefix    = "pg_backup_"
	archiveExtension = ".tar.gz"

	// Timestamp layout embedded in archive names, e.g. pg_backup_20240102_150405.tar.gz
	TimestampLayout = "20060102_150405"
)

var archivePattern = regexp.MustCompile(`^pg_backup_\d{8}_\d{6}\.tar\.gz$`)

// ArchiveName returns the archive file name for a run started at t.
func ArchiveName(t time.Time) string {
	return fmt.Sprintf("%s%s%s", archivePrefix, t.Format(TimestampLayout), archiveExtension)
}

// IsArchiveName reports whether filename matches the archive naming scheme.
// The retention pruner relies on this to only ever touch files this tool created.
func IsArchiveName(filename string) bool {
	return archivePattern.MatchString(filename)
}

// DumpFileName returns the per-database dump file name inside the workspace.
func DumpFileName(database string) string {
	return EnsureFileSuffix(database, ".sql")
}

// ChecksumName returns the checksum sidecar name for an archive.
func ChecksumName(archiveName string) string {
	return archiveName + ".sha256"
}

// Ensure a file has proper file extension.
func EnsureFileSuffix(filename, suffix string) string {
	if strings.HasSuffix(filename, suffix) {
		return filename
	}

	return filename + suffix
}
