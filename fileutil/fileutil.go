package fileutil

import (
	"log/slog"
	"math/rand"
	"os"
)

// For temp files such as the pg_dump credential file we need a writable dir.
// We firstly try to get current work dir, if not successful, then try to get home dir and finally try temp dir.
func WorkDir() string {
	dir, err := os.Getwd()
	if err != nil {
		slog.Warn("cannot get the current directory, using $HOME directory", slog.Any("error", err))
		dir, err = os.UserHomeDir()
		if err != nil {
			slog.Warn("cannot get the user home directory, using temp directory", slog.Any("error", err))
			dir = os.TempDir()
		}
	}

	return dir
}

func GenerateRandomName(n int) string {
	const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}
	return string(b)
}
