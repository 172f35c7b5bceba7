package env

import (
	"os"
	"strconv"
)

const (
	PGHOST     = "PGHOST"
	PGPORT     = "PGPORT"
	PGUSER     = "PGUSER"
	PGPASSWORD = "PGPASSWORD"

	BACKUP_BASE_DIR   = "BACKUP_BASE_DIR"
	BACKUP_TARGET_DIR = "BACKUP_TARGET_DIR"
	BACKUP_KEEP       = "BACKUP_KEEP"
	LOG_FILE          = "LOG_FILE"
)

// Lookup returns the env value of key or fallback when the variable is unset or empty.
func Lookup(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

// LookupInt returns the env value of key parsed as an integer, or fallback
// when the variable is unset, empty or not a valid integer.
func LookupInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	number, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return number
}
