package jobresult

import (
	"fmt"
	"strings"
	"time"
)

// RunResult captures the outcome of one backup run.
type RunResult struct {
	Error     error
	Databases []string
	Archive   string // final archive path in the target directory
	Pruned    []string
	Elapsed   time.Duration
}

func (result *RunResult) String() string {
	if result.Error != nil {
		return fmt.Sprintf("backup failed, it took %s with error: %v", result.Elapsed, result.Error)
	}

	return fmt.Sprintf(
		"backup of %d databases (%s) succeeded, archive: %s, pruned: %d, it took %v",
		len(result.Databases),
		strings.Join(result.Databases, ", "),
		result.Archive,
		len(result.Pruned),
		result.Elapsed,
	)
}

func (result *RunResult) ToSlackText() string {
	if result.Error != nil {
		return fmt.Sprintf(":x: backup failed, it took *%s* ```%v```", result.Elapsed, result.Error)
	}

	return fmt.Sprintf(":white_check_mark: backup of `%d` databases succeeded, archive `%s`, it took *%v*", len(result.Databases), result.Archive, result.Elapsed)
}
