package logger

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerFormat(t *testing.T) {
	assert := assert.New(t)

	var sb strings.Builder
	log := slog.New(NewHandler(&sb, &sb, slog.LevelInfo))

	log.Info("backup started", slog.String("database", "app"))
	log.Error("dump failed", slog.Int("exit", 1))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	assert.Len(lines, 2)

	pattern := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] \[(INFO|ERROR)\] `)
	for _, line := range lines {
		assert.Regexp(pattern, line)
	}

	assert.Contains(lines[0], "[INFO] backup started database=app")
	assert.Contains(lines[1], "[ERROR] dump failed exit=1")
}

func TestHandlerRoutesErrorsToErrOut(t *testing.T) {
	assert := assert.New(t)

	var out, errOut strings.Builder
	log := slog.New(NewHandler(&out, &errOut, slog.LevelInfo))

	log.Info("backup started")
	log.Warn("target directory almost full")
	log.Error("dump failed")

	assert.Contains(out.String(), "[INFO] backup started")
	assert.Contains(out.String(), "[WARN] target directory almost full")
	assert.NotContains(out.String(), "dump failed")

	assert.Contains(errOut.String(), "[ERROR] dump failed")
	assert.NotContains(errOut.String(), "backup started")
}

func TestHandlerLevel(t *testing.T) {
	assert := assert.New(t)

	var sb strings.Builder
	handler := NewHandler(&sb, &sb, slog.LevelInfo)

	assert.False(handler.Enabled(context.Background(), slog.LevelDebug))
	assert.True(handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(handler.Enabled(context.Background(), slog.LevelError))

	log := slog.New(handler)
	log.Debug("should not appear")
	assert.Empty(sb.String())
}

func TestHandlerWithAttrs(t *testing.T) {
	assert := assert.New(t)

	var sb strings.Builder
	log := slog.New(NewHandler(&sb, &sb, slog.LevelInfo)).With(slog.String("stage", "prune"))

	log.Info("deleted old archive", slog.String("file", "pg_backup_20240101_000000.tar.gz"))

	assert.Contains(sb.String(), "stage=prune")
	assert.Contains(sb.String(), "file=pg_backup_20240101_000000.tar.gz")
}

func TestSetupWritesToFile(t *testing.T) {
	assert := assert.New(t)

	logFile := t.TempDir() + "/pg_backup.log"

	closer, err := Setup(logFile, false)
	assert.NoError(err)

	slog.Info("hello from test")
	slog.Error("goodbye from test")
	assert.NoError(closer())

	content, err := os.ReadFile(logFile)
	assert.NoError(err)
	assert.Contains(string(content), "[INFO] hello from test")
	assert.Contains(string(content), "[ERROR] goodbye from test")
}
