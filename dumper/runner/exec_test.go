package runner

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecRunnerRun(t *testing.T) {
	assert := assert.New(t)

	var sb strings.Builder
	runner := NewExecRunner("echo", []string{"-n", "dump content"}, nil)

	err := runner.Run(context.Background(), &sb)
	assert.NoError(err)
	assert.Equal("dump content", sb.String())
}

func TestExecRunnerRunWithEnv(t *testing.T) {
	assert := assert.New(t)

	var sb strings.Builder
	runner := NewExecRunner("sh", []string{"-c", "printf %s \"$PGPASSWORD\""}, []string{"PGPASSWORD=secret"})

	err := runner.Run(context.Background(), &sb)
	assert.NoError(err)
	assert.Equal("secret", sb.String())
}

func TestExecRunnerRunFailure(t *testing.T) {
	assert := assert.New(t)

	var sb strings.Builder
	runner := NewExecRunner("sh", []string{"-c", "echo boom >&2; exit 3"}, nil)

	err := runner.Run(context.Background(), &sb)
	assert.Error(err)
	assert.Contains(err.Error(), "boom")
}

func TestExecRunnerRunCancelledContext(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sb strings.Builder
	runner := NewExecRunner("sleep", []string{"10"}, nil)

	err := runner.Run(ctx, &sb)
	assert.Error(err)
}
