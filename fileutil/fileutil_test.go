package fileutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkDir(t *testing.T) {
	assert := assert.New(t)

	workDir, err := os.Getwd()
	assert.NoError(err)
	assert.Equal(workDir, WorkDir())
}

func TestGenerateRandomName(t *testing.T) {
	assert := assert.New(t)

	name := GenerateRandomName(8)
	assert.Len(name, 8)

	another := GenerateRandomName(8)
	assert.NotEqual(name, another)
}
