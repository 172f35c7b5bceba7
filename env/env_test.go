package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	assert := assert.New(t)

	t.Setenv(PGHOST, "db.internal")
	assert.Equal("db.internal", Lookup(PGHOST, "localhost"))

	t.Setenv(PGHOST, "")
	assert.Equal("localhost", Lookup(PGHOST, "localhost"))
}

func TestLookupInt(t *testing.T) {
	assert := assert.New(t)

	t.Setenv(BACKUP_KEEP, "7")
	assert.Equal(7, LookupInt(BACKUP_KEEP, 5))

	t.Setenv(BACKUP_KEEP, "")
	assert.Equal(5, LookupInt(BACKUP_KEEP, 5))

	t.Setenv(BACKUP_KEEP, "not-a-number")
	assert.Equal(5, LookupInt(BACKUP_KEEP, 5))
}
