package dumper

import (
	"os"
	"strings"
	"testing"

	"github.com/liweiyi88/pgbackup/config"
	"github.com/stretchr/testify/assert"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Connection = config.Connection{
		Host:     "localhost",
		Port:     5432,
		User:     "julianli",
		Password: "julian",
	}

	return cfg
}

func TestNewPgDump(t *testing.T) {
	assert := assert.New(t)

	pgdump := NewPgDump(testConfig(), "mypsqldb")

	assert.Equal("julianli", pgdump.Username)
	assert.Equal("julian", pgdump.Password)
	assert.Equal("localhost", pgdump.Host)
	assert.Equal("mypsqldb", pgdump.DBName)
	assert.Equal(5432, pgdump.Port)
	assert.False(pgdump.viaSsh)
}

func TestGetDumpCommandArgs(t *testing.T) {
	assert := assert.New(t)

	pgdump := NewPgDump(testConfig(), "mypsqldb")

	expect := "--host=localhost --port=5432 --username=julianli --dbname=mypsqldb"
	assert.Equal(expect, strings.Join(pgdump.getDumpCommandArgs(), " "))

	cfg := testConfig()
	cfg.Connection.Host = "example.com"
	cfg.Connection.Port = 8888
	cfg.DumpOptions = []string{"--no-owner"}
	pgdump = NewPgDump(cfg, "mypsqldb")

	expect = "--host=example.com --port=8888 --username=julianli --dbname=mypsqldb --no-owner"
	assert.Equal(expect, strings.Join(pgdump.getDumpCommandArgs(), " "))
}

func TestGetSshDumpCommand(t *testing.T) {
	assert := assert.New(t)

	cfg := testConfig()
	cfg.SshHost = "ssh"
	cfg.SshUser = "user"
	cfg.SshKey = "key"

	pgdump := NewPgDump(cfg, "mypsqldb")
	assert.True(pgdump.viaSsh)

	expect := "PGPASSWORD=julian pg_dump --host=localhost --port=5432 --username=julianli --dbname=mypsqldb"
	assert.Equal(expect, pgdump.getSshDumpCommand())
}

func TestExecDumpEnviron(t *testing.T) {
	assert := assert.New(t)

	pgdump := NewPgDump(testConfig(), "mypsqldb")
	defer pgdump.close()

	envs, err := pgdump.execDumpEnviron()
	assert.Nil(err)
	assert.Len(envs, 1)
	assert.True(strings.HasPrefix(envs[0], "PGPASSFILE="))

	filename := strings.TrimPrefix(envs[0], "PGPASSFILE=")
	content, err := os.ReadFile(filename)
	assert.Nil(err)
	assert.Equal("localhost:5432:mypsqldb:julianli:julian", string(content))
}

func TestCredentialFileCleanup(t *testing.T) {
	assert := assert.New(t)

	pgdump := NewPgDump(testConfig(), "mypsqldb")

	filename, err := pgdump.createCredentialFile()
	assert.Nil(err)

	assert.Nil(pgdump.close())

	_, err = os.Stat(filename)
	assert.True(os.IsNotExist(err))

	// close is idempotent once the credential files are removed
	assert.Nil(pgdump.close())
}
