package sftp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/liweiyi88/pgbackup/testutils"
	"github.com/stretchr/testify/assert"
)

func TestNewSftp(t *testing.T) {
	assert := assert.New(t)

	sf := NewSftp(3, "/backups", "127.0.0.1:2022", "root", "key")

	assert.Equal(3, sf.MaxAttempts)
	assert.Equal("/backups", sf.Path)
	assert.Equal("127.0.0.1:2022", sf.SshHost)
	assert.Equal("root", sf.SshUser)
	assert.Equal("key", sf.SshKey)
}

func TestSaveNotRetryableOnBadKey(t *testing.T) {
	assert := assert.New(t)

	sf := NewSftp(1, t.TempDir(), "127.0.0.1:2022", "root", "not a private key")

	err := sf.Save(strings.NewReader("archive content"), "pg_backup_20240102_150405.tar.gz")
	assert.Error(err)
	assert.False(sf.Result.OK)
}

func TestSave(t *testing.T) {
	assert := assert.New(t)

	destDir := t.TempDir()
	finishCh := make(chan struct{}, 1)

	onReady := func(privateKey string) {
		sf := NewSftp(1, destDir, "127.0.0.1:20012", "root", privateKey)

		err := sf.Save(strings.NewReader("archive content"), "pg_backup_20240102_150405.tar.gz")
		assert.NoError(err)
		assert.True(sf.Result.OK)
		assert.Equal(int64(len("archive content")), sf.Result.Written)

		content, err := os.ReadFile(filepath.Join(destDir, "pg_backup_20240102_150405.tar.gz"))
		assert.NoError(err)
		assert.Equal("archive content", string(content))

		finishCh <- struct{}{}
	}

	err := testutils.StartSftpServer("127.0.0.1:20012", 1, onReady)
	assert.NoError(err)
	<-finishCh
}
