package dumper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/liweiyi88/pgbackup/config"
	"github.com/liweiyi88/pgbackup/dumper/dialer"
	"github.com/liweiyi88/pgbackup/dumper/runner"
	"github.com/liweiyi88/pgbackup/fileutil"
)

type PgDump struct {
	credentialFiles []string
	path            string
	options         []string
	viaSsh          bool
	sshHost         string
	sshUser         string
	sshKey          string
	*DBConfig
}

// NewPgDump creates a dumper for one database of the configured server.
func NewPgDump(cfg *config.Config, database string) *PgDump {
	c := cfg.Connection

	return &PgDump{
		path:     "pg_dump",
		options:  cfg.DumpOptions,
		viaSsh:   cfg.ViaSsh(),
		sshHost:  cfg.SshHost,
		sshUser:  cfg.SshUser,
		sshKey:   cfg.SshKey,
		DBConfig: NewDBConfig(database, c.User, c.Password, c.Host, c.Port),
	}
}

func (psql *PgDump) getDumpCommandArgs() []string {
	args := []string{}

	args = append(args, "--host="+psql.Host)
	args = append(args, "--port="+strconv.Itoa(psql.Port))
	args = append(args, "--username="+psql.Username)
	args = append(args, "--dbname="+psql.DBName)
	args = append(args, psql.options...)

	return args
}

// Get the exec dump command.
func (psql *PgDump) getExecDumpCommand() (string, []string, error) {
	pgDumpPath, err := exec.LookPath(psql.path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find pg_dump executable %s %w", psql.path, err)
	}

	return pgDumpPath, psql.getDumpCommandArgs(), nil
}

// Get the required environment variables for running exec dump.
func (psql *PgDump) execDumpEnviron() ([]string, error) {
	pgpassFileName, err := psql.createCredentialFile()
	if err != nil {
		return nil, err
	}

	env := []string{fmt.Sprintf("PGPASSFILE=%s", pgpassFileName)}
	return env, nil
}

// Get the ssh dump command.
func (psql *PgDump) getSshDumpCommand() string {
	return fmt.Sprintf("PGPASSWORD=%s pg_dump %s", psql.Password, strings.Join(psql.getDumpCommandArgs(), " "))
}

// Cleanup the credentials file.
func (psql *PgDump) close() error {
	var err error
	if len(psql.credentialFiles) > 0 {
		for _, filename := range psql.credentialFiles {
			if e := os.Remove(filename); e != nil {
				err = multierror.Append(err, e)
			}
		}

		psql.credentialFiles = nil
	}

	return err
}

// Store the username password in a temp file, and use it with the pg_dump command.
// It avoids exposing credentials as anyone can view the whole command line via ps aux.
func (psql *PgDump) createCredentialFile() (string, error) {
	file, err := os.Create(fileutil.WorkDir() + "/.pgpass" + fileutil.GenerateRandomName(4))
	if err != nil {
		return "", fmt.Errorf("could not create .pgpass file: %v", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("could not close file", slog.Any("file", file.Name()), slog.Any("error", err))
		}
	}()

	contents := fmt.Sprintf("%s:%d:%s:%s:%s", psql.Host, psql.Port, psql.DBName, psql.Username, psql.Password)
	_, err = file.WriteString(contents)
	if err != nil {
		return file.Name(), fmt.Errorf("failed to write credentials to .pgpass file: %w", err)
	}

	if err = os.Chmod(file.Name(), 0600); err != nil {
		slog.Error("could not change file permission", slog.Any("file", file.Name()), slog.Any("error", err))
	}

	psql.credentialFiles = append(psql.credentialFiles, file.Name())

	return file.Name(), nil
}

func (psql *PgDump) Dump(ctx context.Context, writer io.Writer) error {
	defer func() {
		if err := psql.close(); err != nil {
			slog.Error("could not remove pgdump credential files", slog.Any("error", err))
		}
	}()

	if psql.viaSsh {
		ssh := dialer.NewSsh(psql.sshHost, psql.sshKey, psql.sshUser)
		runner := runner.NewSshRunner(ssh, psql.getSshDumpCommand())
		return runner.Run(writer)
	}

	command, args, err := psql.getExecDumpCommand()
	if err != nil {
		return err
	}

	envs, err := psql.execDumpEnviron()
	if err != nil {
		return fmt.Errorf("could not get exec dump environment variables: %v", err)
	}

	runner := runner.NewExecRunner(command, args, envs)
	return runner.Run(ctx, writer)
}
