package runner

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/liweiyi88/pgbackup/dumper/dialer"
)

type SshRunner struct {
	ssh     *dialer.Ssh
	command string
}

func NewSshRunner(ssh *dialer.Ssh, command string) *SshRunner {
	return &SshRunner{
		ssh:     ssh,
		command: command,
	}
}

func (runner *SshRunner) Run(writer io.Writer) error {
	client, err := runner.ssh.CreateSshClient()
	if err != nil {
		return fmt.Errorf("failed to dial remote server via ssh: %w", err)
	}

	defer func() {
		// Do not need to call session.Close() here as it will only give EOF error.
		if err := client.Close(); err != nil {
			slog.Error("failed to close ssh client", slog.Any("error", err))
		}
	}()

	sshSession, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to start ssh session: %w", err)
	}

	var remoteErr bytes.Buffer

	sshSession.Stderr = &remoteErr
	sshSession.Stdout = writer

	if err := sshSession.Run(runner.command); err != nil {
		return fmt.Errorf("remote command error: %s, %v", remoteErr.String(), err)
	}

	return nil
}
