package testutils

import (
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type fileLister struct {
	files []os.FileInfo
}

func (fl *fileLister) ListAt(list []os.FileInfo, offset int64) (int, error) {
	start := offset
	if start >= int64(len(fl.files)) {
		return 0, nil
	}

	end := min(start+int64(len(list)), int64(len(fl.files)))

	copy(list, fl.files[start:end])

	return int(end - start), nil
}

type SftpHandler struct{}

func (sh *SftpHandler) Filelist(req *sftp.Request) (sftp.ListerAt, error) {
	path := req.Filepath

	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if fileInfo.IsDir() {
		return &fileLister{files: []os.FileInfo{fileInfo}}, nil
	}

	files, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return &fileLister{files: []os.FileInfo{fileInfo}}, nil
	}

	var fileInfoList []os.FileInfo
	for _, file := range files {
		info, err := file.Info()
		if err != nil {
			return nil, err
		}
		fileInfoList = append(fileInfoList, info)
	}

	return &fileLister{files: fileInfoList}, nil
}

func (sh *SftpHandler) Filewrite(req *sftp.Request) (io.WriterAt, error) {
	file, err := os.Create(req.Filepath)
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (sh *SftpHandler) Fileread(req *sftp.Request) (io.ReaderAt, error) {
	file, err := os.Open(req.Filepath)
	if err != nil {
		return nil, err
	}

	return file, nil
}

// StartSftpServer serves numberOfRequests sftp client connections on address.
// It generates its own host key and passes a matching client private key to
// onReady once the listener is accepting connections.
func StartSftpServer(address string, numberOfRequests int, onReady func(privateKey string)) error {
	privateKey, err := GenerateRSAPrivateKey()
	if err != nil {
		return err
	}

	sshConfig := &ssh.ServerConfig{
		PublicKeyCallback: func(c ssh.ConnMetadata, pubKey ssh.PublicKey) (*ssh.Permissions, error) {
			return &ssh.Permissions{
				Extensions: map[string]string{
					"pubkey-fp": ssh.FingerprintSHA256(pubKey),
				},
			}, nil
		},
	}

	private, err := ssh.ParsePrivateKey([]byte(privateKey))
	if err != nil {
		return err
	}

	sshConfig.AddHostKey(private)
	listener, err := net.Listen("tcp", address)

	if err != nil {
		return err
	}

	defer func() {
		if err = listener.Close(); err != nil {
			slog.Error("fail to close listener", slog.Any("error", err))
		}
	}()

	go func() {
		onReady(privateKey)
	}()

	for range numberOfRequests {
		nConn, err := listener.Accept()
		if err != nil {
			return err
		}

		conn, chans, reqs, err := ssh.NewServerConn(nConn, sshConfig)
		if err != nil {
			return err
		}

		slog.Debug("SSH logged in", slog.Any("key", conn.Permissions.Extensions["pubkey-fp"]))

		go ssh.DiscardRequests(reqs)

		for newChannel := range chans {
			if newChannel.ChannelType() != "session" {
				newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
				continue
			}

			channel, requests, err := newChannel.Accept()
			if err != nil {
				return err
			}

			go func() {
				defer func() {
					if err = channel.Close(); err != nil {
						slog.Error("fail to close ssh channel", slog.Any("error", err))
					}
				}()

				HandleSftpRequests(requests, channel)
			}()
		}
	}

	return nil
}

func HandleSftpRequests(requests <-chan *ssh.Request, channel ssh.Channel) {
	for req := range requests {
		if req.Type == "subsystem" && string(req.Payload[4:]) == "sftp" {
			req.Reply(true, nil)

			server := sftp.NewRequestServer(channel, sftp.Handlers{
				FileGet:  &SftpHandler{},
				FilePut:  &SftpHandler{},
				FileList: &SftpHandler{},
			})

			if err := server.Serve(); err != nil && err != io.EOF {
				slog.Error("SFTP server exited with error", slog.Any("error", err))
			}

			return
		}

		req.Reply(false, nil)
	}
}
