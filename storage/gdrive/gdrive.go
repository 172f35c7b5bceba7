package gdrive

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	drive "google.golang.org/api/drive/v3"
)

type GDrive struct {
	// email of your google cloud service account
	Email string `yaml:"email" json:"client_email,omitempty"`
	// private key of your google cloud service account
	PrivateKey string `yaml:"privatekey" json:"private_key,omitempty"`
	FolderId   string `yaml:"folderid"`
}

func (gdrive *GDrive) Save(reader io.Reader, filename string) error {
	conf := &jwt.Config{
		Email:      gdrive.Email,
		PrivateKey: []byte(gdrive.PrivateKey),
		Scopes: []string{
			drive.DriveScope,
		},
		TokenURL: google.JWTTokenURL,
	}

	client := conf.Client(context.Background())

	driveClient, err := drive.New(client)
	if err != nil {
		return fmt.Errorf("could not create drive client error: %v", err)
	}

	driveFile := &drive.File{Name: filename}

	if gdrive.FolderId != "" {
		driveFile.Parents = []string{gdrive.FolderId}
	}

	_, err = driveClient.Files.Create(driveFile).Media(reader).Do()

	if err != nil {
		return fmt.Errorf("failed to upload archive to google drive: %v", err)
	}

	return nil
}
