package storage

import "io"

// Storage saves the content of reader under filename at the storage destination.
type Storage interface {
	Save(reader io.Reader, filename string) error
}
