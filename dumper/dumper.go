package dumper

import (
	"context"
	"io"
)

// Dumper produces the logical dump of a single database.
type Dumper interface {
	Dump(ctx context.Context, writer io.Writer) error
}

type DBConfig struct {
	DBName   string
	Username string
	Password string
	Host     string
	Port     int
}

func NewDBConfig(dbName, user, password, host string, port int) *DBConfig {
	return &DBConfig{
		DBName:   dbName,
		Username: user,
		Password: password,
		Host:     host,
		Port:     port,
	}
}
