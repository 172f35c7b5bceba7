// Package config loads the backup configuration from a yaml file,
// filling unset fields from the process environment and finally from
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/liweiyi88/pgbackup/env"
	"github.com/liweiyi88/pgbackup/notifier/slack"
	"github.com/liweiyi88/pgbackup/storage"
	"github.com/liweiyi88/pgbackup/storage/gdrive"
	"github.com/liweiyi88/pgbackup/storage/s3"
	"github.com/liweiyi88/pgbackup/storage/sftp"
)

const (
	DefaultHost      = "localhost"
	DefaultPort      = 5432
	DefaultUser      = "postgres"
	DefaultBaseDir   = "/tmp"
	DefaultTargetDir = "/var/backups/postgres"
	DefaultLogFile   = "/var/log/pg_backup.log"
	DefaultKeep      = 5
)

// Databases that are never dumped unless the exclusion list is overridden.
var DefaultExclude = []string{"postgres", "template0", "template1"}

var (
	ErrInvalidKeep = errors.New("keep count must be greater than zero")
	ErrInvalidPort = errors.New("database port must be between 1 and 65535")
)

type Connection struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type Config struct {
	Connection  Connection `yaml:"connection"`
	BaseDir     string     `yaml:"basedir"`
	TargetDir   string     `yaml:"targetdir"`
	LogFile     string     `yaml:"logfile"`
	Keep        int        `yaml:"keep"`
	Exclude     []string   `yaml:"exclude"`
	SshHost     string     `yaml:"sshhost"`
	SshUser     string     `yaml:"sshuser"`
	SshKey      string     `yaml:"sshkey"`
	DumpOptions []string   `yaml:"options"`
	Storage     struct {
		S3     []*s3.S3         `yaml:"s3"`
		Sftp   []*sftp.Sftp     `yaml:"sftp"`
		GDrive []*gdrive.GDrive `yaml:"gdrive"`
	} `yaml:"storage"`
	Notifier struct {
		Slack []*slack.Slack `yaml:"slack"`
	} `yaml:"notifier"`
}

// Load reads the config file at path. The file itself is mandatory, every
// field in it is optional: unset values fall back to PG* and BACKUP_*
// environment variables and then to defaults.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fail to read config file %s, error: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(content, &config); err != nil {
		return nil, fmt.Errorf("fail to parse config file %s, error: %w", path, err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (config *Config) applyDefaults() {
	if config.Connection.Host == "" {
		config.Connection.Host = env.Lookup(env.PGHOST, DefaultHost)
	}

	if config.Connection.Port == 0 {
		config.Connection.Port = env.LookupInt(env.PGPORT, DefaultPort)
	}

	if config.Connection.User == "" {
		config.Connection.User = env.Lookup(env.PGUSER, DefaultUser)
	}

	if config.Connection.Password == "" {
		config.Connection.Password = os.Getenv(env.PGPASSWORD)
	}

	if config.BaseDir == "" {
		config.BaseDir = env.Lookup(env.BACKUP_BASE_DIR, DefaultBaseDir)
	}

	if config.TargetDir == "" {
		config.TargetDir = env.Lookup(env.BACKUP_TARGET_DIR, DefaultTargetDir)
	}

	if config.LogFile == "" {
		config.LogFile = env.Lookup(env.LOG_FILE, DefaultLogFile)
	}

	if config.Keep == 0 {
		config.Keep = env.LookupInt(env.BACKUP_KEEP, DefaultKeep)
	}

	if config.Exclude == nil {
		config.Exclude = DefaultExclude
	}
}

func (config *Config) Validate() error {
	if config.Keep < 1 {
		return ErrInvalidKeep
	}

	if config.Connection.Port < 1 || config.Connection.Port > 65535 {
		return ErrInvalidPort
	}

	return nil
}

func (config *Config) ViaSsh() bool {
	return config.SshHost != "" && config.SshUser != "" && config.SshKey != ""
}

// Dsn returns the connection string for the maintenance database, which is
// the database the catalog query runs against. User and password are URL
// escaped so reserved characters in credentials survive parsing.
func (config *Config) Dsn() string {
	c := config.Connection

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/postgres",
	}

	return dsn.String()
}

// GetStorages returns all configured offsite storage destinations.
func (config *Config) GetStorages() []storage.Storage {
	var storages []storage.Storage

	v := reflect.ValueOf(config.Storage)
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		switch field.Kind() {
		case reflect.Slice:
			for i := 0; i < field.Len(); i++ {
				s, ok := field.Index(i).Interface().(storage.Storage)
				if ok {
					storages = append(storages, s)
				}
			}
		}
	}

	return storages
}
