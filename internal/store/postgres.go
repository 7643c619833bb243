package store

import (
	"fmt"
	"net/url"

	"auditfix/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultPostgresHost    = "localhost"
	defaultPostgresPort    = 5432
	defaultPostgresSSLMode = "disable"

	DefaultTable     = "audit_records"
	DefaultBatchSize = 1000
)

// Option defines where decoded records are stored.
type Option struct {
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	SSLMode    string
	Params     map[string]string
	ConnString string

	Table     string
	BatchSize int
	Config    *gorm.Config
}

func (opt Option) withDefaults() Option {
	if opt.Table == "" {
		opt.Table = DefaultTable
	}
	if opt.BatchSize == 0 {
		opt.BatchSize = DefaultBatchSize
	}
	if opt.Config == nil {
		opt.Config = &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	}
	return opt
}

// Validate checks if the options can produce a connection.
func (opt Option) Validate() error {
	if opt.ConnString == "" && opt.Database == "" {
		return exception.ErrEmptyStoreDSN
	}
	if opt.BatchSize <= 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "store BatchSize must be > 0")
	}
	if opt.Port < 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "store Port must be >= 0")
	}
	return nil
}

// DSN returns the connection string: ConnString as given, or a postgres URL
// built from the individual fields.
func (opt Option) DSN() string {
	if opt.ConnString != "" {
		return opt.ConnString
	}
	return opt.url().String()
}

// Target is DSN with the password masked, for logs.
func (opt Option) Target() string {
	if opt.ConnString == "" {
		return opt.url().Redacted()
	}
	if u, err := url.Parse(opt.ConnString); err == nil && u.Scheme != "" {
		return u.Redacted()
	}
	return "postgres (conn string)"
}

func (opt Option) url() *url.URL {
	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", valueOr(opt.Host, defaultPostgresHost), valueOr(opt.Port, defaultPostgresPort)),
	}
	switch {
	case opt.User != "" && opt.Password != "":
		u.User = url.UserPassword(opt.User, opt.Password)
	case opt.User != "":
		u.User = url.User(opt.User)
	}
	if opt.Database != "" {
		u.Path = "/" + opt.Database
	}

	query := make(url.Values, len(opt.Params)+1)
	for key, value := range opt.Params {
		if key != "" {
			query.Set(key, value)
		}
	}
	query.Set("sslmode", valueOr(opt.SSLMode, defaultPostgresSSLMode))
	u.RawQuery = query.Encode()
	return u
}

func valueOr[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}

func open(opt Option) (*gorm.DB, error) {
	logs.Infof("connecting store: %s", opt.Target())
	db, err := gorm.Open(postgres.Open(opt.DSN()), opt.Config)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres").With("target", opt.Target())
	}
	return db, nil
}
