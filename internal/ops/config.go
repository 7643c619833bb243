package ops

import (
	"os"

	"auditfix/internal/audit"
	"auditfix/internal/obs"
	"auditfix/internal/schema"
	"auditfix/internal/store"
	"auditfix/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

// FileConfig mirrors the JSON config layout. Every key is optional.
type FileConfig struct {
	EntryTypes      []string          `json:"entryTypes"`
	PriorityColumns []string          `json:"priorityColumns"`
	Tags            map[string]string `json:"tags"`
	ProgressEvery   *int              `json:"progressEvery"`
	TopSymbols      *int              `json:"topSymbols"`
	Store           StoreConfig       `json:"store"`
}

// StoreConfig describes the optional PostgreSQL sink. Either dsn or database
// enables it; dsn wins when both are set.
type StoreConfig struct {
	DSN       string            `json:"dsn"`
	Host      string            `json:"host"`
	Port      int               `json:"port"`
	User      string            `json:"user"`
	Password  string            `json:"password"`
	Database  string            `json:"database"`
	SSLMode   string            `json:"sslmode"`
	Params    map[string]string `json:"params"`
	Table     string            `json:"table"`
	BatchSize int               `json:"batchSize"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Decoder    audit.DecoderConfig
	Writer     schema.WriterConfig
	TopSymbols int
	Store      store.Option
}

// StoreEnabled reports whether a database sink was configured.
func (l Loaded) StoreEnabled() bool {
	return l.Store.ConnString != "" || l.Store.Database != ""
}

// Default returns the configuration used when no file is given.
func Default() Loaded {
	return Loaded{
		Decoder:    audit.DefaultDecoderConfig(),
		Writer:     schema.DefaultWriterConfig(),
		TopSymbols: obs.DefaultTopSymbols,
	}
}

// Load reads a JSON config file on top of the defaults. An empty path returns
// the defaults.
func Load(path string) (Loaded, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config").With("path", path)
	}
	var cfg FileConfig
	if err := sonic.ConfigStd.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(exception.ErrInvalidConfig, err.Error()).With("path", path)
	}
	return Resolve(cfg)
}

// Resolve merges a parsed file config into the defaults and validates it.
func Resolve(cfg FileConfig) (Loaded, error) {
	loaded := Default()

	dict, err := loaded.Decoder.Dictionary.Extend(cfg.Tags)
	if err != nil {
		return Loaded{}, err
	}
	loaded.Decoder.Dictionary = dict

	if len(cfg.EntryTypes) > 0 {
		loaded.Decoder.EntryTypes = cfg.EntryTypes
	}
	if cfg.ProgressEvery != nil {
		// 0 turns progress reports off
		loaded.Decoder.ProgressEvery = *cfg.ProgressEvery
		loaded.Decoder.DisableProgress = *cfg.ProgressEvery == 0
	}
	if err := loaded.Decoder.Validate(); err != nil {
		return Loaded{}, err
	}

	if len(cfg.PriorityColumns) > 0 {
		loaded.Writer.PriorityColumns = cfg.PriorityColumns
	}
	if err := loaded.Writer.Validate(); err != nil {
		return Loaded{}, err
	}

	if cfg.TopSymbols != nil {
		if *cfg.TopSymbols < 0 {
			return Loaded{}, errors.Wrap(exception.ErrInvalidConfig, "topSymbols must be >= 0")
		}
		loaded.TopSymbols = *cfg.TopSymbols
	}

	if cfg.Store.BatchSize < 0 {
		return Loaded{}, errors.Wrap(exception.ErrInvalidConfig, "store batchSize must be >= 0")
	}
	if cfg.Store.Port < 0 || cfg.Store.Port > 65535 {
		return Loaded{}, errors.Wrapf(exception.ErrInvalidConfig, "store port %d out of range", cfg.Store.Port)
	}
	loaded.Store = store.Option{
		Host:       cfg.Store.Host,
		Port:       cfg.Store.Port,
		User:       cfg.Store.User,
		Password:   cfg.Store.Password,
		Database:   cfg.Store.Database,
		SSLMode:    cfg.Store.SSLMode,
		Params:     cfg.Store.Params,
		ConnString: cfg.Store.DSN,
		Table:      cfg.Store.Table,
		BatchSize:  cfg.Store.BatchSize,
	}

	return loaded, nil
}
