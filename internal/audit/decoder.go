package audit

import (
	"context"
	"io"
	"os"

	"auditfix/pkg/exception"

	"github.com/dustin/go-humanize"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// DefaultProgressEvery is the number of entries seen between progress reports.
const DefaultProgressEvery = 10000

// Progress counts entries read so far and how many of them became records.
type Progress struct {
	EntriesSeen int
	RecordsKept int
}

// DecoderConfig controls file decoding.
type DecoderConfig struct {
	Dictionary *Dictionary
	EntryTypes []string
	// ProgressEvery is the report cadence in entries; zero means
	// DefaultProgressEvery. Use DisableProgress to turn reports off.
	ProgressEvery   int
	DisableProgress bool
	// OnProgress is called every ProgressEvery entries. Defaults to a log line.
	OnProgress func(Progress)
}

// DefaultDecoderConfig returns the baseline decoding configuration.
func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		Dictionary:    DefaultDictionary(),
		EntryTypes:    DefaultEntryTypes(),
		ProgressEvery: DefaultProgressEvery,
		OnProgress:    logProgress,
	}
}

func (c DecoderConfig) withDefaults() DecoderConfig {
	if c.Dictionary == nil {
		c.Dictionary = DefaultDictionary()
	}
	if len(c.EntryTypes) == 0 {
		c.EntryTypes = DefaultEntryTypes()
	}
	if c.ProgressEvery == 0 {
		c.ProgressEvery = DefaultProgressEvery
	}
	if c.OnProgress == nil {
		c.OnProgress = logProgress
	}
	return c
}

// Validate checks if the configuration is usable.
func (c DecoderConfig) Validate() error {
	if c.ProgressEvery < 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "ProgressEvery must be >= 0")
	}
	for _, t := range c.EntryTypes {
		if t == "" {
			return errors.Wrap(exception.ErrInvalidConfig, "EntryTypes contains an empty type")
		}
	}
	return nil
}

// Decoder turns an audit trail document into records, in file order.
type Decoder struct {
	cfg        DecoderConfig
	normalizer *Normalizer
}

// NewDecoder validates the config and creates a decoder.
func NewDecoder(cfg DecoderConfig) (*Decoder, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{
		cfg:        cfg,
		normalizer: NewNormalizer(cfg.Dictionary, cfg.EntryTypes),
	}, nil
}

// DecodeFile decodes the audit trail at path. A missing file or a document
// that is not well-formed fails the whole decode; nothing partial is returned.
func (d *Decoder) DecodeFile(ctx context.Context, path string) ([]Record, Progress, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Progress{}, errors.Wrap(exception.ErrInputNotFound, path)
		}
		return nil, Progress{}, errors.Wrap(err, "stat input").With("path", path)
	}
	if info.IsDir() {
		return nil, Progress{}, errors.Wrap(exception.ErrInputNotFound, path+" is a directory")
	}

	logs.Infof("parsing audit file: %s", path)
	logs.Infof("file size: %.2f MB", float64(info.Size())/(1024*1024))

	file, err := os.Open(path)
	if err != nil {
		return nil, Progress{}, errors.Wrap(err, "open input").With("path", path)
	}
	defer file.Close()

	records, progress, err := d.Decode(ctx, file)
	if err != nil {
		return nil, progress, errors.Wrapf(err, "decode %s", path)
	}

	logs.Infof("completed: processed %s total entries", humanize.Comma(int64(progress.EntriesSeen)))
	logs.Infof("extracted %s relevant records", humanize.Comma(int64(progress.RecordsKept)))
	return records, progress, nil
}

// Decode reads every entry from r. The context is checked between entries.
func (d *Decoder) Decode(ctx context.Context, r io.Reader) ([]Record, Progress, error) {
	var (
		records  []Record
		progress Progress
		reader   = NewReader(r)
	)

	for {
		select {
		case <-ctx.Done():
			return nil, progress, ctx.Err()
		default:
		}

		entry, err := reader.Next()
		if err != nil {
			if err == io.EOF {
				return records, progress, nil
			}
			return nil, progress, errors.Wrap(err, "read entry").With("entries_seen", progress.EntriesSeen)
		}

		progress.EntriesSeen++
		if record, ok := d.normalizer.Normalize(entry); ok {
			records = append(records, record)
			progress.RecordsKept++
		}

		if !d.cfg.DisableProgress && progress.EntriesSeen%d.cfg.ProgressEvery == 0 {
			d.cfg.OnProgress(progress)
		}
	}
}

func logProgress(p Progress) {
	logs.Infof("processed %s entries, extracted %s records...",
		humanize.Comma(int64(p.EntriesSeen)), humanize.Comma(int64(p.RecordsKept)))
}
