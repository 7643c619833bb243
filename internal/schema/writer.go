package schema

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"auditfix/internal/audit"
	"auditfix/pkg/exception"

	"github.com/dustin/go-humanize"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const defaultBufferSize = 256 * 1024

// WriterConfig controls csv output.
type WriterConfig struct {
	PriorityColumns []string
	BufferSize      int
}

// DefaultWriterConfig returns the baseline configuration for the csv writer.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		PriorityColumns: DefaultPriorityColumns(),
		BufferSize:      defaultBufferSize,
	}
}

func (c WriterConfig) withDefaults() WriterConfig {
	if c.PriorityColumns == nil {
		c.PriorityColumns = DefaultPriorityColumns()
	}
	if c.BufferSize == 0 {
		c.BufferSize = defaultBufferSize
	}
	return c
}

// Validate checks if the configuration is usable.
func (c WriterConfig) Validate() error {
	if c.BufferSize <= 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "BufferSize must be > 0")
	}
	for _, name := range c.PriorityColumns {
		if name == "" {
			return errors.Wrap(exception.ErrInvalidConfig, "PriorityColumns contains an empty name")
		}
	}
	return nil
}

// Result describes a finished write.
type Result struct {
	Path    string
	Rows    int
	Columns []string
}

// Writer serializes records as csv with a unified header.
type Writer struct {
	cfg WriterConfig
}

// NewWriter validates the config and creates a writer.
func NewWriter(cfg WriterConfig) (*Writer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Writer{cfg: cfg}, nil
}

// Columns returns the column order the writer uses for records.
func (w *Writer) Columns(records []audit.Record) []string {
	return Columns(records, w.cfg.PriorityColumns)
}

// Write emits the header and one row per record. Fields a record lacks are
// written as empty cells.
func (w *Writer) Write(dst io.Writer, records []audit.Record) ([]string, error) {
	columns := w.Columns(records)

	cw := csv.NewWriter(dst)
	cw.UseCRLF = true
	if err := cw.Write(columns); err != nil {
		return nil, errors.Wrap(err, "write header")
	}

	row := make([]string, len(columns))
	for i, record := range records {
		for j, name := range columns {
			row[j] = record[name]
		}
		if err := cw.Write(row); err != nil {
			return nil, errors.Wrap(err, "write row").With("row", i)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, errors.Wrap(err, "flush csv")
	}
	return columns, nil
}

// WriteFile writes records to path. The file appears only once it is
// complete. An empty record set writes nothing and returns a zero Result.
func (w *Writer) WriteFile(path string, records []audit.Record) (Result, error) {
	if len(records) == 0 {
		logs.Info("no records to write!")
		return Result{}, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, errors.Wrap(err, "create output dir").With("dir", dir)
	}

	logs.Infof("writing %s records to: %s", humanize.Comma(int64(len(records))), path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.partial")
	if err != nil {
		return Result{}, errors.Wrap(err, "create output").With("path", path)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	buf := bufio.NewWriterSize(tmp, w.cfg.BufferSize)
	columns, err := w.Write(buf, records)
	if err != nil {
		cleanup()
		return Result{}, err
	}
	if err := buf.Flush(); err != nil {
		cleanup()
		return Result{}, errors.Wrap(err, "flush output")
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return Result{}, errors.Wrap(err, "sync output")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return Result{}, errors.Wrap(err, "close output")
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return Result{}, errors.Wrap(err, "chmod output")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return Result{}, errors.Wrap(err, "rename output").With("path", path)
	}

	logs.Infof("columns: %d", len(columns))
	logs.Infof("successfully written to %s", path)
	return Result{Path: path, Rows: len(records), Columns: columns}, nil
}
