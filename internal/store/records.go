package store

import (
	"context"
	"time"

	"auditfix/internal/audit"
	"auditfix/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"
)

// AuditRecord is one decoded record as stored in the database. Fields holds
// the full record as a JSON object with sorted keys.
type AuditRecord struct {
	ID        uint64 `gorm:"primaryKey"`
	Run       string `gorm:"size:255;index"`
	Seq       int
	EntryType string `gorm:"size:64;index"`
	MsgID     string `gorm:"size:128"`
	Symbol    string `gorm:"size:64;index"`
	Fields    string `gorm:"type:text"`
	CreatedAt time.Time
}

// Store persists decoded records.
type Store struct {
	opt Option
	db  *gorm.DB
}

// New connects to PostgreSQL and makes sure the record table exists.
func New(option Option) (*Store, error) {
	option = option.withDefaults()
	if err := option.Validate(); err != nil {
		return nil, err
	}
	db, err := open(option)
	if err != nil {
		return nil, err
	}
	if err := db.Table(option.Table).AutoMigrate(&AuditRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrate").With("table", option.Table)
	}
	return &Store{opt: option, db: db}, nil
}

// DB returns the underlying gorm.DB instance.
func (s *Store) DB() *gorm.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRecords inserts records in file order under a run name, in batches.
func (s *Store) SaveRecords(ctx context.Context, run string, records []audit.Record) (int, error) {
	if s == nil || s.db == nil {
		return 0, exception.ErrNilStore
	}
	if len(records) == 0 {
		return 0, nil
	}
	rows, err := ToRows(run, records)
	if err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Table(s.opt.Table).CreateInBatches(rows, s.opt.BatchSize)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "insert records").With("table", s.opt.Table).With("run", run)
	}
	logs.Infof("stored %d records in %s (run %s)", result.RowsAffected, s.opt.Table, run)
	return int(result.RowsAffected), nil
}

// ToRows converts records to table rows. Seq is the record's position in the file.
func ToRows(run string, records []audit.Record) ([]AuditRecord, error) {
	rows := make([]AuditRecord, 0, len(records))
	for i, r := range records {
		fields, err := sonic.ConfigStd.MarshalToString(map[string]string(r))
		if err != nil {
			return nil, errors.Wrap(err, "marshal record").With("seq", i)
		}
		rows = append(rows, AuditRecord{
			Run:       run,
			Seq:       i,
			EntryType: r[audit.FieldEntryType],
			MsgID:     r[audit.FieldMsgID],
			Symbol:    r[audit.FieldSymbol],
			Fields:    fields,
		})
	}
	return rows, nil
}
