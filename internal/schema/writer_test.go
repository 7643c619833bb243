package schema

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"auditfix/internal/audit"
	"auditfix/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMissingFieldsAreBlank(t *testing.T) {
	w, err := NewWriter(DefaultWriterConfig())
	require.NoError(t, err)

	records := []audit.Record{
		{"EntryType": "PlaceOrder", "MsgId": "M0", "Symbol": "AAPL", "Price": "187.25"},
		{"EntryType": "Filled", "MsgId": "M1", "LastPx": "187.20"},
		{"EntryType": "Acknowledged", "MsgId": ""},
	}

	var buf bytes.Buffer
	columns, err := w.Write(&buf, records)
	require.NoError(t, err)
	assert.Equal(t, []string{"EntryType", "Symbol", "Price", "LastPx", "MsgId"}, columns)

	assert.Equal(t,
		"EntryType,Symbol,Price,LastPx,MsgId\r\n"+
			"PlaceOrder,AAPL,187.25,,M0\r\n"+
			"Filled,,,187.20,M1\r\n"+
			"Acknowledged,,,,\r\n",
		buf.String())
}

func TestWriteQuoting(t *testing.T) {
	w, err := NewWriter(WriterConfig{})
	require.NoError(t, err)

	records := []audit.Record{
		{"EntryType": "Rejected", "MsgId": "R1", "Tag_58": `price, "too" low`},
	}

	var buf bytes.Buffer
	_, err = w.Write(&buf, records)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Rejected", "R1", `price, "too" low`}, rows[1])
}

func TestWriteFile(t *testing.T) {
	w, err := NewWriter(DefaultWriterConfig())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "out", "2026-01-30.csv")
	records := []audit.Record{
		{"EntryType": "Filled", "MsgId": "M1", "Symbol": "AAPL", "SideDesc": "Buy"},
	}

	result, err := w.WriteFile(path, records)
	require.NoError(t, err)
	assert.Equal(t, path, result.Path)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, []string{"EntryType", "Symbol", "SideDesc", "MsgId"}, result.Columns)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "EntryType,Symbol,SideDesc,MsgId\r\nFilled,AAPL,Buy,M1\r\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteFileIdempotent(t *testing.T) {
	w, err := NewWriter(DefaultWriterConfig())
	require.NoError(t, err)

	records := []audit.Record{
		{"EntryType": "Filled", "MsgId": "M1", "b": "1", "a": "2", "Tag_9": "3"},
		{"EntryType": "Canceled", "MsgId": "M2", "c": "4", "OrderID": "5"},
	}

	dir := t.TempDir()
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")
	_, err = w.WriteFile(first, records)
	require.NoError(t, err)
	_, err = w.WriteFile(second, records)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWriteFileEmpty(t *testing.T) {
	w, err := NewWriter(DefaultWriterConfig())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "empty.csv")
	result, err := w.WriteFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriterConfigValidate(t *testing.T) {
	_, err := NewWriter(WriterConfig{BufferSize: -1})
	assert.ErrorIs(t, err, exception.ErrInvalidConfig)

	_, err = NewWriter(WriterConfig{PriorityColumns: []string{"EntryType", ""}})
	assert.ErrorIs(t, err, exception.ErrInvalidConfig)
}
