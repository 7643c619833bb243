package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"auditfix/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/pkg/sys"
)

const sampleTrail = `<?xml version="1.0" encoding="UTF-8"?>
<AuditTrail>
  <Entry type="PlaceOrder" msgId="M0">
    <field tag="55" val="AAPL"/>
    <field tag="54" val="1"/>
    <field tag="40" val="2"/>
    <field tag="38" val="100"/>
    <field tag="44" val="187.25"/>
    <field tag="11" val="C-1"/>
  </Entry>
  <Entry type="PendingNew" msgId="P0">
    <field tag="55" val="AAPL"/>
    <field tag="7777" val="never"/>
  </Entry>
  <Entry type="Filled" msgId="M1">
    <field tag="55" val="AAPL"/>
    <field tag="54" val="1"/>
    <field tag="39" val="2"/>
    <field tag="52" val="20260130-09:30:00"/>
  </Entry>
</AuditTrail>
`

func writeTrail(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.tmp")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDecodeFile(t *testing.T) {
	dec, err := NewDecoder(DecoderConfig{})
	require.NoError(t, err)

	records, progress, err := dec.DecodeFile(context.Background(), writeTrail(t, sampleTrail))
	require.NoError(t, err)

	assert.Equal(t, Progress{EntriesSeen: 3, RecordsKept: 2}, progress)
	require.Len(t, records, 2)
	assert.Equal(t, "PlaceOrder", records[0][FieldEntryType])
	assert.Equal(t, "Limit", records[0][FieldOrdTypeDesc])

	assert.Equal(t, "Filled", records[1][FieldEntryType])
	assert.Equal(t, "M1", records[1][FieldMsgID])
	assert.Equal(t, "AAPL", records[1][FieldSymbol])
	assert.Equal(t, "Buy", records[1][FieldSideDesc])
	assert.Equal(t, "Filled", records[1][FieldOrdStatusDesc])
	assert.Equal(t, "2026-01-30 09:30:00", records[1][FieldSendingTime])

	for _, r := range records {
		_, has := r["Tag_7777"]
		assert.False(t, has, "dropped entry leaked a field")
	}
}

func TestDecodeFileNotFound(t *testing.T) {
	dec, err := NewDecoder(DefaultDecoderConfig())
	require.NoError(t, err)

	_, _, err = dec.DecodeFile(context.Background(), filepath.Join(t.TempDir(), "missing.tmp"))
	assert.ErrorIs(t, err, exception.ErrInputNotFound)

	_, _, err = dec.DecodeFile(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, exception.ErrInputNotFound)
}

func TestDecodeFileMalformed(t *testing.T) {
	dec, err := NewDecoder(DefaultDecoderConfig())
	require.NoError(t, err)

	records, _, err := dec.DecodeFile(context.Background(), writeTrail(t, `<AuditTrail><Entry type="Filled">`))
	assert.ErrorIs(t, err, exception.ErrMalformedXML)
	assert.Nil(t, records)
}

func TestDecodeCanceled(t *testing.T) {
	dec, err := NewDecoder(DefaultDecoderConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records, _, err := dec.Decode(ctx, strings.NewReader(sampleTrail))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, records)
}

func TestDecodeProgressCadence(t *testing.T) {
	var reports []Progress
	dec, err := NewDecoder(DecoderConfig{
		ProgressEvery: 4,
		OnProgress: func(p Progress) {
			reports = append(reports, p)
		},
	})
	require.NoError(t, err)

	// 10 entries, odd ones irrelevant
	var sb strings.Builder
	sb.WriteString("<Log>")
	for i := 0; i < 10; i++ {
		entryType := "Filled"
		if i%2 == 1 {
			entryType = "Heartbeat"
		}
		fmt.Fprintf(&sb, `<Entry type="%s" msgId="%d"/>`, entryType, i)
	}
	sb.WriteString("</Log>")

	records, progress, err := dec.Decode(context.Background(), strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Len(t, records, 5)
	assert.Equal(t, Progress{EntriesSeen: 10, RecordsKept: 5}, progress)
	assert.Equal(t, []Progress{
		{EntriesSeen: 4, RecordsKept: 2},
		{EntriesSeen: 8, RecordsKept: 4},
	}, reports)
}

func TestDecodeProgressDisabled(t *testing.T) {
	calls := 0
	dec, err := NewDecoder(DecoderConfig{
		ProgressEvery:   1,
		DisableProgress: true,
		OnProgress:      func(Progress) { calls++ },
	})
	require.NoError(t, err)

	_, progress, err := dec.Decode(context.Background(), strings.NewReader(sampleTrail))
	require.NoError(t, err)
	assert.NotZero(t, progress.EntriesSeen)
	assert.Zero(t, calls)

	// a zero cadence still resolves to the default
	dec, err = NewDecoder(DecoderConfig{DisableProgress: true})
	require.NoError(t, err)
	assert.Equal(t, DefaultProgressEvery, dec.cfg.ProgressEvery)
}

func TestDecoderConfigValidate(t *testing.T) {
	_, err := NewDecoder(DecoderConfig{ProgressEvery: -1})
	assert.ErrorIs(t, err, exception.ErrInvalidConfig)

	_, err = NewDecoder(DecoderConfig{EntryTypes: []string{"Filled", ""}})
	assert.ErrorIs(t, err, exception.ErrInvalidConfig)
}

func TestDecodeIrrelevantOnlyMemory(t *testing.T) {
	const entries = 20000
	var sb strings.Builder
	sb.WriteString("<Log>")
	for i := 0; i < entries; i++ {
		fmt.Fprintf(&sb, `<Entry type="Heartbeat" msgId="%d"><field tag="58" val="%s"/></Entry>`, i, strings.Repeat("x", 64))
	}
	sb.WriteString("</Log>")
	doc := sb.String()

	liveHeap := func() uint64 {
		runtime.GC()
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return ms.HeapAlloc
	}

	var peak uint64
	dec, err := NewDecoder(DecoderConfig{
		ProgressEvery: 2000,
		OnProgress: func(Progress) {
			if h := liveHeap(); h > peak {
				peak = h
			}
		},
	})
	require.NoError(t, err)

	base := liveHeap()
	records, progress, err := dec.Decode(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, entries, progress.EntriesSeen)

	// live heap stays flat while entries stream by, far below the document size
	require.NotZero(t, peak)
	assert.Less(t, peak, base+uint64(len(doc))/2, "base=%d peak=%d doc=%d", base, peak, len(doc))

	quiet, err := NewDecoder(DecoderConfig{OnProgress: func(Progress) {}})
	require.NoError(t, err)
	allocs, bytes := sys.MeasureMem(func() {
		_, _, _ = quiet.Decode(context.Background(), strings.NewReader(doc))
	})
	assert.Less(t, bytes/entries, int64(8<<10), "allocated bytes per entry")
	t.Logf("allocs/entry: %d, bytes/entry: %d", allocs/entries, bytes/entries)
}

func BenchmarkDecode(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("<Log>")
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&sb, `<Entry type="Filled" msgId="%d"><field tag="55" val="AAPL"/><field tag="54" val="1"/><field tag="39" val="2"/><field tag="52" val="20260130-09:30:00"/></Entry>`, i)
	}
	sb.WriteString("</Log>")
	doc := sb.String()

	dec, err := NewDecoder(DecoderConfig{OnProgress: func(Progress) {}})
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		if _, _, err := dec.Decode(context.Background(), strings.NewReader(doc)); err != nil {
			b.Fatal(err)
		}
	}
}
