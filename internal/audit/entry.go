package audit

import (
	"auditfix/internal/model/enum"
)

// Entry types kept by default. Everything else in the audit trail is dropped.
const (
	EntryPlaceOrder      = "PlaceOrder"
	EntryFilled          = "Filled"
	EntryPartiallyFilled = "PartiallyFilled"
	EntryCanceled        = "Canceled"
	EntryRejected        = "Rejected"
	EntryAcknowledged    = "Acknowledged"
)

// DefaultEntryTypes returns the default relevance allow-list.
func DefaultEntryTypes() []string {
	return []string{
		EntryPlaceOrder,
		EntryFilled,
		EntryPartiallyFilled,
		EntryCanceled,
		EntryRejected,
		EntryAcknowledged,
	}
}

// FieldPair is a single tag/value pair of an entry, both in wire form.
type FieldPair struct {
	Tag   string
	Value string
}

// RawEntry is one logged event before normalization.
type RawEntry struct {
	Type   string
	MsgID  string
	Fields []FieldPair
}

// Record maps field names to values. It always holds EntryType and MsgId.
type Record map[string]string

// Get returns the value of a field and whether the record has it.
func (r Record) Get(name string) (string, bool) {
	v, ok := r[name]
	return v, ok
}

var _describedFields = []struct {
	source string
	target string
	domain enum.Domain
}{
	{FieldOrdStatus, FieldOrdStatusDesc, enum.DomainOrdStatus},
	{FieldSide, FieldSideDesc, enum.DomainSide},
	{FieldOrdType, FieldOrdTypeDesc, enum.DomainOrdType},
}

var _timestampFields = []string{FieldSendingTime, FieldTransactTime}

// Normalizer maps raw entries to records.
type Normalizer struct {
	dict     *Dictionary
	relevant map[string]struct{}
}

// NewNormalizer creates a normalizer. A nil dictionary means the built-in one
// and an empty allow-list means DefaultEntryTypes.
func NewNormalizer(dict *Dictionary, entryTypes []string) *Normalizer {
	if dict == nil {
		dict = DefaultDictionary()
	}
	if len(entryTypes) == 0 {
		entryTypes = DefaultEntryTypes()
	}
	relevant := make(map[string]struct{}, len(entryTypes))
	for _, t := range entryTypes {
		relevant[t] = struct{}{}
	}
	return &Normalizer{dict: dict, relevant: relevant}
}

// IsRelevant reports whether entries of this type produce records.
func (n *Normalizer) IsRelevant(entryType string) bool {
	_, ok := n.relevant[entryType]
	return ok
}

// Normalize converts an entry into a record. The second return value is false
// when the entry type is not relevant and the entry must be dropped.
func (n *Normalizer) Normalize(entry RawEntry) (Record, bool) {
	if !n.IsRelevant(entry.Type) {
		return nil, false
	}

	record := make(Record, len(entry.Fields)+len(_describedFields)+2)
	record[FieldEntryType] = entry.Type
	record[FieldMsgID] = entry.MsgID

	for _, f := range entry.Fields {
		record[n.dict.ResolveTag(f.Tag)] = f.Value
	}

	for _, d := range _describedFields {
		if code, ok := record[d.source]; ok {
			record[d.target] = ResolveEnum(d.domain, code)
		}
	}

	for _, name := range _timestampFields {
		if raw, ok := record[name]; ok {
			record[name] = NormalizeTimestamp(raw)
		}
	}

	return record, true
}
