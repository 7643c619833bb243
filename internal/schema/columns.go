package schema

import (
	"sort"

	"auditfix/internal/audit"
)

// DefaultPriorityColumns returns the columns written first, in this order,
// whenever any record carries them. Downstream reports rely on this order.
func DefaultPriorityColumns() []string {
	return []string{
		audit.FieldEntryType,
		audit.FieldSendingTime,
		audit.FieldTransactTime,
		audit.FieldSymbol,
		audit.FieldSideDesc,
		audit.FieldOrdTypeDesc,
		audit.FieldOrdStatusDesc,
		audit.FieldOrderQty,
		audit.FieldLastQty,
		audit.FieldLeavesQty,
		audit.FieldPrice,
		audit.FieldLastPx,
		audit.FieldClOrdID,
		audit.FieldOrderID,
		audit.FieldExecID,
		audit.FieldNautilusOrderID,
		audit.FieldExDestination,
		audit.FieldStrategyID,
		audit.FieldClientID,
	}
}

// Columns computes the unified column order of records: the priority columns
// present in any record, in priority order, then every other field name
// sorted lexicographically.
func Columns(records []audit.Record, priority []string) []string {
	union := make(map[string]struct{})
	for _, r := range records {
		for name := range r {
			union[name] = struct{}{}
		}
	}

	columns := make([]string, 0, len(union))
	for _, name := range priority {
		if _, ok := union[name]; !ok {
			continue
		}
		columns = append(columns, name)
		delete(union, name)
	}

	rest := make([]string, 0, len(union))
	for name := range union {
		rest = append(rest, name)
	}
	sort.Strings(rest)

	return append(columns, rest...)
}
