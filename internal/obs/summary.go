package obs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"auditfix/internal/audit"

	"github.com/bytedance/sonic"
	"github.com/dustin/go-humanize"
	"github.com/yanun0323/decimal"
		"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// DefaultTopSymbols is how many symbol groups a summary keeps.
const DefaultTopSymbols = 10

const (
	unknownEntryType = "Unknown"
	unknownSymbol    = "Unknown"
	// allSymbols marks entries that apply to every symbol, such as a global cancel.
	allSymbols = "*"
)

// Count is the number of records in one group.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SymbolCount is the number of records for a symbol and the quantity filled on it.
type SymbolCount struct {
	Symbol    string          `json:"symbol"`
	Count     int             `json:"count"`
	FilledQty decimal.Decimal `json:"filledQty"`
}

// Summary is a read-only digest of decoded records. TopN is the symbol limit
// the digest was built with, Symbols may hold fewer.
type Summary struct {
	Records    int           `json:"records"`
	TopN       int           `json:"topN"`
	EntryTypes []Count       `json:"entryTypes"`
	Symbols    []SymbolCount `json:"symbols"`
}

// Summarize counts records by entry type (sorted by name) and by symbol (the
// topN largest groups, ties in first-seen order). A record without a symbol
// counts as "Unknown"; an empty symbol and "*" are not counted.
func Summarize(records []audit.Record, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopSymbols
	}

	byType := make(map[string]int)
	bySymbol := make(map[string]*SymbolCount)
	var seen []*SymbolCount

	for _, r := range records {
		entryType, ok := r.Get(audit.FieldEntryType)
		if !ok {
			entryType = unknownEntryType
		}
		byType[entryType]++

		symbol, ok := r.Get(audit.FieldSymbol)
		if !ok {
			symbol = unknownSymbol
		}
		if symbol == "" || symbol == allSymbols {
			continue
		}
		group, ok := bySymbol[symbol]
		if !ok {
			group = &SymbolCount{Symbol: symbol, FilledQty: decimal.Zero}
			bySymbol[symbol] = group
			seen = append(seen, group)
		}
		group.Count++
		if qty, ok := filledQty(r, entryType); ok {
			group.FilledQty = group.FilledQty.Add(qty)
		}
	}

	types := make([]Count, 0, len(byType))
	for name, n := range byType {
		types = append(types, Count{Name: name, Count: n})
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].Name < types[j].Name
	})

	sort.SliceStable(seen, func(i, j int) bool {
		return seen[i].Count > seen[j].Count
	})
	if len(seen) > topN {
		seen = seen[:topN]
	}
	symbols := make([]SymbolCount, len(seen))
	for i, group := range seen {
		symbols[i] = *group
	}

	return Summary{
		Records:    len(records),
		TopN:       topN,
		EntryTypes: types,
		Symbols:    symbols,
	}
}

func filledQty(r audit.Record, entryType string) (decimal.Decimal, bool) {
	if entryType != audit.EntryFilled && entryType != audit.EntryPartiallyFilled {
		return decimal.Zero, false
	}
	raw, ok := r.Get(audit.FieldLastQty)
	if !ok {
		return decimal.Zero, false
	}
	qty, err := decimal.New(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, false
	}
	return qty, true
}

// Log prints the summary for the operator.
func (s Summary) Log() {
	rule := strings.Repeat("=", 60)
	logs.Info(rule)
	logs.Info("SUMMARY STATISTICS")
	logs.Info(rule)

	logs.Info("records by entry type:")
	for _, c := range s.EntryTypes {
		logs.Infof("  %-20s: %6s", c.Name, humanize.Comma(int64(c.Count)))
	}

	if len(s.Symbols) != 0 {
		logs.Info(s.symbolHeading())
		for _, c := range s.Symbols {
			logs.Infof("  %-10s: %6s  filled %s", c.Symbol, humanize.Comma(int64(c.Count)), c.FilledQty.String())
		}
	}
	logs.Info(rule)
}

func (s Summary) symbolHeading() string {
	topN := s.TopN
	if topN <= 0 {
		topN = DefaultTopSymbols
	}
	return fmt.Sprintf("records by symbol (top %d):", topN)
}

// WriteSummaryJSON writes the summary to path as indented JSON.
func WriteSummaryJSON(path string, s Summary) error {
	data, err := sonic.ConfigStd.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal summary")
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create summary dir").With("dir", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write summary").With("path", path)
	}
	return nil
}

// ReadSummaryJSON loads a summary written by WriteSummaryJSON.
func ReadSummaryJSON(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, errors.Wrap(err, "read summary").With("path", path)
	}
	var s Summary
	if err := sonic.ConfigStd.Unmarshal(data, &s); err != nil {
		return Summary{}, errors.Wrap(err, "unmarshal summary")
	}
	return s, nil
}
