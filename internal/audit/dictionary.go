package audit

import (
	"strconv"

	"auditfix/internal/model/enum"
	"auditfix/pkg/exception"

	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/tag"
	"github.com/yanun0323/errors"
)

// Field names the decoder, writer and reporter address directly.
const (
	FieldEntryType       = "EntryType"
	FieldMsgID           = "MsgId"
	FieldClOrdID         = "ClOrdID"
	FieldExecID          = "ExecID"
	FieldLastPx          = "LastPx"
	FieldLastQty         = "LastQty"
	FieldOrderID         = "OrderID"
	FieldOrderQty        = "OrderQty"
	FieldOrdStatus       = "OrdStatus"
	FieldOrdType         = "OrdType"
	FieldPrice           = "Price"
	FieldSendingTime     = "SendingTime"
	FieldSide            = "Side"
	FieldSymbol          = "Symbol"
	FieldTimeInForce     = "TimeInForce"
	FieldTransactTime    = "TransactTime"
	FieldExDestination   = "ExDestination"
	FieldExecType        = "ExecType"
	FieldLeavesQty       = "LeavesQty"
	FieldSecurityType    = "SecurityType"
	FieldNautilusOrderID = "NautilusOrderID"
	FieldStrategyID      = "StrategyID"
	FieldClientID        = "ClientID"

	FieldOrdStatusDesc = "OrdStatusDesc"
	FieldSideDesc      = "SideDesc"
	FieldOrdTypeDesc   = "OrdTypeDesc"
)

// unknownTagPrefix names fields whose tag is not in the dictionary.
const unknownTagPrefix = "Tag_"

// Standard FIX tags.
const (
	TagClOrdID       = tag.ClOrdID
	TagExecID        = tag.ExecID
	TagLastPx        = tag.LastPx
	TagLastQty       = tag.LastQty
	TagOrderID       = tag.OrderID
	TagOrderQty      = tag.OrderQty
	TagOrdStatus     = tag.OrdStatus
	TagOrdType       = tag.OrdType
	TagPrice         = tag.Price
	TagSendingTime   = tag.SendingTime
	TagSide          = tag.Side
	TagSymbol        = tag.Symbol
	TagTimeInForce   = tag.TimeInForce
	TagTransactTime  = tag.TransactTime
	TagExDestination = tag.ExDestination
	TagExecType      = tag.ExecType
	TagLeavesQty     = tag.LeavesQty
	TagSecurityType  = tag.SecurityType
)

// User defined tags.
const (
	TagNautilusOrderID quickfix.Tag = 6010 // set by the strategy runtime
	TagStrategyID      quickfix.Tag = 6119
	TagClientID        quickfix.Tag = 6121
)

var _defaultTagNames = map[quickfix.Tag]string{
	TagClOrdID:         FieldClOrdID,
	TagExecID:          FieldExecID,
	TagLastPx:          FieldLastPx,
	TagLastQty:         FieldLastQty,
	TagOrderID:         FieldOrderID,
	TagOrderQty:        FieldOrderQty,
	TagOrdStatus:       FieldOrdStatus,
	TagOrdType:         FieldOrdType,
	TagPrice:           FieldPrice,
	TagSendingTime:     FieldSendingTime,
	TagSide:            FieldSide,
	TagSymbol:          FieldSymbol,
	TagTimeInForce:     FieldTimeInForce,
	TagTransactTime:    FieldTransactTime,
	TagExDestination:   FieldExDestination,
	TagExecType:        FieldExecType,
	TagLeavesQty:       FieldLeavesQty,
	TagSecurityType:    FieldSecurityType,
	TagNautilusOrderID: FieldNautilusOrderID,
	TagStrategyID:      FieldStrategyID,
	TagClientID:        FieldClientID,
}

var _defaultDictionary = &Dictionary{names: _defaultTagNames}

// Dictionary maps numeric tags to field names. It is never mutated after
// construction and is safe to share.
type Dictionary struct {
	names map[quickfix.Tag]string
}

// DefaultDictionary returns the built-in tag dictionary.
func DefaultDictionary() *Dictionary {
	return _defaultDictionary
}

// Extend returns a new dictionary with extra tag names added on top of d.
// Keys of extra are tags in their wire form ("6010"); an entry overrides a
// built-in name for the same tag.
func (d *Dictionary) Extend(extra map[string]string) (*Dictionary, error) {
	names := make(map[quickfix.Tag]string, d.Len()+len(extra))
	if d != nil {
		for t, name := range d.names {
			names[t] = name
		}
	}
	for raw, name := range extra {
		t, ok := parseTag(raw)
		if !ok {
			return nil, errors.Wrapf(exception.ErrInvalidConfig, "tag %q is not numeric", raw)
		}
		if name == "" {
			return nil, errors.Wrapf(exception.ErrInvalidConfig, "tag %s has an empty name", raw)
		}
		names[t] = name
	}
	return &Dictionary{names: names}, nil
}

// Len returns the number of known tags.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// ResolveTag returns the field name for a tag as it appears on the wire.
// Unknown or non-numeric tags resolve to "Tag_<tag>".
func (d *Dictionary) ResolveTag(raw string) string {
	if d != nil {
		if t, ok := parseTag(raw); ok {
			if name, found := d.names[t]; found {
				return name
			}
		}
	}
	return unknownTagPrefix + raw
}

// ResolveEnum returns the description of a coded value, or the code itself
// when the domain table does not know it.
func ResolveEnum(domain enum.Domain, code string) string {
	return enum.Describe(domain, code)
}

// parseTag only accepts the canonical decimal form, so "011" stays unknown.
func parseTag(raw string) (quickfix.Tag, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || strconv.Itoa(n) != raw {
		return 0, false
	}
	return quickfix.Tag(n), true
}
