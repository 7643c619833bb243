package enum

// OrdStatus is the FIX OrdStatus (39) code.
type OrdStatus string

const (
	OrdStatusNew             OrdStatus = "0"
	OrdStatusPartiallyFilled OrdStatus = "1"
	OrdStatusFilled          OrdStatus = "2"
	OrdStatusDoneForDay      OrdStatus = "3"
	OrdStatusCanceled        OrdStatus = "4"
	OrdStatusReplaced        OrdStatus = "5"
	OrdStatusPendingCancel   OrdStatus = "6"
	OrdStatusStopped         OrdStatus = "7"
	OrdStatusRejected        OrdStatus = "8"
	OrdStatusSuspended       OrdStatus = "9"
	OrdStatusPendingNew      OrdStatus = "A"
	OrdStatusExpired         OrdStatus = "C"
)

var _ordStatusDesc = map[OrdStatus]string{
	OrdStatusNew:             "New",
	OrdStatusPartiallyFilled: "PartiallyFilled",
	OrdStatusFilled:          "Filled",
	OrdStatusDoneForDay:      "DoneForDay",
	OrdStatusCanceled:        "Canceled",
	OrdStatusReplaced:        "Replaced",
	OrdStatusPendingCancel:   "PendingCancel",
	OrdStatusStopped:         "Stopped",
	OrdStatusRejected:        "Rejected",
	OrdStatusSuspended:       "Suspended",
	OrdStatusPendingNew:      "PendingNew",
	OrdStatusExpired:         "Expired",
}

func (s OrdStatus) IsAvailable() bool {
	_, ok := _ordStatusDesc[s]
	return ok
}

// Description returns the readable status, or the raw code when it is not in the table.
func (s OrdStatus) Description() string {
	if desc, ok := _ordStatusDesc[s]; ok {
		return desc
	}
	return string(s)
}

// Side buy, sell
type Side string

const (
	SideBuy  Side = "1"
	SideSell Side = "2"
)

var _sideDesc = map[Side]string{
	SideBuy:  "Buy",
	SideSell: "Sell",
}

func (s Side) IsAvailable() bool {
	_, ok := _sideDesc[s]
	return ok
}

func (s Side) Description() string {
	if desc, ok := _sideDesc[s]; ok {
		return desc
	}
	return string(s)
}

// OrdType market, limit, stop, stop limit
type OrdType string

const (
	OrdTypeMarket    OrdType = "1"
	OrdTypeLimit     OrdType = "2"
	OrdTypeStop      OrdType = "3"
	OrdTypeStopLimit OrdType = "4"
)

var _ordTypeDesc = map[OrdType]string{
	OrdTypeMarket:    "Market",
	OrdTypeLimit:     "Limit",
	OrdTypeStop:      "Stop",
	OrdTypeStopLimit: "StopLimit",
}

func (t OrdType) IsAvailable() bool {
	_, ok := _ordTypeDesc[t]
	return ok
}

func (t OrdType) Description() string {
	if desc, ok := _ordTypeDesc[t]; ok {
		return desc
	}
	return string(t)
}
