package enum

// Domain selects one of the coded value tables.
type Domain uint8

const (
	_domain_beg Domain = iota
	DomainOrdStatus
	DomainSide
	DomainOrdType
	_domain_end
)

func (d Domain) IsAvailable() bool {
	return d > _domain_beg && d < _domain_end
}

func (d Domain) String() string {
	switch d {
	case DomainOrdStatus:
		return "OrdStatus"
	case DomainSide:
		return "Side"
	case DomainOrdType:
		return "OrdType"
	default:
		return "Unknown"
	}
}

// Describe resolves a coded value within a domain. It never fails: an unknown
// domain or code yields the code itself.
func Describe(d Domain, code string) string {
	switch d {
	case DomainOrdStatus:
		return OrdStatus(code).Description()
	case DomainSide:
		return Side(code).Description()
	case DomainOrdType:
		return OrdType(code).Description()
	default:
		return code
	}
}
