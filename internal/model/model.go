package model

// Kind identifies an entity family in the record store. It is the first
// segment of every storage key for that family.
type Kind string

const (
	KindOrganization Kind = "organization"
	KindBatch        Kind = "batch"
	KindPayment      Kind = "payment"
	KindPlacement    Kind = "placement"
	KindStudent      Kind = "student"
	KindAccount      Kind = "account"
)

// Kinds lists every entity family, in the order maintenance sweeps visit them.
func Kinds() []Kind {
	return []Kind{
		KindOrganization,
		KindBatch,
		KindPayment,
		KindPlacement,
		KindStudent,
		KindAccount,
	}
}

// IndexEntry declares one secondary index copy a record wants written.
// Unique entries omit the record id from the key, so a value resolves to at
// most one record (email lookups); non-unique entries append the id and are
// used for ownership-scoped listings.
type IndexEntry struct {
	Name   string
	Value  string
	Unique bool
}

// Record is implemented by every stored entity. IndexEntries is recomputed on
// each write and on delete (from the stored bytes, not caller input), so the
// store always knows which secondary keys exist for a record.
type Record interface {
	Kind() Kind
	RecordID() string
	IndexEntries() []IndexEntry
}

// New returns an empty record of the given kind, or nil for unknown kinds.
// The store uses it to decode stored bytes before computing index keys.
func New(kind Kind) Record {
	switch kind {
	case KindOrganization:
		return &Organization{}
	case KindBatch:
		return &Batch{}
	case KindPayment:
		return &Payment{}
	case KindPlacement:
		return &Placement{}
	case KindStudent:
		return &Student{}
	case KindAccount:
		return &Account{}
	default:
		return nil
	}
}
