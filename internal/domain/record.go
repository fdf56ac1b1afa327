package domain

// Record is implemented by every entity kept in a record store.
// WithIdentity returns a copy carrying the given identifier and owner.
type Record[T any] interface {
	RecordID() string
	RecordOwner() string
	WithIdentity(id, ownerID string) T
}

// EntityKind names a record collection
type EntityKind string

const (
	EntityTransaction EntityKind = "transaction"
	EntityCategory    EntityKind = "category"
	EntityBudget      EntityKind = "budget"
)
