package domain

import (
	"context"
	"time"
)

// Store categories.
const (
	CategoryItem    = "item"
	CategoryAuction = "auction"
	CategoryBid     = "bid"
	CategoryUser    = "user"
)

// ObjectStore is a key-value store organised as named categories of records.
// A missing key is reported through the bool result, never as an error.
// Transport failures are wrapped with ErrStoreUnavailable.
type ObjectStore interface {
	Get(ctx context.Context, category, key string) (Record, bool, error)
	GetAll(ctx context.Context, category string, filter Predicate) ([]Record, error)
	Put(ctx context.Context, category, key string, record Record) error
	// CompareAndPut writes record only if the key's stored version equals
	// expected (0 for a key never written) and bumps the version. A stale
	// expectation fails with ErrVersionConflict.
	CompareAndPut(ctx context.Context, category, key string, expected int64, record Record) error
	Delete(ctx context.Context, category, key string) error
	ClearAll(ctx context.Context) error
}

// Persistable is implemented by every managed entity.
type Persistable interface {
	Category() string
	Key() string
	Fields() Record
}

// Versioned entities are saved through ObjectStore.CompareAndPut.
type Versioned interface {
	Version() int64
	SetVersion(v int64)
}

// BeforeSaver entities get a chance to refresh bookkeeping fields on save.
type BeforeSaver interface {
	BeforeSave(now time.Time)
}
