package repositories

import (
	"context"
	"fmt"
	"time"

	"auction-house/internal/domain"
)

// Decoder rebuilds an entity from a raw record. Each entity reads its own
// declared field set.
type Decoder[T domain.Persistable] func(domain.Record) (T, error)

// Managed gives an entity type one/all/save/delete over a single store
// category. There is no locking: every read-modify-write performed by a caller
// is two separate store calls. Versioned entities are the exception on the
// write side and are saved through CompareAndPut.
type Managed[T domain.Persistable] struct {
	store    domain.ObjectStore
	category string
	decode   Decoder[T]
	now      func() time.Time
}

func NewManaged[T domain.Persistable](store domain.ObjectStore, category string, decode func(domain.Record) (T, error)) *Managed[T] {
	return &Managed[T]{
		store:    store,
		category: category,
		decode:   decode,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *Managed[T]) Category() string {
	return m.category
}

// One returns the entity stored under key, or ok=false when there is none.
func (m *Managed[T]) One(ctx context.Context, key string) (T, bool, error) {
	var zero T

	record, ok, err := m.store.Get(ctx, m.category, key)
	if err != nil || !ok {
		return zero, false, err
	}

	entity, err := m.decode(record)
	if err != nil {
		return zero, false, fmt.Errorf("%w: decode %s/%s: %v", domain.ErrIntegrity, m.category, key, err)
	}
	return entity, true, nil
}

// All loads the whole category and keeps the records matching filter. The
// filter sees the raw record, not the decoded entity.
func (m *Managed[T]) All(ctx context.Context, filter domain.Predicate) ([]T, error) {
	records, err := m.store.GetAll(ctx, m.category, filter)
	if err != nil {
		return nil, err
	}

	entities := make([]T, 0, len(records))
	for _, record := range records {
		entity, err := m.decode(record)
		if err != nil {
			return nil, fmt.Errorf("%w: decode %s record: %v", domain.ErrIntegrity, m.category, err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// Save overwrites the stored record with the entity's full field set.
func (m *Managed[T]) Save(ctx context.Context, entity T) error {
	if hook, ok := any(entity).(domain.BeforeSaver); ok {
		hook.BeforeSave(m.now())
	}

	versioned, ok := any(entity).(domain.Versioned)
	if !ok {
		return m.store.Put(ctx, m.category, entity.Key(), entity.Fields())
	}

	expected := versioned.Version()
	versioned.SetVersion(expected + 1)
	if err := m.store.CompareAndPut(ctx, m.category, entity.Key(), expected, entity.Fields()); err != nil {
		versioned.SetVersion(expected)
		return err
	}
	return nil
}

func (m *Managed[T]) Delete(ctx context.Context, entity T) error {
	return m.store.Delete(ctx, m.category, entity.Key())
}
