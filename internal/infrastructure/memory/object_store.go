package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"auction-house/internal/domain"
)

type entry struct {
	data    []byte
	version int64
}

// ObjectStore keeps every category in process. Records are held as JSON so
// that loads behave exactly like the remote drivers.
type ObjectStore struct {
	mu         sync.RWMutex
	categories map[string]map[string]*entry
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{categories: make(map[string]map[string]*entry)}
}

func (s *ObjectStore) Get(ctx context.Context, category, key string) (domain.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.categories[category][key]
	if !ok || e.data == nil {
		return nil, false, nil
	}
	record, err := decode(e.data)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

func (s *ObjectStore) GetAll(ctx context.Context, category string, filter domain.Predicate) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []domain.Record
	for _, e := range s.categories[category] {
		if e.data == nil {
			continue
		}
		record, err := decode(e.data)
		if err != nil {
			return nil, err
		}
		if filter == nil || filter(record) {
			records = append(records, record)
		}
	}
	return records, nil
}

func (s *ObjectStore) Put(ctx context.Context, category, key string, record domain.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", category, key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(category, key)
	e.data = data
	return nil
}

func (s *ObjectStore) CompareAndPut(ctx context.Context, category, key string, expected int64, record domain.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", category, key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(category, key)
	if e.version != expected {
		return fmt.Errorf("%w: %s/%s at version %d, expected %d", domain.ErrVersionConflict, category, key, e.version, expected)
	}
	e.data = data
	e.version++
	return nil
}

func (s *ObjectStore) Delete(ctx context.Context, category, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.categories[category], key)
	return nil
}

func (s *ObjectStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = make(map[string]map[string]*entry)
	return nil
}

// entry must be called with the write lock held.
func (s *ObjectStore) entry(category, key string) *entry {
	records, ok := s.categories[category]
	if !ok {
		records = make(map[string]*entry)
		s.categories[category] = records
	}
	e, ok := records[key]
	if !ok {
		e = &entry{}
		records[key] = e
	}
	return e
}

func decode(data []byte) (domain.Record, error) {
	var record domain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: undecodable record: %v", domain.ErrIntegrity, err)
	}
	return record, nil
}
