// Package memory provides an in-memory RecordStore for tests and examples.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ttpunch/blog/store"
)

// MemoryRecordStore implements store.RecordStore with a mutex-guarded map.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[string]*store.Record
}

var _ store.RecordStore = (*MemoryRecordStore)(nil)

// NewMemoryRecordStore creates an empty in-memory store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{
		records: make(map[string]*store.Record),
	}
}

// Save upserts the record.
func (s *MemoryRecordStore) Save(ctx context.Context, record *store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *record
	now := time.Now()
	if existing, ok := s.records[record.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
	} else if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now

	s.records[record.ID] = &clone
	return nil
}

// Load retrieves a record by id.
func (s *MemoryRecordStore) Load(ctx context.Context, id string) (*store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

// List returns all records, newest first.
func (s *MemoryRecordStore) List(ctx context.Context) ([]*store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*store.Record, 0, len(s.records))
	for _, record := range s.records {
		clone := *record
		records = append(records, &clone)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Delete removes a record.
func (s *MemoryRecordStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	return nil
}

// TransitionStatus moves the record between statuses atomically.
func (s *MemoryRecordStore) TransitionStatus(ctx context.Context, id string, from, to store.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return store.ErrNotFound
	}
	if record.Status != from {
		return store.ErrStatusConflict
	}
	record.Status = to
	record.UpdatedAt = time.Now()
	return nil
}
