package flowaggregator

import (
	"sync"

	"NetZoneFlow/internal/model"
)

// SyncStore is a Store guarded by a mutex, for receivers that merge batches
// arriving on several goroutines.
type SyncStore struct {
	mu    sync.RWMutex
	store *Store
}

// NewSyncStore creates an empty SyncStore.
func NewSyncStore() *SyncStore {
	return &SyncStore{store: NewStore()}
}

// Merge adds every record with the same merge law as Store.Add.
func (s *SyncStore) Merge(records []model.FlowRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.store.Add(r)
	}
}

// Snapshot returns a copy of the merged records.
func (s *SyncStore) Snapshot() []model.FlowRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Records()
}

// Len returns the number of distinct flow keys held.
func (s *SyncStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Len()
}

// Reset drops every record.
func (s *SyncStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Clear()
}
