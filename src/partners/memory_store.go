package partners

import (
	"sync"
	"time"
)

// MemoryStore is an in-memory SubmissionStore. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]SubmissionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]SubmissionRecord)}
}

func (s *MemoryStore) Save(rec SubmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ConfirmationNumber] = rec
	return nil
}

func (s *MemoryStore) Get(confirmationNumber string) (*SubmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[confirmationNumber]
	if !ok {
		return nil, ErrSubmissionNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) UpdateStatus(confirmationNumber, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[confirmationNumber]
	if !ok {
		return ErrSubmissionNotFound
	}
	rec.Status = status
	rec.LastUpdated = time.Now().UTC()
	s.records[confirmationNumber] = rec
	return nil
}
