package repository

import (
	"sync"

	"github.com/spec-kit/report-bot/internal/domain"
)

// ClassificationStore holds every report that has been assigned a priority,
// keyed by report id. Records are upserted on each classification and never
// deleted within a process lifetime.
type ClassificationStore struct {
	mu      sync.RWMutex
	records map[int]domain.ClassificationRecord
}

// NewClassificationStore creates an empty store.
func NewClassificationStore() *ClassificationStore {
	return &ClassificationStore{records: make(map[int]domain.ClassificationRecord)}
}

// Upsert inserts or overwrites the record for its report id.
func (s *ClassificationStore) Upsert(record domain.ClassificationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ReportID] = record
}

// Get returns the record for a report id, if present.
func (s *ClassificationStore) Get(reportID int) (domain.ClassificationRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[reportID]
	return record, ok
}

// Len returns the number of classified reports.
func (s *ClassificationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Snapshot returns a copy of all records. The export generator works on the
// copy so formatting never races a concurrent upsert.
func (s *ClassificationStore) Snapshot() []domain.ClassificationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ClassificationRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out
}
