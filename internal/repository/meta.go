package repository

import (
	"sync"

	"github.com/spec-kit/report-bot/internal/domain"
)

// ReportMetaStore maps a posted report message id to its originating
// context. A priority selection references only the message, so this table
// is how the selection is resolved back to report id, kind, author, and
// origin channel.
type ReportMetaStore struct {
	mu   sync.RWMutex
	byID map[string]domain.ReportMeta
}

// NewReportMetaStore creates an empty side table.
func NewReportMetaStore() *ReportMetaStore {
	return &ReportMetaStore{byID: make(map[string]domain.ReportMeta)}
}

// Put records metadata for a posted report message.
func (s *ReportMetaStore) Put(messageID string, meta domain.ReportMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[messageID] = meta
}

// Get returns the metadata for a message, if known.
func (s *ReportMetaStore) Get(messageID string) (domain.ReportMeta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.byID[messageID]
	return meta, ok
}
