package repository

import "sync"

// ReportRegistry issues report identifiers. Ids start at 1, increase
// strictly, and are never reused; an intake abandoned after reserving an id
// leaves a gap in the sequence, which is expected.
type ReportRegistry struct {
	mu   sync.Mutex
	next int
}

// NewReportRegistry creates a registry with the counter at 1.
func NewReportRegistry() *ReportRegistry {
	return &ReportRegistry{next: 1}
}

// Reserve returns the next report id and advances the counter.
func (r *ReportRegistry) Reserve() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	return id
}

// Peek returns the id the next Reserve call would issue.
func (r *ReportRegistry) Peek() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next
}
