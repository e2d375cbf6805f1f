package intake

import (
	"strings"
	"sync"

	"github.com/spec-kit/report-bot/internal/domain"
	"github.com/spec-kit/report-bot/internal/repository"
	apperrors "github.com/spec-kit/report-bot/pkg/util"
)

// Tracker holds at most one in-progress intake session per user and walks it
// through the interaction steps. Step ordering is enforced by which control
// the presentation layer offers next; the tracker itself only cares about
// ownership and session existence.
type Tracker struct {
	mu       sync.Mutex
	registry *repository.ReportRegistry
	sessions map[string]*domain.IntakeSession
}

// NewTracker creates a tracker backed by the given id registry.
func NewTracker(registry *repository.ReportRegistry) *Tracker {
	return &Tracker{
		registry: registry,
		sessions: make(map[string]*domain.IntakeSession),
	}
}

// StartSession discards any prior session for the user, reserves a fresh
// report id, and stores a new session with all step fields unset. The id is
// consumed even if the intake is later abandoned.
func (t *Tracker) StartSession(userID string, kind domain.ReportKind, displayName, originChannel, date string) int {
	reportID := t.registry.Reserve()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[userID] = &domain.IntakeSession{
		ReportID:      reportID,
		Kind:          kind,
		UserID:        userID,
		DisplayName:   displayName,
		OriginChannel: originChannel,
		Date:          date,
	}
	return reportID
}

// Session returns a copy of the user's in-progress session, if any.
func (t *Tracker) Session(userID string) (domain.IntakeSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	session, ok := t.sessions[userID]
	if !ok {
		return domain.IntakeSession{}, false
	}
	return *session, true
}

// SetVersion records the selected version on the owner's session.
func (t *Tracker) SetVersion(ownerID, actorID, version string) error {
	return t.mutate(ownerID, actorID, func(s *domain.IntakeSession) {
		s.Version = version
	})
}

// SetCategory records the selected category on the owner's session.
func (t *Tracker) SetCategory(ownerID, actorID, category string) error {
	if _, ok := domain.Subcategories(category); !ok {
		return apperrors.NewTaxonomyMismatch(category)
	}
	return t.mutate(ownerID, actorID, func(s *domain.IntakeSession) {
		s.Category = category
	})
}

// SetSubcategory records the selected sub-category on the owner's session.
func (t *Tracker) SetSubcategory(ownerID, actorID, subcategory string) error {
	return t.mutate(ownerID, actorID, func(s *domain.IntakeSession) {
		s.Subcategory = subcategory
	})
}

// Complete records the description, removes the session, and returns the
// finalized draft. The description is the terminal step; the session is
// consumed exactly once and is unreachable afterwards.
func (t *Tracker) Complete(ownerID, actorID, description string) (domain.ReportDraft, error) {
	if actorID != ownerID {
		return domain.ReportDraft{}, apperrors.NewUnauthorized("you are not the owner of this intake")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	session, ok := t.sessions[ownerID]
	if !ok {
		return domain.ReportDraft{}, apperrors.NewSessionExpired("no intake in progress, restart the command")
	}
	delete(t.sessions, ownerID)

	description = strings.TrimSpace(description)
	if len([]rune(description)) > domain.DescriptionMaxLen {
		description = string([]rune(description)[:domain.DescriptionMaxLen])
	}

	return domain.ReportDraft{
		ReportID:    session.ReportID,
		Kind:        session.Kind,
		DisplayName: session.DisplayName,
		Version:     session.Version,
		Date:        session.Date,
		Category:    session.Category,
		Subcategory: session.Subcategory,
		Description: description,
	}, nil
}

func (t *Tracker) mutate(ownerID, actorID string, apply func(*domain.IntakeSession)) error {
	if actorID != ownerID {
		return apperrors.NewUnauthorized("you are not the owner of this intake")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	session, ok := t.sessions[ownerID]
	if !ok {
		return apperrors.NewSessionExpired("no intake in progress, restart the command")
	}
	apply(session)
	return nil
}
