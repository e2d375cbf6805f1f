// Package service coordinates the report intake and classification flows.
// All process-wide mutable state (session tracker, id registry,
// classification store, message metadata, current export handle) is owned
// here and passed to handlers by reference, never as package globals.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/report-bot/internal/domain"
	"github.com/spec-kit/report-bot/internal/events"
	"github.com/spec-kit/report-bot/internal/export"
	"github.com/spec-kit/report-bot/internal/gateway"
	"github.com/spec-kit/report-bot/internal/intake"
	"github.com/spec-kit/report-bot/internal/observability"
	"github.com/spec-kit/report-bot/internal/report"
	"github.com/spec-kit/report-bot/internal/repository"
	apperrors "github.com/spec-kit/report-bot/pkg/util"
)

// ReportService drives intakes from first command to posted draft, and
// posted drafts through the priority classification protocol.
type ReportService struct {
	tracker    *intake.Tracker
	store      *repository.ClassificationStore
	meta       *repository.ReportMetaStore
	publisher  *export.Publisher
	gw         gateway.Gateway
	dispatcher events.Dispatcher
	runtime    *observability.Runtime
	logger     *zap.Logger

	reportChannelID string
}

// Dependencies bundles collaborators for the report service.
type Dependencies struct {
	Tracker         *intake.Tracker
	Store           *repository.ClassificationStore
	Meta            *repository.ReportMetaStore
	Publisher       *export.Publisher
	Gateway         gateway.Gateway
	Dispatcher      events.Dispatcher
	Runtime         *observability.Runtime
	Logger          *zap.Logger
	ReportChannelID string
}

// NewReportService constructs the service.
func NewReportService(deps Dependencies) *ReportService {
	return &ReportService{
		tracker:         deps.Tracker,
		store:           deps.Store,
		meta:            deps.Meta,
		publisher:       deps.Publisher,
		gw:              deps.Gateway,
		dispatcher:      deps.Dispatcher,
		runtime:         deps.Runtime,
		logger:          deps.Logger,
		reportChannelID: deps.ReportChannelID,
	}
}

// RegisterHandlers subscribes classification side effects. Export publishing
// is registered before notifications so a classification regenerates the
// export first, matching the protocol's step order.
func (s *ReportService) RegisterHandlers() {
	s.dispatcher.Subscribe(events.EventReportClassified, s.handleExportRefresh)
}

// Store exposes the classification store for read-only consumers.
func (s *ReportService) Store() *repository.ClassificationStore {
	return s.store
}

// StartIntake begins a new intake for the user, discarding any prior
// in-progress session, and returns the reserved report id.
func (s *ReportService) StartIntake(userID string, kind domain.ReportKind, displayName, originChannel string, date time.Time) int {
	reportID := s.tracker.StartSession(userID, kind, displayName, originChannel, date.Format("2006-01-02"))
	s.logger.Info("intake started",
		zap.Int("report_id", reportID),
		zap.String("kind", string(kind)),
		zap.String("user_id", userID))
	return reportID
}

// SessionKind returns the kind of the user's in-progress intake, if any.
func (s *ReportService) SessionKind(userID string) (domain.ReportKind, bool) {
	session, ok := s.tracker.Session(userID)
	return session.Kind, ok
}

// SetVersion records the version step.
func (s *ReportService) SetVersion(ownerID, actorID, version string) error {
	return s.tracker.SetVersion(ownerID, actorID, version)
}

// SetCategory records the category step and returns the sub-category
// options the presentation layer should offer next.
func (s *ReportService) SetCategory(ownerID, actorID, category string) ([]string, error) {
	if err := s.tracker.SetCategory(ownerID, actorID, category); err != nil {
		return nil, err
	}
	options, _ := domain.Subcategories(category)
	return options, nil
}

// SetSubcategory records the sub-category step.
func (s *ReportService) SetSubcategory(ownerID, actorID, subcategory string) error {
	return s.tracker.SetSubcategory(ownerID, actorID, subcategory)
}

// CompleteIntake finalizes the intake with the description, renders the
// draft, posts it to the report channel with the priority controls, records
// the message metadata, and echoes the rendered text to the origin channel.
// The session is consumed before any gateway call, so a transport failure
// cannot leave a half-completed session behind.
func (s *ReportService) CompleteIntake(ctx context.Context, ownerID, actorID, description string) (domain.ReportDraft, error) {
	session, _ := s.tracker.Session(ownerID)

	draft, err := s.tracker.Complete(ownerID, actorID, description)
	if err != nil {
		return domain.ReportDraft{}, err
	}

	rendered := report.Render(draft)

	messageID, err := s.gw.SendMessage(ctx, s.reportChannelID, rendered, &gateway.SendOptions{
		Controls: PriorityControls(false),
	})
	if err != nil {
		return draft, apperrors.NewTransportError("send report", err)
	}

	s.meta.Put(messageID, domain.ReportMeta{
		ReportID:      draft.ReportID,
		Kind:          draft.Kind,
		OriginChannel: session.OriginChannel,
		AuthorID:      ownerID,
	})

	// The echo is sent even when the intake ran in the report channel
	// itself, so the plain copy without controls always exists.
	if session.OriginChannel != "" {
		if _, err := s.gw.SendMessage(ctx, session.OriginChannel, rendered, nil); err != nil {
			s.logger.Warn("failed to echo report to origin channel",
				zap.Int("report_id", draft.ReportID), zap.Error(err))
		}
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventReportCreated,
		ReportID:  draft.ReportID,
		Timestamp: time.Now(),
		Payload: events.ReportCreatedPayload{
			Kind:        draft.Kind,
			Category:    draft.Category,
			Subcategory: draft.Subcategory,
			MessageID:   messageID,
			AuthorID:    ownerID,
		},
	})

	s.logger.Info("report posted",
		zap.Int("report_id", draft.ReportID),
		zap.String("message_id", messageID))
	return draft, nil
}

// Classification carries a prepared priority selection between the two
// halves of the protocol: the rewritten content and control state the
// presentation layer must render first, and the record and event payload
// CommitClassification stores and fans out afterwards.
type Classification struct {
	Content         string
	DisableControls bool

	record  domain.ClassificationRecord
	payload events.ReportClassifiedPayload
}

// PrepareClassification rewrites the Priority line and parses the updated
// text into a ClassificationRecord. It touches no state and makes no gateway
// call: the caller re-renders the report message with Content and the
// control state first, then commits.
func (s *ReportService) PrepareClassification(channelID, messageID, content string, priority domain.Priority) Classification {
	meta, ok := s.meta.Get(messageID)
	if !ok {
		// Metadata is lost after a restart; fall back to what the text
		// itself carries so the reviewer interaction still resolves.
		s.logger.Warn("no metadata for classified message", zap.String("message_id", messageID))
		meta = domain.ReportMeta{Kind: "Report"}
	}

	updated := report.ReplacePriority(content, priority)
	return Classification{
		Content:         updated,
		DisableControls: priority.Terminal(),
		record:          report.Record(meta, priority, report.Parse(updated)),
		payload: events.ReportClassifiedPayload{
			Priority:      priority,
			Kind:          meta.Kind,
			ReportChannel: channelID,
			OriginChannel: meta.OriginChannel,
			AuthorID:      meta.AuthorID,
			MessageID:     messageID,
		},
	}
}

// CommitClassification upserts the prepared record and fans out the export
// and notification side effects. It runs after the message re-render, so the
// visible Priority line is already updated when the notices land.
func (s *ReportService) CommitClassification(ctx context.Context, c Classification) {
	s.store.Upsert(c.record)
	s.runtime.RecordClassification()

	s.logger.Info("report classified",
		zap.Int("report_id", c.record.ReportID),
		zap.String("priority", string(c.record.Priority)))

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventReportClassified,
		ReportID:  c.record.ReportID,
		Timestamp: time.Now(),
		Payload:   c.payload,
	})
}

// Classify prepares and immediately commits a classification, for callers
// with no report message to re-render in between.
func (s *ReportService) Classify(ctx context.Context, channelID, messageID, content string, priority domain.Priority) (Classification, error) {
	c := s.PrepareClassification(channelID, messageID, content, priority)
	s.CommitClassification(ctx, c)
	return c, nil
}

// handleExportRefresh republishes the export after a classification.
func (s *ReportService) handleExportRefresh(ctx context.Context, event events.Event) error {
	if err := s.publisher.Publish(ctx); err != nil {
		return err
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventExportPublished,
		ReportID:  event.ReportID,
		Timestamp: time.Now(),
		Payload: events.ExportPublishedPayload{
			MessageID:    s.publisher.CurrentMessageID(),
			TotalReports: s.store.Len(),
		},
	})
	return nil
}
