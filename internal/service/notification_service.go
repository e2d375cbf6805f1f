package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/report-bot/internal/domain"
	"github.com/spec-kit/report-bot/internal/events"
	"github.com/spec-kit/report-bot/internal/gateway"
)

// NotificationService posts the human-facing notices that follow a
// classification: one in the report's channel and one in the intake's origin
// channel mentioning the author. Delivery failures are logged and swallowed;
// the classification itself is already recorded by the time these run.
type NotificationService struct {
	gw     gateway.Gateway
	logger *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(gw gateway.Gateway, logger *zap.Logger) *NotificationService {
	return &NotificationService{gw: gw, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventReportCreated, n.handleReportCreated)
	dispatcher.Subscribe(events.EventReportClassified, n.handleReportClassified)
	dispatcher.Subscribe(events.EventExportPublished, n.handleExportPublished)
}

// handleReportCreated keeps an audit line per posted report; new reports
// need no outbound notice, the posted message is the notice.
func (n *NotificationService) handleReportCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportCreatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("report created",
		zap.Int("report_id", event.ReportID),
		zap.String("kind", string(payload.Kind)),
		zap.String("category", payload.Category),
		zap.String("subcategory", payload.Subcategory),
		zap.String("message_id", payload.MessageID))
	return nil
}

func (n *NotificationService) handleReportClassified(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportClassifiedPayload)
	if !ok {
		return nil
	}

	channelNotice, userNotice := classificationNotices(payload.Kind, event.ReportID, payload.Priority)

	if payload.ReportChannel != "" {
		if _, err := n.gw.SendMessage(ctx, payload.ReportChannel, channelNotice, nil); err != nil {
			n.logger.Warn("report channel notice failed",
				zap.Int("report_id", event.ReportID), zap.Error(err))
		}
	}

	if payload.OriginChannel != "" && payload.AuthorID != "" {
		mention := fmt.Sprintf("<@%s> %s", payload.AuthorID, userNotice)
		if _, err := n.gw.SendMessage(ctx, payload.OriginChannel, mention, nil); err != nil {
			n.logger.Warn("origin channel notice failed",
				zap.Int("report_id", event.ReportID), zap.Error(err))
		}
	}
	return nil
}

func (n *NotificationService) handleExportPublished(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ExportPublishedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("export published",
		zap.String("message_id", payload.MessageID),
		zap.Int("total_reports", payload.TotalReports))
	return nil
}

// classificationNotices builds the two notices for a classification. The
// wording differs between the terminal ALREADY SOLVED state and a numeric
// priority choice.
func classificationNotices(kind domain.ReportKind, reportID int, priority domain.Priority) (channelNotice, userNotice string) {
	kindLower := strings.ToLower(string(kind))

	if priority.Terminal() {
		channelNotice = fmt.Sprintf("This %s #%d has been already solved.", kindLower, reportID)
		userNotice = fmt.Sprintf(
			"Thanks for your feedback #%d, however the devs have already solved this issue and you will find this modification in the next update.",
			reportID)
		return channelNotice, userNotice
	}

	channelNotice = fmt.Sprintf("```This %s #%d has been classified as %s priority.```",
		kindLower, reportID, priority.Word())
	userNotice = fmt.Sprintf("```Thanks. Your feedback #%d has been registered, for now it is classified as %s priority.```",
		reportID, priority.Word())
	return channelNotice, userNotice
}
