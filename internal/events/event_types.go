package events

import (
	"time"

	"github.com/spec-kit/report-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportCreated    EventType = "report_created"
	EventReportClassified EventType = "report_classified"
	EventExportPublished  EventType = "export_published"
)

// Event represents a domain event emitted by the report service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ReportID  int         `json:"report_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportCreatedPayload accompanies EventReportCreated.
type ReportCreatedPayload struct {
	Kind        domain.ReportKind `json:"kind"`
	Category    string            `json:"category"`
	Subcategory string            `json:"subcategory"`
	MessageID   string            `json:"message_id"`
	AuthorID    string            `json:"author_id"`
}

// ReportClassifiedPayload accompanies EventReportClassified.
type ReportClassifiedPayload struct {
	Priority      domain.Priority   `json:"priority"`
	Kind          domain.ReportKind `json:"kind"`
	ReportChannel string            `json:"report_channel"`
	OriginChannel string            `json:"origin_channel"`
	AuthorID      string            `json:"author_id"`
	MessageID     string            `json:"message_id"`
}

// ExportPublishedPayload accompanies EventExportPublished.
type ExportPublishedPayload struct {
	MessageID    string `json:"message_id"`
	TotalReports int    `json:"total_reports"`
}
