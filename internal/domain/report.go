package domain

// ReportKind enumerates the intake flavors a user can start.
type ReportKind string

const (
	KindBug   ReportKind = "Bug"
	KindCrash ReportKind = "Crash"
	KindTodo  ReportKind = "Todo"
)

// Icon returns the glyph used on the second line of a rendered report.
func (k ReportKind) Icon() string {
	switch k {
	case KindCrash:
		return "💥"
	case KindTodo:
		return "📝"
	default:
		return "🐞"
	}
}

// RequiresVersion reports whether the intake flow includes the version step.
func (k ReportKind) RequiresVersion() bool {
	return k != KindTodo
}

// Priority enumerates the reviewer classification labels. The underlying
// strings are the exact button labels and the exact values written into the
// rendered Priority line.
type Priority string

const (
	PriorityHigh   Priority = "HIGH PRIORITY"
	PriorityMedium Priority = "MEDIUM PRIORITY"
	PriorityLow    Priority = "LOW PRIORITY"
	PrioritySolved Priority = "ALREADY SOLVED"
)

// PriorityOrder is the fixed rendering order for export grouping.
var PriorityOrder = []Priority{PriorityHigh, PriorityMedium, PriorityLow, PrioritySolved}

// ParsePriority maps a control value back to a Priority.
func ParsePriority(value string) (Priority, bool) {
	switch Priority(value) {
	case PriorityHigh, PriorityMedium, PriorityLow, PrioritySolved:
		return Priority(value), true
	default:
		return "", false
	}
}

// Terminal reports whether the priority closes reclassification at the UI.
func (p Priority) Terminal() bool {
	return p == PrioritySolved
}

// Word returns the lowercase short form used in notices ("high", "low", ...).
func (p Priority) Word() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "already solved"
	}
}

// Placeholder marks an absent optional value in the rendered report text.
const Placeholder = "—"

// DescriptionMaxLen caps the free-text description step.
const DescriptionMaxLen = 150

// IntakeSession is the mutable in-progress submission for one user. At most
// one exists per user; a new intake silently replaces the old session.
type IntakeSession struct {
	ReportID      int
	Kind          ReportKind
	UserID        string
	DisplayName   string
	OriginChannel string
	Date          string
	Version       string
	Category      string
	Subcategory   string
	Description   string
}

// ReportDraft is the immutable snapshot emitted when an intake completes.
type ReportDraft struct {
	ReportID    int
	Kind        ReportKind
	DisplayName string
	Version     string
	Date        string
	Category    string
	Subcategory string
	Description string
}

// ClassificationRecord is the structured result of a priority selection,
// recovered by parsing the rendered report text. Keyed by ReportID; a later
// classification of the same report overwrites the earlier one.
type ClassificationRecord struct {
	ReportID    int
	Priority    Priority
	Category    string
	Subcategory string
	User        string
	Version     string
	Date        string
	Description string
	Kind        ReportKind
}

// ReportMeta resolves a posted report message back to its originating
// context when a priority selection arrives.
type ReportMeta struct {
	ReportID      int
	Kind          ReportKind
	OriginChannel string
	AuthorID      string
}
