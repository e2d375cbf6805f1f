// Package report implements the canonical textual report format. The posted
// message text is the only representation a priority selection can see, so
// rendering and parsing must round-trip every field exactly.
package report

import (
	"fmt"
	"strings"

	"github.com/spec-kit/report-bot/internal/domain"
)

const (
	labelDate        = "**Date**:"
	labelUser        = "**User**:"
	labelVersion     = "**Version**:"
	labelCategory    = "**Category**:"
	labelSubcategory = "**Sub-category**:"
	labelPriority    = "**Priority**:"
	labelDescription = "**Description (optional)**:"
)

// Render produces the canonical report text for a draft. All labeled lines
// are always emitted; absent version/description render as the placeholder
// and Priority starts at the placeholder.
func Render(draft domain.ReportDraft) string {
	version := draft.Version
	if version == "" {
		version = domain.Placeholder
	}
	description := draft.Description
	if description == "" {
		description = domain.Placeholder
	}

	var b strings.Builder
	if draft.Kind == domain.KindTodo {
		fmt.Fprintf(&b, "**%s #%d - %s/%s**\n", draft.Kind, draft.ReportID, draft.Category, draft.Subcategory)
		fmt.Fprintf(&b, "%s **%s #%d**\n", draft.Kind.Icon(), draft.Kind, draft.ReportID)
	} else {
		fmt.Fprintf(&b, "**%s #%d - %s/%s [%s]**\n", draft.Kind, draft.ReportID, draft.Category, draft.Subcategory, version)
		fmt.Fprintf(&b, "%s **%s Report #%d**\n", draft.Kind.Icon(), draft.Kind, draft.ReportID)
	}
	fmt.Fprintf(&b, "%s %s\n", labelDate, draft.Date)
	fmt.Fprintf(&b, "%s %s\n", labelUser, draft.DisplayName)
	fmt.Fprintf(&b, "%s %s\n", labelVersion, version)
	fmt.Fprintf(&b, "%s %s\n", labelCategory, draft.Category)
	fmt.Fprintf(&b, "%s %s\n", labelSubcategory, draft.Subcategory)
	fmt.Fprintf(&b, "%s %s\n", labelPriority, domain.Placeholder)
	fmt.Fprintf(&b, "%s %s", labelDescription, description)
	return b.String()
}

// Fields is the structured view recovered from a rendered report.
type Fields struct {
	Date        string
	User        string
	Version     string
	Category    string
	Subcategory string
	Priority    string
	Description string
}

// Parse scans a rendered report and extracts each labeled line. Lines are
// matched by their bold label prefix; the value is everything after the
// first colon, trimmed. A placeholder description normalizes to empty.
func Parse(content string) Fields {
	var f Fields
	for _, line := range strings.Split(content, "\n") {
		s := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(s, labelDate):
			f.Date = valueAfterColon(s)
		case strings.HasPrefix(s, labelUser):
			f.User = valueAfterColon(s)
		case strings.HasPrefix(s, labelVersion):
			f.Version = valueAfterColon(s)
		case strings.HasPrefix(s, labelCategory):
			f.Category = valueAfterColon(s)
		case strings.HasPrefix(s, labelSubcategory):
			f.Subcategory = valueAfterColon(s)
		case strings.HasPrefix(s, labelPriority):
			f.Priority = valueAfterColon(s)
		case strings.HasPrefix(s, labelDescription):
			f.Description = valueAfterColon(s)
			if f.Description == domain.Placeholder {
				f.Description = ""
			}
		}
	}
	return f
}

func valueAfterColon(s string) string {
	_, after, ok := strings.Cut(s, ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(after)
}

// ReplacePriority rewrites the Priority line with the given value. If the
// line is missing it is inserted before the description line, or appended
// when that is missing too; a rendered report always carries the line, so
// the insert paths are defensive only.
func ReplacePriority(content string, priority domain.Priority) string {
	lines := strings.Split(content, "\n")
	newLine := fmt.Sprintf("%s %s", labelPriority, priority)

	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), labelPriority) {
			lines[i] = newLine
			return strings.Join(lines, "\n")
		}
	}
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "**Description") {
			lines = append(lines[:i], append([]string{newLine}, lines[i:]...)...)
			return strings.Join(lines, "\n")
		}
	}
	lines = append(lines, newLine)
	return strings.Join(lines, "\n")
}

// Record assembles a ClassificationRecord from parsed fields and the posted
// message's resolved metadata.
func Record(meta domain.ReportMeta, priority domain.Priority, f Fields) domain.ClassificationRecord {
	return domain.ClassificationRecord{
		ReportID:    meta.ReportID,
		Priority:    priority,
		Category:    f.Category,
		Subcategory: f.Subcategory,
		User:        f.User,
		Version:     f.Version,
		Date:        f.Date,
		Description: f.Description,
		Kind:        meta.Kind,
	}
}
