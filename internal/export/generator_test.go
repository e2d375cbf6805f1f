package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/report-bot/internal/domain"
)

var exportTime = time.Date(2026, 8, 29, 12, 30, 0, 0, time.UTC)

func record(id int, priority domain.Priority, category, subcategory, description string) domain.ClassificationRecord {
	return domain.ClassificationRecord{
		ReportID:    id,
		Priority:    priority,
		Category:    category,
		Subcategory: subcategory,
		User:        "SomeUser",
		Version:     "0.0.1",
		Date:        "2026-08-29",
		Description: description,
		Kind:        domain.KindBug,
	}
}

func TestGenerateEmptyStore(t *testing.T) {
	document, stats := Generate(nil, exportTime)
	assert.Equal(t, "# REPORTS\n\nNo classified reports yet.\n", document)
	assert.Empty(t, stats)
}

func TestGenerateHeaderAndStats(t *testing.T) {
	records := []domain.ClassificationRecord{
		record(1, domain.PriorityHigh, "MAP", "UI", ""),
		record(2, domain.PriorityLow, "MAP", "UI", ""),
		record(3, domain.PriorityHigh, "ARMIES", "Units", ""),
	}
	document, stats := Generate(records, exportTime)

	assert.True(t, strings.HasPrefix(document, "# REPORTS\nLast update: 2026-08-29 12:30:00\nTotal reports: 3\n\n"))
	assert.Equal(t, Stats{domain.PriorityHigh: 2, domain.PriorityLow: 1}, stats)
}

func TestGeneratePriorityOrderOmitsEmptyGroups(t *testing.T) {
	records := []domain.ClassificationRecord{
		record(1, domain.PrioritySolved, "MAP", "UI", ""),
		record(2, domain.PriorityHigh, "MAP", "UI", ""),
	}
	document, _ := Generate(records, exportTime)

	highIdx := strings.Index(document, "## HIGH PRIORITY")
	solvedIdx := strings.Index(document, "## ALREADY SOLVED")
	require.GreaterOrEqual(t, highIdx, 0)
	require.GreaterOrEqual(t, solvedIdx, 0)
	assert.Less(t, highIdx, solvedIdx)
	assert.NotContains(t, document, "## MEDIUM PRIORITY")
	assert.NotContains(t, document, "## LOW PRIORITY")
}

func TestGenerateLexicographicCategoriesAndSubcategories(t *testing.T) {
	records := []domain.ClassificationRecord{
		record(1, domain.PriorityHigh, "MAP", "VISUAL", ""),
		record(2, domain.PriorityHigh, "ARMIES", "Units", ""),
		record(3, domain.PriorityHigh, "MAP", "UI", ""),
	}
	document, _ := Generate(records, exportTime)

	armies := strings.Index(document, "### ARMIES")
	mapIdx := strings.Index(document, "### MAP")
	assert.Less(t, armies, mapIdx)

	ui := strings.Index(document, "#### UI")
	visual := strings.Index(document, "#### VISUAL")
	assert.Less(t, ui, visual)
}

func TestGenerateItemsSortedByReportID(t *testing.T) {
	records := []domain.ClassificationRecord{
		record(9, domain.PriorityHigh, "MAP", "UI", ""),
		record(2, domain.PriorityHigh, "MAP", "UI", ""),
		record(5, domain.PriorityHigh, "MAP", "UI", ""),
	}
	document, _ := Generate(records, exportTime)

	i2 := strings.Index(document, "- **#2**")
	i5 := strings.Index(document, "- **#5**")
	i9 := strings.Index(document, "- **#9**")
	assert.True(t, i2 < i5 && i5 < i9)
}

func TestGenerateItemLineFormat(t *testing.T) {
	withDesc := record(7, domain.PriorityHigh, "MAP", "UI", "crash on zoom")
	withoutDesc := record(8, domain.PriorityHigh, "MAP", "UI", "")
	document, _ := Generate([]domain.ClassificationRecord{withDesc, withoutDesc}, exportTime)

	assert.Contains(t, document, "- **#7** [Bug] **SomeUser** | 0.0.1 | 2026-08-29 | crash on zoom\n")
	assert.Contains(t, document, "- **#8** [Bug] **SomeUser** | 0.0.1 | 2026-08-29\n")
}

func TestGenerateGroupSection(t *testing.T) {
	records := []domain.ClassificationRecord{
		record(7, domain.PriorityHigh, "MAP", "UI", "crash on zoom"),
	}
	document, _ := Generate(records, exportTime)

	expected := "# REPORTS\n" +
		"Last update: 2026-08-29 12:30:00\n" +
		"Total reports: 1\n\n" +
		"## HIGH PRIORITY (1 report)\n\n" +
		"### MAP\n" +
		"#### UI\n" +
		"- **#7** [Bug] **SomeUser** | 0.0.1 | 2026-08-29 | crash on zoom\n\n\n" +
		"---\n\n"
	assert.Equal(t, expected, document)
}

func TestGenerateIsDeterministic(t *testing.T) {
	records := []domain.ClassificationRecord{
		record(3, domain.PriorityMedium, "SETTLEMENTS", "Slots", "a"),
		record(1, domain.PriorityHigh, "MAP", "MOVING", ""),
		record(2, domain.PriorityHigh, "MAP", "UI", "b"),
		record(4, domain.PrioritySolved, "FACTIONS", "Loc", ""),
	}

	first, _ := Generate(records, exportTime)
	second, _ := Generate(records, exportTime)
	assert.Equal(t, first, second)
}
