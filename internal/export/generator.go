// Package export derives the aggregate classified-report document and keeps
// exactly one published copy of it current.
package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/report-bot/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

// emptyDocument is returned when nothing has been classified yet.
const emptyDocument = "# REPORTS\n\nNo classified reports yet.\n"

// Stats counts classified reports per priority.
type Stats map[domain.Priority]int

// Generate renders the grouped export document from a store snapshot.
// Grouping is fixed: priority (HIGH, MEDIUM, LOW, ALREADY SOLVED, empty
// groups omitted) → category (lexicographic) → sub-category (lexicographic)
// → items by ascending report id. Given the same records and timestamp the
// output is byte-identical.
func Generate(records []domain.ClassificationRecord, now time.Time) (string, Stats) {
	stats := make(Stats, len(domain.PriorityOrder))
	for _, record := range records {
		stats[record.Priority]++
	}

	if len(records) == 0 {
		return emptyDocument, stats
	}

	var b strings.Builder
	b.WriteString("# REPORTS\n")
	fmt.Fprintf(&b, "Last update: %s\n", now.Format(timestampLayout))
	fmt.Fprintf(&b, "Total reports: %d\n\n", len(records))

	for _, priority := range domain.PriorityOrder {
		group := filterByPriority(records, priority)
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s (%d report)\n\n", priority, len(group))

		buckets := make(map[string]map[string][]domain.ClassificationRecord)
		for _, record := range group {
			byCat, ok := buckets[record.Category]
			if !ok {
				byCat = make(map[string][]domain.ClassificationRecord)
				buckets[record.Category] = byCat
			}
			byCat[record.Subcategory] = append(byCat[record.Subcategory], record)
		}

		for _, category := range sortedKeys(buckets) {
			fmt.Fprintf(&b, "### %s\n", category)
			byCat := buckets[category]
			for _, subcategory := range sortedKeys(byCat) {
				fmt.Fprintf(&b, "#### %s\n", subcategory)
				items := byCat[subcategory]
				sort.Slice(items, func(i, j int) bool { return items[i].ReportID < items[j].ReportID })
				for _, item := range items {
					fmt.Fprintf(&b, "- **#%d** [%s] **%s** | %s | %s", item.ReportID, item.Kind, item.User, item.Version, item.Date)
					if item.Description != "" {
						fmt.Fprintf(&b, " | %s", item.Description)
					}
					b.WriteString("\n")
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}

		b.WriteString("---\n\n")
	}

	return b.String(), stats
}

func filterByPriority(records []domain.ClassificationRecord, priority domain.Priority) []domain.ClassificationRecord {
	var out []domain.ClassificationRecord
	for _, record := range records {
		if record.Priority == priority {
			out = append(out, record)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
