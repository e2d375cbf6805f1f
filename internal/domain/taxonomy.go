package domain

// Taxonomy is the fixed category → sub-category mapping. Option controls are
// only ever built from this set, so an unknown category at selection time is
// a contract violation, not user input to validate.
var taxonomy = map[string][]string{
	"MAP":         {"UI", "VISUAL", "MOVING", "Other"},
	"SETTLEMENTS": {"Slots", "Buildings", "Loc", "Non selectable", "Other"},
	"FACTIONS":    {"Leader", "Loc", "Flags", "Other"},
	"ARMIES":      {"Generals/Admirals", "Units", "Loc", "Ui", "Other"},
}

// categoryOrder fixes the order category buttons are presented in.
var categoryOrder = []string{"MAP", "SETTLEMENTS", "FACTIONS", "ARMIES"}

// VersionOptions lists the selectable game versions for Bug/Crash intakes.
var VersionOptions = []string{"0.0.0", "0.0.1"}

// Categories returns the selectable categories in presentation order.
func Categories() []string {
	out := make([]string, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Subcategories returns the allowed sub-categories for a category, and
// whether the category is part of the taxonomy.
func Subcategories(category string) ([]string, bool) {
	subs, ok := taxonomy[category]
	if !ok {
		return nil, false
	}
	out := make([]string, len(subs))
	copy(out, subs)
	return out, true
}
