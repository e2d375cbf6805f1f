package service

import (
	"github.com/spec-kit/report-bot/internal/domain"
	"github.com/spec-kit/report-bot/internal/gateway"
)

// Priority control ids. Selections arrive as plain component events, so the
// id set is a fixed enumeration dispatched through a lookup table rather
// than per-message closures.
const (
	ControlPriorityHigh   = "priority:high"
	ControlPrioritySolved = "priority:solved"
	ControlPriorityMedium = "priority:medium"
	ControlPriorityLow    = "priority:low"
)

var priorityByControlID = map[string]domain.Priority{
	ControlPriorityHigh:   domain.PriorityHigh,
	ControlPriorityMedium: domain.PriorityMedium,
	ControlPriorityLow:    domain.PriorityLow,
	ControlPrioritySolved: domain.PrioritySolved,
}

// PriorityFromControlID resolves a pressed priority button.
func PriorityFromControlID(id string) (domain.Priority, bool) {
	priority, ok := priorityByControlID[id]
	return priority, ok
}

// PriorityControls returns the four reviewer buttons attached to every
// posted report. With disabled true the set renders as the terminal
// ALREADY SOLVED state.
func PriorityControls(disabled bool) []gateway.Control {
	return []gateway.Control{
		{ID: ControlPriorityHigh, Label: string(domain.PriorityHigh), Style: gateway.StyleDanger, Disabled: disabled},
		{ID: ControlPriorityMedium, Label: string(domain.PriorityMedium), Style: gateway.StylePrimary, Disabled: disabled},
		{ID: ControlPriorityLow, Label: string(domain.PriorityLow), Style: gateway.StyleSecondary, Disabled: disabled},
		{ID: ControlPrioritySolved, Label: string(domain.PrioritySolved), Style: gateway.StyleSuccess, Disabled: disabled},
	}
}
