package hooks

import (
	"fmt"

	"inkwell/pkg/schema"
)

// Chapters an active hook may stay untouched before it is flagged, by
// importance. A hook counts as touched at its latest reference, or its
// planting when never referenced.
const (
	overdueWindowCritical = 6
	overdueWindowMajor    = 10
	overdueWindowMinor    = 16
)

func overdueWindow(importance schema.HookImportance) int {
	switch importance {
	case schema.ImportanceCritical:
		return overdueWindowCritical
	case schema.ImportanceMajor:
		return overdueWindowMajor
	default:
		return overdueWindowMinor
	}
}

// ScanOverdue flags active hooks that have gone quiet for longer than their
// importance allows. currentChapter <= 0 falls back to CurrentChapter.
func ScanOverdue(hookList []schema.NarrativeHook, currentChapter int) []schema.OverdueHookWarning {
	if currentChapter <= 0 {
		currentChapter = CurrentChapter(hookList)
	}

	var warnings []schema.OverdueHookWarning
	for _, h := range hookList {
		if !IsActive(h.Status) {
			continue
		}
		lastTouched := h.PlantedInChapter
		for _, ch := range h.ReferencedInChapters {
			if ch > lastTouched {
				lastTouched = ch
			}
		}
		overdue := currentChapter - lastTouched - overdueWindow(h.Importance)
		if overdue <= 0 {
			continue
		}
		warnings = append(warnings, schema.OverdueHookWarning{
			HookID:          h.ID,
			Description:     h.Description,
			PlantedChapter:  h.PlantedInChapter,
			ChaptersOverdue: overdue,
			Importance:      h.Importance,
			SuggestedAction: suggestedAction(h),
		})
	}
	return warnings
}

func suggestedAction(h schema.NarrativeHook) string {
	if h.Status == schema.HookPlanted {
		return fmt.Sprintf("reference or resolve %q; it has not been touched since chapter %d", h.Description, h.PlantedInChapter)
	}
	return fmt.Sprintf("resolve or abandon %q; it keeps being referenced without payoff", h.Description)
}
