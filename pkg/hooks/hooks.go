// Package hooks implements the narrative hook lifecycle and the
// priority/filter logic shared by the continuity gate and the API layer.
package hooks

import (
	"slices"
	"strings"

	"inkwell/pkg/schema"
)

// Priority weights. Purely additive; an overdue warning dominates every
// combination of the other weights (1000 > 300+60+40+200).
const (
	overdueBaseWeight     = 1000
	overduePerChapter     = 25
	activeWeight          = 60
	importanceCritical    = 300
	importanceMajor       = 200
	importanceMinor       = 100
	statusPlantedWeight   = 40
	statusReferenceWeight = 35
	statusResolvedWeight  = 10
	ageWeightCeiling      = 200
)

// IsActive reports whether a hook still needs narrative attention.
func IsActive(status schema.HookStatus) bool {
	return status == schema.HookPlanted || status == schema.HookReferenced
}

// CanTransition reports whether a status change is legal. Status moves
// forward only: planted → referenced (re-entrant) → resolved | abandoned,
// and the terminal states absorb.
func CanTransition(from, to schema.HookStatus) bool {
	switch from {
	case schema.HookPlanted, schema.HookReferenced:
		return to == schema.HookReferenced || to == schema.HookResolved || to == schema.HookAbandoned
	default:
		return false
	}
}

// BuildSearchText concatenates every searchable field of a hook, lowercased.
func BuildSearchText(h schema.NarrativeHook) string {
	parts := []string{h.Description, h.Notes, string(h.Type), string(h.Importance)}
	parts = append(parts, h.RelatedCharacters...)
	return strings.ToLower(strings.Join(parts, " "))
}

// BuildOverdueMap indexes warnings by hook ID, keeping the first warning seen
// per hook.
func BuildOverdueMap(warnings []schema.OverdueHookWarning) map[string]schema.OverdueHookWarning {
	m := make(map[string]schema.OverdueHookWarning, len(warnings))
	for _, w := range warnings {
		if _, ok := m[w.HookID]; ok {
			continue
		}
		m[w.HookID] = w
	}
	return m
}

// CurrentChapter infers how far the story has progressed from the chapter
// numbers recorded across all hooks, floored at 1.
func CurrentChapter(hooks []schema.NarrativeHook) int {
	current := 1
	for _, h := range hooks {
		if h.PlantedInChapter > current {
			current = h.PlantedInChapter
		}
		if h.ResolvedInChapter != nil && *h.ResolvedInChapter > current {
			current = *h.ResolvedInChapter
		}
		for _, ch := range h.ReferencedInChapters {
			if ch > current {
				current = ch
			}
		}
	}
	return current
}

// PriorityScore ranks a hook for display and alerting. Higher is more urgent.
func PriorityScore(h schema.NarrativeHook, overdue map[string]schema.OverdueHookWarning) int {
	score := 0
	if w, ok := overdue[h.ID]; ok {
		score += overdueBaseWeight + w.ChaptersOverdue*overduePerChapter
	}
	if IsActive(h.Status) {
		score += activeWeight
	}
	switch h.Importance {
	case schema.ImportanceCritical:
		score += importanceCritical
	case schema.ImportanceMajor:
		score += importanceMajor
	default:
		score += importanceMinor
	}
	switch h.Status {
	case schema.HookPlanted:
		score += statusPlantedWeight
	case schema.HookReferenced:
		score += statusReferenceWeight
	case schema.HookResolved:
		score += statusResolvedWeight
	}
	if age := ageWeightCeiling - h.PlantedInChapter; age > 0 {
		score += age
	}
	return score
}

// FilterOptions narrows and orders a hook list for display.
type FilterOptions struct {
	// Tab is a status name, or "all".
	Tab string
	// Search is matched case-insensitively against BuildSearchText.
	Search string
	// Overdue is the warning map from BuildOverdueMap.
	Overdue map[string]schema.OverdueHookWarning
}

// FilterAndSort filters by tab and search query, then sorts by descending
// priority, oldest planting first on ties.
func FilterAndSort(hooks []schema.NarrativeHook, opts FilterOptions) []schema.NarrativeHook {
	query := strings.ToLower(strings.TrimSpace(opts.Search))

	out := make([]schema.NarrativeHook, 0, len(hooks))
	for _, h := range hooks {
		if opts.Tab != "" && opts.Tab != "all" && string(h.Status) != opts.Tab {
			continue
		}
		if query != "" && !strings.Contains(BuildSearchText(h), query) {
			continue
		}
		out = append(out, h)
	}

	slices.SortStableFunc(out, func(a, b schema.NarrativeHook) int {
		if d := PriorityScore(b, opts.Overdue) - PriorityScore(a, opts.Overdue); d != 0 {
			return d
		}
		return a.PlantedInChapter - b.PlantedInChapter
	})
	return out
}
