package schema

type HookType string

const (
	HookForeshadowing HookType = "foreshadowing"
	HookChekhovGun    HookType = "chekhov_gun"
	HookMystery       HookType = "mystery"
	HookPromise       HookType = "promise"
	HookSetup         HookType = "setup"
)

type HookStatus string

const (
	HookPlanted    HookStatus = "planted"
	HookReferenced HookStatus = "referenced"
	HookResolved   HookStatus = "resolved"
	HookAbandoned  HookStatus = "abandoned"
)

type HookImportance string

const (
	ImportanceCritical HookImportance = "critical"
	ImportanceMajor    HookImportance = "major"
	ImportanceMinor    HookImportance = "minor"
)

// NarrativeHook is one tracked narrative thread. Status only moves forward
// (planted → referenced* → resolved|abandoned); that invariant is enforced by
// the mutation layer, not by readers.
type NarrativeHook struct {
	ID                   string         `json:"id"`
	Type                 HookType       `json:"type"`
	Description          string         `json:"description"`
	Status               HookStatus     `json:"status"`
	Importance           HookImportance `json:"importance"`
	PlantedInChapter     int            `json:"planted_in_chapter"`
	ReferencedInChapters []int          `json:"referenced_in_chapters,omitempty"`
	ResolvedInChapter    *int           `json:"resolved_in_chapter,omitempty"`
	Notes                string         `json:"notes,omitempty"`
	RelatedCharacters    []string       `json:"related_characters,omitempty"`
}

// OverdueHookWarning is derived by the overdue scan and never persisted.
type OverdueHookWarning struct {
	HookID          string         `json:"hook_id"`
	Description     string         `json:"description"`
	PlantedChapter  int            `json:"planted_chapter"`
	ChaptersOverdue int            `json:"chapters_overdue"`
	Importance      HookImportance `json:"importance"`
	SuggestedAction string         `json:"suggested_action"`
}
