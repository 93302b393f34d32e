package schema

// Story is the unit of persistence: one serialized work with its chapters,
// per-chapter summaries, and tracked narrative hooks.
type Story struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Chapters  []ChapterRef     `json:"chapters"`
	Summaries []ChapterSummary `json:"summaries"`
	Hooks     []NarrativeHook  `json:"hooks"`

	// Rejections keeps the drafts the continuity gate refused, keyed by
	// chapter order. Capped per chapter by the server.
	Rejections map[string][]Rejection `json:"rejections,omitempty"`
	// Revisions keeps repair passes keyed by chapter order.
	Revisions map[string][]RevisionEntry `json:"revisions,omitempty"`
}

// ChapterRef is an accepted chapter as produced by the authoring pipeline.
// Immutable once stored; the continuity engine reads it, never writes it.
type ChapterRef struct {
	Order   int    `json:"order"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChapterSummary is the structured digest of one chapter, extracted by the
// summarization stage. Hook lists are free-text descriptions, not IDs; the
// unresolved-hook computation correlates them with NarrativeHook.Description
// by exact string equality.
type ChapterSummary struct {
	ChapterNumber         int      `json:"chapter_number" jsonschema_description:"Sequence number of the summarized chapter"`
	OneLine               string   `json:"one_line,omitempty" jsonschema_description:"Single-sentence summary of the chapter"`
	KeyEvents             []string `json:"key_events" jsonschema_description:"Most important plot events, each a short standalone sentence"`
	CharacterDevelopments []string `json:"character_developments" jsonschema_description:"Notable character changes or decisions in this chapter"`
	HooksPlanted          []string `json:"hooks_planted" jsonschema_description:"Narrative threads newly introduced (foreshadowing, mysteries, promises), as short descriptions"`
	HooksReferenced       []string `json:"hooks_referenced" jsonschema_description:"Previously planted threads this chapter touches on, repeating their original descriptions verbatim"`
	HooksResolved         []string `json:"hooks_resolved" jsonschema_description:"Previously planted threads this chapter resolves, repeating their original descriptions verbatim"`
}

// RevisionEntry records one repair pass over a rejected draft.
type RevisionEntry struct {
	ID        string `json:"id"`
	Chapter   int    `json:"chapter"`
	Attempt   int    `json:"attempt"`
	Draft     string `json:"draft"`
	Repaired  string `json:"repaired"`
	CreatedAt string `json:"created_at"`
}
