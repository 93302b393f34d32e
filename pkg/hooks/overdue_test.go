package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/pkg/schema"
)

func TestScanOverdue(t *testing.T) {
	t.Run("critical window is tightest", func(t *testing.T) {
		hooks := []schema.NarrativeHook{
			{ID: "c", Status: schema.HookPlanted, Importance: schema.ImportanceCritical, PlantedInChapter: 1},
			{ID: "m", Status: schema.HookPlanted, Importance: schema.ImportanceMajor, PlantedInChapter: 1},
			{ID: "n", Status: schema.HookPlanted, Importance: schema.ImportanceMinor, PlantedInChapter: 1},
		}
		warnings := ScanOverdue(hooks, 8)
		require.Len(t, warnings, 1)
		assert.Equal(t, "c", warnings[0].HookID)
		assert.Equal(t, 1, warnings[0].ChaptersOverdue)
	})

	t.Run("just inside the window is not flagged", func(t *testing.T) {
		hooks := []schema.NarrativeHook{
			{ID: "c", Status: schema.HookPlanted, Importance: schema.ImportanceCritical, PlantedInChapter: 1},
		}
		assert.Empty(t, ScanOverdue(hooks, 7))
	})

	t.Run("references reset the clock", func(t *testing.T) {
		hooks := []schema.NarrativeHook{
			{ID: "c", Status: schema.HookReferenced, Importance: schema.ImportanceCritical,
				PlantedInChapter: 1, ReferencedInChapters: []int{5}},
		}
		assert.Empty(t, ScanOverdue(hooks, 8))

		warnings := ScanOverdue(hooks, 12)
		require.Len(t, warnings, 1)
		assert.Equal(t, 1, warnings[0].ChaptersOverdue)
	})

	t.Run("terminal hooks are never overdue", func(t *testing.T) {
		nine := 9
		hooks := []schema.NarrativeHook{
			{ID: "r", Status: schema.HookResolved, Importance: schema.ImportanceCritical, PlantedInChapter: 1, ResolvedInChapter: &nine},
			{ID: "a", Status: schema.HookAbandoned, Importance: schema.ImportanceCritical, PlantedInChapter: 1},
		}
		assert.Empty(t, ScanOverdue(hooks, 40))
	})

	t.Run("current chapter inferred when omitted", func(t *testing.T) {
		hooks := []schema.NarrativeHook{
			{ID: "c", Status: schema.HookPlanted, Importance: schema.ImportanceCritical, PlantedInChapter: 1},
			{ID: "anchor", Status: schema.HookPlanted, Importance: schema.ImportanceMinor, PlantedInChapter: 9},
		}
		warnings := ScanOverdue(hooks, 0)
		require.Len(t, warnings, 1)
		assert.Equal(t, 2, warnings[0].ChaptersOverdue)
	})

	t.Run("warnings carry an actionable suggestion", func(t *testing.T) {
		hooks := []schema.NarrativeHook{
			{ID: "c", Status: schema.HookPlanted, Importance: schema.ImportanceCritical,
				Description: "the sealed letter", PlantedInChapter: 1},
		}
		warnings := ScanOverdue(hooks, 10)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0].SuggestedAction, "the sealed letter")
	})
}
