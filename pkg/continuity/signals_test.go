package continuity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/pkg/schema"
)

func TestCollectAnchorSignals(t *testing.T) {
	chapters := []schema.ChapterRef{
		{Order: 1, Content: "开场的城市一片安宁。旧王死在了王座上"},
		{Order: 3, Content: "大军压境。烽火照亮了北方的天空"},
		{Order: 2, Content: "信使连夜出发。她把密信缝进了衣角"},
	}

	signals := collectAnchorSignals(chapters, 8)

	// Only the two most recent chapters, newest first, ending sentence only.
	assert.Equal(t, []string{"烽火照亮了北方的天空", "她把密信缝进了衣角"}, signals)
}

func TestCollectEventSignals(t *testing.T) {
	t.Run("caps key events per summary", func(t *testing.T) {
		summaries := []schema.ChapterSummary{{
			ChapterNumber: 1,
			KeyEvents:     []string{"第一件大事发生了", "第二件大事发生了", "第三件大事发生了"},
		}}
		signals := collectEventSignals(summaries, 10)
		assert.Equal(t, []string{"第一件大事发生了", "第二件大事发生了"}, signals)
	})

	t.Run("falls back to the one-line digest", func(t *testing.T) {
		summaries := []schema.ChapterSummary{{ChapterNumber: 2, OneLine: "他们跨过了边境"}}
		signals := collectEventSignals(summaries, 10)
		assert.Equal(t, []string{"他们跨过了边境"}, signals)
	})

	t.Run("newest summaries first", func(t *testing.T) {
		summaries := []schema.ChapterSummary{
			{ChapterNumber: 1, KeyEvents: []string{"旧王死在了王座上"}},
			{ChapterNumber: 2, KeyEvents: []string{"新王在混乱中加冕"}},
		}
		signals := collectEventSignals(summaries, 10)
		require.Len(t, signals, 2)
		assert.Equal(t, "新王在混乱中加冕", signals[0])
	})
}

func TestUnresolvedHookDescriptions(t *testing.T) {
	t.Run("resolution clears a hook across summaries", func(t *testing.T) {
		summaries := []schema.ChapterSummary{
			{ChapterNumber: 1, HooksPlanted: []string{"the sealed letter", "the broken sword"}},
			{ChapterNumber: 2, HooksReferenced: []string{"the sealed letter"}},
			{ChapterNumber: 3, HooksResolved: []string{"the broken sword"}},
		}
		assert.Equal(t, []string{"the sealed letter"}, UnresolvedHookDescriptions(summaries))
	})

	t.Run("correlation is by exact text", func(t *testing.T) {
		summaries := []schema.ChapterSummary{
			{ChapterNumber: 1, HooksPlanted: []string{"the sealed letter"}},
			{ChapterNumber: 2, HooksResolved: []string{"the letter that was sealed"}},
		}
		// A reworded resolution does not clear the original description.
		assert.Equal(t, []string{"the sealed letter"}, UnresolvedHookDescriptions(summaries))
	})

	t.Run("newer mentions come first without duplicates", func(t *testing.T) {
		summaries := []schema.ChapterSummary{
			{ChapterNumber: 1, HooksPlanted: []string{"the sealed letter", "the old debt"}},
			{ChapterNumber: 2, HooksReferenced: []string{"the sealed letter"}},
		}
		assert.Equal(t, []string{"the sealed letter", "the old debt"}, UnresolvedHookDescriptions(summaries))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, UnresolvedHookDescriptions(nil))
	})
}
