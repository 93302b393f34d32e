package continuity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeForMatch(t *testing.T) {
	assert.Equal(t, "Thedoorcreakedopen", NormalizeForMatch("The door  creaked\topen"))
	assert.Equal(t, "她没有回头", NormalizeForMatch("她 没有　回头"))
	assert.Equal(t, "", NormalizeForMatch(" \n\t "))
}

func TestSplitIntoSignals(t *testing.T) {
	t.Run("short sentences become single signals", func(t *testing.T) {
		signals := SplitIntoSignals("他在灯下读信。她没有回头。", 8)
		assert.Equal(t, []string{"他在灯下读信", "她没有回头"}, signals)
	})

	t.Run("tiny fragments are dropped", func(t *testing.T) {
		signals := SplitIntoSignals("是。她没有回头。", 8)
		assert.Equal(t, []string{"她没有回头"}, signals)
	})

	t.Run("long sentences contribute head and tail", func(t *testing.T) {
		signals := SplitIntoSignals("The ranger dropped the silver ledger beside the riverbank stones\n", 8)
		require.Len(t, signals, 2)
		assert.Equal(t, "Therangerdropped", signals[0])
		assert.Equal(t, "eriverbankstones", signals[1])
	})

	t.Run("punctuation is stripped before measuring", func(t *testing.T) {
		signals := SplitIntoSignals("“他走了，真的走了。”", 8)
		assert.Equal(t, []string{"他走了真的走了"}, signals)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		signals := SplitIntoSignals("她没有回头。她没有回头！她没有回头？", 8)
		assert.Equal(t, []string{"她没有回头"}, signals)
	})

	t.Run("maxSignals truncates", func(t *testing.T) {
		signals := SplitIntoSignals("第一句够长了。第二句也够长。第三句还够长。", 2)
		assert.Len(t, signals, 2)
	})

	t.Run("non-positive cap yields nothing", func(t *testing.T) {
		assert.Nil(t, SplitIntoSignals("她没有回头。", 0))
	})
}

func TestEndingSnippet(t *testing.T) {
	t.Run("snaps to the sentence after the first terminator", func(t *testing.T) {
		got := endingSnippet("Rain fell over the valley.\nMira clutched the ledger.")
		assert.Equal(t, "Mira clutched the ledger.", got)
	})

	t.Run("no terminator returns trimmed content", func(t *testing.T) {
		assert.Equal(t, "a quiet ending", endingSnippet("  a quiet ending  "))
	})

	t.Run("long content is windowed before snapping", func(t *testing.T) {
		got := endingSnippet(strings.Repeat("长夜无声", 100) + "。她终于转身离去")
		assert.Equal(t, "她终于转身离去", got)
	})
}
